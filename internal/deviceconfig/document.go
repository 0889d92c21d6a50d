package deviceconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// document is a parsed profile file. Values are read one key at a time
// with an or-default policy: a missing key or a value of the wrong JSON
// type yields the supplied default instead of an error.
type document map[string]any

var errNotObject = errors.New("document is not a JSON object")

// parseDocument decodes text as a single JSON object. Numbers are kept as
// json.Number so integer and float fields can be told apart.
func parseDocument(text string) (document, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty document")
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after document")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	return document(obj), nil
}

// intOr returns key as an int. Fractional numbers and values outside the
// 32-bit range count as a type mismatch.
func (d document) intOr(key string, def int) int {
	n, ok := d[key].(json.Number)
	if !ok {
		return def
	}
	i, err := n.Int64()
	if err != nil || i < math.MinInt32 || i > math.MaxInt32 {
		return def
	}
	return int(i)
}

func (d document) floatOr(key string, def float64) float64 {
	n, ok := d[key].(json.Number)
	if !ok {
		return def
	}
	f, err := n.Float64()
	if err != nil {
		return def
	}
	return f
}

func (d document) boolOr(key string, def bool) bool {
	b, ok := d[key].(bool)
	if !ok {
		return def
	}
	return b
}

func (d document) stringOr(key string, def string) string {
	s, ok := d[key].(string)
	if !ok {
		return def
	}
	return s
}

// apply populates every field from the document, falling back to each
// field's default.
func (d document) apply(fields []field) {
	for _, f := range fields {
		switch p := f.target.(type) {
		case *int:
			*p = d.intOr(f.key, f.def.(int))
		case *float64:
			*p = d.floatOr(f.key, f.def.(float64))
		case *bool:
			*p = d.boolOr(f.key, f.def.(bool))
		case *MACAddress:
			*p = MACAddress(d.stringOr(f.key, string(f.def.(MACAddress))))
		}
	}
}

// encodeDocument renders a profile as indented JSON. Key order follows
// the struct field order.
func encodeDocument(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// formatValue renders the field's current value the way setFromString
// accepts it
func formatValue(f field) string {
	switch p := f.target.(type) {
	case *int:
		return strconv.Itoa(*p)
	case *float64:
		return strconv.FormatFloat(*p, 'f', -1, 64)
	case *bool:
		return strconv.FormatBool(*p)
	case *MACAddress:
		return string(*p)
	default:
		return fmt.Sprint(f.target)
	}
}

// setFromString parses value for the field's type and stores it
func setFromString(f field, value string) error {
	value = strings.TrimSpace(value)

	switch p := f.target.(type) {
	case *int:
		i, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return fmt.Errorf("expected an integer: %w", err)
		}
		*p = int(i)
	case *float64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("expected a number: %w", err)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("expected a finite number, got %s", value)
		}
		*p = v
	case *bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("expected true or false: %w", err)
		}
		*p = b
	case *MACAddress:
		m, err := ParseMAC(value)
		if err != nil {
			return err
		}
		*p = m
	default:
		return fmt.Errorf("unsupported field type %T", f.target)
	}
	return nil
}
