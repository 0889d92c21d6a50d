package deviceconfig

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseDocument(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr bool
	}{
		{"Valid: empty object", "{}", false},
		{"Valid: nested values ignored", `{"a": {"b": [1]}}`, false},
		{"Invalid: empty", "", true},
		{"Invalid: string", `"hello"`, true},
		{"Invalid: number", `42`, true},
		{"Invalid: unterminated", `{"a": 1`, true},
		{"Invalid: two objects", `{}{}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDocument(tt.text)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseDocument(%q) error = %v, wantErr %v", tt.text, err, tt.wantErr)
			}
		})
	}
}

func TestDocumentOrDefault(t *testing.T) {
	doc, err := parseDocument(`{
		"int": 12,
		"negative": -4,
		"float": 1.5,
		"int_as_float": 3,
		"bool": false,
		"str": "x",
		"huge": 4294967296,
		"null": null
	}`)
	if err != nil {
		t.Fatal(err)
	}

	if got := doc.intOr("int", 1); got != 12 {
		t.Errorf("intOr(int) = %d", got)
	}
	if got := doc.intOr("negative", 1); got != -4 {
		t.Errorf("intOr(negative) = %d", got)
	}
	if got := doc.intOr("float", 1); got != 1 {
		t.Errorf("intOr(float) = %d, want default", got)
	}
	if got := doc.intOr("huge", 1); got != 1 {
		t.Errorf("intOr(huge) = %d, want default", got)
	}
	if got := doc.intOr("str", 1); got != 1 {
		t.Errorf("intOr(str) = %d, want default", got)
	}
	if got := doc.intOr("missing", 7); got != 7 {
		t.Errorf("intOr(missing) = %d, want default", got)
	}

	if got := doc.floatOr("float", 0); got != 1.5 {
		t.Errorf("floatOr(float) = %v", got)
	}
	if got := doc.floatOr("int_as_float", 0); got != 3 {
		t.Errorf("floatOr(int_as_float) = %v", got)
	}
	if got := doc.floatOr("bool", 0.7); got != 0.7 {
		t.Errorf("floatOr(bool) = %v, want default", got)
	}

	if got := doc.boolOr("bool", true); got != false {
		t.Errorf("boolOr(bool) = %v", got)
	}
	if got := doc.boolOr("int", true); got != true {
		t.Errorf("boolOr(int) = %v, want default", got)
	}
	if got := doc.boolOr("null", true); got != true {
		t.Errorf("boolOr(null) = %v, want default", got)
	}

	if got := doc.stringOr("str", "d"); got != "x" {
		t.Errorf("stringOr(str) = %q", got)
	}
	if got := doc.stringOr("int", "d"); got != "d" {
		t.Errorf("stringOr(int) = %q, want default", got)
	}
}

func TestEncodeDocumentKeyOrder(t *testing.T) {
	c := DefaultPeerConfig()
	data, err := encodeDocument(&c)
	if err != nil {
		t.Fatal(err)
	}

	want := `{
  "espnow_main_mac": "10:20:BA:4D:6C:E4",
  "espnow_timeout": 2000,
  "battery_calibration": 0.7,
  "debug_serial": true
}`
	if diff := cmp.Diff(want, string(data)); diff != "" {
		t.Errorf("encodeDocument() mismatch (-want +got):\n%s", diff)
	}
}

func TestMainDocumentKeysInOrder(t *testing.T) {
	c := DefaultMainConfig()
	data, err := encodeDocument(&c)
	if err != nil {
		t.Fatal(err)
	}

	text := string(data)
	last := -1
	for _, key := range Keys(KindMain) {
		i := strings.Index(text, `"`+key+`"`)
		if i < 0 {
			t.Fatalf("key %q missing from document", key)
		}
		if i < last {
			t.Errorf("key %q out of order", key)
		}
		last = i
	}
}

func TestKeys(t *testing.T) {
	want := []string{"espnow_main_mac", "espnow_timeout", "battery_calibration", "debug_serial"}
	if diff := cmp.Diff(want, Keys(KindPeer)); diff != "" {
		t.Errorf("Keys(peer) mismatch (-want +got):\n%s", diff)
	}
	if n := len(Keys(KindMain)); n != 14 {
		t.Errorf("len(Keys(main)) = %d, want 14", n)
	}
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"main", KindMain, false},
		{"Peer", KindPeer, false},
		{" PEER ", KindPeer, false},
		{"remote", KindMain, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseKind(%q) = %v, %v", tt.in, got, err)
		}
	}

	if KindMain.Path() != MainConfigPath || KindPeer.Path() != PeerConfigPath {
		t.Error("Kind.Path() mismatch")
	}
}
