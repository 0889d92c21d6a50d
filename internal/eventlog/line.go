package eventlog

import (
	"strconv"
	"strings"
)

// flatten keeps caller text on a single line
var flatten = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// line builds one record:
//
//	[<ms>ms] <LEVEL> - <message> | <key>: <value> | ... [TAG]
type line struct {
	b strings.Builder
}

func newLine(ms uint64, level Level, message string) *line {
	l := &line{}
	l.b.WriteByte('[')
	l.b.WriteString(strconv.FormatUint(ms, 10))
	l.b.WriteString("ms] ")
	l.b.WriteString(level.String())
	l.b.WriteString(" - ")
	flatten.WriteString(&l.b, message)
	return l
}

func (l *line) field(key, value string) *line {
	l.b.WriteString(" | ")
	flatten.WriteString(&l.b, key)
	l.b.WriteString(": ")
	flatten.WriteString(&l.b, value)
	return l
}

// text appends a bare segment without a key
func (l *line) text(s string) *line {
	l.b.WriteString(" | ")
	flatten.WriteString(&l.b, s)
	return l
}

func (l *line) tag(t string) *line {
	l.b.WriteString(" [")
	flatten.WriteString(&l.b, t)
	l.b.WriteByte(']')
	return l
}

func (l *line) String() string {
	return l.b.String()
}

func bytesValue(n uint32) string {
	return strconv.FormatUint(uint64(n), 10) + " bytes"
}

func dBm(n int8) string {
	return strconv.Itoa(int(n)) + " dBm"
}

func hex(n uint32) string {
	return "0x" + strconv.FormatUint(uint64(n), 16)
}
