package envelope

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arnodel/xmtpdump/encoding/json"
	"github.com/arnodel/xmtpdump/internal/format"
	"github.com/arnodel/xmtpdump/token"
)

// render outputs toks as compact JSON without the trailing new line.
func render(t *testing.T, toks []token.Token) string {
	t.Helper()
	var buf bytes.Buffer
	enc := &json.Encoder{Printer: &format.DefaultPrinter{Writer: &buf, IndentSize: -1}}
	if err := enc.Encode(toks); err != nil {
		t.Fatalf("encode error: %v", err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func mustParseRecord(t *testing.T, line string) *Record {
	t.Helper()
	rec, err := ParseRecord([]byte(line))
	if err != nil {
		t.Fatalf("cannot parse %q: %v", line, err)
	}
	return rec
}
