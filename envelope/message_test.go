package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/arnodel/xmtpdump/token"
)

func TestDecodeMessageBytes(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"aGVsbG8=", "hello", true},
		{"aGVsbG8", "hello", true},
		{"aGk", "hi", true},
		{"", "", true},
		{"AAEC", "\x00\x01\x02", true},
		{"!!!!", "", false},
		{"aGVsbG8-", "", false},
		{"a", "", false},
		{"aGVsbG8==", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			raw, err := DecodeMessageBytes(tt.input)
			if !tt.ok {
				if err == nil {
					t.Fatalf("expected error, got %q", raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(raw) != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, raw)
			}
		})
	}
}

func TestHexPreview(t *testing.T) {
	raw := bytes.Repeat([]byte{0xab}, 300)
	got := HexPreview(raw, 256)
	expected := hex.EncodeToString(raw[:256]) + "...(+44 bytes)"
	if got != expected {
		t.Errorf("unexpected preview %q", got)
	}

	tests := []struct {
		raw      []byte
		limit    int
		expected string
	}{
		{[]byte("hello"), 0, "68656c6c6f"},
		{[]byte("hello"), 5, "68656c6c6f"},
		{[]byte("hello"), 2, "6865...(+3 bytes)"},
		{nil, 3, ""},
	}
	for _, tt := range tests {
		if got := HexPreview(tt.raw, tt.limit); got != tt.expected {
			t.Errorf("HexPreview(%q, %d) = %q, expected %q", tt.raw, tt.limit, got, tt.expected)
		}
	}
}

func TestTruncateMessage(t *testing.T) {
	tests := []struct {
		msg       string
		limit     int
		expected  string
		truncated bool
	}{
		{"0123456789", 5, "01234...", true},
		{"0123456789", 10, "0123456789", false},
		{"0123456789", 0, "0123456789", false},
		{"0123456789", 1, "0...", true},
		{"éééé", 2, "éé...", true},
		{"", 3, "", false},
	}
	for _, tt := range tests {
		got, truncated := TruncateMessage(tt.msg, tt.limit)
		if got != tt.expected || truncated != tt.truncated {
			t.Errorf("TruncateMessage(%q, %d) = %q, %t", tt.msg, tt.limit, got, truncated)
		}
	}
	if got, _ := TruncateMessage("0123456789", 5); len(got) != 8 {
		t.Errorf("expected 8 characters, got %q", got)
	}
}

func TestMessageOptionsApply(t *testing.T) {
	tests := []struct {
		name     string
		opts     MessageOptions
		input    string
		expected string
	}{
		{
			name:     "no options",
			input:    `{"contentTopic":"/t","message":"aGVsbG8=","x":[1]}`,
			expected: `{"contentTopic": "/t", "message": "aGVsbG8=", "x": [1]}`,
		},
		{
			name:     "decode",
			opts:     MessageOptions{Decode: true, HexMax: 256},
			input:    `{"contentTopic":"/t","message":"aGVsbG8="}`,
			expected: `{"contentTopic": "/t", "message": "aGVsbG8=", "messageBytesLen": 5, "messageBytesHex": "68656c6c6f"}`,
		},
		{
			name:     "decode with hex limit",
			opts:     MessageOptions{Decode: true, HexMax: 2},
			input:    `{"message":"aGVsbG8="}`,
			expected: `{"message": "aGVsbG8=", "messageBytesLen": 5, "messageBytesHex": "6865...(+3 bytes)"}`,
		},
		{
			name:     "decode malformed",
			opts:     MessageOptions{Decode: true, HexMax: 256},
			input:    `{"message":"!!!!"}`,
			expected: `{"message": "!!!!", "messageBytesLen": null, "messageBytesHex": null}`,
		},
		{
			name:     "decode replaces existing fields in place",
			opts:     MessageOptions{Decode: true},
			input:    `{"messageBytesLen":0,"message":"aGk=","z":1}`,
			expected: `{"messageBytesLen": 2, "message": "aGk=", "z": 1, "messageBytesHex": "6869"}`,
		},
		{
			name:     "truncate",
			opts:     MessageOptions{MessageMax: 5},
			input:    `{"message":"0123456789"}`,
			expected: `{"message": "01234..."}`,
		},
		{
			name:     "decode uses untruncated message",
			opts:     MessageOptions{Decode: true, MessageMax: 3},
			input:    `{"message":"aGVsbG8="}`,
			expected: `{"message": "aGV...", "messageBytesLen": 5, "messageBytesHex": "68656c6c6f"}`,
		},
		{
			name:     "omit after decode",
			opts:     MessageOptions{Decode: true, Omit: true, MessageMax: 2},
			input:    `{"contentTopic":"/t","message":"aGVsbG8="}`,
			expected: `{"contentTopic": "/t", "messageBytesLen": 5, "messageBytesHex": "68656c6c6f"}`,
		},
		{
			name:     "non-string message is left alone",
			opts:     MessageOptions{Decode: true, MessageMax: 1},
			input:    `{"message":12345}`,
			expected: `{"message": 12345}`,
		},
		{
			name:     "non-string message is omitted",
			opts:     MessageOptions{Decode: true, Omit: true},
			input:    `{"message":{"a":1},"b":2}`,
			expected: `{"b": 2}`,
		},
		{
			name:     "absent message",
			opts:     MessageOptions{Decode: true, Omit: true, MessageMax: 1},
			input:    `{"contentTopic":"/t"}`,
			expected: `{"contentTopic": "/t"}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := mustParseRecord(t, tt.input)
			tt.opts.Apply(rec.Doc)
			if got := render(t, rec.Output()); got != tt.expected {
				t.Errorf("expected %s\ngot      %s", tt.expected, got)
			}
		})
	}
}

func TestApplyHexTruncation(t *testing.T) {
	raw := bytes.Repeat([]byte{1, 2, 3}, 100)
	doc := NewDocument()
	doc.SetScalar(MessageKey, token.StringScalar(base64.StdEncoding.EncodeToString(raw)))
	MessageOptions{Decode: true, HexMax: 256}.Apply(doc)

	n, _ := doc.GetScalar(MessageBytesLenKey)
	if string(n.Bytes) != "300" {
		t.Errorf("expected length 300, got %s", n.Bytes)
	}
	h, _ := doc.GetString(MessageBytesHexKey)
	if !strings.HasSuffix(h, "...(+44 bytes)") || h[:512] != hex.EncodeToString(raw[:256]) {
		t.Errorf("unexpected hex %q", h)
	}
}
