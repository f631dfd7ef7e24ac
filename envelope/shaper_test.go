package envelope

import (
	"testing"

	"github.com/arnodel/xmtpdump/encoding/json"
	"github.com/arnodel/xmtpdump/iterator"
)

func TestShaper(t *testing.T) {
	const line = `{"result":{"contentTopic":"/xmtp/0/foo","message":"aGVsbG8="}}`
	tests := []struct {
		name     string
		shaper   Shaper
		input    string
		expected string
		emitted  bool
	}{
		{
			name:     "no flags",
			input:    line,
			expected: `{"contentTopic": "/xmtp/0/foo", "message": "aGVsbG8="}`,
			emitted:  true,
		},
		{
			name:    "prefix mismatch",
			shaper:  Shaper{Filter: TopicFilter{Prefix: "/xmtp/1"}},
			input:   line,
			emitted: false,
		},
		{
			name:     "prefix and contains match",
			shaper:   Shaper{Filter: TopicFilter{Prefix: "/xmtp/0", Contains: "foo"}},
			input:    line,
			expected: `{"contentTopic": "/xmtp/0/foo", "message": "aGVsbG8="}`,
			emitted:  true,
		},
		{
			name:     "filter then omit",
			shaper:   Shaper{Filter: TopicFilter{Contains: "foo"}, Message: MessageOptions{Omit: true}},
			input:    line,
			expected: `{"contentTopic": "/xmtp/0/foo"}`,
			emitted:  true,
		},
		{
			name:     "non-object without filter",
			input:    `[1,2]`,
			expected: `[1, 2]`,
			emitted:  true,
		},
		{
			name:    "non-object with filter",
			shaper:  Shaper{Filter: TopicFilter{Contains: "x"}},
			input:   `{"result":5}`,
			emitted: false,
		},
		{
			name:    "missing topic with filter",
			shaper:  Shaper{Filter: TopicFilter{Contains: "x"}},
			input:   `{"message":"aGk="}`,
			emitted: false,
		},
		{
			name:     "non-object ignores message options",
			shaper:   Shaper{Message: MessageOptions{Omit: true, Decode: true}},
			input:    `"message"`,
			expected: `"message"`,
			emitted:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks, emitted := tt.shaper.Shape(mustParseRecord(t, tt.input))
			if emitted != tt.emitted {
				t.Fatalf("expected emitted=%t", tt.emitted)
			}
			if emitted {
				if got := render(t, toks); got != tt.expected {
					t.Errorf("expected %s, got %s", tt.expected, got)
				}
			}
		})
	}
}

// Without any option a JSON object is output with the same members in the
// same order.
func TestShaperRoundTrip(t *testing.T) {
	inputs := []string{
		`{"contentTopic": "/xmtp/0/m-1/proto", "timestampNs": "1700000000000000000", "message": "CgQIARAB"}`,
		`{"message": "aGk=", "extra": {"nested": [true, false, null, 1.5e10]}}`,
		`{}`,
	}
	var shaper Shaper
	for _, input := range inputs {
		toks, ok := shaper.Shape(mustParseRecord(t, input))
		if !ok {
			t.Fatalf("%s was rejected", input)
		}
		if got := render(t, toks); got != input {
			t.Errorf("expected %s, got %s", input, got)
		}
	}
}

func TestShaperTransformValue(t *testing.T) {
	toks, err := json.DecodeValue([]byte(`{"result":{"contentTopic":"/a","message":"aGk="}}`))
	if err != nil {
		t.Fatal(err)
	}
	shaper := &Shaper{Message: MessageOptions{Decode: true}}
	got := render(t, iterator.TransformTokens(toks, shaper))
	expected := `{"contentTopic": "/a", "message": "aGk=", "messageBytesLen": 2, "messageBytesHex": "6869"}`
	if got != expected {
		t.Errorf("expected %s, got %s", expected, got)
	}

	shaper.Filter.Prefix = "/b"
	if out := iterator.TransformTokens(toks, shaper); len(out) != 0 {
		t.Errorf("expected no output, got %d tokens", len(out))
	}
}
