package envelope

import (
	"strings"
	"testing"
)

func TestShouldEmit(t *testing.T) {
	tests := []struct {
		topic, contains, prefix string
		expected                bool
	}{
		{"", "", "", true},
		{"", "foo", "", false},
		{"", "", "/xmtp", false},
		{"/xmtp/0/foo", "", "", true},
		{"/xmtp/0/foo", "foo", "", true},
		{"/xmtp/0/foo", "bar", "", false},
		{"/xmtp/0/foo", "", "/xmtp/0", true},
		{"/xmtp/0/foo", "", "/xmtp/1", false},
		{"/xmtp/0/foo", "foo", "/xmtp/0", true},
		{"/xmtp/0/foo", "foo", "/xmtp/1", false},
		{"/xmtp/0/foo", "bar", "/xmtp/0", false},
		{"/xmtp/0/foo", "/xmtp/0/foo", "/xmtp/0/foo", true},
	}
	for _, tt := range tests {
		got := ShouldEmit(tt.topic, tt.contains, tt.prefix)
		if got != tt.expected {
			t.Errorf("ShouldEmit(%q, %q, %q) = %t, expected %t", tt.topic, tt.contains, tt.prefix, got, tt.expected)
		}
	}
}

// ShouldEmit holds iff the topic is present or no filter is set, and each
// set filter matches.
func TestShouldEmitAllCombinations(t *testing.T) {
	values := []string{"", "/", "xmtp", "/xmtp", "/xmtp/0/m-abc/proto", "proto", "/xmtp/1"}
	for _, topic := range values {
		for _, contains := range values {
			for _, prefix := range values {
				expected := (topic != "" || contains == "" && prefix == "") &&
					(contains == "" || strings.Contains(topic, contains)) &&
					(prefix == "" || strings.HasPrefix(topic, prefix))
				if got := ShouldEmit(topic, contains, prefix); got != expected {
					t.Errorf("ShouldEmit(%q, %q, %q) = %t", topic, contains, prefix, got)
				}
			}
		}
	}
}

func TestTopicFilter(t *testing.T) {
	var f TopicFilter
	if f.Active() {
		t.Error("zero filter should not be active")
	}
	if !f.ShouldEmit("") {
		t.Error("zero filter should accept envelopes without a topic")
	}
	f = TopicFilter{Prefix: "/xmtp/0"}
	if !f.Active() {
		t.Error("filter should be active")
	}
	if f.ShouldEmit("") || f.ShouldEmit("/xmtp/1/x") || !f.ShouldEmit("/xmtp/0/x") {
		t.Error("prefix filter mismatch")
	}
}
