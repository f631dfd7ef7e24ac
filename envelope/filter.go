package envelope

import "strings"

// A TopicFilter selects envelopes by content topic.  Empty fields are not
// applied; when both are set an envelope must satisfy both.
type TopicFilter struct {
	Contains string
	Prefix   string
}

// Active reports whether any filter is configured.
func (f TopicFilter) Active() bool {
	return f.Contains != "" || f.Prefix != ""
}

func (f TopicFilter) ShouldEmit(topic string) bool {
	return ShouldEmit(topic, f.Contains, f.Prefix)
}

// ShouldEmit reports whether an envelope with the given topic passes the
// contains and prefix filters.  An empty topic is an absent one: it only
// passes when no filter is set.
func ShouldEmit(topic, contains, prefix string) bool {
	if topic == "" {
		return contains == "" && prefix == ""
	}
	if contains != "" && !strings.Contains(topic, contains) {
		return false
	}
	if prefix != "" && !strings.HasPrefix(topic, prefix) {
		return false
	}
	return true
}
