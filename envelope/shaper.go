package envelope

import (
	"github.com/arnodel/xmtpdump/iterator"
	"github.com/arnodel/xmtpdump/token"
)

// A Shaper turns stream values into the envelopes to print.  Values
// rejected by the topic filter produce no tokens.
type Shaper struct {
	Filter  TopicFilter
	Message MessageOptions
}

var _ iterator.ValueTransformer = (*Shaper)(nil)

// Shape filters and transforms rec.  It returns false if the record must
// not be printed.
func (s *Shaper) Shape(rec *Record) ([]token.Token, bool) {
	if !s.Filter.ShouldEmit(rec.Topic()) {
		return nil, false
	}
	if rec.Doc != nil {
		s.Message.Apply(rec.Doc)
	}
	return rec.Output(), true
}

// TransformValue implements iterator.ValueTransformer.
func (s *Shaper) TransformValue(value iterator.Value, out token.WriteStream) {
	toks, ok := s.Shape(RecordFromValue(value))
	if !ok {
		return
	}
	for _, tok := range toks {
		out.Put(tok)
	}
}
