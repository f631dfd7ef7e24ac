package envelope

import (
	"github.com/arnodel/xmtpdump/encoding/json"
	"github.com/arnodel/xmtpdump/iterator"
	"github.com/arnodel/xmtpdump/token"
)

// Field names of the subscribe-all envelope and of its RPC wrapper.
const (
	ResultKey          = "result"
	ContentTopicKey    = "contentTopic"
	MessageKey         = "message"
	MessageBytesLenKey = "messageBytesLen"
	MessageBytesHexKey = "messageBytesHex"
)

// A Record is the envelope candidate read from one stream line, after the
// optional "result" wrapper has been removed.
//
// Doc is set when the candidate is a JSON object.  Any other value (a
// number, an array, null...) is kept as Tokens and treated as an envelope
// with no topic and no message.
type Record struct {
	Doc    *Document
	Tokens []token.Token
}

// ParseRecord decodes the single JSON value held in line and unwraps it.
func ParseRecord(line []byte) (*Record, error) {
	toks, err := json.DecodeValue(line)
	if err != nil {
		return nil, err
	}
	iter := iterator.FromTokens(toks)
	if !iter.Advance() {
		return nil, json.ErrEmptyInput
	}
	return RecordFromValue(iter.CurrentValue()), nil
}

// RecordFromValue consumes a top-level stream value and unwraps one level
// of "result".
func RecordFromValue(value iterator.Value) *Record {
	obj, ok := iterator.AsObject(value)
	if !ok {
		return &Record{Tokens: iterator.Tokens(value)}
	}
	doc := DocumentFromObject(obj)
	result, ok := doc.Get(ResultKey)
	if !ok {
		return &Record{Doc: doc}
	}
	iter := iterator.FromTokens(result)
	iter.Advance()
	inner := iter.CurrentValue()
	if obj, ok := iterator.AsObject(inner); ok {
		return &Record{Doc: DocumentFromObject(obj)}
	}
	return &Record{Tokens: result}
}

// Topic returns the content topic of the record, or "" if it has none.  A
// topic that is not a string counts as absent.
func (r *Record) Topic() string {
	if r.Doc == nil {
		return ""
	}
	topic, _ := r.Doc.GetString(ContentTopicKey)
	return topic
}

// Output returns the tokens to print for the record.
func (r *Record) Output() []token.Token {
	if r.Doc != nil {
		return r.Doc.Tokens()
	}
	return r.Tokens
}
