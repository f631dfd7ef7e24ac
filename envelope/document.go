package envelope

import (
	"github.com/arnodel/xmtpdump/iterator"
	"github.com/arnodel/xmtpdump/token"
)

// A Document is a JSON object kept as an ordered list of members.  Member
// values are held as token sequences so the fields we do not touch are
// output exactly as they were read.
type Document struct {
	members []member
}

type member struct {
	key   string
	value []token.Token

	// Key token as read, nil for members added with Set.
	keyTok *token.Scalar
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// DocumentFromObject consumes obj and returns its members as a Document.
// When a key appears more than once, the member stays at the position of
// the first occurrence and takes the last value.
func DocumentFromObject(obj *iterator.Object) *Document {
	doc := NewDocument()
	for obj.Advance() {
		key, value := obj.CurrentKeyVal()
		doc.set(key.ToString(), key, iterator.Tokens(value))
	}
	return doc
}

// Get returns the tokens of the value held under key.
func (d *Document) Get(key string) ([]token.Token, bool) {
	if i := d.index(key); i >= 0 {
		return d.members[i].value, true
	}
	return nil, false
}

// GetString returns the value held under key if it is a JSON string.
func (d *Document) GetString(key string) (string, bool) {
	s, ok := d.GetScalar(key)
	if !ok || s.Type() != token.String {
		return "", false
	}
	return s.ToString(), true
}

// GetScalar returns the value held under key if it is a scalar.
func (d *Document) GetScalar(key string) (*token.Scalar, bool) {
	value, ok := d.Get(key)
	if !ok {
		return nil, false
	}
	iter := iterator.FromTokens(value)
	if !iter.Advance() {
		return nil, false
	}
	return iterator.AsScalar(iter.CurrentValue())
}

// Set replaces the value of key in place, or appends a new member if there
// is none.
func (d *Document) Set(key string, value []token.Token) {
	d.set(key, nil, value)
}

func (d *Document) set(key string, keyTok *token.Scalar, value []token.Token) {
	if i := d.index(key); i >= 0 {
		d.members[i].value = value
		return
	}
	d.members = append(d.members, member{key: key, value: value, keyTok: keyTok})
}

func (d *Document) SetScalar(key string, value *token.Scalar) {
	d.Set(key, []token.Token{value})
}

// Delete removes key, reporting whether it was present.
func (d *Document) Delete(key string) bool {
	i := d.index(key)
	if i < 0 {
		return false
	}
	d.members = append(d.members[:i], d.members[i+1:]...)
	return true
}

// Tokens returns the document as the token sequence of a JSON object.
func (d *Document) Tokens() []token.Token {
	n := 2
	for _, m := range d.members {
		n += 1 + len(m.value)
	}
	toks := make([]token.Token, 0, n)
	toks = append(toks, &token.StartObject{})
	for _, m := range d.members {
		keyTok := m.keyTok
		if keyTok == nil {
			keyTok = token.KeyScalar(m.key)
		}
		toks = append(toks, keyTok)
		toks = append(toks, m.value...)
	}
	return append(toks, &token.EndObject{})
}

func (d *Document) index(key string) int {
	for i, m := range d.members {
		if m.key == key {
			return i
		}
	}
	return -1
}
