package iterator

import (
	"fmt"

	"github.com/arnodel/xmtpdump/token"
)

// Iterator walks the top-level values of a token stream.  Values must be
// consumed (advanced through, copied or discarded) in order, there is no
// going back.
type Iterator struct {
	stream       token.ReadStream
	currentValue Value
}

func New(stream token.ReadStream) *Iterator {
	return &Iterator{stream: stream}
}

// FromTokens returns an iterator over a slice of tokens.
func FromTokens(toks []token.Token) *Iterator {
	return New(token.NewSliceReadStream(toks))
}

func (i *Iterator) Advance() (ok bool) {
	if i.currentValue != nil {
		i.currentValue.Discard()
	}
	nextItem := i.stream.Next()
	if nextItem == nil {
		i.currentValue = nil
		return false
	}
	i.currentValue = nextStreamedValue(nextItem, i.stream)
	return true
}

func (i *Iterator) CurrentValue() Value {
	return i.currentValue
}

type Value interface {
	Discard()
	Copy(out token.WriteStream)
}

// AsScalar returns the scalar token held by v, if v is a scalar.
func AsScalar(v Value) (*token.Scalar, bool) {
	s, ok := v.(*Scalar)
	if !ok {
		return nil, false
	}
	return s.Scalar(), true
}

// AsObject returns v as an *Object, if it is one.
func AsObject(v Value) (*Object, bool) {
	o, ok := v.(*Object)
	return o, ok
}

// Tokens copies v into a fresh slice of tokens.
func Tokens(v Value) []token.Token {
	acc := token.NewAccumulatorStream()
	v.Copy(acc)
	return acc.GetTokens()
}

type Scalar token.Scalar

var _ Value = &Scalar{}

func (s *Scalar) Discard() {}

func (s *Scalar) Copy(out token.WriteStream) {
	out.Put((*token.Scalar)(s))
}

func (s *Scalar) Scalar() *token.Scalar {
	return (*token.Scalar)(s)
}

type Collection interface {
	Value
	Advance() bool
	Done() bool
	CurrentValue() Value
}

type collectionBase struct {
	startItem token.Token
	stream    token.ReadStream

	started bool
	done    bool

	currentValue Value
}

func (c *collectionBase) Done() bool {
	return c.done
}

func (c *collectionBase) Discard() {
	if c.done {
		return
	}
	if c.started {
		c.currentValue.Discard()
	}
	c.done = true
	depth := 0
	for {
		item := c.stream.Next()
		if item == nil {
			return
		}
		switch item.(type) {
		case *token.StartArray, *token.StartObject:
			depth++
		case *token.EndArray, *token.EndObject:
			depth--
		}
		if depth < 0 {
			return
		}
	}
}

func (c *collectionBase) Copy(out token.WriteStream) {
	if c.started {
		panic("cannot copy a started iterator")
	}
	out.Put(c.startItem)
	c.done = true
	depth := 0
	for {
		item := c.stream.Next()
		if item == nil {
			return
		}
		switch item.(type) {
		case *token.StartArray, *token.StartObject:
			depth++
		case *token.EndArray, *token.EndObject:
			depth--
		}
		out.Put(item)
		if depth < 0 {
			return
		}
	}
}

func (c *collectionBase) CurrentValue() Value {
	if c.done {
		panic("iterator done")
	}
	return c.currentValue
}

type Object struct {
	collectionBase
	currentKey *token.Scalar
}

func (o *Object) CurrentKeyVal() (*token.Scalar, Value) {
	if o.done {
		panic("iterator done")
	}
	return o.currentKey, o.currentValue
}

func (o *Object) Advance() bool {
	if o.done {
		return false
	}
	if o.started {
		o.currentValue.Discard()
	}
	item := o.stream.Next()
	if item == nil {
		panic("stream ended inside object - expected key")
	}
	switch v := item.(type) {
	case *token.Scalar:
		o.started = true
		o.currentKey = v
		item := o.stream.Next()
		if item == nil {
			panic("stream ended inside object - expected value")
		}
		o.currentValue = nextStreamedValue(item, o.stream)
		return true
	case *token.EndObject:
		o.done = true
		return false
	default:
		panic(fmt.Sprintf("invalid stream %#v", item))
	}
}

type Array struct {
	collectionBase
}

func (a *Array) Advance() bool {
	if a.done {
		return false
	}
	if a.started {
		a.currentValue.Discard()
	}
	item := a.stream.Next()
	if item == nil {
		panic("stream ended inside array")
	}
	switch item.(type) {
	case *token.EndArray:
		a.done = true
		return false
	default:
		a.started = true
		a.currentValue = nextStreamedValue(item, a.stream)
		return true
	}
}

func nextStreamedValue(firstItem token.Token, stream token.ReadStream) Value {
	switch v := firstItem.(type) {
	case *token.StartArray:
		return &Array{
			collectionBase: collectionBase{startItem: firstItem, stream: stream},
		}
	case *token.StartObject:
		return &Object{
			collectionBase: collectionBase{startItem: firstItem, stream: stream},
		}
	case *token.Scalar:
		return (*Scalar)(v)
	default:
		panic(fmt.Sprintf("invalid stream %#v", firstItem))
	}
}
