package json

import (
	"fmt"

	"github.com/arnodel/xmtpdump/internal/format"
	"github.com/arnodel/xmtpdump/iterator"
	"github.com/arnodel/xmtpdump/token"
)

// An Encoder outputs JSON values given as token streams, using the given
// Printer instance for layout and the optional Colorizer for colors.
//
// Strings are always output with non-ASCII characters escaped, so the
// output is plain ASCII whatever the input.  Numbers, booleans and null are
// output as they were read.
type Encoder struct {
	format.Printer
	*format.Colorizer
}

// Encode outputs each value in toks followed by a new line.  It assumes
// that toks is well-formed and may panic if that is not the case.
//
// An error can be returned if the Printer could not perform some writing
// operation.  A typical example is if it attempts to write to a closed pipe.
func (e *Encoder) Encode(toks []token.Token) (err error) {
	defer format.CatchPrinterError(&err)
	iter := iterator.FromTokens(toks)
	for iter.Advance() {
		e.writeValue(iter.CurrentValue())
		e.Printer.Reset()
	}
	return nil
}

func (e *Encoder) writeValue(value iterator.Value) {
	switch v := value.(type) {
	case *iterator.Scalar:
		e.writeScalar(v.Scalar())
	case *iterator.Object:
		e.writeObject(v)
	case *iterator.Array:
		e.writeArray(v)
	default:
		panic(fmt.Sprintf("invalid stream item: %#v", value))
	}
}

func (e *Encoder) writeScalar(s *token.Scalar) {
	e.Colorizer.PrintScalar(e.Printer, s.ASCII())
}

func (e *Encoder) writeObject(obj *iterator.Object) {
	e.PrintBytes(openObjectBytes)
	firstItem := true
	for obj.Advance() {
		key, value := obj.CurrentKeyVal()
		if !firstItem {
			e.PrintBytes(itemSeparatorBytes)
			e.Break()
		} else {
			e.Indent()
			firstItem = false
		}
		e.writeScalar(key)
		e.PrintBytes(keyValueSeparatorBytes)
		e.writeValue(value)
	}
	if !firstItem {
		e.Dedent()
	}
	e.PrintBytes(closeObjectBytes)
}

func (e *Encoder) writeArray(arr *iterator.Array) {
	e.PrintBytes(openArrayBytes)
	firstItem := true
	for arr.Advance() {
		value := arr.CurrentValue()
		if !firstItem {
			e.PrintBytes(itemSeparatorBytes)
			e.Break()
		} else {
			e.Indent()
			firstItem = false
		}
		e.writeValue(value)
	}
	if !firstItem {
		e.Dedent()
	}
	e.PrintBytes(closeArrayBytes)
}

var (
	openObjectBytes        = []byte("{")
	closeObjectBytes       = []byte("}")
	openArrayBytes         = []byte("[")
	closeArrayBytes        = []byte("]")
	itemSeparatorBytes     = []byte(",")
	keyValueSeparatorBytes = []byte(": ")
)
