package format

import (
	"fmt"
	"io"
)

// The Printer interface can be used to output some structured data.
//
// Indent() starts a new line at an increased indentation level
// Dedent() starts a new line at a decreased indentation level
// NewLine() start a new line at the current indentation level
// Break() separates two items of a collection
// PrintBytes() outputs bytes at the current position
// Reset() ends a top-level value
//
// The methods do not return an error because for this program it's assumed
// to be an exceptional case that outputting results in an error and the only
// sensible outcome is to stop the program.
// Instead, implementations are expected to panic with a *PrinterError when
// they encounter and error.  A user of the Printer interface can use
//
//	func printingFunction(p Printer) (err error) {
//	    defer CatchPrinterError(&err)
//	    return doSomePrinting(printer)
//	}
//
// to capture such errors.
type Printer interface {
	Indent()
	Dedent()
	NewLine()
	Break()
	PrintBytes([]byte)
	Reset()
}

// CatchPrinterError can be used to capture panics caused by a Printer because
// of an error encountered while attempting to send output.  See the Printer
// interface documentation for details.
func CatchPrinterError(err *error) {
	if r := recover(); r != nil {
		perr, ok := r.(*PrinterError)
		if ok {
			*err = perr
		} else {
			panic(r)
		}
	}
}

// A PrinterError contains an error that occurred while a Printer implementation
// was sending some output.
type PrinterError struct {
	Err error
}

func (e *PrinterError) Error() string {
	return fmt.Sprintf("printer error: %s", e.Err)
}

func (e *PrinterError) Unwrap() error {
	return e.Err
}

// A Flusher is something that buffers output, e.g. a *bufio.Writer.
type Flusher interface {
	Flush() error
}

// DefaultPrinter implements a Printer which uses an io.Writer to send output,
// using IndentSize spaces for each indent level.
//
// If IndentSize is negative, then all the output of a value is on one single
// line: NewLine(), Indent() and Dedent() do nothing and Break() outputs a
// single space.
// If IndentSize is 0, then there is no indentation but there are still new
// lines.
//
// Reset() terminates the current value with a new line and flushes the
// Flusher if there is one, so each value is visible as soon as it is
// printed.
type DefaultPrinter struct {
	io.Writer
	IndentSize  int
	Flusher     Flusher
	indentLevel int
}

var _ Printer = &DefaultPrinter{}

// NewLine outputs '\n' followed by a number of spaces corresponding to the
// current indentation level.
func (p *DefaultPrinter) NewLine() {
	if p.IndentSize < 0 {
		return
	}
	p.write(newLineBytes)
	for i := p.IndentSize * p.indentLevel; i > 0; i-- {
		p.write(spaceBytes)
	}
}

// Indent has the effect of incrementing the indentation level and calls NewLine()
func (p *DefaultPrinter) Indent() {
	p.indentLevel++
	p.NewLine()
}

// Dedent has the effect of decrementing the indentation level and calls NewLine()
func (p *DefaultPrinter) Dedent() {
	p.indentLevel--
	p.NewLine()
}

// Break starts a new line, or outputs a space in single line mode.
func (p *DefaultPrinter) Break() {
	if p.IndentSize < 0 {
		p.write(spaceBytes)
		return
	}
	p.NewLine()
}

// PrintBytes sends the gives bytes verbatim to the printer's writer.
func (p *DefaultPrinter) PrintBytes(b []byte) {
	p.write(b)
}

// Reset ends the current value.
func (p *DefaultPrinter) Reset() {
	p.indentLevel = 0
	p.write(newLineBytes)
	if p.Flusher != nil {
		if err := p.Flusher.Flush(); err != nil {
			panic(wrapError(err))
		}
	}
}

func (p *DefaultPrinter) write(b []byte) {
	if _, err := p.Write(b); err != nil {
		panic(wrapError(err))
	}
}

func wrapError(err error) *PrinterError {
	return &PrinterError{Err: err}
}

var (
	newLineBytes = []byte{'\n'}
	spaceBytes   = []byte{' '}
)
