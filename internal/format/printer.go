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
// PrintBytes() outputs bytes at the current position
// Reset() ends the current top-level item
//
// The methods do not return an error because writing output is assumed to
// fail only exceptionally, and then the only sensible outcome is to stop.
// Instead, implementations panic with a *PrinterError when they encounter an
// error.  A user of the Printer interface can use
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

// A Flusher is flushed by DefaultPrinter at the end of each top-level item.
type Flusher interface {
	Flush() error
}

// DefaultPrinter implements a Printer which uses an io.Writer to send output,
// using IndentSize spaces for each indent level.
// If IndentSize is negative, then NewLine() does nothing so each item is
// printed on one single line.
// If IndentSize is 0, then there is no indentation but there are still new
// lines.
type DefaultPrinter struct {
	io.Writer
	IndentSize int

	// If not nil, Flusher is flushed after each top-level item so output is
	// seen early (e.g. on a terminal).
	Flusher Flusher

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

// PrintBytes sends the gives bytes verbatim to the printer's writer.
func (p *DefaultPrinter) PrintBytes(b []byte) {
	p.write(b)
}

// Reset terminates the current item with a new line, whatever the indent
// size, and flushes the Flusher if there is one.
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
