// Package format writes decoded JSON values to a Printer, optionally with
// colors.
package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// An Encoder outputs values using the given Printer instance for formatting.
// Object keys are written in sorted order so output is deterministic.
type Encoder struct {
	Printer
	*Colorizer

	scratch bytes.Buffer
}

// Encode writes v followed by a new line.  It returns an error if the Printer
// could not perform some writing operation, a typical example being an
// attempt to write to a closed pipe.
func (e *Encoder) Encode(v any) (err error) {
	defer CatchPrinterError(&err)
	if err := e.writeValue(v); err != nil {
		return err
	}
	e.Printer.Reset()
	return nil
}

func (e *Encoder) writeValue(v any) error {
	switch x := v.(type) {
	case nil:
		e.PrintScalar(e.Printer, Null, nullBytes)
	case bool:
		if x {
			e.PrintScalar(e.Printer, Boolean, trueBytes)
		} else {
			e.PrintScalar(e.Printer, Boolean, falseBytes)
		}
	case float64:
		e.PrintScalar(e.Printer, Number, strconv.AppendFloat(nil, x, 'g', -1, 64))
	case int:
		e.PrintScalar(e.Printer, Number, strconv.AppendInt(nil, int64(x), 10))
	case int64:
		e.PrintScalar(e.Printer, Number, strconv.AppendInt(nil, x, 10))
	case uint64:
		e.PrintScalar(e.Printer, Number, strconv.AppendUint(nil, x, 10))
	case json.Number:
		e.PrintScalar(e.Printer, Number, []byte(x))
	case string:
		b, err := e.quote(x)
		if err != nil {
			return err
		}
		e.PrintScalar(e.Printer, String, b)
	case []any:
		return e.writeArray(x)
	case map[string]any:
		return e.writeObject(x)
	default:
		return fmt.Errorf("cannot encode value of type %T", v)
	}
	return nil
}

func (e *Encoder) writeArray(arr []any) error {
	e.PrintBytes(openArrayBytes)
	for i, item := range arr {
		if i > 0 {
			e.PrintBytes(itemSeparatorBytes)
			e.NewLine()
		} else {
			e.Indent()
		}
		if err := e.writeValue(item); err != nil {
			return err
		}
	}
	if len(arr) > 0 {
		e.Dedent()
	}
	e.PrintBytes(closeArrayBytes)
	return nil
}

func (e *Encoder) writeObject(obj map[string]any) error {
	e.PrintBytes(openObjectBytes)
	for i, key := range slices.Sorted(maps.Keys(obj)) {
		if i > 0 {
			e.PrintBytes(itemSeparatorBytes)
			e.NewLine()
		} else {
			e.Indent()
		}
		b, err := e.quote(key)
		if err != nil {
			return err
		}
		e.PrintKey(e.Printer, b)
		e.PrintBytes(keyValueSeparatorBytes)
		if err := e.writeValue(obj[key]); err != nil {
			return err
		}
	}
	if len(obj) > 0 {
		e.Dedent()
	}
	e.PrintBytes(closeObjectBytes)
	return nil
}

// quote returns the JSON literal for s.  The returned slice is only valid
// until the next call.
func (e *Encoder) quote(s string) ([]byte, error) {
	e.scratch.Reset()
	enc := json.NewEncoder(&e.scratch)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// Remove the new line at the end
	return bytes.TrimSuffix(e.scratch.Bytes(), newLineBytes), nil
}

var (
	nullBytes              = []byte("null")
	trueBytes              = []byte("true")
	falseBytes             = []byte("false")
	openObjectBytes        = []byte("{")
	closeObjectBytes       = []byte("}")
	openArrayBytes         = []byte("[")
	closeArrayBytes        = []byte("]")
	itemSeparatorBytes     = []byte(",")
	keyValueSeparatorBytes = []byte(": ")
)
