package scpi

/*
MIT License

Copyright (c) 2015-2026 University Corporation for Atmospheric Research

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Wire grammar.
const (
	Terminator   = "\n"
	Separator    = ","
	StatusSuffix = ";*ESR?"
)

// Spectrum is one acquisition: the instrument's timestamp and one intensity per pixel.
type Spectrum struct {
	Timestamp time.Duration
	Data      []float64
}

// Len returns the number of pixels in the spectrum.
func (s Spectrum) Len() int { return len(s.Data) }

/*Value is a decoded reply. Only the field matching Shape is meaningful.*/
type Value struct {
	Shape    Shape
	Int      int64
	Float    float64
	Bool     bool
	Floats   []float64
	Text     string
	Status   Status
	Record   InstrumentError
	Spectrum Spectrum
}

/*Encode renders op with arg into a command, without terminator. A nil arg
renders the query form; a non-nil arg renders the set form and must match
op.Arg. Set-only operations without an argument (such as *CLS) render the bare
header. Only the type is checked, ranges are left to the instrument.*/
func Encode(op Operation, arg any) (string, error) {
	fail := func(format string, v ...any) (string, error) {
		return "", &EncodeError{Op: op.Name, Arg: arg, Err: errors.Errorf(format, v...)}
	}

	if arg == nil {
		switch {
		case op.Direction == Set && op.Arg == KindNone:
			return op.Mnemonic, nil
		case op.Direction.CanGet():
			return op.Query(), nil
		default:
			return fail("set-only operation needs a %v argument", op.Arg)
		}
	}

	if !op.Direction.CanSet() || op.Arg == KindNone {
		return fail("operation takes no argument")
	}
	s, ok := formatArg(op.Arg, arg)
	if !ok {
		return fail("want a %v argument", op.Arg)
	}
	return op.Mnemonic + " " + s, nil
}

/*Frame turns an encoded command into the bytes written to the wire. With
status set, the event status register query is chained onto the command so
the reply carries it after the last ';'.*/
func Frame(cmd string, status bool) []byte {
	if status {
		return []byte(cmd + StatusSuffix + Terminator)
	}
	return []byte(cmd + Terminator)
}

/*SplitStatus separates a reply to a command framed with status into the
payload and the event status register.*/
func SplitStatus(op Operation, raw string) (string, Status, error) {
	payload, esr := "", raw
	if i := strings.LastIndexByte(raw, ';'); i >= 0 {
		payload, esr = raw[:i], raw[i+1:]
	}
	st, err := parseStatus(strings.TrimSpace(esr))
	if err != nil {
		return payload, 0, &DecodeError{Op: op.Name, Raw: raw, Err: errors.Wrap(err, "event status register")}
	}
	return payload, st, nil
}

func formatArg(k Kind, arg any) (string, bool) {
	switch k {
	case KindInt:
		switch v := arg.(type) {
		case int:
			return strconv.FormatInt(int64(v), 10), true
		case int8:
			return strconv.FormatInt(int64(v), 10), true
		case int16:
			return strconv.FormatInt(int64(v), 10), true
		case int32:
			return strconv.FormatInt(int64(v), 10), true
		case int64:
			return strconv.FormatInt(v, 10), true
		case uint:
			return strconv.FormatUint(uint64(v), 10), true
		case uint8:
			return strconv.FormatUint(uint64(v), 10), true
		case uint16:
			return strconv.FormatUint(uint64(v), 10), true
		case uint32:
			return strconv.FormatUint(uint64(v), 10), true
		case uint64:
			return strconv.FormatUint(v, 10), true
		}
	case KindFloat:
		switch v := arg.(type) {
		case float64:
			return formatFloat(v)
		case float32:
			return formatFloat(float64(v))
		case int:
			return strconv.Itoa(v), true
		case int64:
			return strconv.FormatInt(v, 10), true
		}
	case KindBool:
		if v, ok := arg.(bool); ok {
			if v {
				return "1", true
			}
			return "0", true
		}
	case KindFloats:
		if v, ok := arg.([]float64); ok {
			parts := make([]string, len(v))
			for i, f := range v {
				s, ok := formatFloat(f)
				if !ok {
					return "", false
				}
				parts[i] = s
			}
			return strings.Join(parts, Separator), true
		}
	}
	return "", false
}

// formatFloat uses the shortest representation that parses back to f.
func formatFloat(f float64) (string, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", false
	}
	return strconv.FormatFloat(f, 'g', -1, 64), true
}

/*Decode parses a reply payload according to op.Shape. The returned Value
always has op.Shape or the call fails with a *DecodeError carrying raw.*/
func Decode(op Operation, raw string) (Value, error) {
	v := Value{Shape: op.Shape}
	payload := strings.TrimSpace(raw)
	var err error

	switch op.Shape {
	case ShapeNone:
		if payload != "" {
			err = errors.New("unexpected reply to a command without one")
		}
	case ShapeInt:
		var tok string
		if tok, err = leadingToken(payload); err == nil {
			v.Int, err = strconv.ParseInt(tok, 10, 64)
		}
	case ShapeFloat:
		var tok string
		if tok, err = leadingToken(payload); err == nil {
			v.Float, err = strconv.ParseFloat(tok, 64)
		}
	case ShapeBool:
		v.Bool, err = parseBool(payload)
	case ShapeFloats:
		v.Floats, err = parseFloats(payload)
	case ShapeSpectrum:
		v.Spectrum, err = parseSpectrum(payload)
	case ShapeText:
		v.Text = payload
	case ShapeStatus:
		var tok string
		if tok, err = leadingToken(payload); err == nil {
			v.Status, err = parseStatus(tok)
		}
	case ShapeErrorRecord:
		v.Record, err = parseErrorRecord(payload)
	default:
		err = errors.Errorf("no decoder for %v", op.Shape)
	}

	if err != nil {
		return Value{}, &DecodeError{Op: op.Name, Raw: raw, Err: err}
	}
	return v, nil
}

/*leadingToken returns the first whitespace separated token. Anything after it,
such as a unit suffix, is ignored.*/
func leadingToken(s string) (string, error) {
	f := strings.Fields(s)
	if len(f) == 0 {
		return "", errors.New("empty reply")
	}
	return f[0], nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToUpper(s) {
	case "1", "ON":
		return true, nil
	case "0", "OFF":
		return false, nil
	}
	return false, errors.Errorf("%q is not a boolean", s)
}

// parseFloats decodes a separated array. An empty payload is an empty array.
func parseFloats(s string) ([]float64, error) {
	if s == "" {
		return []float64{}, nil
	}
	fields := strings.Split(s, Separator)
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "field %d", i)
		}
		out[i] = v
	}
	return out, nil
}

// parseSpectrum decodes "<timestamp µs>,<v0>,<v1>,...".
func parseSpectrum(s string) (Spectrum, error) {
	fields, err := parseFloats(s)
	if err != nil {
		return Spectrum{}, err
	}
	if len(fields) == 0 {
		return Spectrum{}, errors.New("spectrum without timestamp")
	}
	return Spectrum{
		Timestamp: time.Duration(fields[0] * float64(time.Microsecond)),
		Data:      fields[1:],
	}, nil
}

func parseStatus(s string) (Status, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "+"), 10, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "status register %q", s)
	}
	return Status(n), nil
}

// parseErrorRecord decodes `<code>,"<message>"`, with "" as an escaped quote.
func parseErrorRecord(s string) (InstrumentError, error) {
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return InstrumentError{}, errors.New("error record without separator")
	}
	code, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(s[:i]), "+"))
	if err != nil {
		return InstrumentError{}, errors.Wrap(err, "error code")
	}
	msg := strings.TrimSpace(s[i+1:])
	if len(msg) < 2 || msg[0] != '"' || msg[len(msg)-1] != '"' {
		return InstrumentError{}, errors.Errorf("error message %q is not quoted", msg)
	}
	return InstrumentError{
		Code:    code,
		Message: strings.ReplaceAll(msg[1:len(msg)-1], `""`, `"`),
	}, nil
}
