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
	"fmt"

	"github.com/pkg/errors"
)

// Error kinds. Every concrete error of this package matches one of these with errors.Is.
var (
	ErrEncode     = errors.New("encode error")
	ErrDecode     = errors.New("decode error")
	ErrInstrument = errors.New("instrument error")
)

/*EncodeError is returned when a caller hands a set operation an argument of
the wrong type or shape. Nothing was sent to the instrument.*/
type EncodeError struct {
	Op  string
	Arg any
	Err error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %q with %T(%v): %v", e.Op, e.Arg, e.Arg, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

func (e *EncodeError) Is(target error) bool { return target == ErrEncode }

/*DecodeError is returned when a reply does not have the shape its operation
declares. Raw is the reply exactly as received.*/
type DecodeError struct {
	Op  string
	Raw string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %q reply %q: %v", e.Op, e.Raw, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }

/*InstrumentError is one entry of the instrument's error queue. Code 0 is the
"no error" sentinel.*/
type InstrumentError struct {
	Code    int
	Message string
}

func (e InstrumentError) Error() string {
	return fmt.Sprintf("instrument error %d: %s", e.Code, e.Message)
}

func (e InstrumentError) Is(target error) bool { return target == ErrInstrument }

// NoError reports whether e is the empty-queue sentinel.
func (e InstrumentError) NoError() bool { return e.Code == 0 }
