package spektralwerk

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
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/NCAR/spektralwerk/scpi"
)

// Codec level types, re-exported so callers deal with a single package.
type (
	EncodeError     = scpi.EncodeError
	DecodeError     = scpi.DecodeError
	InstrumentError = scpi.InstrumentError
	Spectrum        = scpi.Spectrum
	Status          = scpi.Status
)

// Error kinds. Every error returned by a Client matches one of ErrEncode,
// ErrTransport, ErrTimeout, ErrDecode or ErrInstrument with errors.Is. A
// StatusError whose drain failed also matches the kind of that failure.
var (
	ErrEncode     = scpi.ErrEncode
	ErrDecode     = scpi.ErrDecode
	ErrInstrument = scpi.ErrInstrument
	ErrTransport  = errors.New("transport error")
	ErrTimeout    = errors.New("timeout")
)

var (
	// ErrDrainLimit is returned by DrainErrorQueue when the instrument kept
	// reporting errors for the configured number of iterations.
	ErrDrainLimit = errors.New("error queue not empty after the iteration limit")

	// ErrClosed is the cause of the TransportError returned after Close.
	ErrClosed = errors.New("client closed")

	// ErrConfigNil indicates that a nil Config was provided.
	ErrConfigNil = errors.New("config is nil")
)

/*TransportError means the byte channel failed. The session should be
considered broken; this package never reconnects.*/
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("%s: transport: %v", e.Op, e.Err) }

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

/*TimeoutError means no terminated reply arrived within Timeout. Partial holds
whatever was received before giving up. A late reply, if one ever comes, is
discarded before the next exchange.*/
type TimeoutError struct {
	Op      string
	Timeout time.Duration
	Partial string
	Err     error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s: no reply within %v", e.Op, e.Timeout)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

/*StatusError is returned when the event status register read back with a
command shows an error bit: the instrument received the command but refused
it. Queue is filled only when the client drains the error queue itself
(WithAutoDrain); otherwise call DrainErrorQueue to learn why. Drain holds the
error that cut such a drain short, if any.*/
type StatusError struct {
	Op      string
	Command string
	Status  Status
	Queue   []InstrumentError
	Drain   error
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: %q rejected, status %v", e.Op, e.Command, e.Status)
	if len(e.Queue) > 0 {
		msg += ": " + InstrumentErrors(e.Queue).Error()
	}
	if e.Drain != nil {
		msg += fmt.Sprintf(" (draining the error queue: %v)", e.Drain)
	}
	return msg
}

func (e *StatusError) Is(target error) bool { return target == ErrInstrument }

func (e *StatusError) Unwrap() []error {
	errs := InstrumentErrors(e.Queue).Unwrap()
	if e.Drain != nil {
		errs = append(errs, e.Drain)
	}
	return errs
}

/*InstrumentErrors aggregates the entries drained from the error queue into a
single error value.*/
type InstrumentErrors []InstrumentError

func (e InstrumentErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ie := range e {
		msgs[i] = ie.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e InstrumentErrors) Is(target error) bool { return target == ErrInstrument }

func (e InstrumentErrors) Unwrap() []error {
	errs := make([]error, len(e))
	for i, ie := range e {
		errs[i] = ie
	}
	return errs
}

// Kind names the kind of err: "ok", "encode", "transport", "timeout",
// "decode", "instrument" or "other".
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEncode):
		return "encode"
	case errors.Is(err, ErrInstrument):
		return "instrument"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrTransport):
		return "transport"
	case errors.Is(err, ErrDecode):
		return "decode"
	}
	return "other"
}
