package transport

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
	"net"

	"github.com/pkg/errors"
)

var (
	// ErrTimeout is returned by ReadUntil when no terminated line arrived before the deadline.
	ErrTimeout = errors.New("timed out waiting for line terminator")

	// ErrShortWrite is returned when the underlying IDoIO accepted fewer bytes than offered.
	ErrShortWrite = errors.New("short write")

	// ErrNotOpen is returned by an IDoIO used while it has no connection.
	ErrNotOpen = errors.New("connection is not open")
)

/*ioErr conforms to net.Error so every error leaving an IDoIO can be inspected
the same way regardless of the transport underneath*/
type ioErr struct {
	timeout   bool
	temporary bool
	error
}

var _ net.Error = ioErr{}

func (e ioErr) Timeout() bool   { return e.timeout }
func (e ioErr) Temporary() bool { return e.temporary }
func (e ioErr) Unwrap() error   { return e.error }

/*newErr wraps err as a net.Error. A nil err stays nil so callers can hand it
the result of a Close() without checking first.*/
func newErr(timeout, temporary bool, err error) error {
	if err == nil {
		return nil
	}
	return ioErr{timeout: timeout, temporary: temporary, error: err}
}

/*IsTimeout reports whether err is a timeout: either a net.Error whose Timeout()
is true, or ErrTimeout somewhere in its chain. Passing a nil error panics.*/
func IsTimeout(err error) bool {
	if err == nil {
		panic("transport: IsTimeout called with a nil error")
	}
	if errors.Is(err, ErrTimeout) {
		return true
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Timeout()
	}
	return false
}

/*IsTemporary reports whether err is a net.Error marked temporary. Passing a
nil error panics.*/
func IsTemporary(err error) bool {
	if err == nil {
		panic("transport: IsTemporary called with a nil error")
	}
	var ne net.Error
	if errors.As(err, &ne) {
		return ne.Temporary() //nolint:staticcheck
	}
	return false
}

/*InvalidIO is the IDoIO handed back when a dial string cannot be turned into
anything useful. Every call fails with the reason it was created with.*/
type InvalidIO string

var _ IDoIO = InvalidIO("")

func (i InvalidIO) String() string { return fmt.Sprintf("invalid IO: %s", string(i)) }

func (i InvalidIO) Open() error { return newErr(false, false, errors.New(string(i))) }

func (i InvalidIO) Close() error { return nil }

func (i InvalidIO) Read([]byte) (int, error) { return 0, newErr(false, false, errors.New(string(i))) }

func (i InvalidIO) Write([]byte) (int, error) { return 0, newErr(false, false, errors.New(string(i))) }
