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
	"errors"
	"net"
	"testing"

	pkgerrors "github.com/pkg/errors"
)

func TestNetError(t *testing.T) {
	e, ok := newErr(true, true, errors.New("wwoohoo")).(net.Error)
	if !ok {
		t.Fatal("newErr should return a net.Error")
	}
	_ = e.Error()
	_ = e.Timeout()
	_ = e.Temporary()
	if !IsTimeout(e) || !IsTemporary(e) {
		t.Error("Expected e to be a timeout and temporary")
	}

	ee := errors.New("Boring error")
	if IsTimeout(ee) || IsTemporary(ee) {
		t.Error("Expected e to be neither a timeout nor temporary")
	}

	if newErr(true, true, nil) != nil {
		t.Error("Wrapping a nil error should stay nil")
	}

	//catch panics
	f := func(p func(error) bool) {
		var e interface{}
		defer func() {
			e = recover()
			if e == nil {
				t.Error("expected a panic on sending a nil error")
			}
		}()
		p(nil)
	}

	f(IsTimeout)
	f(IsTemporary)
}

func TestIsTimeout_Wrapped(t *testing.T) {
	wrapped := pkgerrors.Wrap(ErrTimeout, "no reply")
	if !IsTimeout(wrapped) {
		t.Error("A wrapped ErrTimeout should be a timeout")
	}
	if !IsTimeout(pkgerrors.Wrap(newErr(true, false, errors.New("deadline")), "read")) {
		t.Error("A wrapped net.Error timeout should be a timeout")
	}
}

func TestInvalidIO(t *testing.T) {
	i := InvalidIO("nope")
	if i.String() == "" {
		t.Error("Expected a description")
	}
	if i.Open() == nil {
		t.Error("Open on an InvalidIO should fail")
	}
	if n, e := i.Read(make([]byte, 1)); n != 0 || e == nil {
		t.Error("Read on an InvalidIO should fail")
	}
	if n, e := i.Write([]byte("x")); n != 0 || e == nil {
		t.Error("Write on an InvalidIO should fail")
	}
	if i.Close() != nil {
		t.Error("Close on an InvalidIO is a no-op")
	}
}
