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
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
)

/*
Session is the line-oriented view of a byte stream that instrument clients are
written against: write a command, then block until a terminated reply arrives
or the timeout elapses. Implementations must be safe to call from one logical
caller at a time; the Arbiter additionally serializes concurrent callers.
*/
type Session interface {
	fmt.Stringer
	io.Writer
	io.Closer

	/*ReadUntil blocks until term has been received, returning everything before
	it (term excluded). Bytes following term are kept for the next call. If the
	timeout elapses first, whatever partial line has been received is returned
	together with an error for which IsTimeout is true.*/
	ReadUntil(term []byte, timeout time.Duration) ([]byte, error)

	/*Discard drops every buffered byte and keeps reading (and dropping) until
	the line has been quiet for settle. It returns the number of bytes dropped.
	If the line is still busy after limit, it gives up with an error for which
	IsTimeout is true.*/
	Discard(settle, limit time.Duration) (int, error)
}

var _ Session = &Arbiter{}

/*
Arbiter is a wrapper over an IDoIO that serializes access under a mutex and
frames the incoming byte stream into terminated lines. Any errors that are not
ErrTimeout are errors coming from the underlying layers and are to be dealt
with by the caller; the Arbiter never reconnects on its own.
*/
type Arbiter struct {
	ctx     context.Context
	cancel  context.CancelFunc
	mux     sync.Mutex //only one reader and writer: me
	idotoo  IDoIO
	pending bytes.Buffer
	chunk   []byte
}

/*NewArbiter returns an opened Arbiter from the passed dial string, ctx, and timeout.
dial will need to match a known dial format, timeout will be used during the connection
process, and the ctx will be used to ensure the operation will cease if the ctx is
stopped.*/
func NewArbiter(ctx context.Context, timeout time.Duration, dial string) (*Arbiter, error) {
	idotoo, err := NewIDoIO(ctx, timeout, dial)
	if err != nil {
		if idotoo != nil {
			idotoo.Close()
		}
		return nil, errors.Wrapf(err, "unable to dial %q", dial)
	}
	arb, _ := Arbitrate(ctx, idotoo)
	return arb, nil
}

/*Arbitrate returns an Arbiter over an already opened IDoIO and the
context.CancelFunc that tears it down.*/
func Arbitrate(ctx context.Context, idoio IDoIO) (*Arbiter, context.CancelFunc) {
	arbctx, cancelfunc := context.WithCancel(ctx)
	return &Arbiter{ctx: arbctx, idotoo: idoio, cancel: cancelfunc, chunk: make([]byte, 4096)}, cancelfunc
}

/*String conforms to fmt.Stringer*/
func (a *Arbiter) String() string {
	return fmt.Sprintf("Arbiter over %s", a.idotoo.String())
}

/*Open reopens the underlying IDoIO and drops any partially received line.*/
func (a *Arbiter) Open() error {
	a.mux.Lock()
	defer a.mux.Unlock()
	a.pending.Reset()
	return a.idotoo.Open()
}

/*Close cancels the Arbiter's context and closes the underlying IDoIO.*/
func (a *Arbiter) Close() error {
	a.mux.Lock()
	defer a.mux.Unlock()
	a.cancel()
	a.pending.Reset()
	return a.idotoo.Close()
}

/*Write conforms to io.Writer. A write that is cut short is reported as
ErrShortWrite rather than silently retried.*/
func (a *Arbiter) Write(b []byte) (int, error) {
	a.mux.Lock()
	defer a.mux.Unlock()
	if err := a.ctx.Err(); err != nil {
		return 0, errors.Wrap(err, "arbiter's context chain has collapsed")
	}
	n, err := a.idotoo.Write(b)
	if err != nil {
		return n, errors.Wrapf(err, "unable to write %d bytes to %s", len(b), a.idotoo)
	}
	if n != len(b) {
		return n, errors.Wrapf(ErrShortWrite, "wrote %d of %d bytes to %s", n, len(b), a.idotoo)
	}
	return n, nil
}

/*ReadUntil conforms to Session. The underlying IDoIO is polled, so the call
returns no later than timeout plus one poll interval.*/
func (a *Arbiter) ReadUntil(term []byte, timeout time.Duration) ([]byte, error) {
	a.mux.Lock()
	defer a.mux.Unlock()
	if len(term) == 0 {
		return nil, errors.New("empty line terminator")
	}
	deadline := time.Now().Add(timeout)

	for {
		if i := bytes.Index(a.pending.Bytes(), term); i >= 0 {
			line := make([]byte, i)
			copy(line, a.pending.Bytes()[:i])
			a.pending.Next(i + len(term))
			return line, nil
		}

		select {
		case <-a.ctx.Done(): //context chain has collapsed
			return a.partial(), errors.Wrap(a.ctx.Err(), "arbiter's context chain has collapsed")
		default:
		}

		if !time.Now().Before(deadline) {
			return a.partial(), errors.Wrapf(ErrTimeout, "no reply from %s within %v", a.idotoo, timeout)
		}

		n, err := a.idotoo.Read(a.chunk)
		a.pending.Write(a.chunk[:n])
		switch {
		case err != nil && !IsTimeout(err):
			return a.partial(), errors.Wrapf(err, "unable to read from %s", a.idotoo)
		case n == 0 && err == nil:
			time.Sleep(time.Millisecond)
		}
	}
}

/*Discard conforms to Session.*/
func (a *Arbiter) Discard(settle, limit time.Duration) (int, error) {
	a.mux.Lock()
	defer a.mux.Unlock()
	dropped := a.pending.Len()
	a.pending.Reset()

	quiet := time.Now()
	deadline := quiet.Add(limit)
	for time.Since(quiet) < settle {
		if err := a.ctx.Err(); err != nil {
			return dropped, errors.Wrap(err, "arbiter's context chain has collapsed")
		}
		if !time.Now().Before(deadline) {
			return dropped, errors.Wrapf(ErrTimeout, "%s still busy after %v, %d bytes dropped", a.idotoo, limit, dropped)
		}
		n, err := a.idotoo.Read(a.chunk)
		if n > 0 {
			dropped += n
			quiet = time.Now()
		}
		switch {
		case err != nil && !IsTimeout(err):
			return dropped, errors.Wrapf(err, "unable to read from %s", a.idotoo)
		case n == 0 && err == nil:
			time.Sleep(time.Millisecond)
		}
	}
	return dropped, nil
}

func (a *Arbiter) partial() []byte {
	return append([]byte(nil), a.pending.Bytes()...)
}
