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
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/NCAR/spektralwerk/logger"
	"github.com/NCAR/spektralwerk/scpi"
	"github.com/NCAR/spektralwerk/transport"
)

/*Request is one exchange for Client.Execute. A nil Arg queries Op, a non-nil
Arg sets it. A positive Timeout takes precedence over every configured one.*/
type Request struct {
	Op      string
	Arg     any
	Timeout time.Duration
}

/*
Client talks to one instrument over one transport.Session. Exchanges are
strictly sequential: each method writes one command and blocks until its reply
is decoded or its timeout elapses. A Client may be shared between goroutines,
calls are serialized.

After a timeout the session is marked stale. The next exchange first reads and
drops whatever the instrument still sends until the line has been quiet for
the settle period, so a late reply is never taken for the answer to a later
command. Resynchronizing and awaiting the reply together take at most settle
plus the exchange timeout; a line that never goes quiet fails the exchange
with a TimeoutError and the session stays stale.
*/
type Client struct {
	mux      sync.Mutex
	cfg      *Config
	sess     transport.Session
	catalog  scpi.Catalog
	timeouts *xsync.MapOf[string, time.Duration]
	log      logger.Logger
	metrics  *Metrics

	pixels int // last queried pixel count, 0 until known
	stale  bool
	closed bool
}

/*Open dials the instrument described by cfg and returns a Client owning the
session. Canceling ctx tears the session down; Close must still be called.*/
func Open(ctx context.Context, cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}
	sess, err := transport.NewArbiter(ctx, cfg.connectTimeout, cfg.Dial())
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}
	c, err := New(sess, cfg)
	if err != nil {
		sess.Close()
		return nil, err
	}
	c.log.Info("session opened")
	return c, nil
}

/*New returns a Client over an established session. A nil cfg means
DefaultConfig(). The Client takes ownership of sess and closes it on Close.*/
func New(sess transport.Session, cfg *Config) (*Client, error) {
	if sess == nil {
		return nil, errors.New("nil session")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Client{
		cfg:      cfg,
		sess:     sess,
		catalog:  cfg.catalog,
		timeouts: xsync.NewMapOf[string, time.Duration](),
		log:      cfg.logger.With("instrument", sess.String()),
		metrics:  cfg.metrics,
	}
	for op, d := range cfg.timeouts {
		if err := c.SetTimeout(op, d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

/*WithSession opens a Client, hands it to fn and closes it afterwards, whatever
fn returns. The error of fn takes precedence over the one of Close.*/
func WithSession(ctx context.Context, cfg *Config, fn func(*Client) error) (err error) {
	c, err := Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(c)
}

/*Close releases the session. Closing twice is a no-op; every other call
after Close fails with a TransportError wrapping ErrClosed.*/
func (c *Client) Close() error {
	c.mux.Lock()
	defer c.mux.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.log.Info("session closed")
	if err := c.sess.Close(); err != nil {
		return &TransportError{Op: "close", Err: err}
	}
	return nil
}

// Config returns the configuration the Client was created with.
func (c *Client) Config() *Config { return c.cfg }

// Catalog returns a copy of the operations this Client knows.
func (c *Client) Catalog() scpi.Catalog { return c.catalog.Clone() }

/*SetTimeout overrides the catalog default timeout of op for this Client.*/
func (c *Client) SetTimeout(op string, d time.Duration) error {
	if !c.catalog.Contains(op) {
		return errors.Wrapf(scpi.ErrUnknownOperation, "%q", op)
	}
	if d <= 0 {
		return errors.Errorf("timeout for %q must be positive", op)
	}
	c.timeouts.Store(op, d)
	return nil
}

// ResetTimeout drops the override of op set by SetTimeout or WithTimeout.
func (c *Client) ResetTimeout(op string) {
	c.timeouts.Delete(op)
}

/*Timeout returns the effective timeout of op: the override if one is set,
the catalog default otherwise.*/
func (c *Client) Timeout(op string) (time.Duration, error) {
	o, err := c.catalog.Lookup(op)
	if err != nil {
		return 0, err
	}
	return c.timeoutFor(o, 0), nil
}

func (c *Client) timeoutFor(op scpi.Operation, explicit time.Duration) time.Duration {
	if explicit > 0 {
		return explicit
	}
	if d, ok := c.timeouts.Load(op.Name); ok {
		return d
	}
	return op.Timeout
}

/*
Execute runs one exchange: encode, send, await the reply, check the status
register, decode. Nothing is sent when encoding fails. A set operation returns
the zero Value on success.
*/
func (c *Client) Execute(req Request) (scpi.Value, error) {
	op, err := c.catalog.Lookup(req.Op)
	if err != nil {
		err = &EncodeError{Op: req.Op, Arg: req.Arg, Err: err}
		c.metrics.observe(req.Op, err, 0)
		return scpi.Value{}, err
	}
	cmd, err := scpi.Encode(op, req.Arg)
	if err != nil {
		c.metrics.observe(op.Name, err, 0)
		return scpi.Value{}, err
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	start := time.Now()
	v, err := c.exchange(op, cmd, c.isSet(op, req.Arg), c.timeoutFor(op, req.Timeout), c.cfg.autoDrain)
	c.metrics.observe(op.Name, err, time.Since(start))
	if err != nil {
		c.log.Debug("exchange failed", "op", op.Name, "kind", Kind(err), "error", err)
	}
	return v, err
}

// Query runs op in its query form.
func (c *Client) Query(op string) (scpi.Value, error) {
	return c.Execute(Request{Op: op})
}

// Set runs op in its set form with arg.
func (c *Client) Set(op string, arg any) error {
	_, err := c.Execute(Request{Op: op, Arg: arg})
	return err
}

func (c *Client) isSet(op scpi.Operation, arg any) bool {
	return arg != nil || !op.Direction.CanGet()
}

/*exchange must be called with mux held.*/
func (c *Client) exchange(op scpi.Operation, cmd string, set bool, timeout time.Duration, autoDrain bool) (scpi.Value, error) {
	if c.closed {
		return scpi.Value{}, &TransportError{Op: op.Name, Err: ErrClosed}
	}

	var settle time.Duration
	if c.stale {
		settle = c.cfg.settle
	}
	// resync and reply share one budget
	deadline := time.Now().Add(settle + timeout)
	n, err := c.sess.Discard(settle, settle+timeout)
	if err != nil {
		if transport.IsTimeout(err) {
			return scpi.Value{}, &TimeoutError{Op: op.Name, Timeout: timeout, Err: err}
		}
		return scpi.Value{}, &TransportError{Op: op.Name, Err: err}
	}
	if n > 0 {
		c.log.Warn("discarded stale input", "op", op.Name, "bytes", n)
	}
	c.stale = false

	// reading the status register clears it, so never chain it onto itself
	status := c.cfg.statusCheck && op.Name != scpi.OpStatus
	c.log.Debug("command", "op", op.Name, "line", cmd)
	if _, err := c.sess.Write(scpi.Frame(cmd, status)); err != nil {
		c.stale = true
		return scpi.Value{}, &TransportError{Op: op.Name, Err: err}
	}

	if set && !status {
		// a bare set command is never answered
		return scpi.Value{Shape: scpi.ShapeNone}, nil
	}

	raw, err := c.sess.ReadUntil([]byte(scpi.Terminator), time.Until(deadline))
	if err != nil {
		c.stale = true
		if transport.IsTimeout(err) {
			return scpi.Value{}, &TimeoutError{Op: op.Name, Timeout: timeout, Partial: string(raw), Err: err}
		}
		return scpi.Value{}, &TransportError{Op: op.Name, Err: err}
	}
	reply := strings.TrimRight(string(raw), "\r")
	c.log.Debug("reply", "op", op.Name, "line", reply)

	payload := reply
	if status {
		var st scpi.Status
		payload, st, err = scpi.SplitStatus(op, reply)
		if err != nil {
			return scpi.Value{}, err
		}
		if st.HasError() {
			return scpi.Value{}, c.rejected(op, cmd, st, autoDrain)
		}
	}

	dec := op
	if set {
		dec.Shape = scpi.ShapeNone
	}
	v, err := scpi.Decode(dec, payload)
	if err != nil {
		return scpi.Value{}, err
	}
	return v, c.track(op, payload, v)
}

func (c *Client) rejected(op scpi.Operation, cmd string, st scpi.Status, autoDrain bool) error {
	serr := &StatusError{Op: op.Name, Command: cmd, Status: st}
	c.log.Warn("command rejected", "op", op.Name, "status", st.String())
	if !autoDrain {
		return serr
	}
	serr.Queue, serr.Drain = c.drain()
	if serr.Drain != nil {
		c.log.Error("draining error queue", "op", op.Name, "error", serr.Drain)
	}
	return serr
}

/*track keeps the cached pixel count current and holds spectra to it.*/
func (c *Client) track(op scpi.Operation, payload string, v scpi.Value) error {
	switch {
	case op.Name == scpi.OpPixelCount:
		c.pixels = int(v.Int)
	case v.Shape == scpi.ShapeSpectrum && c.pixels > 0 && v.Spectrum.Len() != c.pixels:
		return &DecodeError{
			Op:  op.Name,
			Raw: payload,
			Err: errors.Errorf("spectrum has %d pixels, instrument reports %d", v.Spectrum.Len(), c.pixels),
		}
	}
	return nil
}
