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
	"time"

	"github.com/pkg/errors"

	"github.com/NCAR/spektralwerk/scpi"
)

// ReadStatus reads the event status register. Reading clears it.
func (c *Client) ReadStatus() (Status, error) {
	v, err := c.Query(scpi.OpStatus)
	return v.Status, err
}

// ClearStatus clears the event status register and the error queue.
func (c *Client) ClearStatus() error {
	return c.Set(scpi.OpClearStatus, nil)
}

/*
DrainErrorQueue pops the instrument error queue until it reports "no error",
returning the entries oldest first. An empty queue costs exactly one query.

At most MaxErrorDrain entries are read. If the instrument is still reporting
errors at that point the entries read so far are returned together with an
error wrapping ErrDrainLimit.
*/
func (c *Client) DrainErrorQueue() ([]InstrumentError, error) {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.drain()
}

/*
Check reads the event status register and drains the error queue only when
the register shows an error bit. The entries come back as a single
InstrumentErrors error; nil means the register was clean. If the register
reports an error but the queue is empty, the StatusError is returned instead.

With status checks on (the default) every command already consumes the
register, so Check only sees faults raised since the last exchange.
*/
func (c *Client) Check() error {
	op, err := c.catalog.Lookup(scpi.OpStatus)
	if err != nil {
		return &EncodeError{Op: scpi.OpStatus, Err: err}
	}

	c.mux.Lock()
	defer c.mux.Unlock()

	start := time.Now()
	v, err := c.exchange(op, op.Query(), false, c.timeoutFor(op, 0), false)
	c.metrics.observe(op.Name, err, time.Since(start))
	if err != nil {
		return err
	}
	if !v.Status.HasError() {
		return nil
	}

	errs, err := c.drain()
	if err != nil {
		return err
	}
	if len(errs) == 0 {
		return &StatusError{Op: op.Name, Command: op.Query(), Status: v.Status}
	}
	return InstrumentErrors(errs)
}

/*drain must be called with mux held.*/
func (c *Client) drain() ([]InstrumentError, error) {
	op, err := c.catalog.Lookup(scpi.OpErrorNext)
	if err != nil {
		return nil, &EncodeError{Op: scpi.OpErrorNext, Err: err}
	}
	cmd := op.Query()
	timeout := c.timeoutFor(op, 0)

	var errs []InstrumentError
	defer func() { c.metrics.instrumentError(len(errs)) }()

	for range c.cfg.maxErrorDrain {
		start := time.Now()
		v, err := c.exchange(op, cmd, false, timeout, false)
		c.metrics.observe(op.Name, err, time.Since(start))
		if err != nil {
			return errs, err
		}
		if v.Record.NoError() {
			return errs, nil
		}
		c.log.Warn("instrument error", "code", v.Record.Code, "message", v.Record.Message)
		errs = append(errs, v.Record)
	}
	return errs, errors.Wrapf(ErrDrainLimit, "%d entries read", len(errs))
}
