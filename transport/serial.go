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
	"context"
	"fmt"
	"io"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

var _ IDoIO = &SerialClient{}

/*SerialClient is an IDoIO over a serial port in 8N1 mode, the other way the
spectrometer can be wired up.

Opening the port throws away whatever the instrument sent before, so the
first reply read belongs to the first command written. Write returns once
the command has left the UART, which makes reply timeouts start when the
instrument actually has the command.*/
type SerialClient struct {
	link   Link
	mode   *serial.Mode
	ctx    context.Context
	cancel context.CancelFunc
	port   serial.Port

	// open is serial.Open outside of tests
	open func(string, *serial.Mode) (serial.Port, error)
}

/*NewSerialClient opens the serial port l describes. The client is returned
even when opening fails, so that Open can be retried.*/
func NewSerialClient(ctx context.Context, l Link) (*SerialClient, error) {
	sc := newSerialClient(ctx, l, serial.Open)
	if !l.Serial() {
		return sc, newErr(false, false, errors.Errorf("%s is not a serial port", l))
	}
	return sc, sc.Open()
}

func newSerialClient(ctx context.Context, l Link, open func(string, *serial.Mode) (serial.Port, error)) *SerialClient {
	sctx, cancel := context.WithCancel(ctx)
	return &SerialClient{
		link: l,
		mode: &serial.Mode{
			BaudRate: l.Baud,
			DataBits: 8,
			Parity:   serial.NoParity,
			StopBits: serial.OneStopBit,
		},
		ctx:    sctx,
		cancel: cancel,
		open:   open,
	}
}

func (sc *SerialClient) String() string {
	return fmt.Sprintf("instrument on %s at %d baud 8N1", sc.link.Address, sc.mode.BaudRate)
}

/*Open closes the port, if open, and opens it again.*/
func (sc *SerialClient) Open() error {
	if err := sc.ctx.Err(); err != nil {
		return newErr(false, false, err)
	}
	if sc.port != nil {
		sc.port.Close()
		sc.port = nil
	}

	p, err := sc.open(sc.link.Address, sc.mode)
	if err != nil {
		return newErr(false, false, errors.Wrapf(err, "unable to open serial device %q", sc.link.Address))
	}
	if err := p.SetReadTimeout(sc.link.poll()); err != nil {
		p.Close()
		return newErr(false, false, errors.Wrapf(err, "unable to set read timeout on %q", sc.link.Address))
	}
	if err := p.ResetInputBuffer(); err != nil {
		p.Close()
		return newErr(false, false, errors.Wrapf(err, "unable to flush %q", sc.link.Address))
	}
	sc.port = p
	return nil
}

// usable closes the client once its context is gone.
func (sc *SerialClient) usable() error {
	if err := sc.ctx.Err(); err != nil {
		sc.Close()
		return newErr(false, false, err)
	}
	if sc.port == nil {
		return newErr(false, false, ErrNotOpen)
	}
	return nil
}

/*Read waits at most one poll interval for input. A poll that expires is
(0, nil) from the port, or io.EOF on some platforms, which is reported as a
timeout.*/
func (sc *SerialClient) Read(b []byte) (int, error) {
	if err := sc.usable(); err != nil {
		return 0, err
	}
	n, err := sc.port.Read(b)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		return n, newErr(true, true, err)
	default:
		return n, newErr(false, false, err)
	}
}

func (sc *SerialClient) Write(b []byte) (int, error) {
	if err := sc.usable(); err != nil {
		return 0, err
	}
	n, err := sc.port.Write(b)
	if err != nil {
		return n, newErr(false, false, err)
	}
	if err := sc.port.Drain(); err != nil {
		return n, newErr(false, false, errors.Wrap(err, "unable to drain the output buffer"))
	}
	return n, nil
}

/*Close releases the port. The client cannot be reopened afterwards.*/
func (sc *SerialClient) Close() error {
	sc.cancel()
	defer func() { sc.port = nil }()
	if sc.port != nil {
		return newErr(false, false, sc.port.Close())
	}
	return nil
}
