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
	"net"
	"time"

	"github.com/pkg/errors"
)

var _ IDoIO = &NetClient{}

/*NetClient is an IDoIO over a tcp or udp socket, typically the SCPI raw
socket of an instrument.

The link Timeout is used as the dial timeout and as the write deadline. Reads
always carry a deadline of one poll interval so that a Read with nothing
pending returns a timeout error instead of blocking:

  nc, _ := NewNetClient(ctx, Link{Scheme: "tcp", Address: "10.0.0.5:5025"})
  ...
  n, e := nc.Read(b)
  if e != nil && IsTimeout(e) {
    // nothing arrived during the poll interval
  }
*/
type NetClient struct {
	link   Link
	ctx    context.Context
	cancel context.CancelFunc
	conn   net.Conn
}

/*NewNetClient connects to the socket l describes. The client is returned even
when connecting fails, so that Open can be retried.*/
func NewNetClient(ctx context.Context, l Link) (*NetClient, error) {
	nctx, cancel := context.WithCancel(ctx)
	nc := &NetClient{link: l, ctx: nctx, cancel: cancel}
	if l.Serial() {
		return nc, newErr(false, false, errors.Errorf("%s is not a socket", l))
	}
	return nc, nc.Open()
}

func (nc *NetClient) String() string {
	return fmt.Sprintf("%s instrument at %s", nc.link.Scheme, nc.link.Address)
}

/*Open drops the current connection, if any, and dials again.*/
func (nc *NetClient) Open() (err error) {
	if err := nc.ctx.Err(); err != nil {
		return newErr(false, false, err)
	}
	if nc.conn != nil {
		nc.conn.Close()
		nc.conn = nil
	}
	dialer := net.Dialer{Timeout: nc.link.Timeout, KeepAlive: time.Second}
	//errors from DialContext implement net.Error
	nc.conn, err = dialer.DialContext(nc.ctx, nc.link.Scheme, nc.link.Address)
	return err
}

// usable closes the client once its context is gone.
func (nc *NetClient) usable() error {
	if err := nc.ctx.Err(); err != nil {
		nc.Close()
		return newErr(false, false, err)
	}
	if nc.conn == nil {
		return newErr(false, false, ErrNotOpen)
	}
	return nil
}

/*Read waits at most one poll interval for input.*/
func (nc *NetClient) Read(b []byte) (int, error) {
	if err := nc.usable(); err != nil {
		return 0, err
	}
	nc.conn.SetReadDeadline(time.Now().Add(nc.link.poll()))
	return nc.conn.Read(b)
}

func (nc *NetClient) Write(b []byte) (int, error) {
	if err := nc.usable(); err != nil {
		return 0, err
	}
	if nc.link.Timeout > 0 {
		nc.conn.SetWriteDeadline(time.Now().Add(nc.link.Timeout))
	}
	return nc.conn.Write(b)
}

/*Close releases the socket. The client cannot be reopened afterwards.*/
func (nc *NetClient) Close() error {
	nc.cancel()
	defer func() { nc.conn = nil }()
	if nc.conn != nil {
		return nc.conn.Close()
	}
	return nil
}
