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
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DefaultPollInterval is how long a single Read waits for input.
	DefaultPollInterval = 2 * time.Millisecond
	// DefaultPort is the SCPI raw socket port, used when a socket link names none.
	DefaultPort = 5025
	// DefaultBaud is used when a serial link names no baud rate.
	DefaultBaud = 115200
)

/*IDoIO is a byte stream to an instrument. It can say what it is connected to
(fmt.Stringer), read and write bytes (io.ReadWriter), and be closed and
reopened at will.

Reads return after at most one poll interval even when nothing arrived, either
with (0, nil) or with an error for which IsTimeout is true. The Arbiter relies
on this to enforce per-call timeouts.

Every error returned can be inspected as a net.Error.*/
type IDoIO interface {
	fmt.Stringer
	io.ReadWriter
	io.Closer
	Open() error
}

/*Link is a parsed dial string.

  tcp://10.0.0.5            -> tcp, 10.0.0.5:5025
  udp6://[fe80::1]:5025     -> udp6, [fe80::1]:5025
  serial:///dev/ttyUSB0     -> serial, /dev/ttyUSB0 at 115200 baud
  rs232://COM3:9600         -> serial, COM3 at 9600 baud
*/
type Link struct {
	Scheme  string // tcp, tcp4, tcp6, udp, udp4, udp6 or serial
	Address string // host:port of a socket, device of a serial port
	Baud    int    // serial only

	Timeout time.Duration // bounds connecting and every write, zero means unbounded
	Poll    time.Duration // DefaultPollInterval when zero
}

var linkRe = regexp.MustCompile(`^([a-z0-9]+)://(.+)$`)

// ParseLink turns a dial string into a Link. Nothing is dialed.
func ParseLink(dial string) (Link, error) {
	m := linkRe.FindStringSubmatch(dial)
	if m == nil {
		return Link{}, newErr(false, false, errors.Errorf("dial string %q is not scheme://address", dial))
	}
	l := Link{Scheme: m[1]}
	switch l.Scheme {
	case "tcp", "tcp4", "tcp6", "udp", "udp4", "udp6":
		host, port, err := net.SplitHostPort(m[2])
		if err != nil {
			host, port = strings.Trim(m[2], "[]"), ""
		}
		if port == "" {
			port = strconv.Itoa(DefaultPort)
		}
		l.Address = net.JoinHostPort(host, port)
	case "serial", "rs232":
		l.Scheme, l.Address, l.Baud = "serial", m[2], DefaultBaud
		if i := strings.LastIndexByte(m[2], ':'); i >= 0 {
			baud, err := strconv.Atoi(m[2][i+1:])
			if err != nil || baud <= 0 {
				return Link{}, newErr(false, false, errors.Errorf("bad baud rate in %q", dial))
			}
			l.Address, l.Baud = m[2][:i], baud
		}
	default:
		return Link{}, newErr(false, false, errors.Errorf("no known way to reach %q", dial))
	}
	return l, nil
}

// Serial reports whether l names a serial port.
func (l Link) Serial() bool { return l.Scheme == "serial" }

// String returns l as a dial string.
func (l Link) String() string {
	if l.Serial() {
		return fmt.Sprintf("serial://%s:%d", l.Address, l.Baud)
	}
	return l.Scheme + "://" + l.Address
}

func (l Link) poll() time.Duration {
	if l.Poll > 0 {
		return l.Poll
	}
	return DefaultPollInterval
}

/*Connect opens the IDoIO l describes. On failure the returned IDoIO, if not
nil, can be reopened later.*/
func Connect(ctx context.Context, l Link) (IDoIO, error) {
	if l.Serial() {
		return NewSerialClient(ctx, l)
	}
	return NewNetClient(ctx, l)
}

/*NewIDoIO parses dial and connects to it. The timeout bounds the connection
process and writes; reads are polled and bounded by the Arbiter instead. An
unusable dial string yields an InvalidIO along with the error.*/
func NewIDoIO(ctx context.Context, timeout time.Duration, dial string) (IDoIO, error) {
	l, err := ParseLink(dial)
	if err != nil {
		return InvalidIO(err.Error()), err
	}
	l.Timeout = timeout
	return Connect(ctx, l)
}
