package simulator

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
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/NCAR/spektralwerk/logger"
)

// DefaultPixels is the detector size of the simulated instrument.
const DefaultPixels = 256

/*Fault tells the server how to misbehave on one request. A dropped request is
still executed, only its reply is withheld.*/
type Fault struct {
	Drop  bool
	Delay time.Duration
}

/*FaultFunc is consulted for every request line; n counts requests from 1
across all connections.*/
type FaultFunc func(n int, line string) Fault

// DropNth withholds the reply to request n.
func DropNth(n int) FaultFunc {
	return func(i int, _ string) Fault { return Fault{Drop: i == n} }
}

// DelayNth sends the reply to request n after d.
func DelayNth(n int, d time.Duration) FaultFunc {
	return func(i int, _ string) Fault {
		if i == n {
			return Fault{Delay: d}
		}
		return Fault{}
	}
}

// DropMatching withholds the reply to every request containing substr.
func DropMatching(substr string) FaultFunc {
	return func(_ int, line string) Fault { return Fault{Drop: strings.Contains(line, substr)} }
}

type config struct {
	pixels   int
	identity string
	endless  bool
	faults   FaultFunc
	log      logger.Logger
}

// Option customizes a Server.
type Option func(*config)

func WithPixels(n int) Option { return func(c *config) { c.pixels = n } }

func WithIdentity(idn string) Option { return func(c *config) { c.identity = idn } }

// WithEndlessErrors makes the error queue never report "no error".
func WithEndlessErrors() Option { return func(c *config) { c.endless = true } }

func WithFaults(f FaultFunc) Option { return func(c *config) { c.faults = f } }

func WithLogger(l logger.Logger) Option { return func(c *config) { c.log = l } }

/*Server exposes an Instrument on a TCP listener, one request line in and at
most one reply line out, like the raw SCPI socket of the real device.*/
type Server struct {
	inst     *Instrument
	ln       net.Listener
	log      logger.Logger
	faults   FaultFunc
	requests atomic.Int64
	live     atomic.Int64 // connection watchers still running

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

/*Listen starts a Server on addr, e.g. "127.0.0.1:0". It stops when ctx is
canceled or Close is called.*/
func Listen(ctx context.Context, addr string, opts ...Option) (*Server, error) {
	cfg := config{pixels: DefaultPixels, identity: DefaultIdentity, log: logger.GetLogger()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.pixels < 1 {
		return nil, errors.Errorf("pixel count %d must be positive", cfg.pixels)
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to listen on %q", addr)
	}

	inst := NewInstrument(cfg.pixels)
	inst.identity = cfg.identity
	inst.endlessQueue = cfg.endless

	sctx, cancel := context.WithCancel(ctx)
	s := &Server{
		inst:   inst,
		ln:     ln,
		log:    cfg.log.With("simulator", ln.Addr().String()),
		faults: cfg.faults,
		ctx:    sctx,
		cancel: cancel,
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-sctx.Done()
		ln.Close()
	}()
	s.wg.Add(1)
	go s.accept()

	s.log.Info("simulator listening", "pixels", cfg.pixels)
	return s, nil
}

// Addr returns the host:port the server listens on.
func (s *Server) Addr() string { return s.ln.Addr().String() }

// Dial returns the transport dial string of the server.
func (s *Server) Dial() string { return "tcp://" + s.Addr() }

// Instrument returns the simulated instrument behind the server.
func (s *Server) Instrument() *Instrument { return s.inst }

// Requests returns the number of request lines received so far.
func (s *Server) Requests() int { return int(s.requests.Load()) }

// Close stops accepting, drops every connection and waits for them to finish.
func (s *Server) Close() error {
	s.cancel()
	s.wg.Wait()
	return nil
}

// Wait blocks until the server has stopped.
func (s *Server) Wait() {
	<-s.ctx.Done()
	s.wg.Wait()
}

func (s *Server) accept() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if s.ctx.Err() == nil {
				s.log.Error("accept failed", "error", err)
			}
			return
		}
		s.log.Debug("client connected", "remote", conn.RemoteAddr().String())
		s.wg.Add(1)
		go s.serve(conn)
	}
}

func (s *Server) serve(conn net.Conn) {
	defer s.wg.Done()
	done := make(chan struct{})
	defer close(done)
	defer conn.Close()

	s.live.Add(1)
	go func() {
		defer s.live.Add(-1)
		select {
		case <-s.ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			s.log.Debug("client gone", "remote", conn.RemoteAddr().String(), "error", err)
			return
		}
		line = strings.TrimRight(line, "\r\n")
		n := int(s.requests.Add(1))

		var fault Fault
		if s.faults != nil {
			fault = s.faults(n, line)
		}

		reply, ok := s.inst.Handle(line)
		s.log.Debug("request", "n", n, "line", line, "reply", ok)
		if !ok || fault.Drop {
			continue
		}
		if fault.Delay > 0 {
			select {
			case <-time.After(fault.Delay):
			case <-s.ctx.Done():
				return
			}
		}
		if _, err := conn.Write([]byte(reply + "\n")); err != nil {
			s.log.Warn("write failed", "error", err)
			return
		}
	}
}
