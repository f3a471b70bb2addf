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
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/NCAR/spektralwerk/internal/simulator"
	"github.com/NCAR/spektralwerk/transport"
)

// memSession is an in-memory transport.Session answering through respond.
type memSession struct {
	mu       sync.Mutex
	respond  func(line string) (string, bool)
	written  []string
	pending  []string
	discards []time.Duration
	closed   bool
}

var _ transport.Session = &memSession{}

// newMemSession answers like the simulated instrument.
func newMemSession(pixels int) (*memSession, *simulator.Instrument) {
	inst := simulator.NewInstrument(pixels)
	return &memSession{respond: inst.Handle}, inst
}

// scripted answers every request with the next of replies; "" withholds the reply.
func scripted(replies ...string) *memSession {
	return &memSession{respond: func(string) (string, bool) {
		if len(replies) == 0 {
			return "", false
		}
		r := replies[0]
		replies = replies[1:]
		return r, r != ""
	}}
}

func (m *memSession) String() string { return "memSession" }

func (m *memSession) Write(b []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, errors.New("closed")
	}
	line := strings.TrimSuffix(string(b), "\n")
	m.written = append(m.written, line)
	if r, ok := m.respond(line); ok {
		m.pending = append(m.pending, r)
	}
	return len(b), nil
}

func (m *memSession) ReadUntil(_ []byte, timeout time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil, errors.Wrapf(transport.ErrTimeout, "nothing within %v", timeout)
	}
	r := m.pending[0]
	m.pending = m.pending[1:]
	return []byte(r), nil
}

func (m *memSession) Discard(settle, _ time.Duration) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discards = append(m.discards, settle)
	n := 0
	for _, p := range m.pending {
		n += len(p) + 1
	}
	m.pending = nil
	return n, nil
}

func (m *memSession) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *memSession) Written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.written...)
}
