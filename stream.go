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
	"iter"
	"time"

	"github.com/NCAR/spektralwerk/scpi"
)

/*
Stream is a pull iterator over spectra. Each Next performs exactly one
acquisition on the owning Client; nothing is fetched ahead. A failed
acquisition does not end the stream: the error is handed to the consumer,
who decides whether to go on.
*/
type Stream struct {
	c       *Client
	op      string
	timeout time.Duration
	fetched int
}

// StreamOption customizes a Stream.
type StreamOption func(*Stream)

// StreamAveraged reads averaged instead of raw spectra.
func StreamAveraged() StreamOption {
	return func(s *Stream) { s.op = scpi.OpAveragedSpectrum }
}

// StreamTimeout bounds every acquisition of the stream, taking precedence
// over the client's timeouts.
func StreamTimeout(d time.Duration) StreamOption {
	return func(s *Stream) { s.timeout = d }
}

// Stream returns a lazy stream of raw spectra.
func (c *Client) Stream(opts ...StreamOption) *Stream {
	s := &Stream{c: c, op: scpi.OpRawSpectrum}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next acquires one spectrum.
func (s *Stream) Next() (Spectrum, error) {
	s.fetched++
	v, err := s.c.Execute(Request{Op: s.op, Timeout: s.timeout})
	if err != nil {
		return Spectrum{}, err
	}
	s.c.metrics.spectrum()
	return v.Spectrum, nil
}

/*All yields one element per acquisition until the consumer stops ranging.
Errors are yielded in place of a spectrum.*/
func (s *Stream) All() iter.Seq2[Spectrum, error] {
	return func(yield func(Spectrum, error) bool) {
		for {
			if !yield(s.Next()) {
				return
			}
		}
	}
}

// Fetched returns how many acquisitions the stream has performed.
func (s *Stream) Fetched() int { return s.fetched }
