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
	"bufio"
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCAR/spektralwerk/internal/simulator"
	"github.com/NCAR/spektralwerk/scpi"
)

// openSim starts a simulated instrument and opens a Client on it over TCP.
func openSim(t *testing.T, simOpts []simulator.Option, opts ...Option) (*Client, *simulator.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	s, err := simulator.Listen(ctx, "127.0.0.1:0", simOpts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	cfg, err := NewConfig("", 0, append([]Option{WithDial(s.Dial())}, opts...)...)
	require.NoError(t, err)
	c, err := Open(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, s
}

func TestScenario_AverageNumber(t *testing.T) {
	c, _ := openSim(t, nil)

	require.NoError(t, c.SetAverageNumber(8))
	n, err := c.AverageNumber()
	require.NoError(t, err)
	assert.Equal(t, 8, n)
}

func TestScenario_ExposureTime(t *testing.T) {
	c, _ := openSim(t, nil)

	require.NoError(t, c.SetExposureTime(0.5))
	et, err := c.ExposureTime()
	require.NoError(t, err)
	assert.Equal(t, 0.5, et)

	lim, err := c.ExposureTimeLimits()
	require.NoError(t, err)
	assert.True(t, lim.Contains(et))
	assert.Less(t, lim.Min, lim.Max)

	unit, err := c.Unit(scpi.OpExposureTime)
	require.NoError(t, err)
	assert.Equal(t, c.CanonicalUnit(scpi.OpExposureTime), unit)
}

func TestScenario_Spectrum(t *testing.T) {
	c, _ := openSim(t, nil)

	n, err := c.PixelCount()
	require.NoError(t, err)
	assert.Equal(t, 256, n)

	sp, err := c.RawSpectrum()
	require.NoError(t, err)
	assert.Equal(t, 256, sp.Len())

	avg, err := c.AveragedSpectrum()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, avg.Timestamp, sp.Timestamp)

	swa, err := c.SpectrumWithAxis(false)
	require.NoError(t, err)
	assert.Len(t, swa.Wavelengths, swa.Len())
	assert.InDelta(t, 900, swa.Wavelengths[0], 1e-9)
}

func TestScenario_Identity(t *testing.T) {
	c, _ := openSim(t, []simulator.Option{simulator.WithPixels(16)})

	id, err := c.Identity()
	require.NoError(t, err)
	assert.Equal(t, "Spektralwerk", id.Vendor)
	assert.Equal(t, simulator.DefaultIdentity, id.String())
}

func TestScenario_RejectedThenDrained(t *testing.T) {
	c, _ := openSim(t, nil)

	err := c.SetAverageNumber(-3)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInstrument)

	errs, err := c.DrainErrorQueue()
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.NotZero(t, errs[0].Code)

	st, err := c.ReadStatus()
	require.NoError(t, err)
	assert.False(t, st.HasError())
}

func TestScenario_References(t *testing.T) {
	c, _ := openSim(t, []simulator.Option{simulator.WithPixels(4)})

	require.NoError(t, c.SetDarkReference([]float64{1, 2, 3, 4}))
	dark, err := c.DarkReference()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, dark)

	light, err := c.LightReference()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, light)

	err = c.SetLightReference([]float64{1})
	assert.ErrorIs(t, err, ErrInstrument)
	require.NoError(t, c.ClearStatus())
	assert.NoError(t, c.Check())
}

func TestScenario_StreamWithTimeout(t *testing.T) {
	c, _ := openSim(t,
		[]simulator.Option{simulator.WithPixels(32), simulator.WithFaults(simulator.DropNth(3))},
		WithSettle(20*time.Millisecond))

	var spectra int
	var kinds []string
	s := c.Stream(StreamTimeout(200 * time.Millisecond))
	for sp, err := range s.All() {
		kinds = append(kinds, Kind(err))
		if err == nil {
			spectra++
			assert.Equal(t, 32, sp.Len())
		}
		if len(kinds) == 5 {
			break
		}
	}
	assert.Equal(t, 4, spectra)
	assert.Equal(t, []string{"ok", "ok", "timeout", "ok", "ok"}, kinds)
	assert.Equal(t, 5, s.Fetched())
}

func TestScenario_LateReplyIsDiscarded(t *testing.T) {
	c, s := openSim(t,
		[]simulator.Option{simulator.WithFaults(simulator.DelayNth(1, 150*time.Millisecond))},
		WithTimeout(scpi.OpIdentity, 100*time.Millisecond),
		WithSettle(150*time.Millisecond))

	_, err := c.Identity()
	require.ErrorIs(t, err, ErrTimeout)

	n, err := c.PixelCount()
	require.NoError(t, err, "the late identity must not be taken for the pixel count")
	assert.Equal(t, 256, n)
	assert.Equal(t, 2, s.Requests())
}

func TestScenario_TimeoutIsBounded(t *testing.T) {
	c, _ := openSim(t, []simulator.Option{simulator.WithFaults(simulator.DropMatching("*IDN"))})

	start := time.Now()
	_, err := c.Execute(Request{Op: scpi.OpIdentity, Timeout: 100 * time.Millisecond})
	elapsed := time.Since(start)

	var te *TimeoutError
	require.ErrorAs(t, err, &te)
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, 500*time.Millisecond)
}

func TestScenario_DrainIsBounded(t *testing.T) {
	c, s := openSim(t, []simulator.Option{simulator.WithEndlessErrors()}, WithMaxErrorDrain(5))

	errs, err := c.DrainErrorQueue()
	assert.ErrorIs(t, err, ErrDrainLimit)
	assert.Len(t, errs, 5)
	assert.Equal(t, 5, s.Requests())
}

func TestScenario_DrainEmpty(t *testing.T) {
	c, s := openSim(t, nil)

	errs, err := c.DrainErrorQueue()
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 1, s.Requests())
}

func TestWithSession(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, err := simulator.Listen(ctx, "127.0.0.1:0")
	require.NoError(t, err)
	defer s.Close()

	cfg, err := NewConfig("", 0, WithDial(s.Dial()))
	require.NoError(t, err)

	var kept *Client
	err = WithSession(ctx, cfg, func(c *Client) error {
		kept = c
		return c.SetStreamState(true)
	})
	require.NoError(t, err)

	_, err = kept.StreamState()
	assert.ErrorIs(t, err, ErrClosed, "closed on return")

	cfg, err = NewConfig("", 0, WithDial("tcp://127.0.0.1:1"), WithConnectTimeout(100*time.Millisecond))
	require.NoError(t, err)
	err = WithSession(ctx, cfg, func(*Client) error { return nil })
	assert.ErrorIs(t, err, ErrTransport)
}

// chatterPeer swallows the first line it receives, then trickles bytes without
// ever terminating a line.
func chatterPeer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		if _, err := bufio.NewReader(conn).ReadString('\n'); err != nil {
			return
		}
		for {
			if _, err := conn.Write([]byte("x")); err != nil {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()
	return "tcp://" + ln.Addr().String()
}

func TestScenario_BusyLineAfterTimeoutIsBounded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg, err := NewConfig("", 0, WithDial(chatterPeer(t)), WithSettle(20*time.Millisecond))
	require.NoError(t, err)
	c, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Execute(Request{Op: scpi.OpIdentity, Timeout: 100 * time.Millisecond})
	require.ErrorIs(t, err, ErrTimeout)

	for range 2 {
		start := time.Now()
		_, err = c.Execute(Request{Op: scpi.OpPixelCount, Timeout: 100 * time.Millisecond})
		elapsed := time.Since(start)

		var te *TimeoutError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, 100*time.Millisecond, te.Timeout)
		assert.Less(t, elapsed, 500*time.Millisecond)
	}
}

func TestScenario_SharedSession(t *testing.T) {
	c, s := openSim(t, []simulator.Option{simulator.WithPixels(32)})

	require.NoError(t, c.SetAverageNumber(7))
	n, err := c.PixelCount()
	require.NoError(t, err)
	require.Equal(t, 32, n)

	const rounds = 20
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		st := c.Stream()
		for range rounds {
			sp, err := st.Next()
			if assert.NoError(t, err) {
				assert.Equal(t, 32, sp.Len())
			}
		}
	}()
	go func() {
		defer wg.Done()
		st := c.Stream(StreamAveraged())
		for range rounds {
			sp, err := st.Next()
			if assert.NoError(t, err) {
				assert.Equal(t, 32, sp.Len())
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range rounds {
			avg, err := c.AverageNumber()
			if assert.NoError(t, err) {
				assert.Equal(t, 7, avg)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range rounds {
			px, err := c.PixelCount()
			if assert.NoError(t, err) {
				assert.Equal(t, 32, px)
			}
		}
	}()
	wg.Wait()

	assert.Equal(t, 2+4*rounds, s.Requests())
}
