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

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts exchanges with the instrument. A nil *Metrics records nothing.
type Metrics struct {
	operations       *prometheus.CounterVec
	duration         *prometheus.HistogramVec
	instrumentErrors prometheus.Counter
	spectra          prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spektralwerk_operations_total",
			Help: "Exchanges with the instrument by operation and result kind.",
		}, []string{"operation", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "spektralwerk_operation_duration_seconds",
			Help:    "Time from sending a command to decoding its reply.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		instrumentErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spektralwerk_instrument_errors_total",
			Help: "Entries read from the instrument error queue.",
		}),
		spectra: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spektralwerk_stream_spectra_total",
			Help: "Spectra delivered by streams.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.operations, m.duration, m.instrumentErrors, m.spectra} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(op string, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(op, Kind(err)).Inc()
	if err == nil {
		m.duration.WithLabelValues(op).Observe(d.Seconds())
	}
}

func (m *Metrics) instrumentError(n int) {
	if m == nil || n == 0 {
		return
	}
	m.instrumentErrors.Add(float64(n))
}

func (m *Metrics) spectrum() {
	if m == nil {
		return
	}
	m.spectra.Inc()
}
