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
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/NCAR/spektralwerk/logger"
	"github.com/NCAR/spektralwerk/scpi"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvHost = "SPW_HOST"
	EnvPort = "SPW_PORT"
)

const (
	// DefaultPort is the SCPI raw socket port of the instrument.
	DefaultPort = 5025
	// DefaultMaxErrorDrain bounds DrainErrorQueue.
	DefaultMaxErrorDrain = 32
	// DefaultSettle is how long the line must stay quiet when resynchronizing after a timeout.
	DefaultSettle = 50 * time.Millisecond
	// DefaultConnectTimeout bounds dialing the instrument.
	DefaultConnectTimeout = 3 * time.Second
)

// Config holds everything a Client needs. Build it with NewConfig or
// ConfigFromEnv; the zero value is not usable.
type Config struct {
	// host and port of the instrument, used when dial is empty.
	host string
	port int

	// dial overrides host and port with a transport dial string such as
	// "tcp://10.0.0.5:5025" or "serial:///dev/ttyUSB0:115200".
	dial string

	connectTimeout time.Duration

	// timeouts holds per operation overrides of the catalog defaults.
	timeouts map[string]time.Duration

	// maxErrorDrain bounds the number of error queue reads in one drain.
	// Defaults to 32.
	maxErrorDrain int

	// autoDrain makes a Client drain the error queue itself whenever the
	// status register reports an error, attaching the entries to the StatusError.
	// Defaults to false.
	autoDrain bool

	// statusCheck chains the status register query onto every command.
	// Defaults to true.
	statusCheck bool

	// settle is the quiet period required by the resynchronization after a timeout.
	settle time.Duration

	catalog scpi.Catalog
	logger  logger.Logger
	metrics *Metrics
}

// DefaultConfig returns a configuration without an address, for use with New
// over an already established transport.Session.
func DefaultConfig() *Config {
	return &Config{
		connectTimeout: DefaultConnectTimeout,
		timeouts:       map[string]time.Duration{},
		maxErrorDrain:  DefaultMaxErrorDrain,
		statusCheck:    true,
		settle:         DefaultSettle,
		catalog:        scpi.DefaultCatalog(),
		logger:         logger.GetLogger(),
	}
}

// NewConfig creates a configuration for the instrument at host:port.
//
// The opts parameter customizes the configuration; see the WithXXX functions.
// When WithDial is among them, host and port are not validated and may be empty.
func NewConfig(host string, port int, opts ...Option) (*Config, error) {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	if cfg.dial != "" {
		return cfg, nil
	}

	if err := withHost(host).apply(cfg); err != nil {
		return nil, err
	}
	if err := withPort(port).apply(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFromEnv creates a configuration from SPW_HOST and SPW_PORT. A missing
// or malformed variable is an error.
func ConfigFromEnv(opts ...Option) (*Config, error) {
	host, ok := os.LookupEnv(EnvHost)
	if !ok || host == "" {
		return nil, errors.Errorf("%s is not set", EnvHost)
	}
	ps, ok := os.LookupEnv(EnvPort)
	if !ok || ps == "" {
		return nil, errors.Errorf("%s is not set", EnvPort)
	}
	port, err := strconv.Atoi(strings.TrimSpace(ps))
	if err != nil {
		return nil, errors.Wrapf(err, "%s", EnvPort)
	}
	return NewConfig(host, port, opts...)
}

func (cfg *Config) Host() string { return cfg.host }

func (cfg *Config) Port() int { return cfg.port }

// Dial returns the transport dial string of the instrument.
func (cfg *Config) Dial() string {
	if cfg.dial != "" {
		return cfg.dial
	}
	return fmt.Sprintf("tcp://%s", net.JoinHostPort(cfg.host, strconv.Itoa(cfg.port)))
}

func (cfg *Config) ConnectTimeout() time.Duration { return cfg.connectTimeout }

func (cfg *Config) MaxErrorDrain() int { return cfg.maxErrorDrain }

func (cfg *Config) AutoDrain() bool { return cfg.autoDrain }

func (cfg *Config) StatusCheck() bool { return cfg.statusCheck }

// Catalog returns a copy of the configured operation catalog.
func (cfg *Config) Catalog() scpi.Catalog { return cfg.catalog.Clone() }

// Option represents a functional option for configuring a Config.
type Option interface {
	apply(*Config) error
}

type optFunc struct {
	name      string
	applyFunc func(*Config) error
}

func (o *optFunc) apply(cfg *Config) error {
	if cfg == nil {
		return ErrConfigNil
	}
	return errors.Wrap(o.applyFunc(cfg), o.name)
}

func newOptFunc(name string, f func(*Config) error) *optFunc {
	return &optFunc{name: name, applyFunc: f}
}

func withHost(host string) Option {
	return newOptFunc("host", func(cfg *Config) error {
		if ip := net.ParseIP(host); ip != nil {
			cfg.host = host
			return nil
		}

		host = strings.Trim(host, ".")
		if host == "" {
			return errors.New("host is empty")
		}
		if _, err := net.LookupHost(host); err != nil {
			return errors.Errorf("invalid host %q", host)
		}
		cfg.host = host
		return nil
	})
}

func withPort(port int) Option {
	return newOptFunc("port", func(cfg *Config) error {
		if port < 1 || port > 65535 {
			return errors.Errorf("port %d is out of range [1, 65535]", port)
		}
		cfg.port = port
		return nil
	})
}

// WithDial connects through a transport dial string instead of host and port,
// e.g. "serial:///dev/ttyUSB0:115200".
func WithDial(dial string) Option {
	return newOptFunc("WithDial", func(cfg *Config) error {
		if dial == "" {
			return errors.New("empty dial string")
		}
		cfg.dial = dial
		return nil
	})
}

// WithConnectTimeout bounds establishing the connection. Defaults to 3 seconds.
func WithConnectTimeout(val time.Duration) Option {
	return newOptFunc("WithConnectTimeout", func(cfg *Config) error {
		if val <= 0 {
			return errors.New("connect timeout must be positive")
		}
		cfg.connectTimeout = val
		return nil
	})
}

// WithTimeout overrides the catalog's default timeout of the named operation.
// Client.SetTimeout does the same on a live client.
func WithTimeout(op string, val time.Duration) Option {
	return newOptFunc("WithTimeout", func(cfg *Config) error {
		if val <= 0 {
			return errors.Errorf("timeout for %q must be positive", op)
		}
		cfg.timeouts[op] = val
		return nil
	})
}

// WithMaxErrorDrain bounds the number of error queue reads in one
// DrainErrorQueue. Defaults to 32.
func WithMaxErrorDrain(n int) Option {
	return newOptFunc("WithMaxErrorDrain", func(cfg *Config) error {
		if n < 1 {
			return errors.New("error drain limit must be at least 1")
		}
		cfg.maxErrorDrain = n
		return nil
	})
}

// WithAutoDrain makes the client drain the error queue whenever the status
// register reports an error. The queue is then empty for later DrainErrorQueue calls.
func WithAutoDrain() Option {
	return newOptFunc("WithAutoDrain", func(cfg *Config) error {
		cfg.autoDrain = true
		return nil
	})
}

// WithStatusCheck enables or disables chaining the status register query onto
// every command. Without it instrument rejections go unnoticed until
// ReadStatus or DrainErrorQueue. Defaults to true.
func WithStatusCheck(val bool) Option {
	return newOptFunc("WithStatusCheck", func(cfg *Config) error {
		cfg.statusCheck = val
		return nil
	})
}

// WithSettle sets the quiet period awaited when resynchronizing after a timeout.
func WithSettle(val time.Duration) Option {
	return newOptFunc("WithSettle", func(cfg *Config) error {
		if val < 0 {
			return errors.New("settle must not be negative")
		}
		cfg.settle = val
		return nil
	})
}

// WithLogger sets the logger. Defaults to logger.GetLogger().
func WithLogger(l logger.Logger) Option {
	return newOptFunc("WithLogger", func(cfg *Config) error {
		if l == nil {
			return errors.New("nil logger")
		}
		cfg.logger = l
		return nil
	})
}

// WithMetrics records every exchange in m.
func WithMetrics(m *Metrics) Option {
	return newOptFunc("WithMetrics", func(cfg *Config) error {
		cfg.metrics = m
		return nil
	})
}

// WithCatalog replaces the operation catalog, e.g. with scpi.Merge of the
// default catalog and vendor extensions.
func WithCatalog(c scpi.Catalog) Option {
	return newOptFunc("WithCatalog", func(cfg *Config) error {
		if err := c.Validate(); err != nil {
			return err
		}
		if !c.Contains(scpi.OpStatus, scpi.OpErrorNext) {
			return errors.Errorf("catalog lacks %q or %q", scpi.OpStatus, scpi.OpErrorNext)
		}
		cfg.catalog = c.Clone()
		return nil
	})
}
