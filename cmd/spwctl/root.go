package main

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
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/NCAR/spektralwerk"
	"github.com/NCAR/spektralwerk/logger"
	"github.com/NCAR/spektralwerk/scpi"
)

var v = viper.New()

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "spwctl",
	Short: "Control a Spektralwerk Core NIR spectrometer",
	Long: `Control a Spektralwerk Core NIR spectrometer over its SCPI socket or a serial line.

Every flag can also be given as an environment variable with the SPW_ prefix,
e.g. SPW_HOST=10.0.0.5, or in a YAML file passed with --config.

Examples:
  spwctl --host 10.0.0.5 identity
  spwctl set "average number" 8
  spwctl stream --count 10 --averaged
  spwctl --dial serial:///dev/ttyUSB0:115200 status`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.String("config", "", "YAML file with flag defaults")
	f.String("host", "127.0.0.1", "instrument host")
	f.Int("port", spektralwerk.DefaultPort, "instrument SCPI port")
	f.String("dial", "", "transport dial string, overrides host and port (e.g. serial:///dev/ttyUSB0:115200)")
	f.Duration("timeout", 0, "reply timeout for every operation, 0 keeps the per operation defaults")
	f.String("log-level", "warn", "debug, info, warn or error")
	f.StringP("output", "o", "text", "text or yaml")
	f.String("metrics-addr", "", "serve prometheus metrics on this address, e.g. :9090")

	for _, name := range []string{"host", "port", "dial", "timeout", "log-level", "output", "metrics-addr"} {
		_ = v.BindPFlag(name, f.Lookup(name))
	}
	v.SetEnvPrefix("SPW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

var metrics *spektralwerk.Metrics

func setup(cmd *cobra.Command, _ []string) error {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrapf(err, "reading %s", path)
		}
	}

	logger.SetDefault(logger.NewSlog(logger.ParseLevel(v.GetString("log-level")), false))

	switch v.GetString("output") {
	case "text", "yaml":
	default:
		return errors.Errorf("unknown output format %q", v.GetString("output"))
	}

	if addr := v.GetString("metrics-addr"); addr != "" {
		reg := prometheus.NewRegistry()
		m, err := spektralwerk.NewMetrics(reg)
		if err != nil {
			return err
		}
		metrics = m
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil {
				logger.Error("metrics server", "addr", addr, "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", addr)
	}
	return nil
}

// config builds the client configuration from flags, environment and config file.
func config() (*spektralwerk.Config, error) {
	opts := []spektralwerk.Option{spektralwerk.WithLogger(logger.GetLogger())}
	if dial := v.GetString("dial"); dial != "" {
		opts = append(opts, spektralwerk.WithDial(dial))
	}
	if d := v.GetDuration("timeout"); d > 0 {
		for _, op := range scpi.DefaultCatalog().Names() {
			opts = append(opts, spektralwerk.WithTimeout(op, d))
		}
	}
	if metrics != nil {
		opts = append(opts, spektralwerk.WithMetrics(metrics))
	}
	return spektralwerk.NewConfig(v.GetString("host"), v.GetInt("port"), opts...)
}

// signalContext is canceled on interrupt.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// withClient runs fn with a client on the configured instrument.
func withClient(fn func(context.Context, *spektralwerk.Client) error) error {
	cfg, err := config()
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	return spektralwerk.WithSession(ctx, cfg, func(c *spektralwerk.Client) error {
		return fn(ctx, c)
	})
}

// emit writes val as YAML or hands it to text.
func emit(cmd *cobra.Command, val any, text func() string) error {
	out := cmd.OutOrStdout()
	if v.GetString("output") == "yaml" {
		enc := yaml.NewEncoder(out)
		defer enc.Close()
		return enc.Encode(val)
	}
	_, err := fmt.Fprintln(out, text())
	return err
}

// opName accepts operation names with dashes for spaces, e.g. exposure-time.
func opName(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", " ")
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.6fs", d.Seconds())
}
