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
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/NCAR/spektralwerk/internal/simulator"
	"github.com/NCAR/spektralwerk/logger"
)

var (
	simListen  string
	simPixels  int
	simDropNth int
	simDelay   time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a simulated instrument",
	Long: `Run a simulated Spektralwerk Core on a TCP socket until interrupted, for
trying out spwctl or client code without hardware.

Examples:
  spwctl simulate --listen 127.0.0.1:5025 &
  spwctl identity
  spwctl simulate --drop 3   # never answer the third request`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signalContext()
		defer cancel()

		opts := []simulator.Option{
			simulator.WithPixels(simPixels),
			simulator.WithLogger(logger.GetLogger()),
		}
		switch {
		case simDropNth > 0:
			opts = append(opts, simulator.WithFaults(simulator.DropNth(simDropNth)))
		case simDelay > 0:
			opts = append(opts, simulator.WithFaults(func(int, string) simulator.Fault {
				return simulator.Fault{Delay: simDelay}
			}))
		}

		s, err := simulator.Listen(ctx, simListen, opts...)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), field("listening", 9, s.Dial()))
		s.Wait()
		logger.Info("simulator stopped", "requests", s.Requests())
		return nil
	},
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simListen, "listen", "127.0.0.1:5025", "address to listen on")
	f.IntVar(&simPixels, "pixels", simulator.DefaultPixels, "detector pixel count")
	f.IntVar(&simDropNth, "drop", 0, "withhold the reply to the n-th request")
	f.DurationVar(&simDelay, "delay", 0, "delay every reply")
	rootCmd.AddCommand(simulateCmd)
}
