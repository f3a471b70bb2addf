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
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/NCAR/spektralwerk/scpi"
	"github.com/NCAR/spektralwerk/transport"
)

var rawWait time.Duration

var rawCmd = &cobra.Command{
	Use:   "raw [command]",
	Short: "Talk SCPI to the instrument directly",
	Long: `Send a SCPI command line as is and print whatever comes back. Without an
argument, lines are read from stdin and replies printed as they arrive, like
netcat but over any transport dial string.

Nothing is appended to the command: add ;*ESR? yourself to see the status.

Examples:
  spwctl raw '*IDN?'
  spwctl raw 'MEAS:SPEC:AVER:NUMB 8;*ESR?'
  spwctl --dial serial:///dev/ttyUSB0:115200 raw`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config()
		if err != nil {
			return err
		}
		ctx, cancel := signalContext()
		defer cancel()

		arb, err := transport.NewArbiter(ctx, cfg.ConnectTimeout(), cfg.Dial())
		if err != nil {
			return err
		}
		defer arb.Close()

		if len(args) == 1 {
			return rawOnce(cmd.OutOrStdout(), arb, args[0])
		}
		return rawInteractive(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), arb)
	},
}

func init() {
	rawCmd.Flags().DurationVar(&rawWait, "wait", time.Second, "how long to wait for a reply")
	rootCmd.AddCommand(rawCmd)
}

func rawOnce(out io.Writer, sess transport.Session, line string) error {
	if _, err := sess.Write([]byte(line + scpi.Terminator)); err != nil {
		return err
	}
	if !strings.Contains(line, "?") {
		return nil
	}
	reply, err := sess.ReadUntil([]byte(scpi.Terminator), rawWait)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(reply))
	return err
}

// rawInteractive forwards stdin line by line and prints replies until stdin
// closes or ctx is canceled.
func rawInteractive(ctx context.Context, in io.Reader, out io.Writer, sess transport.Session) error {
	errc := make(chan error, 1)
	go func() {
		for ctx.Err() == nil {
			reply, err := sess.ReadUntil([]byte(scpi.Terminator), 100*time.Millisecond)
			switch {
			case err == nil:
				fmt.Fprintln(out, string(reply))
			case !transport.IsTimeout(err):
				errc <- err
				return
			}
		}
	}()

	stdin := bufio.NewScanner(in)
	for stdin.Scan() {
		select {
		case err := <-errc:
			return err
		default:
		}
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}
		if _, err := sess.Write([]byte(line + scpi.Terminator)); err != nil {
			return err
		}
	}
	// let the last reply arrive
	select {
	case err := <-errc:
		return err
	case <-time.After(rawWait):
	case <-ctx.Done():
	}
	return stdin.Err()
}
