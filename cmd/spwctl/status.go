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
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/NCAR/spektralwerk"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Show vendor, model, serial number and firmware",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(func(_ context.Context, c *spektralwerk.Client) error {
			id, err := c.Identity()
			if err != nil {
				return err
			}
			return emit(cmd, id, func() string {
				return strings.Join([]string{
					field("vendor", 8, id.Vendor),
					field("model", 8, id.Model),
					field("serial", 8, id.Serial),
					field("firmware", 8, id.Firmware),
				}, "\n")
			})
		})
	},
}

var clearStatus bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Read (and thereby clear) the event status register",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(func(_ context.Context, c *spektralwerk.Client) error {
			st, err := c.ReadStatus()
			if err != nil {
				return err
			}
			if clearStatus {
				if err := c.ClearStatus(); err != nil {
					return err
				}
			}
			doc := map[string]any{"register": int(st), "bits": st.Names(), "error": st.HasError()}
			return emit(cmd, doc, func() string {
				return field("status", 6, strconv.Itoa(int(st))+" "+statusLine(st))
			})
		})
	},
}

type errorEntry struct {
	Code    int    `yaml:"code"`
	Message string `yaml:"message"`
}

var errorsCmd = &cobra.Command{
	Use:   "errors",
	Short: "Drain and print the instrument error queue",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(func(_ context.Context, c *spektralwerk.Client) error {
			queue, err := c.DrainErrorQueue()
			entries := make([]errorEntry, len(queue))
			for i, e := range queue {
				entries[i] = errorEntry{Code: e.Code, Message: e.Message}
			}
			if eerr := emit(cmd, entries, func() string {
				if len(entries) == 0 {
					return okStyle.Render("no error")
				}
				lines := make([]string, len(entries))
				for i, e := range entries {
					lines[i] = errStyle.Render(strconv.Itoa(e.Code)) + " " + e.Message
				}
				return strings.Join(lines, "\n")
			}); eerr != nil {
				return eerr
			}
			return err
		})
	},
}

func init() {
	statusCmd.Flags().BoolVar(&clearStatus, "clear", false, "also clear the error queue")
	rootCmd.AddCommand(identityCmd, statusCmd, errorsCmd)
}
