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
	"github.com/spf13/cobra"

	"github.com/NCAR/spektralwerk/scpi"
)

type catalogEntry struct {
	Name        string `yaml:"name"`
	Mnemonic    string `yaml:"mnemonic"`
	Direction   string `yaml:"direction"`
	Reply       string `yaml:"reply"`
	Arg         string `yaml:"arg"`
	Timeout     string `yaml:"timeout"`
	Unit        string `yaml:"unit,omitempty"`
	Description string `yaml:"description"`
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the operations the instrument supports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cat := scpi.DefaultCatalog()
		entries := make([]catalogEntry, 0, len(cat))
		for _, name := range cat.Names() {
			op := cat[name]
			entries = append(entries, catalogEntry{
				Name:        op.Name,
				Mnemonic:    op.Mnemonic,
				Direction:   op.Direction.String(),
				Reply:       op.Shape.String(),
				Arg:         op.Arg.String(),
				Timeout:     op.Timeout.String(),
				Unit:        op.Unit,
				Description: op.Description,
			})
		}
		return emit(cmd, entries, cat.String)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
