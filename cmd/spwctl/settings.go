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

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/NCAR/spektralwerk"
	"github.com/NCAR/spektralwerk/scpi"
)

// reading is the YAML form of a queried value.
type reading struct {
	Operation string `yaml:"operation"`
	Value     any    `yaml:"value"`
	Unit      string `yaml:"unit,omitempty"`
}

var getCmd = &cobra.Command{
	Use:   "get <operation>",
	Short: "Query one operation of the catalog",
	Long: `Query one operation of the catalog and print its value in the canonical unit.

Examples:
  spwctl get "exposure time"
  spwctl get average-number
  spwctl -o yaml get wavelengths`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := opName(args[0])
		return withClient(func(_ context.Context, c *spektralwerk.Client) error {
			val, err := c.Query(op)
			if err != nil {
				return err
			}
			r := reading{Operation: op, Value: plain(val), Unit: c.CanonicalUnit(op)}
			return emit(cmd, r, func() string {
				s := valueText(val)
				if r.Unit != "" {
					s += " " + r.Unit
				}
				return s
			})
		})
	},
}

var setCmd = &cobra.Command{
	Use:   "set <operation> [value]",
	Short: "Change a setting",
	Long: `Change a setting. The value is in the canonical unit of the operation;
arrays are comma separated. Commands without an argument, such as
"clear status", take no value.

Examples:
  spwctl set "exposure time" 0.5
  spwctl set average-number 8
  spwctl set "stream state" on`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := opName(args[0])
		return withClient(func(_ context.Context, c *spektralwerk.Client) error {
			o, err := c.Catalog().Lookup(op)
			if err != nil {
				return err
			}
			var raw string
			if len(args) == 2 {
				raw = args[1]
			}
			arg, err := parseArg(o.Arg, raw)
			if err != nil {
				return err
			}
			if err := c.Set(op, arg); err != nil {
				return explain(c, err)
			}
			return emit(cmd, map[string]string{"operation": op, "result": "ok"}, func() string {
				return okStyle.Render("ok")
			})
		})
	},
}

// limit is the YAML form of a setting's range.
type limit struct {
	Operation string  `yaml:"operation"`
	Min       float64 `yaml:"min"`
	Max       float64 `yaml:"max"`
	Unit      string  `yaml:"unit,omitempty"`
}

var limitsCmd = &cobra.Command{
	Use:   "limits <operation>",
	Short: "Show the range the instrument accepts for a setting",
	Long: `Show the range the instrument accepts for a setting.

Examples:
  spwctl limits "exposure time"
  spwctl limits offset-voltage`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		op := opName(args[0])
		return withClient(func(_ context.Context, c *spektralwerk.Client) error {
			var bounds [2]float64
			for i, suffix := range []string{" min", " max"} {
				val, err := c.Query(op + suffix)
				if err != nil {
					return err
				}
				bounds[i] = number(val)
			}
			l := limit{Operation: op, Min: bounds[0], Max: bounds[1], Unit: c.CanonicalUnit(op)}
			return emit(cmd, l, func() string {
				return field("min", 3, formatFloat(l.Min)+" "+l.Unit) + "\n" + field("max", 3, formatFloat(l.Max)+" "+l.Unit)
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(getCmd, setCmd, limitsCmd)
}

// parseArg turns a command line value into the argument type k.
func parseArg(k scpi.Kind, s string) (any, error) {
	if k == scpi.KindNone {
		if s != "" {
			return nil, errors.New("operation takes no value")
		}
		return nil, nil
	}
	if s == "" {
		return nil, errors.Errorf("a %v value is required", k)
	}
	switch k {
	case scpi.KindInt:
		return strconv.Atoi(s)
	case scpi.KindFloat:
		return strconv.ParseFloat(s, 64)
	case scpi.KindBool:
		switch strings.ToLower(s) {
		case "on":
			return true, nil
		case "off":
			return false, nil
		}
		return strconv.ParseBool(s)
	case scpi.KindFloats:
		fields := strings.Split(s, scpi.Separator)
		fs := make([]float64, len(fields))
		for i, f := range fields {
			x, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, errors.Wrapf(err, "element %d", i)
			}
			fs[i] = x
		}
		return fs, nil
	}
	return nil, errors.Errorf("unsupported argument %v", k)
}

// explain appends the instrument's error queue to a rejected command.
func explain(c *spektralwerk.Client, err error) error {
	var se *spektralwerk.StatusError
	if !errors.As(err, &se) || len(se.Queue) > 0 {
		return err
	}
	if queue, derr := c.DrainErrorQueue(); derr == nil && len(queue) > 0 {
		se.Queue = queue
	}
	return err
}
