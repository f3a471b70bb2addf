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
	"strconv"

	"github.com/spf13/cobra"

	"github.com/NCAR/spektralwerk"
	"github.com/NCAR/spektralwerk/logger"
)

var (
	averaged  bool
	withAxis  bool
	count     int
	keepGoing bool
)

var spectrumCmd = &cobra.Command{
	Use:   "spectrum",
	Short: "Acquire one spectrum",
	Long: `Acquire one raw or averaged spectrum. The first column of the text output is
the instrument timestamp in seconds.

Examples:
  spwctl spectrum
  spwctl spectrum --averaged --axis -o yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(func(_ context.Context, c *spektralwerk.Client) error {
			if withAxis {
				swa, err := c.SpectrumWithAxis(averaged)
				if err != nil {
					return err
				}
				doc := spectrumDoc(swa.Spectrum)
				doc.Wavelengths = swa.Wavelengths
				return emit(cmd, doc, func() string {
					return formatDuration(swa.Timestamp) + "\n" + formatFloats(swa.Wavelengths) + "\n" + formatFloats(swa.Data)
				})
			}

			if _, err := c.PixelCount(); err != nil {
				return err
			}
			read := c.RawSpectrum
			if averaged {
				read = c.AveragedSpectrum
			}
			sp, err := read()
			if err != nil {
				return err
			}
			return emit(cmd, spectrumDoc(sp), func() string {
				return formatDuration(sp.Timestamp) + " " + formatFloats(sp.Data)
			})
		})
	},
}

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Acquire spectra one after the other",
	Long: `Acquire spectra one after the other, one line (or YAML document) per spectrum.
Stops after --count spectra, 0 means until interrupted. A failed acquisition
ends the stream unless --keep-going is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withClient(func(ctx context.Context, c *spektralwerk.Client) error {
			if _, err := c.PixelCount(); err != nil {
				return err
			}
			var opts []spektralwerk.StreamOption
			if averaged {
				opts = append(opts, spektralwerk.StreamAveraged())
			}
			s := c.Stream(opts...)
			failed := 0
			for sp, err := range s.All() {
				if ctx.Err() != nil {
					break
				}
				if err != nil {
					failed++
					logger.Warn("acquisition failed", "n", s.Fetched(), "kind", spektralwerk.Kind(err), "error", err)
					if !keepGoing {
						return err
					}
					fmt.Fprintln(cmd.ErrOrStderr(), errStyle.Render(strconv.Itoa(s.Fetched())+": "+err.Error()))
				} else if err := emit(cmd, spectrumDoc(sp), func() string {
					return formatDuration(sp.Timestamp) + " " + formatFloats(sp.Data)
				}); err != nil {
					return err
				}
				if count > 0 && s.Fetched() >= count {
					break
				}
			}
			logger.Info("stream done", "fetched", s.Fetched(), "failed", failed)
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{spectrumCmd, streamCmd} {
		c.Flags().BoolVar(&averaged, "averaged", false, "read the rolling average instead of raw spectra")
	}
	spectrumCmd.Flags().BoolVar(&withAxis, "axis", false, "include the wavelength of every pixel")
	streamCmd.Flags().IntVarP(&count, "count", "n", 0, "number of spectra, 0 for no limit")
	streamCmd.Flags().BoolVar(&keepGoing, "keep-going", false, "report failed acquisitions and carry on")
	rootCmd.AddCommand(spectrumCmd, streamCmd)
}
