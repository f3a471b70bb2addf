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
	"strings"

	"github.com/pkg/errors"

	"github.com/NCAR/spektralwerk/scpi"
)

// Identity is the parsed reply to *IDN?.
type Identity struct {
	Vendor   string `yaml:"vendor"`
	Model    string `yaml:"model"`
	Serial   string `yaml:"serial"`
	Firmware string `yaml:"firmware"`
}

func (i Identity) String() string {
	return strings.Join([]string{i.Vendor, i.Model, i.Serial, i.Firmware}, scpi.Separator)
}

// Limits is the range the instrument accepts for a setting.
type Limits[T int | float64] struct {
	Min T `yaml:"min"`
	Max T `yaml:"max"`
}

// Contains reports whether v lies within the limits, bounds included.
func (l Limits[T]) Contains(v T) bool { return v >= l.Min && v <= l.Max }

// SpectrumWithAxis pairs a spectrum with the wavelength of every pixel.
type SpectrumWithAxis struct {
	Spectrum
	Wavelengths []float64
}

func (c *Client) Identity() (Identity, error) {
	v, err := c.Query(scpi.OpIdentity)
	if err != nil {
		return Identity{}, err
	}
	f := strings.Split(v.Text, scpi.Separator)
	if len(f) != 4 {
		return Identity{}, &DecodeError{Op: scpi.OpIdentity, Raw: v.Text, Err: errors.Errorf("want 4 fields, got %d", len(f))}
	}
	for i := range f {
		f[i] = strings.TrimSpace(f[i])
	}
	return Identity{Vendor: f[0], Model: f[1], Serial: f[2], Firmware: f[3]}, nil
}

func (c *Client) queryFloat(op string) (float64, error) {
	v, err := c.Query(op)
	return v.Float, err
}

func (c *Client) queryInt(op string) (int, error) {
	v, err := c.Query(op)
	return int(v.Int), err
}

func (c *Client) floatLimits(minOp, maxOp string) (Limits[float64], error) {
	lo, err := c.queryFloat(minOp)
	if err != nil {
		return Limits[float64]{}, err
	}
	hi, err := c.queryFloat(maxOp)
	if err != nil {
		return Limits[float64]{}, err
	}
	return Limits[float64]{Min: lo, Max: hi}, nil
}

// ExposureTime returns the exposure time in seconds.
func (c *Client) ExposureTime() (float64, error) { return c.queryFloat(scpi.OpExposureTime) }

// SetExposureTime sets the exposure time in seconds.
func (c *Client) SetExposureTime(seconds float64) error {
	return c.Set(scpi.OpExposureTime, seconds)
}

func (c *Client) ExposureTimeLimits() (Limits[float64], error) {
	return c.floatLimits(scpi.OpExposureTimeMin, scpi.OpExposureTimeMax)
}

// AverageNumber returns how many raw spectra are averaged.
func (c *Client) AverageNumber() (int, error) { return c.queryInt(scpi.OpAverageNumber) }

func (c *Client) SetAverageNumber(n int) error { return c.Set(scpi.OpAverageNumber, n) }

func (c *Client) AverageNumberLimits() (Limits[int], error) {
	lo, err := c.queryInt(scpi.OpAverageNumberMin)
	if err != nil {
		return Limits[int]{}, err
	}
	hi, err := c.queryInt(scpi.OpAverageNumberMax)
	if err != nil {
		return Limits[int]{}, err
	}
	return Limits[int]{Min: lo, Max: hi}, nil
}

// OffsetVoltage returns the detector offset voltage in millivolts.
func (c *Client) OffsetVoltage() (float64, error) { return c.queryFloat(scpi.OpOffsetVoltage) }

func (c *Client) SetOffsetVoltage(mV float64) error { return c.Set(scpi.OpOffsetVoltage, mV) }

func (c *Client) OffsetVoltageLimits() (Limits[float64], error) {
	return c.floatLimits(scpi.OpOffsetVoltageMin, scpi.OpOffsetVoltageMax)
}

func (c *Client) queryFloats(op string) ([]float64, error) {
	v, err := c.Query(op)
	return v.Floats, err
}

func (c *Client) DarkReference() ([]float64, error) { return c.queryFloats(scpi.OpDarkReference) }

func (c *Client) SetDarkReference(ref []float64) error { return c.Set(scpi.OpDarkReference, ref) }

func (c *Client) LightReference() ([]float64, error) { return c.queryFloats(scpi.OpLightReference) }

func (c *Client) SetLightReference(ref []float64) error { return c.Set(scpi.OpLightReference, ref) }

// PixelCount returns the number of detector pixels. Spectra read afterwards
// are required to have exactly this many values.
func (c *Client) PixelCount() (int, error) { return c.queryInt(scpi.OpPixelCount) }

// Wavelengths returns the wavelength in nanometers of every pixel.
func (c *Client) Wavelengths() ([]float64, error) { return c.queryFloats(scpi.OpWavelengths) }

func (c *Client) spectrum(op string) (Spectrum, error) {
	v, err := c.Query(op)
	return v.Spectrum, err
}

// RawSpectrum acquires one spectrum.
func (c *Client) RawSpectrum() (Spectrum, error) { return c.spectrum(scpi.OpRawSpectrum) }

// AveragedSpectrum returns the rolling average over AverageNumber raw spectra.
func (c *Client) AveragedSpectrum() (Spectrum, error) { return c.spectrum(scpi.OpAveragedSpectrum) }

/*SpectrumWithAxis reads the wavelength axis, then a raw or averaged spectrum,
and fails with a DecodeError if their lengths differ.*/
func (c *Client) SpectrumWithAxis(averaged bool) (SpectrumWithAxis, error) {
	wl, err := c.Wavelengths()
	if err != nil {
		return SpectrumWithAxis{}, err
	}
	op := scpi.OpRawSpectrum
	if averaged {
		op = scpi.OpAveragedSpectrum
	}
	sp, err := c.spectrum(op)
	if err != nil {
		return SpectrumWithAxis{}, err
	}
	if sp.Len() != len(wl) {
		return SpectrumWithAxis{}, &DecodeError{
			Op:  op,
			Err: errors.Errorf("spectrum has %d pixels, wavelength axis %d", sp.Len(), len(wl)),
		}
	}
	return SpectrumWithAxis{Spectrum: sp, Wavelengths: wl}, nil
}

/*Unit queries the unit the instrument reports for quantity, one of
scpi.OpExposureTime, scpi.OpOffsetVoltage and scpi.OpWavelengths. Values
exchanged by this package are always in the canonical unit, see CanonicalUnit.*/
func (c *Client) Unit(quantity string) (string, error) {
	op, ok := scpi.UnitOperations[quantity]
	if !ok {
		return "", &EncodeError{Op: quantity, Err: errors.New("quantity has no unit query")}
	}
	v, err := c.Query(op)
	return v.Text, err
}

// CanonicalUnit returns the unit values of op are exchanged in, "" if unitless.
func (c *Client) CanonicalUnit(op string) string {
	o, err := c.catalog.Lookup(op)
	if err != nil {
		return ""
	}
	return o.Unit
}

// StreamState reports whether the instrument acquires continuously.
func (c *Client) StreamState() (bool, error) {
	v, err := c.Query(scpi.OpStreamState)
	return v.Bool, err
}

func (c *Client) SetStreamState(on bool) error { return c.Set(scpi.OpStreamState, on) }
