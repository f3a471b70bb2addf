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
	"strconv"
	"strings"

	"github.com/NCAR/spektralwerk/scpi"
)

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func formatFloats(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, scpi.Separator)
}

// plain returns the meaningful field of val for YAML output.
func plain(val scpi.Value) any {
	switch val.Shape {
	case scpi.ShapeInt:
		return val.Int
	case scpi.ShapeFloat:
		return val.Float
	case scpi.ShapeBool:
		return val.Bool
	case scpi.ShapeFloats:
		return val.Floats
	case scpi.ShapeSpectrum:
		return spectrumDoc(val.Spectrum)
	case scpi.ShapeText:
		return val.Text
	case scpi.ShapeStatus:
		return val.Status.Names()
	case scpi.ShapeErrorRecord:
		return map[string]any{"code": val.Record.Code, "message": val.Record.Message}
	}
	return nil
}

func valueText(val scpi.Value) string {
	switch val.Shape {
	case scpi.ShapeInt:
		return strconv.FormatInt(val.Int, 10)
	case scpi.ShapeFloat:
		return formatFloat(val.Float)
	case scpi.ShapeBool:
		if val.Bool {
			return "on"
		}
		return "off"
	case scpi.ShapeFloats:
		return formatFloats(val.Floats)
	case scpi.ShapeSpectrum:
		return formatDuration(val.Spectrum.Timestamp) + " " + formatFloats(val.Spectrum.Data)
	case scpi.ShapeText:
		return val.Text
	case scpi.ShapeStatus:
		return statusLine(val.Status)
	case scpi.ShapeErrorRecord:
		return strconv.Itoa(val.Record.Code) + " " + val.Record.Message
	}
	return ""
}

// number is the value of a numeric reply as float64.
func number(val scpi.Value) float64 {
	if val.Shape == scpi.ShapeInt {
		return float64(val.Int)
	}
	return val.Float
}

type spectrumYAML struct {
	Timestamp   float64   `yaml:"timestamp_s"`
	Data        []float64 `yaml:"data,flow"`
	Wavelengths []float64 `yaml:"wavelengths_nm,flow,omitempty"`
}

func spectrumDoc(sp scpi.Spectrum) spectrumYAML {
	return spectrumYAML{Timestamp: sp.Timestamp.Seconds(), Data: sp.Data}
}
