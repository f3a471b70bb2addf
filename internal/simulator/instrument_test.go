package simulator

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCAR/spektralwerk/scpi"
)

func TestHeaderMatches(t *testing.T) {
	for _, tt := range []struct {
		header string
		want   bool
	}{
		{"MEASure:SPECtrum:AVERage:NUMBer", true},
		{"MEAS:SPEC:AVER:NUMB", true},
		{"meas:spec:aver:numb", true},
		{":MEAS:SPEC:AVER:NUMB", true},
		{"MEA:SPEC:AVER:NUMB", false},
		{"MEAS:SPEC:AVER", false},
		{"MEAS:SPEC:AVER:NUMB:MIN", false},
	} {
		assert.Equal(t, tt.want, headerMatches("MEASure:SPECtrum:AVERage:NUMBer", tt.header), tt.header)
	}
	assert.True(t, headerMatches("*IDN", "*idn"))
	assert.Equal(t, "SYST", shortForm("SYSTem"))
	assert.Equal(t, "*ESR", shortForm("*ESR"))
}

func TestInstrument_SetAndQuery(t *testing.T) {
	in := NewInstrument(16)

	reply, ok := in.Handle("*ESR?")
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(int(scpi.PowerOn)), reply)

	_, ok = in.Handle("MEAS:SPEC:AVER:NUMB 8")
	assert.False(t, ok, "a set alone has no reply")

	reply, ok = in.Handle("MEAS:SPEC:AVER:NUMB?;*ESR?")
	require.True(t, ok)
	assert.Equal(t, "8;0", reply)

	reply, _ = in.Handle("MEASure:SPECtrum:EXPosure:TIME 0.5;*ESR?")
	assert.Equal(t, "0", reply)
	reply, _ = in.Handle("MEASure:SPECtrum:EXPosure:TIME?")
	assert.Equal(t, "0.5", reply)

	reply, _ = in.Handle("DEV:SPEC:PIX:COUN?")
	assert.Equal(t, "16", reply)

	reply, _ = in.Handle("DEV:SPEC:PIX:WAV?")
	assert.Len(t, strings.Split(reply, ","), 16)
}

func TestInstrument_Errors(t *testing.T) {
	in := NewInstrument(4)
	in.Handle("*CLS")

	reply, ok := in.Handle("MEAS:SPEC:AVER:NUMB -1;*ESR?")
	require.True(t, ok)
	assert.Equal(t, strconv.Itoa(int(scpi.ExecutionError)), reply)
	assert.Equal(t, 1, in.QueueLen())

	in.Handle("BOGUS:HEADer 3")
	assert.True(t, in.Status().Has(scpi.CommandError))

	reply, _ = in.Handle("SYST:ERR:NEXT?")
	assert.Equal(t, `-222,"Data out of range"`, reply)
	reply, _ = in.Handle("SYST:ERR:NEXT?")
	assert.Equal(t, `-113,"Undefined header"`, reply)
	reply, _ = in.Handle("SYST:ERR:NEXT?")
	assert.Equal(t, `0,"No error"`, reply)

	reply, _ = in.Handle("MEAS:SPEC:EXP:TIME;*ESR?")
	assert.Equal(t, strconv.Itoa(int(scpi.CommandError)), reply, "missing parameter")

	reply, _ = in.Handle("MEAS:SPEC:REF:DARK 1,2,3;*ESR?")
	assert.Equal(t, strconv.Itoa(int(scpi.ExecutionError)), reply, "reference of the wrong length")
}

func TestInstrument_QueueOverflow(t *testing.T) {
	in := NewInstrument(4)
	for range queueDepth + 5 {
		in.Handle("NOPE")
	}
	assert.Equal(t, queueDepth, in.QueueLen())
	var last string
	for range queueDepth {
		last, _ = in.Handle("SYST:ERR:NEXT?")
	}
	assert.Equal(t, `-350,"Queue overflow"`, last)
}

func TestInstrument_Spectrum(t *testing.T) {
	in := NewInstrument(32)
	reply, ok := in.Handle("MEAS:SPEC:SAMP:RAW?")
	require.True(t, ok)

	op, err := scpi.DefaultCatalog().Lookup(scpi.OpRawSpectrum)
	require.NoError(t, err)
	v, err := scpi.Decode(op, reply)
	require.NoError(t, err)
	assert.Equal(t, 32, v.Spectrum.Len())
	assert.GreaterOrEqual(t, v.Spectrum.Timestamp.Microseconds(), int64(0))
}

func TestInstrument_References(t *testing.T) {
	in := NewInstrument(3)
	in.Handle("MEAS:SPEC:REF:LIGH 1,2.5,3")
	reply, _ := in.Handle("MEAS:SPEC:REF:LIGH?")
	assert.Equal(t, "1,2.5,3", reply)

	in.Handle("MEAS:SPEC:STR:STAT ON")
	reply, _ = in.Handle("MEAS:SPEC:STR:STAT?")
	assert.Equal(t, "1", reply)
}
