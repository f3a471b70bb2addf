package scpi

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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func op(t *testing.T, name string) Operation {
	t.Helper()
	o, err := DefaultCatalog().Lookup(name)
	require.NoError(t, err)
	return o
}

// echoed takes the argument of an encoded set command as if the instrument replied with it.
func echoed(t *testing.T, cmd string) string {
	t.Helper()
	i := strings.IndexByte(cmd, ' ')
	require.Positive(t, i, "set command %q has no argument", cmd)
	return cmd[i+1:]
}

func TestEncode_Query(t *testing.T) {
	cmd, err := Encode(op(t, OpExposureTime), nil)
	require.NoError(t, err)
	assert.Equal(t, "MEASure:SPECtrum:EXPosure:TIME?", cmd)

	cmd, err = Encode(op(t, OpIdentity), nil)
	require.NoError(t, err)
	assert.Equal(t, "*IDN?", cmd)

	cmd, err = Encode(op(t, OpClearStatus), nil)
	require.NoError(t, err)
	assert.Equal(t, "*CLS", cmd)
}

func TestEncode_Set(t *testing.T) {
	tests := []struct {
		op   string
		arg  any
		want string
	}{
		{OpAverageNumber, 8, "MEASure:SPECtrum:AVERage:NUMBer 8"},
		{OpAverageNumber, -1, "MEASure:SPECtrum:AVERage:NUMBer -1"},
		{OpAverageNumber, uint16(12), "MEASure:SPECtrum:AVERage:NUMBer 12"},
		{OpExposureTime, 0.5, "MEASure:SPECtrum:EXPosure:TIME 0.5"},
		{OpExposureTime, 2, "MEASure:SPECtrum:EXPosure:TIME 2"},
		{OpExposureTime, 1e-5, "MEASure:SPECtrum:EXPosure:TIME 1e-05"},
		{OpStreamState, true, "MEASure:SPECtrum:STReam:STATe 1"},
		{OpStreamState, false, "MEASure:SPECtrum:STReam:STATe 0"},
		{OpDarkReference, []float64{1, 2.5, 3}, "MEASure:SPECtrum:REFerence:DARK 1,2.5,3"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cmd, err := Encode(op(t, tt.op), tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd)
		})
	}
}

func TestEncode_Errors(t *testing.T) {
	tests := []struct {
		name string
		op   string
		arg  any
	}{
		{"float for int", OpAverageNumber, 8.5},
		{"string for int", OpAverageNumber, "8"},
		{"int for bool", OpStreamState, 1},
		{"string for float", OpExposureTime, "0.5"},
		{"nan", OpExposureTime, nanValue()},
		{"slice type", OpDarkReference, []int{1, 2}},
		{"argument to a query", OpPixelCount, 256},
		{"argument to a bare command", OpClearStatus, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(op(t, tt.op), tt.arg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEncode)
			var ee *EncodeError
			require.ErrorAs(t, err, &ee)
			assert.Equal(t, tt.op, ee.Op)
		})
	}

	setOnly := Operation{Name: "set only", Mnemonic: "A", Direction: Set, Arg: KindInt, Timeout: time.Second}
	_, err := Encode(setOnly, nil)
	assert.ErrorIs(t, err, ErrEncode)
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}

func TestRoundTrip_Scalars(t *testing.T) {
	ints := []int{0, 1, 8, 1000, -3, 1 << 40}
	for _, v := range ints {
		cmd, err := Encode(op(t, OpAverageNumber), v)
		require.NoError(t, err)
		got, err := Decode(op(t, OpAverageNumber), echoed(t, cmd))
		require.NoError(t, err)
		assert.Equal(t, int64(v), got.Int)
	}

	floats := []float64{0, 0.5, 1e-6, 123.456, -7.25, 3.141592653589793}
	for _, v := range floats {
		cmd, err := Encode(op(t, OpExposureTime), v)
		require.NoError(t, err)
		got, err := Decode(op(t, OpExposureTime), echoed(t, cmd))
		require.NoError(t, err)
		assert.Equal(t, v, got.Float)
	}

	for _, v := range []bool{true, false} {
		cmd, err := Encode(op(t, OpStreamState), v)
		require.NoError(t, err)
		got, err := Decode(op(t, OpStreamState), echoed(t, cmd))
		require.NoError(t, err)
		assert.Equal(t, v, got.Bool)
	}

	ref := []float64{0.25, 1, 1e3}
	cmd, err := Encode(op(t, OpLightReference), ref)
	require.NoError(t, err)
	got, err := Decode(op(t, OpLightReference), echoed(t, cmd))
	require.NoError(t, err)
	assert.Equal(t, ref, got.Floats)
}

func TestDecode_Scalars(t *testing.T) {
	v, err := Decode(op(t, OpExposureTime), "0.5 s")
	require.NoError(t, err)
	assert.Equal(t, ShapeFloat, v.Shape)
	assert.Equal(t, 0.5, v.Float)

	v, err = Decode(op(t, OpOffsetVoltage), "  -12.5 mV\r")
	require.NoError(t, err)
	assert.Equal(t, -12.5, v.Float)

	v, err = Decode(op(t, OpPixelCount), "256")
	require.NoError(t, err)
	assert.Equal(t, int64(256), v.Int)

	_, err = Decode(op(t, OpPixelCount), "256.0")
	assert.ErrorIs(t, err, ErrDecode)

	_, err = Decode(op(t, OpExposureTime), "")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecode_Bool(t *testing.T) {
	for raw, want := range map[string]bool{"1": true, "0": false, "ON": true, "off": false, " On ": true} {
		v, err := Decode(op(t, OpStreamState), raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, v.Bool, raw)
	}
	_, err := Decode(op(t, OpStreamState), "maybe")
	var de *DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "maybe", de.Raw)
}

func TestDecode_Floats(t *testing.T) {
	v, err := Decode(op(t, OpWavelengths), "")
	require.NoError(t, err)
	assert.NotNil(t, v.Floats)
	assert.Empty(t, v.Floats)

	v, err = Decode(op(t, OpWavelengths), "900.5, 901.25,902")
	require.NoError(t, err)
	assert.Equal(t, []float64{900.5, 901.25, 902}, v.Floats)

	_, err = Decode(op(t, OpWavelengths), "900.5,,902")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecode_Spectrum(t *testing.T) {
	v, err := Decode(op(t, OpRawSpectrum), "1500000,1,2,3")
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, v.Spectrum.Timestamp)
	assert.Equal(t, []float64{1, 2, 3}, v.Spectrum.Data)
	assert.Equal(t, 3, v.Spectrum.Len())

	v, err = Decode(op(t, OpRawSpectrum), "42")
	require.NoError(t, err)
	assert.Zero(t, v.Spectrum.Len())

	_, err = Decode(op(t, OpRawSpectrum), "")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecode_ErrorRecord(t *testing.T) {
	tests := map[string]InstrumentError{
		`0,"No error"`:                        {Code: 0, Message: "No error"},
		`+0,"No error"`:                       {Code: 0, Message: "No error"},
		`-222,"Data out of range"`:            {Code: -222, Message: "Data out of range"},
		`-113, "Undefined header;FOO"`:        {Code: -113, Message: "Undefined header;FOO"},
		`-100,"Say ""hello"", then, goodbye"`: {Code: -100, Message: `Say "hello", then, goodbye`},
	}
	for raw, want := range tests {
		v, err := Decode(op(t, OpErrorNext), raw)
		require.NoError(t, err, raw)
		assert.Equal(t, want, v.Record, raw)
	}
	assert.True(t, InstrumentError{}.NoError())

	for _, raw := range []string{`-222`, `abc,"x"`, `-222,Data out of range`, `-222,"`} {
		_, err := Decode(op(t, OpErrorNext), raw)
		assert.ErrorIs(t, err, ErrDecode, raw)
	}
}

func TestDecode_Status(t *testing.T) {
	v, err := Decode(op(t, OpStatus), "32")
	require.NoError(t, err)
	assert.Equal(t, CommandError, v.Status)

	_, err = Decode(op(t, OpStatus), "256")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestDecode_None(t *testing.T) {
	v, err := Decode(op(t, OpClearStatus), "")
	require.NoError(t, err)
	assert.Equal(t, ShapeNone, v.Shape)

	_, err = Decode(op(t, OpClearStatus), "surprise")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestFrameAndSplitStatus(t *testing.T) {
	assert.Equal(t, []byte("*IDN?;*ESR?\n"), Frame("*IDN?", true))
	assert.Equal(t, []byte("*ESR?\n"), Frame("*ESR?", false))

	o := op(t, OpIdentity)
	payload, st, err := SplitStatus(o, "Vendor,Model;x,1;0")
	require.NoError(t, err)
	assert.Equal(t, "Vendor,Model;x,1", payload)
	assert.Equal(t, Status(0), st)

	payload, st, err = SplitStatus(o, "32")
	require.NoError(t, err)
	assert.Empty(t, payload)
	assert.True(t, st.HasError())

	_, _, err = SplitStatus(o, "8;nope")
	assert.ErrorIs(t, err, ErrDecode)
}
