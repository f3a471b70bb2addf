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

import "time"

// Operation names of the Spektralwerk Core command set.
const (
	OpIdentity    = "identity"
	OpClearStatus = "clear status"
	OpStatus      = "status"
	OpErrorNext   = "error next"

	OpPixelCount     = "pixel count"
	OpWavelengths    = "wavelengths"
	OpWavelengthUnit = "wavelength unit"

	OpExposureTime     = "exposure time"
	OpExposureTimeMin  = "exposure time min"
	OpExposureTimeMax  = "exposure time max"
	OpExposureTimeUnit = "exposure time unit"

	OpAverageNumber    = "average number"
	OpAverageNumberMin = "average number min"
	OpAverageNumberMax = "average number max"

	OpOffsetVoltage     = "offset voltage"
	OpOffsetVoltageMin  = "offset voltage min"
	OpOffsetVoltageMax  = "offset voltage max"
	OpOffsetVoltageUnit = "offset voltage unit"

	OpDarkReference  = "dark reference"
	OpLightReference = "light reference"

	OpRawSpectrum      = "raw spectrum"
	OpAveragedSpectrum = "averaged spectrum"
	OpStreamState      = "stream state"
)

// Canonical units. Replies are never parsed for units; these are fixed here.
const (
	UnitSecond    = "s"
	UnitMillivolt = "mV"
	UnitNanometer = "nm"
)

const (
	// QueryTimeout is the default for short register style exchanges.
	QueryTimeout = 1 * time.Second
	// AcquisitionTimeout is the default for anything that waits on the detector
	// or moves a pixel array over the wire.
	AcquisitionTimeout = 5 * time.Second
)

var defaultCatalog = Catalog{
	OpIdentity: {
		Name: OpIdentity, Mnemonic: "*IDN", Direction: Get, Shape: ShapeText,
		Timeout: QueryTimeout, Description: "vendor, model, serial number and firmware version",
	},
	OpClearStatus: {
		Name: OpClearStatus, Mnemonic: "*CLS", Direction: Set,
		Timeout: QueryTimeout, Description: "clear the event status register and the error queue",
	},
	OpStatus: {
		Name: OpStatus, Mnemonic: "*ESR", Direction: Get, Shape: ShapeStatus,
		Timeout: QueryTimeout, Description: "read and clear the event status register",
	},
	OpErrorNext: {
		Name: OpErrorNext, Mnemonic: "SYSTem:ERRor:NEXT", Direction: Get, Shape: ShapeErrorRecord,
		Timeout: QueryTimeout, Description: "pop the oldest entry of the error queue",
	},

	OpPixelCount: {
		Name: OpPixelCount, Mnemonic: "DEVice:SPECtrometer:PIXels:COUNt", Direction: Get, Shape: ShapeInt,
		Timeout: QueryTimeout, Description: "number of detector pixels",
	},
	OpWavelengths: {
		Name: OpWavelengths, Mnemonic: "DEVice:SPECtrometer:PIXels:WAVelength", Direction: Get, Shape: ShapeFloats,
		Timeout: AcquisitionTimeout, Unit: UnitNanometer, Description: "wavelength of every pixel",
	},
	OpWavelengthUnit: {
		Name: OpWavelengthUnit, Mnemonic: "DEVice:SPECtrometer:PIXels:WAVelength:UNIT", Direction: Get, Shape: ShapeText,
		Timeout: QueryTimeout, Description: "unit the instrument reports wavelengths in",
	},

	OpExposureTime: {
		Name: OpExposureTime, Mnemonic: "MEASure:SPECtrum:EXPosure:TIME", Direction: Both, Shape: ShapeFloat, Arg: KindFloat,
		Timeout: QueryTimeout, Unit: UnitSecond, Description: "detector exposure time",
	},
	OpExposureTimeMin: {
		Name: OpExposureTimeMin, Mnemonic: "MEASure:SPECtrum:EXPosure:TIME:MINimum", Direction: Get, Shape: ShapeFloat,
		Timeout: QueryTimeout, Unit: UnitSecond, Description: "shortest accepted exposure time",
	},
	OpExposureTimeMax: {
		Name: OpExposureTimeMax, Mnemonic: "MEASure:SPECtrum:EXPosure:TIME:MAXimum", Direction: Get, Shape: ShapeFloat,
		Timeout: QueryTimeout, Unit: UnitSecond, Description: "longest accepted exposure time",
	},
	OpExposureTimeUnit: {
		Name: OpExposureTimeUnit, Mnemonic: "MEASure:SPECtrum:EXPosure:TIME:UNIT", Direction: Get, Shape: ShapeText,
		Timeout: QueryTimeout, Description: "unit the instrument reports exposure times in",
	},

	OpAverageNumber: {
		Name: OpAverageNumber, Mnemonic: "MEASure:SPECtrum:AVERage:NUMBer", Direction: Both, Shape: ShapeInt, Arg: KindInt,
		Timeout: QueryTimeout, Description: "number of spectra in the rolling average",
	},
	OpAverageNumberMin: {
		Name: OpAverageNumberMin, Mnemonic: "MEASure:SPECtrum:AVERage:NUMBer:MINimum", Direction: Get, Shape: ShapeInt,
		Timeout: QueryTimeout, Description: "smallest accepted average number",
	},
	OpAverageNumberMax: {
		Name: OpAverageNumberMax, Mnemonic: "MEASure:SPECtrum:AVERage:NUMBer:MAXimum", Direction: Get, Shape: ShapeInt,
		Timeout: QueryTimeout, Description: "largest accepted average number",
	},

	OpOffsetVoltage: {
		Name: OpOffsetVoltage, Mnemonic: "DEVice:SPECtrometer:PIXels:OFFSet:VOLTage", Direction: Both, Shape: ShapeFloat, Arg: KindFloat,
		Timeout: QueryTimeout, Unit: UnitMillivolt, Description: "pixel offset voltage",
	},
	OpOffsetVoltageMin: {
		Name: OpOffsetVoltageMin, Mnemonic: "DEVice:SPECtrometer:PIXels:OFFSet:VOLTage:MINimum", Direction: Get, Shape: ShapeFloat,
		Timeout: QueryTimeout, Unit: UnitMillivolt, Description: "lowest accepted offset voltage",
	},
	OpOffsetVoltageMax: {
		Name: OpOffsetVoltageMax, Mnemonic: "DEVice:SPECtrometer:PIXels:OFFSet:VOLTage:MAXimum", Direction: Get, Shape: ShapeFloat,
		Timeout: QueryTimeout, Unit: UnitMillivolt, Description: "highest accepted offset voltage",
	},
	OpOffsetVoltageUnit: {
		Name: OpOffsetVoltageUnit, Mnemonic: "DEVice:SPECtrometer:PIXels:OFFSet:VOLTage:UNIT", Direction: Get, Shape: ShapeText,
		Timeout: QueryTimeout, Description: "unit the instrument reports offset voltages in",
	},

	OpDarkReference: {
		Name: OpDarkReference, Mnemonic: "MEASure:SPECtrum:REFerence:DARK", Direction: Both, Shape: ShapeFloats, Arg: KindFloats,
		Timeout: AcquisitionTimeout, Description: "stored no-light baseline spectrum",
	},
	OpLightReference: {
		Name: OpLightReference, Mnemonic: "MEASure:SPECtrum:REFerence:LIGHt", Direction: Both, Shape: ShapeFloats, Arg: KindFloats,
		Timeout: AcquisitionTimeout, Description: "stored full-light baseline spectrum",
	},

	OpRawSpectrum: {
		Name: OpRawSpectrum, Mnemonic: "MEASure:SPECtrum:SAMPle:RAW", Direction: Get, Shape: ShapeSpectrum,
		Timeout: AcquisitionTimeout, Description: "single raw spectrum with instrument timestamp",
	},
	OpAveragedSpectrum: {
		Name: OpAveragedSpectrum, Mnemonic: "MEASure:SPECtrum:SAMPle:AVERage", Direction: Get, Shape: ShapeSpectrum,
		Timeout: AcquisitionTimeout, Description: "rolling average of raw spectra with instrument timestamp",
	},
	OpStreamState: {
		Name: OpStreamState, Mnemonic: "MEASure:SPECtrum:STReam:STATe", Direction: Both, Shape: ShapeBool, Arg: KindBool,
		Timeout: QueryTimeout, Description: "continuous acquisition on the instrument side",
	},
}

/*DefaultCatalog returns a copy of the Spektralwerk Core operation catalog.*/
func DefaultCatalog() Catalog {
	return defaultCatalog.Clone()
}

// UnitOperations maps a quantity to the operation that queries its unit.
var UnitOperations = map[string]string{
	OpExposureTime:  OpExposureTimeUnit,
	OpOffsetVoltage: OpOffsetVoltageUnit,
	OpWavelengths:   OpWavelengthUnit,
}
