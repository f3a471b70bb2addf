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
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/NCAR/spektralwerk/scpi"
)

// DefaultIdentity is what *IDN? answers unless WithIdentity says otherwise.
const DefaultIdentity = "Spektralwerk,Core NIR,SIM-0001,0.1.0"

// SCPI standard error codes used by the simulated instrument.
const (
	CodeNoError          = 0
	CodeDataType         = -104
	CodeParameterMissing = -109
	CodeUndefinedHeader  = -113
	CodeDataOutOfRange   = -222
	CodeQueueOverflow    = -350
)

var messages = map[int]string{
	CodeNoError:          "No error",
	CodeDataType:         "Data type error",
	CodeParameterMissing: "Missing parameter",
	CodeUndefinedHeader:  "Undefined header",
	CodeDataOutOfRange:   "Data out of range",
	CodeQueueOverflow:    "Queue overflow",
}

const queueDepth = 16

/*
Instrument is the command interpreter of a simulated Spektralwerk Core. It
holds the settings, the event status register and the error queue, and turns
one request line into at most one reply line.
*/
type Instrument struct {
	mux      sync.Mutex
	catalog  scpi.Catalog
	identity string
	started  time.Time

	pixels int

	exposure, exposureMin, exposureMax float64
	average, averageMin, averageMax    int64
	offset, offsetMin, offsetMax       float64

	dark, light []float64
	streaming   bool

	esr          scpi.Status
	queue        []scpi.InstrumentError
	endlessQueue bool
}

// NewInstrument returns an instrument in its power-on state.
func NewInstrument(pixels int) *Instrument {
	return &Instrument{
		catalog:     scpi.DefaultCatalog(),
		identity:    DefaultIdentity,
		started:     time.Now(),
		pixels:      pixels,
		exposure:    0.01,
		exposureMin: 1e-5,
		exposureMax: 10,
		average:     1,
		averageMin:  1,
		averageMax:  1000,
		offset:      0,
		offsetMin:   -500,
		offsetMax:   500,
		dark:        make([]float64, pixels),
		light:       make([]float64, pixels),
		esr:         scpi.PowerOn,
	}
}

// Handle interprets one request line, which may chain commands with ';'. The
// replies of all queries are joined with ';'. ok is false when nothing is to
// be sent back.
func (in *Instrument) Handle(line string) (reply string, ok bool) {
	in.mux.Lock()
	defer in.mux.Unlock()

	var replies []string
	for _, cmd := range strings.Split(strings.TrimSpace(line), ";") {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		if r, query := in.execute(cmd); query {
			replies = append(replies, r)
		}
	}
	if len(replies) == 0 {
		return "", false
	}
	return strings.Join(replies, ";"), true
}

// Status returns the event status register without clearing it.
func (in *Instrument) Status() scpi.Status {
	in.mux.Lock()
	defer in.mux.Unlock()
	return in.esr
}

// QueueLen returns the number of entries waiting in the error queue.
func (in *Instrument) QueueLen() int {
	in.mux.Lock()
	defer in.mux.Unlock()
	return len(in.queue)
}

func (in *Instrument) execute(cmd string) (string, bool) {
	header, arg, _ := strings.Cut(cmd, " ")
	arg = strings.TrimSpace(arg)
	query := strings.HasSuffix(header, "?")
	header = strings.TrimSuffix(header, "?")

	op, found := in.resolve(header)
	switch {
	case !found:
		in.fail(CodeUndefinedHeader)
		return "", query
	case query && !op.Direction.CanGet():
		in.fail(CodeUndefinedHeader)
		return "", true
	case query:
		return in.get(op.Name), true
	case !op.Direction.CanSet():
		in.fail(CodeUndefinedHeader)
		return "", false
	case arg == "" && op.Arg != scpi.KindNone:
		in.fail(CodeParameterMissing)
		return "", false
	}
	in.set(op.Name, arg)
	return "", false
}

// resolve finds the operation whose mnemonic matches header in long or short form.
func (in *Instrument) resolve(header string) (scpi.Operation, bool) {
	for _, op := range in.catalog {
		if headerMatches(op.Mnemonic, header) {
			return op, true
		}
	}
	return scpi.Operation{}, false
}

func headerMatches(mnemonic, header string) bool {
	want := strings.Split(mnemonic, ":")
	got := strings.Split(strings.TrimPrefix(header, ":"), ":")
	if len(want) != len(got) {
		return false
	}
	for i, kw := range want {
		if !strings.EqualFold(kw, got[i]) && !strings.EqualFold(shortForm(kw), got[i]) {
			return false
		}
	}
	return true
}

// shortForm is the leading run of upper case characters of a keyword.
func shortForm(kw string) string {
	i := 0
	for i < len(kw) && (kw[i] < 'a' || kw[i] > 'z') {
		i++
	}
	return kw[:i]
}

func (in *Instrument) fail(code int) {
	switch {
	case code <= -100 && code > -200:
		in.esr |= scpi.CommandError
	case code <= -200 && code > -300:
		in.esr |= scpi.ExecutionError
	case code <= -300 && code > -400:
		in.esr |= scpi.DeviceError
	default:
		in.esr |= scpi.QueryError
	}
	if len(in.queue) == queueDepth {
		in.queue[queueDepth-1] = scpi.InstrumentError{Code: CodeQueueOverflow, Message: messages[CodeQueueOverflow]}
		return
	}
	in.queue = append(in.queue, scpi.InstrumentError{Code: code, Message: messages[code]})
}

func (in *Instrument) get(name string) string {
	switch name {
	case scpi.OpIdentity:
		return in.identity
	case scpi.OpStatus:
		st := in.esr
		in.esr = 0
		return strconv.Itoa(int(st))
	case scpi.OpErrorNext:
		return in.popError()
	case scpi.OpPixelCount:
		return strconv.Itoa(in.pixels)
	case scpi.OpWavelengths:
		return formatFloats(in.wavelengths())
	case scpi.OpWavelengthUnit:
		return scpi.UnitNanometer
	case scpi.OpExposureTime:
		return formatFloat(in.exposure)
	case scpi.OpExposureTimeMin:
		return formatFloat(in.exposureMin)
	case scpi.OpExposureTimeMax:
		return formatFloat(in.exposureMax)
	case scpi.OpExposureTimeUnit:
		return scpi.UnitSecond
	case scpi.OpAverageNumber:
		return strconv.FormatInt(in.average, 10)
	case scpi.OpAverageNumberMin:
		return strconv.FormatInt(in.averageMin, 10)
	case scpi.OpAverageNumberMax:
		return strconv.FormatInt(in.averageMax, 10)
	case scpi.OpOffsetVoltage:
		return formatFloat(in.offset)
	case scpi.OpOffsetVoltageMin:
		return formatFloat(in.offsetMin)
	case scpi.OpOffsetVoltageMax:
		return formatFloat(in.offsetMax)
	case scpi.OpOffsetVoltageUnit:
		return scpi.UnitMillivolt
	case scpi.OpDarkReference:
		return formatFloats(in.dark)
	case scpi.OpLightReference:
		return formatFloats(in.light)
	case scpi.OpRawSpectrum:
		return in.spectrum(1)
	case scpi.OpAveragedSpectrum:
		return in.spectrum(in.average)
	case scpi.OpStreamState:
		if in.streaming {
			return "1"
		}
		return "0"
	}
	in.fail(CodeUndefinedHeader)
	return ""
}

func (in *Instrument) set(name, arg string) {
	switch name {
	case scpi.OpClearStatus:
		in.esr = 0
		in.queue = nil
	case scpi.OpExposureTime:
		in.setFloat(&in.exposure, arg, in.exposureMin, in.exposureMax)
	case scpi.OpOffsetVoltage:
		in.setFloat(&in.offset, arg, in.offsetMin, in.offsetMax)
	case scpi.OpAverageNumber:
		n, err := strconv.ParseInt(arg, 10, 64)
		switch {
		case err != nil:
			in.fail(CodeDataType)
		case n < in.averageMin || n > in.averageMax:
			in.fail(CodeDataOutOfRange)
		default:
			in.average = n
		}
	case scpi.OpDarkReference:
		in.setReference(&in.dark, arg)
	case scpi.OpLightReference:
		in.setReference(&in.light, arg)
	case scpi.OpStreamState:
		switch strings.ToUpper(arg) {
		case "1", "ON":
			in.streaming = true
		case "0", "OFF":
			in.streaming = false
		default:
			in.fail(CodeDataType)
		}
	default:
		in.fail(CodeUndefinedHeader)
	}
}

func (in *Instrument) setFloat(dst *float64, arg string, lo, hi float64) {
	v, err := strconv.ParseFloat(arg, 64)
	switch {
	case err != nil:
		in.fail(CodeDataType)
	case v < lo || v > hi:
		in.fail(CodeDataOutOfRange)
	default:
		*dst = v
	}
}

func (in *Instrument) setReference(dst *[]float64, arg string) {
	fields := strings.Split(arg, scpi.Separator)
	if len(fields) != in.pixels {
		in.fail(CodeDataOutOfRange)
		return
	}
	ref := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			in.fail(CodeDataType)
			return
		}
		ref[i] = v
	}
	*dst = ref
}

func (in *Instrument) popError() string {
	switch {
	case in.endlessQueue:
		return formatRecord(CodeQueueOverflow, messages[CodeQueueOverflow])
	case len(in.queue) == 0:
		return formatRecord(CodeNoError, messages[CodeNoError])
	}
	e := in.queue[0]
	in.queue = in.queue[1:]
	return formatRecord(e.Code, e.Message)
}

func formatRecord(code int, msg string) string {
	return fmt.Sprintf(`%d,"%s"`, code, strings.ReplaceAll(msg, `"`, `""`))
}

// wavelengths spans 900 to 1700 nm evenly.
func (in *Instrument) wavelengths() []float64 {
	wl := make([]float64, in.pixels)
	if in.pixels == 1 {
		wl[0] = 900
		return wl
	}
	step := 800 / float64(in.pixels-1)
	for i := range wl {
		wl[i] = 900 + float64(i)*step
	}
	return wl
}

// spectrum renders "<µs since power on>,<pixel>,...". The intensities are a
// smooth peak scaled by exposure time, minus the dark reference.
func (in *Instrument) spectrum(averaged int64) string {
	ts := time.Since(in.started).Microseconds()
	data := make([]float64, in.pixels)
	center := float64(in.pixels) / 2
	for i := range data {
		x := (float64(i) - center) / (float64(in.pixels)/8 + 1)
		v := 100 + 3e4*in.exposure*math.Exp(-x*x/2) + in.offset/10 - in.dark[i]
		data[i] = math.Round(v*float64(averaged)) / float64(averaged)
	}
	return strconv.FormatInt(ts, 10) + scpi.Separator + formatFloats(data)
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'g', -1, 64) }

func formatFloats(fs []float64) string {
	parts := make([]string, len(fs))
	for i, f := range fs {
		parts[i] = formatFloat(f)
	}
	return strings.Join(parts, scpi.Separator)
}
