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
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
)

// Direction tells whether an Operation can be queried, set, or both.
type Direction uint8

const (
	Get Direction = 1 << iota
	Set
	Both = Get | Set
)

func (d Direction) String() string {
	switch d {
	case Get:
		return "get"
	case Set:
		return "set"
	case Both:
		return "get/set"
	}
	return "none"
}

// CanGet reports whether d allows a query.
func (d Direction) CanGet() bool { return d&Get != 0 }

// CanSet reports whether d allows a set command.
func (d Direction) CanSet() bool { return d&Set != 0 }

// Shape is the form a query reply is decoded into.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeInt
	ShapeFloat
	ShapeBool
	ShapeFloats
	ShapeSpectrum
	ShapeText
	ShapeStatus
	ShapeErrorRecord
)

var shapeNames = [...]string{"none", "int", "float", "bool", "floats", "spectrum", "text", "status", "error record"}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// Kind is the primitive type a set command's argument must have.
type Kind uint8

const (
	KindNone Kind = iota
	KindInt
	KindFloat
	KindBool
	KindFloats
)

var kindNames = [...]string{"none", "int", "float", "bool", "floats"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

/*Operation is one logical instrument capability. Operations are plain data:
the codec and the dispatcher are driven entirely by Shape and Kind.*/
type Operation struct {
	/*Name is the human name of the operation and its key in a Catalog, EG
	"exposure time" rather than "MEASure:SPECtrum:EXPosure:TIME"*/
	Name string

	//Mnemonic is the SCPI header without the query mark
	Mnemonic string

	Direction Direction

	//Shape is how a query reply is decoded
	Shape Shape

	//Arg is the argument type a set command takes
	Arg Kind

	/*Timeout is the max time allowed before the exchange is given up on. It is
	the default only: clients may override it per operation.*/
	Timeout time.Duration

	//Unit is the canonical unit of the quantity, empty when dimensionless
	Unit string

	//Description is a human readable string of a brief explanation of the operation's purpose
	Description string
}

/*sanitize derenders ASCII control sequences to readable equivalents*/
func sanitize(s string) string {
	return strings.Replace(strings.Replace(s, "\r", "\\r", -1), "\n", "\\n", -1)
}

//String implements the Stringer interface
func (o Operation) String() string {
	return fmt.Sprintf("%s: %v Mnemonic:%q Direction:%v Reply:%v Arg:%v Unit:%q",
		o.Name, o.Timeout, sanitize(o.Mnemonic), o.Direction, o.Shape, o.Arg, o.Unit)
}

// Query returns the query form of the header.
func (o Operation) Query() string {
	if strings.HasSuffix(o.Mnemonic, "?") {
		return o.Mnemonic
	}
	return o.Mnemonic + "?"
}

// mnemonicRe is the SCPI program header grammar: optional common-command star,
// colon separated keywords.
var mnemonicRe = regexp.MustCompile(`^\*?[A-Za-z][A-Za-z0-9]*(:[A-Za-z][A-Za-z0-9]*)*$`)

/*Validate checks that an Operation is internally consistent: a well formed
mnemonic, a positive timeout, a reply shape if it can be queried and an
argument kind if it can be set with an argument.*/
func (o Operation) Validate() error {
	switch {
	case o.Name == "":
		return errors.New("operation has no name")
	case !mnemonicRe.MatchString(o.Mnemonic):
		return errors.Errorf("operation %q: malformed mnemonic %q", o.Name, o.Mnemonic)
	case o.Timeout <= 0:
		return errors.Errorf("operation %q: timeout must be positive", o.Name)
	case o.Direction == 0:
		return errors.Errorf("operation %q: no direction", o.Name)
	case o.Direction.CanGet() && o.Shape == ShapeNone:
		return errors.Errorf("operation %q: queryable without a reply shape", o.Name)
	case o.Direction == Both && o.Arg == KindNone:
		return errors.Errorf("operation %q: settable without an argument kind", o.Name)
	}
	return nil
}

// ErrUnknownOperation is returned when a name is not in the Catalog.
var ErrUnknownOperation = errors.New("unknown operation")

//Catalog is a map of Operations where the key must be Operation.Name
type Catalog map[string]Operation

/*Lookup returns the named Operation or ErrUnknownOperation.*/
func (c Catalog) Lookup(name string) (Operation, error) {
	op, ok := c[name]
	if !ok {
		return Operation{}, errors.Wrapf(ErrUnknownOperation, "%q", name)
	}
	return op, nil
}

// Names returns the operation names in sorted order.
func (c Catalog) Names() []string {
	names := sort.StringSlice{}
	for name := range c {
		names = append(names, name)
	}
	names.Sort()
	return names
}

//String renders the catalog as a table
func (c Catalog) String() (r string) {
	buf := bytes.NewBufferString("")
	tw := tablewriter.NewWriter(buf)
	tw.SetAutoWrapText(false)
	tw.SetHeader([]string{"Name", "Mnemonic", "Direction", "Reply", "Argument", "Unit", "Timeout"})

	for _, name := range c.Names() {
		op := c[name]
		tw.Append([]string{
			name,
			sanitize(op.Mnemonic),
			op.Direction.String(),
			op.Shape.String(),
			op.Arg.String(),
			op.Unit,
			op.Timeout.String(),
		})
	}
	tw.Render()
	return buf.String()
}

//Labels returns a json array of the stored operation names
func (c Catalog) Labels() (r string) {
	r = "["
	for i, lab := range c.Names() {
		if i > 0 {
			r += ","
		}
		r += fmt.Sprintf("%q", lab)
	}
	r += "]"
	return
}

/*Contains returns true if the catalog contains all of the passed named
operations.  It checks the key values, not the embedded Operation.Name values*/
func (c Catalog) Contains(named ...string) bool {
	if c == nil || len(named) == 0 {
		return false
	}
	for _, name := range named {
		if _, ok := c[name]; !ok {
			return false
		}
	}
	return true
}

/*Clone returns a copy of the Catalog*/
func (c Catalog) Clone() Catalog {
	r := Catalog{}
	for name, op := range c {
		r[name] = op
	}
	return r
}

/*Validate checks every Operation and that each is stored under its own Name.*/
func (c Catalog) Validate() error {
	for _, name := range c.Names() {
		op := c[name]
		if op.Name != name {
			return errors.Errorf("operation %q stored under %q", op.Name, name)
		}
		if err := op.Validate(); err != nil {
			return err
		}
	}
	return nil
}

/*Merge takes multiple catalogs and returns a single catalog. Later catalogs
win on name collisions.*/
func Merge(cats ...Catalog) Catalog {
	c := Catalog{}
	for _, cat := range cats {
		for name, op := range cat {
			c[name] = op
		}
	}
	return c
}
