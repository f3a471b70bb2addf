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

import "strings"

// Status is the IEEE 488.2 standard event status register as read with *ESR?.
type Status uint8

// Bits of the event status register.
const (
	OperationComplete Status = 1 << iota
	RequestControl
	QueryError
	DeviceError
	ExecutionError
	CommandError
	UserRequest
	PowerOn
)

// ErrorBits are the bits that mean a command was not carried out.
const ErrorBits = QueryError | DeviceError | ExecutionError | CommandError

var statusNames = [...]string{"OPC", "RQC", "QYE", "DDE", "EXE", "CME", "URQ", "PON"}

// Has reports whether every bit in b is set.
func (s Status) Has(b Status) bool { return s&b == b }

// HasError reports whether any error bit is set.
func (s Status) HasError() bool { return s&ErrorBits != 0 }

// Names returns the mnemonic of every set bit, lowest bit first.
func (s Status) Names() []string {
	var names []string
	for i, name := range statusNames {
		if s&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return names
}

func (s Status) String() string {
	if s == 0 {
		return "0"
	}
	return strings.Join(s.Names(), "|")
}
