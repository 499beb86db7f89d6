// {{{ Copyright (c) Paul R. Tagliamonte <paul@k3xec.com>, 2021
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE. }}}

package gpib

import (
	"strings"
)

// Status is the 16 bit ibsta word returned by every library call.
type Status uint16

// Status bits, in ibsta bit order.
const (
	DCAS Status = 1 << iota
	DTAS
	LACS
	TACS
	ATN
	CIC
	REM
	LOK
	CMPL
	EVENT
	SPOLL
	RQS
	SRQI
	END
	TIMO
	ERR
)

var statusNames = [16]struct {
	name string
	desc string
}{
	{"DCAS", "device clear"},
	{"DTAS", "device trigger"},
	{"LACS", "board is currently addressed as a listener"},
	{"TACS", "board is currently addressed as a talker"},
	{"ATN", "ATN line is asserted"},
	{"CIC", "board is controller-in-charge, able to set the ATN line"},
	{"REM", "board is in 'remote' state"},
	{"LOK", "board is in 'lockout' state"},
	{"CMPL", "I/O operation complete"},
	{"EVENT", "one or more clear, trigger, or interface clear event received"},
	{"SPOLL", "board is serial polled"},
	{"RQS", "device has requested service"},
	{"SRQI", "a device connected to the board is asserting the SRQ line"},
	{"END", "last I/O operation ended with the EOI line asserted"},
	{"TIMO", "last I/O operation, or ibwait, timed out"},
	{"ERR", "last function call failed"},
}

// DecodeStatus converts a raw ibsta value. Bits above the 16th are
// dropped.
func DecodeStatus(raw int) Status {
	return Status(uint16(raw))
}

// Bits returns the raw ibsta value.
func (s Status) Bits() int {
	return int(s)
}

// Has reports whether every bit of flag is set.
func (s Status) Has(flag Status) bool {
	return s&flag == flag
}

// With returns s with flag set. It is used to build ibwait masks.
func (s Status) With(flag Status) Status {
	return s | flag
}

// Without returns s with flag cleared.
func (s Status) Without(flag Status) Status {
	return s &^ flag
}

func (s Status) each(fn func(i int)) {
	for i := range statusNames {
		if s&(1<<i) != 0 {
			fn(i)
		}
	}
}

func (s Status) String() string {
	if s == 0 {
		return "none"
	}
	parts := make([]string, 0, 4)
	s.each(func(i int) { parts = append(parts, statusNames[i].name) })
	return strings.Join(parts, " ")
}

// Describe is like String, with the long meaning of every set flag.
func (s Status) Describe() string {
	if s == 0 {
		return "no flag set"
	}
	parts := make([]string, 0, 4)
	s.each(func(i int) {
		parts = append(parts, statusNames[i].name+" ("+statusNames[i].desc+")")
	})
	return strings.Join(parts, ", ")
}

// StatusFlags is the structured form of a Status.
type StatusFlags struct {
	DCAS  bool
	DTAS  bool
	LACS  bool
	TACS  bool
	ATN   bool
	CIC   bool
	REM   bool
	LOK   bool
	CMPL  bool
	EVENT bool
	SPOLL bool
	RQS   bool
	SRQI  bool
	END   bool
	TIMO  bool
	ERR   bool
}

func (f *StatusFlags) fields() [16]*bool {
	return [16]*bool{
		&f.DCAS, &f.DTAS, &f.LACS, &f.TACS, &f.ATN, &f.CIC, &f.REM, &f.LOK,
		&f.CMPL, &f.EVENT, &f.SPOLL, &f.RQS, &f.SRQI, &f.END, &f.TIMO, &f.ERR,
	}
}

// Flags expands s into one bool per bit.
func (s Status) Flags() StatusFlags {
	var f StatusFlags
	for i, p := range f.fields() {
		*p = s&(1<<i) != 0
	}
	return f
}

// Status packs the flags back into a Status.
func (f StatusFlags) Status() Status {
	var s Status
	for i, p := range f.fields() {
		if *p {
			s |= 1 << i
		}
	}
	return s
}

// vim: foldmethod=marker
