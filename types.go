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
	"fmt"
	"strings"
	"time"
)

// Timeout is one of the 18 timeout codes understood by ibtmo and ibdev.
type Timeout int

// Timeout codes.
const (
	TNone Timeout = iota
	T10us
	T30us
	T100us
	T300us
	T1ms
	T3ms
	T10ms
	T30ms
	T100ms
	T300ms
	T1s
	T3s
	T10s
	T30s
	T100s
	T300s
	T1000s
)

var timeoutDurations = [...]time.Duration{
	TNone:  0,
	T10us:  10 * time.Microsecond,
	T30us:  30 * time.Microsecond,
	T100us: 100 * time.Microsecond,
	T300us: 300 * time.Microsecond,
	T1ms:   time.Millisecond,
	T3ms:   3 * time.Millisecond,
	T10ms:  10 * time.Millisecond,
	T30ms:  30 * time.Millisecond,
	T100ms: 100 * time.Millisecond,
	T300ms: 300 * time.Millisecond,
	T1s:    time.Second,
	T3s:    3 * time.Second,
	T10s:   10 * time.Second,
	T30s:   30 * time.Second,
	T100s:  100 * time.Second,
	T300s:  300 * time.Second,
	T1000s: 1000 * time.Second,
}

// Valid reports whether t is one of the 18 codes.
func (t Timeout) Valid() bool {
	return t >= TNone && t <= T1000s
}

// Duration is the wall time of t. TNone, which never times out, is 0.
func (t Timeout) Duration() time.Duration {
	if !t.Valid() {
		return 0
	}
	return timeoutDurations[t]
}

func (t Timeout) String() string {
	switch {
	case t == TNone:
		return "none"
	case t.Valid():
		return t.Duration().String()
	default:
		return fmt.Sprintf("Timeout(%d)", int(t))
	}
}

// ClosestTimeout returns the shortest code that is at least d. Zero or
// negative durations map to TNone, anything past 1000s to T1000s.
func ClosestTimeout(d time.Duration) Timeout {
	if d <= 0 {
		return TNone
	}
	for t := T10us; t <= T1000s; t++ {
		if timeoutDurations[t] >= d {
			return t
		}
	}
	return T1000s
}

func checkTimeout(t Timeout) error {
	if !t.Valid() {
		return valueErrorf("timeout code must be between 0 and 17, got %d", int(t))
	}
	return nil
}

// EOSMode is the ibeos/ibdev eos argument: the end-of-string byte in the
// low 8 bits, plus REOS, XEOS and BIN.
type EOSMode uint16

// EOS mode flags.
const (
	// REOS terminates reads when the eos byte is received.
	REOS EOSMode = 0x400

	// XEOS asserts EOI whenever the eos byte is sent.
	XEOS EOSMode = 0x800

	// BIN compares all 8 bits of the eos byte instead of the low 7.
	BIN EOSMode = 0x1000
)

const eosMask = REOS | XEOS | BIN | 0xff

// EOS returns mode with c as the end-of-string byte.
func EOS(c byte, mode EOSMode) EOSMode {
	return mode&^0xff | EOSMode(c)
}

// Char is the end-of-string byte.
func (m EOSMode) Char() byte {
	return byte(m & 0xff)
}

// Valid reports whether m only uses the defined bits.
func (m EOSMode) Valid() bool {
	return m&^eosMask == 0
}

func (m EOSMode) String() string {
	var parts []string
	for _, f := range []struct {
		flag EOSMode
		name string
	}{{REOS, "REOS"}, {XEOS, "XEOS"}, {BIN, "BIN"}} {
		if m&f.flag != 0 {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("no flag set, eos 0x%02x", m.Char())
	}
	return fmt.Sprintf("%s, eos 0x%02x", strings.Join(parts, " "), m.Char())
}

func checkEOS(m EOSMode) error {
	if !m.Valid() {
		return valueErrorf("eos mode 0x%x sets bits other than REOS, XEOS, BIN and the eos byte", int(m))
	}
	return nil
}

// EOTMode says how the last byte of a multidevice send is marked.
type EOTMode int

// EOT modes for Send, SendDataBytes and SendList.
const (
	// NULLend sends the data as is.
	NULLend EOTMode = 0

	// DABend asserts EOI with the last byte.
	DABend EOTMode = 1

	// NLend appends a newline sent with EOI.
	NLend EOTMode = 2
)

func (m EOTMode) String() string {
	switch m {
	case NULLend:
		return "NULLend"
	case DABend:
		return "DABend"
	case NLend:
		return "NLend"
	default:
		return fmt.Sprintf("EOTMode(%d)", int(m))
	}
}

func checkEOT(m EOTMode) error {
	if m < NULLend || m > NLend {
		return valueErrorf("unknown send termination mode %d", int(m))
	}
	return nil
}

// Option is an ibask/ibconfig option code.
type Option int

// Option codes.
const (
	OptionPAD            Option = 0x1
	OptionSAD            Option = 0x2
	OptionTMO            Option = 0x3
	OptionEOT            Option = 0x4
	OptionPPC            Option = 0x5
	OptionREADDR         Option = 0x6
	OptionAUTOPOLL       Option = 0x7
	OptionCICPROT        Option = 0x8
	OptionSC             Option = 0xa
	OptionSRE            Option = 0xb
	OptionEOSrd          Option = 0xc
	OptionEOSwrt         Option = 0xd
	OptionEOScmp         Option = 0xe
	OptionEOSchar        Option = 0xf
	OptionPP2            Option = 0x10
	OptionTIMING         Option = 0x11
	OptionReadAdjust     Option = 0x13
	OptionWriteAdjust    Option = 0x14
	OptionEventQueue     Option = 0x15
	OptionSPollBit       Option = 0x16
	OptionSendLLO        Option = 0x17
	OptionSPollTime      Option = 0x18
	OptionPPollTime      Option = 0x19
	OptionEndBitIsNormal Option = 0x1a
	OptionUnAddr         Option = 0x1b
	OptionHSCableLength  Option = 0x1f
	OptionIst            Option = 0x20
	OptionRsv            Option = 0x21
	OptionBNA            Option = 0x200
	OptionSevenBitEOS    Option = 0x1000
)

var optionNames = map[Option][2]string{
	OptionPAD:            {"PAD", "GPIB primary address"},
	OptionSAD:            {"SAD", "GPIB secondary address (0 for none, 0x60 to 0x7e for secondary addresses 0 to 30)"},
	OptionTMO:            {"TMO", "timeout setting for io operations (a number from 0 to 17)"},
	OptionEOT:            {"EOT", "nonzero if EOI is asserted with last byte on writes"},
	OptionPPC:            {"PPC", "parallel poll configuration"},
	OptionREADDR:         {"READDR", "included for compatibility only"},
	OptionAUTOPOLL:       {"AUTOPOLL", "nonzero if automatic serial polling is enabled"},
	OptionCICPROT:        {"CICPROT", "included for compatibility only"},
	OptionSC:             {"SC", "nonzero if board is system controller"},
	OptionSRE:            {"SRE", "nonzero if board automatically asserts REN when it becomes system controller"},
	OptionEOSrd:          {"EOSrd", "nonzero if reads terminate on the end-of-string byte"},
	OptionEOSwrt:         {"EOSwrt", "nonzero if EOI is asserted whenever the end-of-string byte is sent"},
	OptionEOScmp:         {"EOScmp", "nonzero if all 8 bits are used to match the end-of-string byte"},
	OptionEOSchar:        {"EOSchar", "the end-of-string byte"},
	OptionPP2:            {"PP2", "nonzero if in local parallel poll configure mode"},
	OptionTIMING:         {"TIMING", "T1 delay: 1 for 2us, 2 for 500ns, 3 for 350ns"},
	OptionReadAdjust:     {"ReadAdjust", "nonzero if byte pairs are swapped during reads"},
	OptionWriteAdjust:    {"WriteAdjust", "nonzero if byte pairs are swapped during writes"},
	OptionEventQueue:     {"EventQueue", "nonzero if the event queue is enabled"},
	OptionSPollBit:       {"SPollBit", "nonzero if the SPOLL bit of ibsta is enabled"},
	OptionSendLLO:        {"SendLLO", "nonzero if devices are put in local lockout when brought online"},
	OptionSPollTime:      {"SPollTime", "timeout code for serial polls"},
	OptionPPollTime:      {"PPollTime", "timeout code for parallel polls"},
	OptionEndBitIsNormal: {"EndBitIsNormal", "nonzero if END is set on the end-of-string byte as well as on EOI"},
	OptionUnAddr:         {"UnAddr", "nonzero if UNT and UNL are sent after each io operation"},
	OptionHSCableLength:  {"HSCableLength", "included for compatibility only"},
	OptionIst:            {"Ist", "individual status bit"},
	OptionRsv:            {"Rsv", "status byte the board uses to answer serial polls"},
	OptionBNA:            {"BNA", "board index of the interface used by a device, or of the board itself"},
	OptionSevenBitEOS:    {"SevenBitEOS", "nonzero if the board supports 7 bit EOS comparisons"},
}

func (o Option) String() string {
	if n, ok := optionNames[o]; ok {
		return n[0]
	}
	return fmt.Sprintf("Option(0x%x)", int(o))
}

// Describe is the long meaning of the option.
func (o Option) Describe() string {
	if n, ok := optionNames[o]; ok {
		return fmt.Sprintf("%s (0x%x): %s", n[0], int(o), n[1])
	}
	return o.String()
}

func checkOption(o Option) error {
	if _, ok := optionNames[o]; !ok {
		return valueErrorf("unknown option code 0x%x", int(o))
	}
	return nil
}

// Event is an entry of a board's event queue, as returned by ibevent.
type Event int

// Events.
const (
	EventNone   Event = 0
	EventDevTrg Event = 1
	EventDevClr Event = 2
	EventIFC    Event = 3
)

// DecodeEvent validates a raw ibevent value.
func DecodeEvent(v int) (Event, error) {
	if v < int(EventNone) || v > int(EventIFC) {
		return 0, valueErrorf("unexpected value %d for event", v)
	}
	return Event(v), nil
}

func (e Event) String() string {
	switch e {
	case EventNone:
		return "None"
	case EventDevTrg:
		return "DevTrg"
	case EventDevClr:
		return "DevClr"
	case EventIFC:
		return "IFC"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

// Line is one GPIB control line.
type Line uint16

// Control lines, as laid out in the low byte of an iblines result.
const (
	LineDAV  Line = 0x1
	LineNDAC Line = 0x2
	LineNRFD Line = 0x4
	LineIFC  Line = 0x8
	LineREN  Line = 0x10
	LineSRQ  Line = 0x20
	LineATN  Line = 0x40
	LineEOI  Line = 0x80
)

var lineNames = []struct {
	line Line
	name string
}{
	{LineDAV, "DAV"}, {LineNDAC, "NDAC"}, {LineNRFD, "NRFD"}, {LineIFC, "IFC"},
	{LineREN, "REN"}, {LineSRQ, "SRQ"}, {LineATN, "ATN"}, {LineEOI, "EOI"},
}

func (l Line) String() string {
	for _, n := range lineNames {
		if n.line == l {
			return n.name
		}
	}
	return fmt.Sprintf("Line(0x%x)", uint16(l))
}

// LineStatus is an iblines result. The low byte says which lines the
// board can monitor, the high byte which of those are asserted.
type LineStatus uint16

// Monitored reports whether the board can read line.
func (s LineStatus) Monitored(line Line) bool {
	return uint16(s)&uint16(line) != 0
}

// Asserted reports whether line is asserted. It is only meaningful when
// Monitored(line) is true.
func (s LineStatus) Asserted(line Line) bool {
	return uint16(s)&(uint16(line)<<8) != 0
}

func (s LineStatus) String() string {
	var parts []string
	for _, n := range lineNames {
		switch {
		case !s.Monitored(n.line):
		case s.Asserted(n.line):
			parts = append(parts, n.name+"=1")
		default:
			parts = append(parts, n.name+"=0")
		}
	}
	if len(parts) == 0 {
		return "no lines monitored"
	}
	return strings.Join(parts, " ")
}

// vim: foldmethod=marker
