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

	"hz.tools/linux-gpib/driver"
)

// Addr is a packed 488.2 address: the primary address in the low byte
// and the wire form of the secondary address in the high byte.
type Addr uint16

// NoAddr terminates address lists on the way into the library. It is never
// a valid Addr and is never returned to callers.
const NoAddr = Addr(driver.NoAddr)

// MakeAddr packs a primary address and a wire form secondary address.
func MakeAddr(pad, sad uint16) Addr {
	return Addr(pad&0xff | (sad<<8)&0xff00)
}

// PAD is the primary address.
func (a Addr) PAD() int {
	return int(a & 0xff)
}

// SAD is the secondary address.
func (a Addr) SAD() SecondaryAddress {
	return SecondaryAddress((a >> 8) & 0xff)
}

func (a Addr) String() string {
	if a == NoAddr {
		return "noaddr"
	}
	if !a.SAD().Enabled() {
		return fmt.Sprintf("%d", a.PAD())
	}
	return fmt.Sprintf("%d:%d", a.PAD(), a.SAD().Number())
}

// NewAddr validates pad and sad and packs them.
func NewAddr(pad int, sad SecondaryAddress) (Addr, error) {
	if err := checkPrimary(pad); err != nil {
		return 0, err
	}
	if !sad.valid() {
		return 0, valueErrorf("invalid secondary address 0x%x", int(sad))
	}
	return MakeAddr(uint16(pad), uint16(sad)), nil
}

func checkPrimary(pad int) error {
	if pad < 0 || pad > 30 {
		return valueErrorf("primary address must be between 0 and 30, got %d", pad)
	}
	return nil
}

// SecondaryAddress is a secondary address in the form the library
// expects: NoSecondary, or 0x60 through 0x7e for secondary addresses 0
// through 30.
type SecondaryAddress uint8

// NoSecondary disables secondary addressing.
const NoSecondary SecondaryAddress = 0

const sadBias = 0x60

// ParseSecondary accepts the values the library does for its sad
// arguments: 0 disables secondary addressing, 1 through 30 are biased by
// 0x60, and 0x60 through 0x7e are taken as already biased.
func ParseSecondary(sad int) (SecondaryAddress, error) {
	switch {
	case sad == 0:
		return NoSecondary, nil
	case sad >= 1 && sad <= 30:
		return SecondaryAddress(sad + sadBias), nil
	case sad >= sadBias && sad <= sadBias+30:
		return SecondaryAddress(sad), nil
	default:
		return 0, valueErrorf("secondary address must be between 0 and 30 "+
			"(without the 0x60 prefix), or between 0x60 and 0x7e, got %d", sad)
	}
}

// Secondary returns secondary address n, 0 through 30. Unlike
// ParseSecondary, Secondary(0) is secondary address zero.
func Secondary(n int) (SecondaryAddress, error) {
	if n < 0 || n > 30 {
		return 0, valueErrorf("secondary address must be between 0 and 30, got %d", n)
	}
	return SecondaryAddress(n + sadBias), nil
}

func (s SecondaryAddress) valid() bool {
	return s == NoSecondary || (s >= sadBias && s <= sadBias+30)
}

// Enabled is false for NoSecondary.
func (s SecondaryAddress) Enabled() bool {
	return s != NoSecondary
}

// Number is the unbiased secondary address, or -1 for NoSecondary.
func (s SecondaryAddress) Number() int {
	if !s.Enabled() {
		return -1
	}
	return int(s) - sadBias
}

// Wire is the value passed to ibdev and ibsad.
func (s SecondaryAddress) Wire() int {
	return int(s)
}

func (s SecondaryAddress) String() string {
	if !s.Enabled() {
		return "none"
	}
	return fmt.Sprintf("%d", s.Number())
}

// addrList serializes addrs for the library, appending the NoAddr
// terminator. NoAddr inside addrs is rejected.
func addrList(addrs []Addr) ([]uint16, error) {
	out := make([]uint16, 0, len(addrs)+1)
	for i, a := range addrs {
		if a == NoAddr {
			return nil, valueErrorf("address list entry %d is the list terminator", i)
		}
		out = append(out, uint16(a))
	}
	return append(out, driver.NoAddr), nil
}

// addrsFrom converts a list filled in by the library, stopping at the
// first terminator.
func addrsFrom(raw []uint16) []Addr {
	out := make([]Addr, 0, len(raw))
	for _, a := range raw {
		if a == driver.NoAddr {
			break
		}
		out = append(out, Addr(a))
	}
	return out
}

// vim: foldmethod=marker
