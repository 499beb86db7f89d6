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
	"strconv"
	"strings"
)

// SplitVISA parses a GPIB VISA resource string such as "GPIB0::1::INSTR"
// or "GPIB0::1::2::INSTR". Only the board and the primary address are
// required; the resource class is not checked.
func SplitVISA(resource string) (board int, addr Addr, err error) {
	fields := strings.Split(resource, "::")
	if len(fields) < 2 {
		return 0, 0, valueErrorf("invalid address %q", resource)
	}
	if !strings.HasPrefix(fields[0], "GPIB") {
		return 0, 0, valueErrorf("address is expected as GPIB<board>::<primary address>::INSTR, got %q", resource)
	}
	board, err = strconv.Atoi(strings.TrimPrefix(fields[0], "GPIB"))
	if err != nil || board < 0 {
		return 0, 0, valueErrorf("unable to parse GPIB board index from %q", fields[0])
	}
	pad, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, valueErrorf("unable to parse GPIB primary address from %q", fields[1])
	}
	sad := NoSecondary
	if len(fields) > 2 {
		if n, err := strconv.Atoi(fields[2]); err == nil {
			if sad, err = Secondary(n); err != nil {
				return 0, 0, err
			}
		}
	}
	addr, err = NewAddr(pad, sad)
	if err != nil {
		return 0, 0, err
	}
	return board, addr, nil
}

// FormatVISA is the inverse of SplitVISA.
func FormatVISA(board int, addr Addr) string {
	if sad := addr.SAD(); sad.Enabled() {
		return fmt.Sprintf("GPIB%d::%d::%d::INSTR", board, addr.PAD(), sad.Number())
	}
	return fmt.Sprintf("GPIB%d::%d::INSTR", board, addr.PAD())
}

// ParseVISA returns the Instrument named by a VISA resource string.
func (i *Interface) ParseVISA(resource string) (Instrument, error) {
	board, addr, err := SplitVISA(resource)
	if err != nil {
		return Instrument{}, err
	}
	return i.Board(board).Instrument(addr), nil
}

// vim: foldmethod=marker
