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
	"testing"
)

func TestVISARoundTrip(t *testing.T) {
	iface, _ := newTestInterface(t)

	in, err := iface.ParseVISA("GPIB0::1::INSTR")
	if err != nil {
		t.Fatal(err)
	}
	if in.Board.Index() != 0 || in.Addr.PAD() != 1 || in.Addr.SAD().Enabled() {
		t.Fatalf("ParseVISA = %+v", in)
	}
	if got := in.VISA(); got != "GPIB0::1::INSTR" {
		t.Fatalf("VISA() = %q", got)
	}

	in, err = iface.ParseVISA("GPIB2::12::3::INSTR")
	if err != nil {
		t.Fatal(err)
	}
	if in.Board.Index() != 2 || in.Addr.PAD() != 12 || in.Addr.SAD().Number() != 3 {
		t.Fatalf("ParseVISA = %+v", in)
	}
	if got := in.VISA(); got != "GPIB2::12::3::INSTR" {
		t.Fatalf("VISA() = %q", got)
	}
}

func TestSplitVISA(t *testing.T) {
	tests := []struct {
		in      string
		board   int
		pad     int
		wantErr bool
	}{
		{"GPIB0::1::INSTR", 0, 1, false},
		{"GPIB3::22", 3, 22, false},
		{"GPIB0::1::INSTR::extra", 0, 1, false},
		{"GPIB0", 0, 0, true},
		{"USB0::1::INSTR", 0, 0, true},
		{"GPIBx::1::INSTR", 0, 0, true},
		{"GPIB0::x::INSTR", 0, 0, true},
		{"GPIB0::31::INSTR", 0, 0, true},
		{"GPIB0::1::31::INSTR", 0, 0, true},
	}
	for _, tt := range tests {
		board, addr, err := SplitVISA(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("SplitVISA(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err != nil {
			continue
		}
		if board != tt.board || addr.PAD() != tt.pad {
			t.Errorf("SplitVISA(%q) = %d, %s", tt.in, board, addr)
		}
	}
}

// vim: foldmethod=marker
