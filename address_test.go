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
	"errors"
	"testing"
)

func TestAddrRoundTrip(t *testing.T) {
	sads := []SecondaryAddress{NoSecondary}
	for n := 0; n <= 30; n++ {
		s, err := Secondary(n)
		if err != nil {
			t.Fatal(err)
		}
		sads = append(sads, s)
	}
	for pad := 0; pad <= 30; pad++ {
		for _, sad := range sads {
			a, err := NewAddr(pad, sad)
			if err != nil {
				t.Fatalf("NewAddr(%d, %s): %v", pad, sad, err)
			}
			if a == NoAddr {
				t.Fatalf("NewAddr(%d, %s) produced the terminator", pad, sad)
			}
			if a.PAD() != pad || a.SAD() != sad {
				t.Fatalf("unpack(pack(%d, %s)) = (%d, %s)", pad, sad, a.PAD(), a.SAD())
			}
		}
	}
}

func TestMakeAddr(t *testing.T) {
	a := MakeAddr(5, 0x62)
	if uint16(a) != 0x6205 {
		t.Fatalf("MakeAddr(5, 0x62) = %#x", uint16(a))
	}
	if a.String() != "5:2" {
		t.Fatalf("String() = %q", a.String())
	}
	if MakeAddr(7, 0).String() != "7" {
		t.Fatalf("String() = %q", MakeAddr(7, 0).String())
	}
}

func TestParseSecondary(t *testing.T) {
	tests := []struct {
		in      int
		want    SecondaryAddress
		wantErr bool
	}{
		{0, NoSecondary, false},
		{1, 0x61, false},
		{30, 0x7e, false},
		{0x60, 0x60, false},
		{0x7e, 0x7e, false},
		{31, 0, true},
		{-1, 0, true},
		{0x7f, 0, true},
		{0x5f, 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSecondary(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseSecondary(%d) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if err == nil && got != tt.want {
			t.Errorf("ParseSecondary(%d) = %#x, want %#x", tt.in, int(got), int(tt.want))
		}
		var verr *ValueError
		if err != nil && !errors.As(err, &verr) {
			t.Errorf("ParseSecondary(%d) error is %T, want *ValueError", tt.in, err)
		}
	}
}

func TestPrimaryOutOfRange(t *testing.T) {
	for _, pad := range []int{-1, 31, 255} {
		if _, err := NewAddr(pad, NoSecondary); err == nil {
			t.Errorf("NewAddr(%d) accepted", pad)
		}
	}
	if _, err := Secondary(31); err == nil {
		t.Error("Secondary(31) accepted")
	}
	if _, err := NewAddr(1, SecondaryAddress(0x7f)); err == nil {
		t.Error("NewAddr with sad 0x7f accepted")
	}
}

func TestAddrList(t *testing.T) {
	raw, err := addrList([]Addr{MakeAddr(1, 0), MakeAddr(2, 0x60)})
	if err != nil {
		t.Fatal(err)
	}
	want := []uint16{0x0001, 0x6002, 0xffff}
	if len(raw) != len(want) {
		t.Fatalf("addrList = %#x, want %#x", raw, want)
	}
	for i := range want {
		if raw[i] != want[i] {
			t.Fatalf("addrList = %#x, want %#x", raw, want)
		}
	}

	empty, err := addrList(nil)
	if err != nil || len(empty) != 1 || empty[0] != 0xffff {
		t.Fatalf("addrList(nil) = %#x, %v", empty, err)
	}

	if _, err := addrList([]Addr{MakeAddr(1, 0), NoAddr}); err == nil {
		t.Fatal("addrList accepted the terminator as an entry")
	}

	got := addrsFrom([]uint16{3, 4, 0xffff, 5})
	if len(got) != 2 || got[0] != 3 || got[1] != 4 {
		t.Fatalf("addrsFrom = %v", got)
	}
}

// vim: foldmethod=marker
