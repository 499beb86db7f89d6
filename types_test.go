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
	"time"
)

func TestTimeout(t *testing.T) {
	if int(T1000s) != 17 || int(T1s) != 11 {
		t.Fatalf("timeout codes out of order: T1s=%d T1000s=%d", T1s, T1000s)
	}
	if T3ms.Duration() != 3*time.Millisecond {
		t.Fatalf("T3ms.Duration() = %s", T3ms.Duration())
	}
	if Timeout(18).Valid() || Timeout(-1).Valid() {
		t.Fatal("out of range timeouts reported valid")
	}

	tests := []struct {
		in   time.Duration
		want Timeout
	}{
		{0, TNone},
		{time.Nanosecond, T10us},
		{time.Second, T1s},
		{1100 * time.Millisecond, T3s},
		{time.Hour, T1000s},
	}
	for _, tt := range tests {
		if got := ClosestTimeout(tt.in); got != tt.want {
			t.Errorf("ClosestTimeout(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestEOSMode(t *testing.T) {
	m := EOS('\n', REOS|BIN)
	if m.Char() != '\n' || m&REOS == 0 || m&BIN == 0 || m&XEOS != 0 {
		t.Fatalf("EOS = %#x", uint16(m))
	}
	if !m.Valid() {
		t.Fatal("valid mode reported invalid")
	}
	if EOSMode(0x2000).Valid() {
		t.Fatal("mode with unknown bit reported valid")
	}
}

func TestDecodeEvent(t *testing.T) {
	for v, want := range []Event{EventNone, EventDevTrg, EventDevClr, EventIFC} {
		got, err := DecodeEvent(v)
		if err != nil || got != want {
			t.Errorf("DecodeEvent(%d) = %s, %v", v, got, err)
		}
	}
	if _, err := DecodeEvent(4); err == nil {
		t.Error("DecodeEvent(4) accepted")
	}
}

func TestLineStatus(t *testing.T) {
	ls := LineStatus(0x20<<8 | 0x20 | 0x1)
	if !ls.Monitored(LineSRQ) || !ls.Asserted(LineSRQ) {
		t.Fatal("SRQ should be monitored and asserted")
	}
	if !ls.Monitored(LineDAV) || ls.Asserted(LineDAV) {
		t.Fatal("DAV should be monitored and not asserted")
	}
	if ls.Monitored(LineEOI) {
		t.Fatal("EOI should not be monitored")
	}
	if got := ls.String(); got != "DAV=0 SRQ=1" {
		t.Fatalf("String() = %q", got)
	}
}

func TestOption(t *testing.T) {
	if OptionBNA.String() != "BNA" || int(OptionSevenBitEOS) != 0x1000 {
		t.Fatal("option table mismatch")
	}
	if err := checkOption(Option(0x9)); err == nil {
		t.Fatal("unknown option accepted")
	}
}

// vim: foldmethod=marker
