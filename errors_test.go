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
	"strings"
	"syscall"
	"testing"

	"hz.tools/linux-gpib/driver"
)

func TestDecodeError(t *testing.T) {
	tests := []struct {
		code  int
		count int64
		want  IbError
	}{
		{2, 0, IbError{Code: ENOL}},
		{20, 0, IbError{Code: ETAB}},
		{1, 99, IbError{Code: ECIC}},
		{0, 0xE0140025, IbError{Code: EDVR, Count: 0xE0140025}},
		{12, 2, IbError{Code: EFSO, Count: 2}},
	}
	for _, tt := range tests {
		got, err := DecodeError(tt.code, tt.count)
		if err != nil {
			t.Fatalf("DecodeError(%d): %v", tt.code, err)
		}
		if got != tt.want {
			t.Errorf("DecodeError(%d, %#x) = %+v, want %+v", tt.code, tt.count, got, tt.want)
		}
	}
}

func TestDecodeErrorUnrecognized(t *testing.T) {
	for _, code := range []int{9, 13, 17, 99, -1} {
		_, err := DecodeError(code, 0)
		var uerr *UnrecognizedCodeError
		if !errors.As(err, &uerr) {
			t.Fatalf("DecodeError(%d) = %v, want UnrecognizedCodeError", code, err)
		}
		if uerr.Code != code {
			t.Errorf("Code = %d, want %d", uerr.Code, code)
		}
	}
}

func TestDiagnostic(t *testing.T) {
	e, err := DecodeError(0, 0xE0140025)
	if err != nil {
		t.Fatal(err)
	}
	s := e.String()
	if !strings.Contains(s, "not within the range of allowed board numbers") {
		t.Fatalf("EDVR hint missing: %q", s)
	}

	// Sign-extended form of the same value.
	if got := Diagnostic(-535560155); !strings.Contains(got, "0xE0140025") {
		t.Fatalf("Diagnostic(negative) = %q", got)
	}
	if got := Diagnostic(0x1234); got != "unknown ibcntl value 1234" {
		t.Fatalf("Diagnostic(0x1234) = %q", got)
	}
}

func TestDriverErrorUnwrap(t *testing.T) {
	err := error(&DriverError{
		Call:    "ibwrt",
		Status:  ERR | CMPL,
		Err:     IbError{Code: ENOL},
		Context: driver.ContextThread,
	})
	if !errors.Is(err, ENOL) {
		t.Fatal("errors.Is(err, ENOL) = false")
	}
	if errors.Is(err, ETAB) {
		t.Fatal("errors.Is(err, ETAB) = true")
	}

	edvr := error(&DriverError{Call: "ibdev", Status: ERR, Err: IbError{Code: EDVR, Count: int64(syscall.ENOENT)}})
	if !errors.Is(edvr, syscall.ENOENT) {
		t.Fatal("EDVR should unwrap to its errno")
	}
	ni := error(&DriverError{Call: "ibdev", Status: ERR, Err: IbError{Code: EDVR, Count: 0xE0140025}})
	var errno syscall.Errno
	if errors.As(ni, &errno) {
		t.Fatalf("NI diagnostic code unwrapped as errno %d", errno)
	}
}

// vim: foldmethod=marker
