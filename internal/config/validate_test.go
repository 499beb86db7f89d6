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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	gpib "hz.tools/linux-gpib"
)

// helper to build an instrument quickly
func instrument(name, resource string) InstrumentConfig {
	return InstrumentConfig{Name: name, Resource: resource}
}

func TestValidate_OK(t *testing.T) {
	cfg := &Config{
		Timeout: "3s",
		Instruments: []InstrumentConfig{
			instrument("meter", "GPIB0::13::INSTR"),
			instrument("source", "GPIB0::13::2::INSTR"),
			instrument("scope", "GPIB1::13::INSTR"),
		},
	}
	if err := Validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "duplicate name",
			cfg: Config{Instruments: []InstrumentConfig{
				instrument("a", "GPIB0::1::INSTR"),
				instrument("a", "GPIB0::2::INSTR"),
			}},
			want: "duplicate name",
		},
		{
			name: "address collision",
			cfg: Config{Instruments: []InstrumentConfig{
				instrument("a", "GPIB0::1::INSTR"),
				instrument("b", "GPIB0::1::INSTR"),
			}},
			want: "address collision",
		},
		{
			name: "missing name",
			cfg:  Config{Instruments: []InstrumentConfig{instrument("", "GPIB0::1::INSTR")}},
			want: "name is required",
		},
		{
			name: "bad resource",
			cfg:  Config{Instruments: []InstrumentConfig{instrument("a", "GPIB0::31::INSTR")}},
			want: "primary address",
		},
		{
			name: "bad timeout",
			cfg:  Config{Timeout: "soon"},
			want: "timeout",
		},
		{
			name: "timeout too long",
			cfg:  Config{Timeout: "2h"},
			want: "at most",
		},
		{
			name: "long eos",
			cfg: Config{Instruments: []InstrumentConfig{
				{Name: "a", Resource: "GPIB0::1::INSTR", EOS: "\r\n"},
			}},
			want: "single character",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(&tt.cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Validate = %v, want error containing %q", err, tt.want)
			}
		})
	}
}

func TestNormalize_Defaults(t *testing.T) {
	cfg := &Config{Instruments: []InstrumentConfig{
		instrument("a", "GPIB0::1::INSTR"),
		{Name: "b", Resource: "GPIB0::2::INSTR", Timeout: "10s", Query: "?"},
	}}
	Normalize(cfg)

	if cfg.Timeout != DefaultTimeout {
		t.Fatalf("Timeout = %q", cfg.Timeout)
	}
	if a := cfg.Instruments[0]; a.Timeout != DefaultTimeout || a.Query != DefaultQuery {
		t.Fatalf("instrument a = %+v", a)
	}
	if b := cfg.Instruments[1]; b.Timeout != "10s" || b.Query != "?" {
		t.Fatalf("instrument b = %+v", b)
	}

	p, err := cfg.Instruments[1].Parameters()
	if err != nil {
		t.Fatal(err)
	}
	if p.Timeout != gpib.T10s || p.EOS != 0 {
		t.Fatalf("Parameters = %+v", p)
	}
}

func TestParameters_EOS(t *testing.T) {
	ic := InstrumentConfig{Name: "a", Timeout: "1s", EOS: "\n", SendEOI: true}
	p, err := ic.Parameters()
	if err != nil {
		t.Fatal(err)
	}
	if p.EOS != gpib.EOS('\n', gpib.REOS) || !p.SendEOI || p.Timeout != gpib.T1s {
		t.Fatalf("Parameters = %+v", p)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	doc := `
timeout: 3s
instruments:
  - name: meter
    resource: GPIB0::13::INSTR
    setup: ["*RST", "LG"]
    query: "?"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.Instruments) != 1 || cfg.Instruments[0].Setup[1] != "LG" {
		t.Fatalf("Load = %+v", cfg)
	}
	if err := Validate(cfg); err != nil {
		t.Fatal(err)
	}
}

func TestParse_UnknownField(t *testing.T) {
	if _, err := Parse([]byte("bored: 1\n")); err == nil {
		t.Fatal("unknown key accepted")
	}
}

// vim: foldmethod=marker
