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

// Package config is the YAML instrument inventory read by the gpib tool.
package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	gpib "hz.tools/linux-gpib"
)

// Config is the top level of the inventory file.
//
//	timeout: 3s
//	instruments:
//	  - name: meter
//	    resource: GPIB0::13::INSTR
//	    setup: ["*RST", "LG"]
//	    query: "?"
type Config struct {
	Timeout     string             `yaml:"timeout"`
	ChunkSize   int                `yaml:"chunk_size"`
	Debug       bool               `yaml:"debug"`
	Retries     uint               `yaml:"retries"`
	Instruments []InstrumentConfig `yaml:"instruments"`
}

// InstrumentConfig is one entry of the instrument inventory, addressed by
// a VISA resource string.
type InstrumentConfig struct {
	Name     string `yaml:"name"`
	Resource string `yaml:"resource"`

	// Timeout overrides the top level timeout.
	Timeout string `yaml:"timeout"`
	SendEOI bool   `yaml:"send_eoi"`

	// EOS is a single character that ends reads. Empty disables it.
	EOS string `yaml:"eos"`

	// Setup commands are written once after open, in order.
	Setup []string `yaml:"setup"`
	Query string   `yaml:"query"`
}

// Load reads and decodes the file at path. Unknown keys are an error.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes an inventory document.
func Parse(raw []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// Parameters converts the instrument's settings for Instrument.Open. It
// must be called after Normalize.
func (ic InstrumentConfig) Parameters() (gpib.Parameters, error) {
	d, err := time.ParseDuration(ic.Timeout)
	if err != nil {
		return gpib.Parameters{}, fmt.Errorf("instrument %q: %w", ic.Name, err)
	}
	p := gpib.Parameters{
		Timeout: gpib.ClosestTimeout(d),
		SendEOI: ic.SendEOI,
	}
	if ic.EOS != "" {
		p.EOS = gpib.EOS(ic.EOS[0], gpib.REOS)
	}
	return p, nil
}

// vim: foldmethod=marker
