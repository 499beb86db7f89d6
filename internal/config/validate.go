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
	"fmt"
	"time"

	gpib "hz.tools/linux-gpib"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must not be negative, got %d", cfg.ChunkSize)
	}
	if err := checkDuration("timeout", cfg.Timeout); err != nil {
		return err
	}

	names := make(map[string]bool)
	// key = board | addr
	owners := make(map[string]string)

	for _, ic := range cfg.Instruments {
		if ic.Name == "" {
			return fmt.Errorf("instrument %q: name is required", ic.Resource)
		}
		if names[ic.Name] {
			return fmt.Errorf("instrument %q: duplicate name", ic.Name)
		}
		names[ic.Name] = true

		board, addr, err := gpib.SplitVISA(ic.Resource)
		if err != nil {
			return fmt.Errorf("instrument %q: %w", ic.Name, err)
		}
		key := fmt.Sprintf("%d|%d", board, uint16(addr))
		if prev, ok := owners[key]; ok {
			return fmt.Errorf(
				"address collision: %s used by instruments %q and %q",
				gpib.FormatVISA(board, addr),
				prev,
				ic.Name,
			)
		}
		owners[key] = ic.Name

		if err := checkDuration(fmt.Sprintf("instrument %q: timeout", ic.Name), ic.Timeout); err != nil {
			return err
		}
		if len(ic.EOS) > 1 {
			return fmt.Errorf("instrument %q: eos must be a single character, got %q", ic.Name, ic.EOS)
		}
	}
	return nil
}

func checkDuration(field, s string) error {
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must not be negative, got %s", field, d)
	}
	if d > gpib.T1000s.Duration() {
		return fmt.Errorf("%s must be at most %s, got %s", field, gpib.T1000s.Duration(), d)
	}
	return nil
}

// vim: foldmethod=marker
