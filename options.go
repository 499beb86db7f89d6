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
	"context"
	"log"
)

// DefaultChunkSize is the buffer size used by each step of a chunked read.
const DefaultChunkSize = 1024

// Options contains configurable aspects of an Interface.
type Options struct {
	// BaseContext will be used to extend a context with the same lifecycle
	// as each Device opened through the Interface.
	BaseContext context.Context

	// Logger receives close failures and, when Debug is set, one line per
	// library call. Defaults to log.Default().
	Logger *log.Logger

	// Debug enables per-call logging.
	Debug bool

	// ChunkSize is the per-call buffer size of chunked reads.
	ChunkSize int
}

func (opts *Options) context() context.Context {
	if opts == nil || opts.BaseContext == nil {
		return context.Background()
	}
	return opts.BaseContext
}

func (opts *Options) logger() *log.Logger {
	if opts == nil || opts.Logger == nil {
		return log.Default()
	}
	return opts.Logger
}

func (opts *Options) debug() bool {
	return opts != nil && opts.Debug
}

func (opts *Options) chunkSize() int {
	if opts == nil || opts.ChunkSize <= 0 {
		return DefaultChunkSize
	}
	return opts.ChunkSize
}

// Parameters are the per-device settings passed to ibdev.
type Parameters struct {
	// Timeout is the driver-side I/O timeout. There is no other timeout.
	Timeout Timeout

	// SendEOI asserts EOI with the last byte of each write.
	SendEOI bool

	// EOS is the end-of-string configuration.
	EOS EOSMode
}

// DefaultParameters is what Open uses when given nil: a one second
// timeout, no EOI on writes, and reads terminated on the eos byte.
func DefaultParameters() Parameters {
	return Parameters{
		Timeout: T1s,
		EOS:     REOS,
	}
}

func (p *Parameters) orDefault() Parameters {
	if p == nil {
		return DefaultParameters()
	}
	return *p
}

// vim: foldmethod=marker
