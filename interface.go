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

// Package gpib talks to instruments on a GPIB (IEEE-488) bus through the
// Linux-GPIB or NI-488.2 user library.
//
// An Interface wraps one driver.Driver. Its methods map one to one onto
// the library's traditional entry points (ibdev, ibrd, ibwrt, ...), Board
// carries the 488.2 multidevice calls (FindLstn, SendList, ...), and
// Instrument and Device are the convenience layer on top.
//
// Every call decodes the status word and the error state captured by the
// driver in the same native call, so the result of one call can never be
// observed by another, regardless of which OS thread either ran on.
package gpib

import (
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/semaphore"

	"hz.tools/linux-gpib/driver"
)

// Interface is the entry point to a GPIB library.
type Interface struct {
	drv  driver.Driver
	opts *Options
	log  *log.Logger

	mu    sync.Mutex
	slots map[int]*semaphore.Weighted
	live  map[int]bool
}

// New will create an Interface on top of drv, usually the one returned by
// native.New.
func New(drv driver.Driver, opts *Options) *Interface {
	return &Interface{
		drv:   drv,
		opts:  opts,
		log:   opts.logger(),
		slots: map[int]*semaphore.Weighted{},
		live:  map[int]bool{},
	}
}

// Driver returns the underlying driver.
func (i *Interface) Driver() driver.Driver {
	return i.drv
}

func (i *Interface) debugf(format string, args ...interface{}) {
	if !i.opts.debug() {
		return
	}
	i.log.Printf("gpib: "+format, args...)
}

func (i *Interface) warnf(format string, args ...interface{}) {
	i.log.Printf("gpib: "+format, args...)
}

// check decodes res for the library call named call. target is the
// descriptor or board index the call acted on, used for logging only.
func (i *Interface) check(call string, target int, res driver.Result) (Status, error) {
	st := DecodeStatus(res.Status)
	i.debugf("%s(%d) -> %s count=%d", call, target, st, res.Count)
	if !st.Has(ERR) {
		return st, nil
	}
	ibe, err := DecodeError(res.Error, res.Count)
	if err != nil {
		return st, fmt.Errorf("gpib: %s [%s]: %w", call, st, err)
	}
	return st, &DriverError{
		Call:    call,
		Status:  st,
		Err:     ibe,
		Context: res.Context,
	}
}

// slot returns the semaphore guarding asynchronous I/O on ud.
func (i *Interface) slot(ud int) *semaphore.Weighted {
	i.mu.Lock()
	defer i.mu.Unlock()
	s, ok := i.slots[ud]
	if !ok {
		s = semaphore.NewWeighted(1)
		i.slots[ud] = s
	}
	return s
}

func (i *Interface) opened(ud int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.live[ud] = true
}

func (i *Interface) released(ud int) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.live, ud)
	delete(i.slots, ud)
}

// Live reports whether ud was returned by Dev or Find and has not been
// taken offline through this Interface since.
func (i *Interface) Live(ud int) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.live[ud]
}

// vim: foldmethod=marker
