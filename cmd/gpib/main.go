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

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hz.tools/linux-gpib/cmd/gpib/cmd"
)

// stopGrace bounds how long pending ibwait calls get to notice ibstop.
const stopGrace = 30 * time.Second

// withSignals cancels the returned context on SIGINT or SIGTERM. The
// handler is reset after the first signal so a second one kills the
// process outright.
func withSignals() context.Context {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctx.Done()
		stop()
		log.Printf("stopping pending GPIB operations")
		time.Sleep(stopGrace)
		log.Fatalf("bus still busy after %s, giving up", stopGrace)
	}()
	return ctx
}

func main() {
	if err := cmd.Execute(withSignals()); err != nil {
		os.Exit(1)
	}
}

// vim: foldmethod=marker
