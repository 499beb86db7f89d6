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
	"io"
	"log"
	"testing"
	"time"

	"hz.tools/linux-gpib/driver/drivertest"
)

func newTestInterface(t *testing.T) (*Interface, *drivertest.Driver) {
	t.Helper()
	drv := drivertest.New()
	return New(drv, &Options{Logger: testLogger()}), drv
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func openTestDescriptor(t *testing.T, iface *Interface) int {
	t.Helper()
	ud, err := iface.Dev(0, 5, 0, T1s, true, REOS)
	if err != nil {
		t.Fatalf("Dev: %v", err)
	}
	return ud
}

// waitForCalls blocks until drv has recorded n calls named name.
func waitForCalls(t *testing.T, drv *drivertest.Driver, name string, n int) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for drv.Count(name) < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d calls to %s", n, name)
		}
		time.Sleep(time.Millisecond)
	}
}

// vim: foldmethod=marker
