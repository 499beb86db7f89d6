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
	"errors"
	"testing"
	"time"

	"hz.tools/linux-gpib/driver"
	"hz.tools/linux-gpib/driver/drivertest"
)

func TestOpenClose(t *testing.T) {
	iface, drv := newTestInterface(t)

	dev, err := iface.Open(0, 5, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	ud, err := dev.Descriptor()
	if err != nil {
		t.Fatal(err)
	}
	if drv.Count("Clr") != 1 {
		t.Fatal("Open did not clear the device")
	}
	args := drv.CallsTo("Dev")[0].Args
	if args[3] != int(T1s) || args[4] != 0 || args[5] != int(REOS) {
		t.Fatalf("Dev called with %v, want default parameters", args)
	}
	if dev.String() != "GPIB0::5::INSTR" {
		t.Fatalf("String() = %q", dev.String())
	}

	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
	if drv.Online(ud) || iface.Live(ud) {
		t.Fatal("descriptor still online after Close")
	}
	if err := dev.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second Close = %v, want ErrClosed", err)
	}
	if n := drv.Count("Onl"); n != 1 {
		t.Fatalf("ibonl called %d times, want 1", n)
	}
	if _, err := dev.Write([]byte("x")); !errors.Is(err, ErrClosed) {
		t.Fatalf("Write after Close = %v", err)
	}
	if _, err := dev.ReadAll(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("ReadAll after Close = %v", err)
	}
}

func TestOpenUniqueDescriptors(t *testing.T) {
	iface, _ := newTestInterface(t)

	seen := map[int]bool{}
	for pad := 1; pad <= 4; pad++ {
		dev, err := iface.Open(0, pad, 0, nil)
		if err != nil {
			t.Fatal(err)
		}
		defer dev.Close()
		ud, _ := dev.Descriptor()
		if seen[ud] {
			t.Fatalf("descriptor %d handed out twice", ud)
		}
		seen[ud] = true
	}
}

func TestOpenRejectsAddress(t *testing.T) {
	tests := []struct {
		name string
		pad  int
		sad  int
	}{
		{"pad 31", 31, 0},
		{"sad 31", 1, 31},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iface, drv := newTestInterface(t)
			if _, err := iface.Open(0, tt.pad, tt.sad, nil); err == nil {
				t.Fatal("Open accepted the address")
			}
			if n := len(drv.Calls()); n != 0 {
				t.Fatalf("driver was called %d times", n)
			}
		})
	}
}

func TestOpenClearFails(t *testing.T) {
	iface, drv := newTestInterface(t)
	drv.Queue("Clr", drivertest.Fail(int(EABO)))

	if _, err := iface.Open(0, 5, 0, nil); !errors.Is(err, EABO) {
		t.Fatalf("Open = %v, want EABO", err)
	}
	ud := drv.CallsTo("Clr")[0].Args[0].(int)
	if drv.Online(ud) {
		t.Fatal("descriptor left online after failed clear")
	}
}

func TestCloseCancelsPendingRead(t *testing.T) {
	iface, drv := newTestInterface(t)
	dev, err := iface.Open(0, 5, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	r := drivertest.Data([]byte("late"))
	r.Hold = make(chan struct{})
	drv.Queue("Wait", r)

	errs := make(chan error, 1)
	go func() {
		_, err := dev.ReadAll(context.Background())
		errs <- err
	}()
	waitForCalls(t, drv, "Wait", 1)

	if err := dev.Close(); err != nil {
		t.Fatal(err)
	}
	if err := <-errs; !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadAll = %v, want context.Canceled", err)
	}
	if n := drv.Count("Stop"); n != 1 {
		t.Fatalf("Stop called %d times, want 1", n)
	}
	if n := drv.Live(); n != 0 {
		t.Fatalf("%d buffers leaked", n)
	}
}

func TestDeviceQuery(t *testing.T) {
	iface, drv := newTestInterface(t)
	dev, err := iface.Open(0, 5, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	drv.Queue("Wait", drivertest.OK(0), drivertest.Data([]byte("HP437B\n")))
	got, err := dev.Query(context.Background(), "*IDN?")
	if err != nil || got != "HP437B\n" {
		t.Fatalf("Query = %q, %v", got, err)
	}
	if string(drv.CallsTo("Wrta")[0].Args[1].([]byte)) != "*IDN?" {
		t.Fatal("Query did not write the command")
	}
}

func TestDeviceBlockingQuery(t *testing.T) {
	iface, drv := newTestInterface(t)
	dev, err := iface.Open(0, 5, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	drv.Queue("Rd", drivertest.Data([]byte("-12.5\n")))
	got, err := dev.BlockingQuery("?")
	if err != nil || got != "-12.5\n" {
		t.Fatalf("BlockingQuery = %q, %v", got, err)
	}
	if drv.Count("Wrt") != 1 || drv.Count("Rd") != 1 {
		t.Fatalf("unexpected calls %+v", drv.Calls())
	}
}

func TestBaseContextCancelsDevices(t *testing.T) {
	base, cancel := context.WithCancel(context.Background())
	drv := drivertest.New()
	iface := New(drv, &Options{BaseContext: base, Logger: testLogger()})

	dev, err := iface.Open(0, 5, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()

	cancel()
	if _, err := dev.ReadAll(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("ReadAll = %v, want context.Canceled", err)
	}
	if n := drv.Count("Rda"); n != 0 {
		t.Fatalf("ibrda issued %d times on a cancelled context", n)
	}
}

// stallingDriver holds every ibwrt until release is closed.
type stallingDriver struct {
	*drivertest.Driver
	entered chan struct{}
	release chan struct{}
}

func (s stallingDriver) Wrt(ud int, data []byte) driver.Result {
	close(s.entered)
	<-s.release
	return s.Driver.Wrt(ud, data)
}

func TestCloseWaitsForCall(t *testing.T) {
	fake := drivertest.New()
	drv := stallingDriver{
		Driver:  fake,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	iface := New(drv, &Options{Logger: testLogger()})
	dev, err := iface.Open(0, 5, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	wrote := make(chan error, 1)
	go func() {
		_, err := dev.Write([]byte("*RST\n"))
		wrote <- err
	}()
	<-drv.entered

	closed := make(chan error, 1)
	go func() { closed <- dev.Close() }()
	select {
	case err := <-closed:
		t.Fatalf("Close returned %v while ibwrt was in flight", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(drv.release)
	if err := <-wrote; err != nil {
		t.Fatalf("Write = %v", err)
	}
	if err := <-closed; err != nil {
		t.Fatalf("Close = %v", err)
	}

	wrt, onl := -1, -1
	for i, c := range fake.Calls() {
		switch c.Name {
		case "Wrt":
			wrt = i
		case "Onl":
			onl = i
		}
	}
	if wrt < 0 || onl < wrt {
		t.Fatalf("ibonl issued before ibwrt returned: %+v", fake.Calls())
	}
}

func TestCloseRetry(t *testing.T) {
	iface, drv := newTestInterface(t)
	dev, err := iface.Open(0, 5, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	ud, _ := dev.Descriptor()

	drv.Queue("Onl", drivertest.Fail(int(ENEB)))
	if err := dev.Close(); !errors.Is(err, ENEB) {
		t.Fatalf("Close = %v, want ENEB", err)
	}
	if !drv.Online(ud) {
		t.Fatal("descriptor released by a failed Close")
	}
	if _, err := dev.Descriptor(); err != nil {
		t.Fatalf("Descriptor after failed Close = %v", err)
	}

	if err := dev.Close(); err != nil {
		t.Fatalf("second Close = %v", err)
	}
	if drv.Online(ud) {
		t.Fatal("descriptor still online")
	}
	if err := dev.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("third Close = %v, want ErrClosed", err)
	}
}

// vim: foldmethod=marker
