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
	"reflect"
	"testing"

	"hz.tools/linux-gpib/driver"
	"hz.tools/linux-gpib/driver/drivertest"
)

func TestFindListeners(t *testing.T) {
	iface, drv := newTestInterface(t)
	board := iface.Board(0)

	drv.Queue("FindLstn", drivertest.Reply{Addrs: []uint16{0x0001, 0x6205}})
	got, err := board.FindListeners([]int{1, 5})
	if err != nil {
		t.Fatal(err)
	}
	want := []Addr{MakeAddr(1, 0), MakeAddr(5, 0x62)}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("FindListeners = %v, want %v", got, want)
	}
	args := drv.CallsTo("FindLstn")[0].Args
	if !reflect.DeepEqual(args[1], []uint16{1, 5, driver.NoAddr}) {
		t.Fatalf("pad list = %#v", args[1])
	}
	if args[2] != maxListeners {
		t.Fatalf("result list size = %v", args[2])
	}
}

func TestFindListenersErrors(t *testing.T) {
	tests := []struct {
		name string
		code ErrorCode
		want error
	}{
		{"table overflow", ETAB, ErrTooManyListeners},
		{"empty bus", EBUS, ErrNoDevices},
		{"no NDAC", ECAP, ErrNoListenerDetection},
		{"not controller", ECIC, ECIC},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			iface, drv := newTestInterface(t)
			drv.Queue("FindLstn", drivertest.Fail(int(tt.code)))
			_, err := iface.Board(0).FindAllListeners()
			if !errors.Is(err, tt.want) {
				t.Fatalf("FindAllListeners = %v, want %v", err, tt.want)
			}
			if !errors.Is(err, tt.code) {
				t.Fatalf("FindAllListeners = %v, want it to wrap %s", err, tt.code)
			}
		})
	}
}

func TestFindListenersBadPad(t *testing.T) {
	iface, drv := newTestInterface(t)
	if _, err := iface.Board(0).FindListeners([]int{3, 31}); err == nil {
		t.Fatal("pad 31 accepted")
	}
	if n := len(drv.Calls()); n != 0 {
		t.Fatalf("driver was called %d times", n)
	}
}

func TestFindRQS(t *testing.T) {
	iface, drv := newTestInterface(t)
	board := iface.Board(0)
	addrs := []Addr{MakeAddr(3, 0), MakeAddr(4, 0), MakeAddr(9, 0)}

	drv.Queue("FindRQS", drivertest.Reply{Result: driver.Result{Count: 1}, Value: 0x50})
	addr, stb, err := board.FindRQS(addrs)
	if err != nil || addr != addrs[1] || stb != 0x50 {
		t.Fatalf("FindRQS = %s, %#x, %v", addr, stb, err)
	}

	drv.Queue("FindRQS", drivertest.Reply{Result: driver.Result{Count: 3}})
	var verr *ValueError
	if _, _, err := board.FindRQS(addrs); !errors.As(err, &verr) {
		t.Fatalf("FindRQS with index past the list = %v", err)
	}

	drv.Queue("FindRQS", drivertest.Fail(int(ETAB)))
	if _, _, err := board.FindRQS(addrs); !errors.Is(err, ETAB) {
		t.Fatalf("FindRQS = %v, want ETAB", err)
	}
}

func TestSendList(t *testing.T) {
	iface, drv := newTestInterface(t)
	board := iface.Board(1)

	addrs := []Addr{MakeAddr(3, 0), MakeAddr(4, 0x61)}
	if err := board.SendList(addrs, []byte("*TRG"), DABend); err != nil {
		t.Fatal(err)
	}
	args := drv.CallsTo("SendList")[0].Args
	if args[0] != 1 {
		t.Fatalf("board = %v", args[0])
	}
	if !reflect.DeepEqual(args[1], []uint16{3, 0x6104, driver.NoAddr}) {
		t.Fatalf("addr list = %#v", args[1])
	}
	if string(args[2].([]byte)) != "*TRG" || args[3] != driver.EOTData {
		t.Fatalf("SendList args = %v", args)
	}

	if err := board.Send(addrs[0], []byte("x"), EOTMode(3)); err == nil {
		t.Fatal("unknown EOT mode accepted")
	}
	if err := board.SendList([]Addr{NoAddr}, nil, NULLend); err == nil {
		t.Fatal("terminator accepted as a list entry")
	}
	if n := drv.Count("Send") + drv.Count("SendList"); n != 1 {
		t.Fatalf("rejected sends reached the driver: %d calls", n)
	}
}

func TestEmptyListsCarryTerminator(t *testing.T) {
	iface, drv := newTestInterface(t)
	board := iface.Board(0)

	if err := board.DevClearList(nil); err != nil {
		t.Fatal(err)
	}
	if err := board.EnableLocal(nil); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"DevClearList", "EnableLocal"} {
		args := drv.CallsTo(name)[0].Args
		if !reflect.DeepEqual(args[1], []uint16{driver.NoAddr}) {
			t.Fatalf("%s list = %#v", name, args[1])
		}
	}
}

func TestTestSRQ(t *testing.T) {
	tests := []struct {
		value   int
		want    bool
		wantErr bool
	}{
		{0, false, false},
		{1, true, false},
		{2, false, true},
	}
	for _, tt := range tests {
		iface, drv := newTestInterface(t)
		drv.Queue("TestSRQ", drivertest.Reply{Value: tt.value})
		got, err := iface.Board(0).TestSRQ()
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("TestSRQ(%d) = %v, %v", tt.value, got, err)
		}
	}
}

func TestPolling(t *testing.T) {
	iface, drv := newTestInterface(t)
	board := iface.Board(0)
	addrs := []Addr{MakeAddr(1, 0), MakeAddr(2, 0)}

	drv.Queue("AllSPoll", drivertest.Reply{Values: []int16{0x40, 0x01}})
	got, err := board.AllSPoll(addrs)
	if err != nil || !reflect.DeepEqual(got, []byte{0x40, 0x01}) {
		t.Fatalf("AllSPoll = %v, %v", got, err)
	}

	drv.Queue("TestSys", drivertest.Reply{Values: []int16{0, -1}})
	res, err := board.TestSys(addrs)
	if err != nil || !reflect.DeepEqual(res, []int16{0, -1}) {
		t.Fatalf("TestSys = %v, %v", res, err)
	}

	if err := board.PPollConfig(addrs[0], 9, true); err == nil {
		t.Fatal("parallel poll line 9 accepted")
	}
	if err := board.PPollConfig(addrs[0], 3, true); err != nil {
		t.Fatal(err)
	}
	args := drv.CallsTo("PPollConfig")[0].Args
	if args[2] != 3 || args[3] != 1 {
		t.Fatalf("PPollConfig args = %v", args)
	}
}

func TestWaitSRQ(t *testing.T) {
	iface, drv := newTestInterface(t)
	drv.Queue("WaitSRQ", drivertest.Reply{Value: 1})
	ok, err := iface.Board(0).WaitSRQ(context.Background())
	if err != nil || !ok {
		t.Fatalf("WaitSRQ = %v, %v", ok, err)
	}
}

func TestInstrumentQuery(t *testing.T) {
	iface, drv := newTestInterface(t)
	in := iface.Board(0).Instrument(MakeAddr(13, 0))

	drv.Queue("Receive", drivertest.Data([]byte("OK\n")))
	got, err := in.Query("ID?")
	if err != nil || got != "OK\n" {
		t.Fatalf("Query = %q, %v", got, err)
	}
	send := drv.CallsTo("Send")[0].Args
	if send[1] != uint16(13) || send[3] != driver.EOTNone {
		t.Fatalf("Send args = %v", send)
	}
	recv := drv.CallsTo("Receive")[0].Args
	if recv[3] != driver.STOPend {
		t.Fatalf("Receive termination = %v", recv[3])
	}
}

func TestBoardOwnership(t *testing.T) {
	iface, drv := newTestInterface(t)
	b0, b1 := iface.Board(0), iface.Board(1)

	err := b0.ClearDevices([]Instrument{b0.Instrument(MakeAddr(1, 0)), b1.Instrument(MakeAddr(2, 0))})
	var verr *ValueError
	if !errors.As(err, &verr) {
		t.Fatalf("ClearDevices across boards = %v", err)
	}
	if _, err := b0.QueryAll(context.Background(), []Instrument{b1.Instrument(MakeAddr(2, 0))}, "?", nil); err == nil {
		t.Fatal("QueryAll accepted a foreign instrument")
	}
	if n := len(drv.Calls()); n != 0 {
		t.Fatalf("driver was called %d times", n)
	}
}

func TestQueryAll(t *testing.T) {
	iface, drv := newTestInterface(t)
	board := iface.Board(0)
	instruments := []Instrument{
		board.Instrument(MakeAddr(3, 0)),
		board.Instrument(MakeAddr(4, 0)),
	}

	out, err := board.QueryAll(context.Background(), instruments, "*IDN?", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != len(instruments) {
		t.Fatalf("QueryAll returned %d answers", len(out))
	}
	if drv.Count("Dev") != 2 || drv.Count("Onl") != 2 {
		t.Fatalf("expected two opens and two closes, got %+v", drv.Calls())
	}
	for _, c := range drv.CallsTo("Onl") {
		if drv.Online(c.Args[0].(int)) {
			t.Fatalf("descriptor %v left online", c.Args[0])
		}
	}
	if n := drv.Live(); n != 0 {
		t.Fatalf("%d buffers leaked", n)
	}
}

func TestQueryAllOpenFailure(t *testing.T) {
	iface, drv := newTestInterface(t)
	board := iface.Board(0)
	drv.Queue("Dev", drivertest.Fail(int(ENEB)))

	_, err := board.QueryAll(context.Background(), []Instrument{board.Instrument(MakeAddr(3, 0))}, "*IDN?", nil)
	if !errors.Is(err, ENEB) {
		t.Fatalf("QueryAll = %v, want ENEB", err)
	}
}

// vim: foldmethod=marker
