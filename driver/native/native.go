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

//go:build cgo

package native

// #include <stdlib.h>
// #include "shim.h"
import "C"

import (
	"runtime"
	"unsafe"

	"hz.tools/linux-gpib/driver"
)

// Driver calls into the GPIB user library selected at build time.
type Driver struct{}

// New returns the native driver.
func New() (driver.Driver, error) {
	return Driver{}, nil
}

type cBuffer struct {
	ptr unsafe.Pointer
	n   int
}

func (b *cBuffer) Len() int { return b.n }

func (b *cBuffer) Bytes() []byte {
	if b.ptr == nil {
		return nil
	}
	return unsafe.Slice((*byte)(b.ptr), b.n)
}

func (b *cBuffer) Free() {
	if b.ptr == nil {
		return
	}
	C.free(b.ptr)
	b.ptr = nil
}

// Alloc returns C memory, which the Go runtime never moves and which the
// library may keep a pointer to after ibrda/ibwrta/ibcmda return.
func (Driver) Alloc(n int) driver.Buffer {
	if n < 1 {
		n = 1
	}
	return &cBuffer{ptr: C.calloc(C.size_t(n), 1), n: n}
}

func pinned(buf driver.Buffer) *cBuffer {
	cb, ok := buf.(*cBuffer)
	if !ok || cb.ptr == nil {
		panic("native: buffer was not allocated by this driver or was already freed")
	}
	return cb
}

func call(ctx driver.Context, fn func(r *C.gpib_result)) driver.Result {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	lock()
	defer unlock()
	var r C.gpib_result
	fn(&r)
	return driver.Result{
		Status:  int(r.sta),
		Error:   int(r.err),
		Count:   int64(r.cnt),
		Context: ctx,
	}
}

func do(fn func(r *C.gpib_result)) driver.Result {
	return call(syncContext, fn)
}

func bytesPtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func addrPtr(a []uint16) *C.ushort {
	if len(a) == 0 {
		return nil
	}
	return (*C.ushort)(unsafe.Pointer(&a[0]))
}

func shortPtr(s []int16) *C.short {
	if len(s) == 0 {
		return nil
	}
	return (*C.short)(unsafe.Pointer(&s[0]))
}

func (Driver) Ask(ud, option int) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { C.gpib_ibask(C.int(ud), C.int(option), &v, r) })
	return int(v), res
}

func (Driver) BNA(ud int, name string) driver.Result {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return do(func(r *C.gpib_result) { C.gpib_ibbna(C.int(ud), cname, r) })
}

func (Driver) CAC(ud, synchronous int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibcac(C.int(ud), C.int(synchronous), r) })
}

func (Driver) Clr(ud int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibclr(C.int(ud), r) })
}

func (Driver) Cmd(ud int, commands []byte) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_ibcmd(C.int(ud), bytesPtr(commands), C.long(len(commands)), r)
	})
}

func (Driver) Cmda(ud int, buf driver.Buffer, n int) driver.Result {
	cb := pinned(buf)
	return do(func(r *C.gpib_result) { C.gpib_ibcmda(C.int(ud), cb.ptr, C.long(n), r) })
}

func (Driver) Config(ud, option, setting int) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_ibconfig(C.int(ud), C.int(option), C.int(setting), r)
	})
}

func (Driver) Dev(board, pad, sad, tmo, eot, eos int) (int, driver.Result) {
	var ud C.int
	res := do(func(r *C.gpib_result) {
		ud = C.gpib_ibdev(C.int(board), C.int(pad), C.int(sad), C.int(tmo), C.int(eot), C.int(eos), r)
	})
	return int(ud), res
}

func (Driver) EOS(ud, mode int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibeos(C.int(ud), C.int(mode), r) })
}

func (Driver) EOT(ud, send int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibeot(C.int(ud), C.int(send), r) })
}

func (Driver) Event(ud int) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_ibevent(C.int(ud), r) })
	return int(v), res
}

func (Driver) Find(name string) (int, driver.Result) {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	var ud C.int
	res := do(func(r *C.gpib_result) { ud = C.gpib_ibfind(cname, r) })
	return int(ud), res
}

func (Driver) GTS(ud, shadowHandshake int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibgts(C.int(ud), C.int(shadowHandshake), r) })
}

func (Driver) IST(ud, ist int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibist(C.int(ud), C.int(ist), r) })
}

func (Driver) Lines(ud int) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_iblines(C.int(ud), r) })
	return int(v), res
}

func (Driver) LN(ud, pad, sad int) (bool, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_ibln(C.int(ud), C.int(pad), C.int(sad), r) })
	return v != 0, res
}

func (Driver) Loc(ud int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibloc(C.int(ud), r) })
}

func (Driver) Onl(ud, online int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibonl(C.int(ud), C.int(online), r) })
}

func (Driver) PAD(ud, pad int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibpad(C.int(ud), C.int(pad), r) })
}

func (Driver) PCT(ud int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibpct(C.int(ud), r) })
}

func (Driver) PPC(ud, configuration int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibppc(C.int(ud), C.int(configuration), r) })
}

func (Driver) Rd(ud int, buf []byte) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_ibrd(C.int(ud), bytesPtr(buf), C.long(len(buf)), r)
	})
}

func (Driver) Rda(ud int, buf driver.Buffer) driver.Result {
	cb := pinned(buf)
	return do(func(r *C.gpib_result) { C.gpib_ibrda(C.int(ud), cb.ptr, C.long(cb.n), r) })
}

func (Driver) Rdf(ud int, path string) driver.Result {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	return do(func(r *C.gpib_result) { C.gpib_ibrdf(C.int(ud), cpath, r) })
}

func (Driver) RPP(ud int) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_ibrpp(C.int(ud), r) })
	return int(v), res
}

func (Driver) RSC(ud, request int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibrsc(C.int(ud), C.int(request), r) })
}

func (Driver) RSP(ud int) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_ibrsp(C.int(ud), r) })
	return int(v), res
}

func (Driver) RSV(ud, statusByte int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibrsv(C.int(ud), C.int(statusByte), r) })
}

func (Driver) RSV2(ud, statusByte, newReason int) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_ibrsv2(C.int(ud), C.int(statusByte), C.int(newReason), r)
	})
}

func (Driver) SAD(ud, sad int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibsad(C.int(ud), C.int(sad), r) })
}

func (Driver) SIC(ud int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibsic(C.int(ud), r) })
}

func (Driver) SPB(ud int) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_ibspb(C.int(ud), r) })
	return int(v), res
}

func (Driver) SRE(ud, enable int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibsre(C.int(ud), C.int(enable), r) })
}

func (Driver) Stop(ud int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibstop(C.int(ud), r) })
}

func (Driver) TMO(ud, timeout int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibtmo(C.int(ud), C.int(timeout), r) })
}

func (Driver) Trg(ud int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ibtrg(C.int(ud), r) })
}

func (Driver) Vers() (string, driver.Result) {
	var s *C.char
	res := do(func(r *C.gpib_result) { s = C.gpib_ibvers(r) })
	if s == nil {
		return "", res
	}
	return C.GoString(s), res
}

// Wait blocks in ibwait. The snapshot comes from the async accessors,
// which ibwait has just resynchronized to this thread.
func (Driver) Wait(ud, mask int) driver.Result {
	return call(asyncContext, func(r *C.gpib_result) { C.gpib_ibwait(C.int(ud), C.int(mask), r) })
}

func (Driver) Wrt(ud int, data []byte) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_ibwrt(C.int(ud), bytesPtr(data), C.long(len(data)), r)
	})
}

func (Driver) Wrta(ud int, buf driver.Buffer, n int) driver.Result {
	cb := pinned(buf)
	return do(func(r *C.gpib_result) { C.gpib_ibwrta(C.int(ud), cb.ptr, C.long(n), r) })
}

func (Driver) Wrtf(ud int, path string) driver.Result {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	return do(func(r *C.gpib_result) { C.gpib_ibwrtf(C.int(ud), cpath, r) })
}

func (Driver) AllSPoll(board int, addrs []uint16, results []int16) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_AllSpoll(C.int(board), addrPtr(addrs), shortPtr(results), r)
	})
}

func (Driver) DevClear(board int, addr uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_DevClear(C.int(board), C.ushort(addr), r) })
}

func (Driver) DevClearList(board int, addrs []uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_DevClearList(C.int(board), addrPtr(addrs), r) })
}

func (Driver) EnableLocal(board int, addrs []uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_EnableLocal(C.int(board), addrPtr(addrs), r) })
}

func (Driver) EnableRemote(board int, addrs []uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_EnableRemote(C.int(board), addrPtr(addrs), r) })
}

func (Driver) FindLstn(board int, pads []uint16, results []uint16) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_FindLstn(C.int(board), addrPtr(pads), addrPtr(results), C.int(len(results)), r)
	})
}

func (Driver) FindRQS(board int, addrs []uint16) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_FindRQS(C.int(board), addrPtr(addrs), r) })
	return int(v), res
}

func (Driver) PassControl(board int, addr uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_PassControl(C.int(board), C.ushort(addr), r) })
}

func (Driver) PPoll(board int) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_PPoll(C.int(board), r) })
	return int(v), res
}

func (Driver) PPollConfig(board int, addr uint16, line, sense int) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_PPollConfig(C.int(board), C.ushort(addr), C.int(line), C.int(sense), r)
	})
}

func (Driver) PPollUnconfig(board int, addrs []uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_PPollUnconfig(C.int(board), addrPtr(addrs), r) })
}

func (Driver) RcvRespMsg(board int, buf []byte, termination int) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_RcvRespMsg(C.int(board), bytesPtr(buf), C.long(len(buf)), C.int(termination), r)
	})
}

func (Driver) ReadStatusByte(board int, addr uint16) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_ReadStatusByte(C.int(board), C.ushort(addr), r) })
	return int(v), res
}

func (Driver) Receive(board int, addr uint16, buf []byte, termination int) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_Receive(C.int(board), C.ushort(addr), bytesPtr(buf), C.long(len(buf)), C.int(termination), r)
	})
}

func (Driver) ReceiveSetup(board int, addr uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ReceiveSetup(C.int(board), C.ushort(addr), r) })
}

func (Driver) ResetSys(board int, addrs []uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_ResetSys(C.int(board), addrPtr(addrs), r) })
}

func (Driver) Send(board int, addr uint16, data []byte, eotMode int) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_Send(C.int(board), C.ushort(addr), bytesPtr(data), C.long(len(data)), C.int(eotMode), r)
	})
}

func (Driver) SendCmds(board int, commands []byte) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_SendCmds(C.int(board), bytesPtr(commands), C.long(len(commands)), r)
	})
}

func (Driver) SendDataBytes(board int, data []byte, eotMode int) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_SendDataBytes(C.int(board), bytesPtr(data), C.long(len(data)), C.int(eotMode), r)
	})
}

func (Driver) SendIFC(board int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_SendIFC(C.int(board), r) })
}

func (Driver) SendList(board int, addrs []uint16, data []byte, eotMode int) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_SendList(C.int(board), addrPtr(addrs), bytesPtr(data), C.long(len(data)), C.int(eotMode), r)
	})
}

func (Driver) SendLLO(board int) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_SendLLO(C.int(board), r) })
}

func (Driver) SendSetup(board int, addrs []uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_SendSetup(C.int(board), addrPtr(addrs), r) })
}

func (Driver) SetRWLS(board int, addrs []uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_SetRWLS(C.int(board), addrPtr(addrs), r) })
}

func (Driver) TestSRQ(board int) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_TestSRQ(C.int(board), r) })
	return int(v), res
}

func (Driver) TestSys(board int, addrs []uint16, results []int16) driver.Result {
	return do(func(r *C.gpib_result) {
		C.gpib_TestSys(C.int(board), addrPtr(addrs), shortPtr(results), r)
	})
}

func (Driver) Trigger(board int, addr uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_Trigger(C.int(board), C.ushort(addr), r) })
}

func (Driver) TriggerList(board int, addrs []uint16) driver.Result {
	return do(func(r *C.gpib_result) { C.gpib_TriggerList(C.int(board), addrPtr(addrs), r) })
}

// WaitSRQ blocks until SRQ is asserted or the board timeout expires.
func (Driver) WaitSRQ(board int) (int, driver.Result) {
	var v C.int
	res := do(func(r *C.gpib_result) { v = C.gpib_WaitSRQ(C.int(board), r) })
	return int(v), res
}

// vim: foldmethod=marker
