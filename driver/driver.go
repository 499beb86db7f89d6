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

// Package driver defines the capability interface that the gpib package
// uses to reach a native GPIB library.
//
// A Driver mirrors the C entry points of the Linux-GPIB / NI-488.2 user
// library one for one. Every method returns a Result, which is a snapshot
// of the library's out-of-band variables (ibsta, iberr, ibcntl) taken
// immediately after the call, on the same OS thread, before anything else
// can overwrite them. Higher layers never read that state on their own.
package driver

// Context says where the out-of-band values in a Result were read from.
type Context int

const (
	// ContextGlobal is the process-wide ibsta/iberr/ibcnt. It is only
	// coherent while calls are serialized, which the NI backend does.
	ContextGlobal Context = iota

	// ContextThread is the calling thread's copy, as exposed by the
	// Linux-GPIB ThreadIbsta/ThreadIberr/ThreadIbcntl accessors.
	ContextThread

	// ContextAsync is the state of the last asynchronous operation after
	// ibwait has resynchronized it to the calling thread.
	ContextAsync
)

func (c Context) String() string {
	switch c {
	case ContextGlobal:
		return "global"
	case ContextThread:
		return "thread"
	case ContextAsync:
		return "async"
	default:
		return "unknown"
	}
}

// Raw status bits shared with the native library.
const (
	StatusERR  = 1 << 15
	StatusTIMO = 1 << 14
	StatusEND  = 1 << 13
	StatusCMPL = 1 << 8
)

// NoAddr terminates every Addr4882_t list handed to the library.
const NoAddr uint16 = 0xffff

// STOPend disables end-of-string termination for RcvRespMsg and Receive.
const STOPend = 0x100

// End-of-message modes for Send, SendDataBytes and SendList. Backends
// translate them to the library's own NULLend/DABend/NLend values.
const (
	EOTNone    = 0
	EOTData    = 1
	EOTNewline = 2
)

// Result is the out-of-band state captured right after a driver call.
type Result struct {
	// Status is the raw ibsta value.
	Status int

	// Error is iberr. Only meaningful when Status has StatusERR set.
	Error int

	// Count is ibcntl. Depending on the call it is a byte count, a
	// result index, or the OS error behind EDVR/EFSO.
	Count int64

	Context Context
}

// Failed reports whether the ERR bit is set.
func (r Result) Failed() bool {
	return r.Status&StatusERR != 0
}

// Buffer is memory whose address stays fixed until it is freed. It is
// used for asynchronous reads and writes, where the library keeps the
// pointer after the issuing call returns.
type Buffer interface {
	// Len is the capacity of the buffer in bytes.
	Len() int

	// Bytes returns a view of the whole buffer. The view is only valid
	// until Free is called.
	Bytes() []byte

	// Free releases the memory. It must not be called while an
	// asynchronous operation still references the buffer.
	Free()
}

// Driver is one native GPIB library.
//
// Descriptors (ud) and board indexes are plain ints. Address lists are
// passed already terminated with NoAddr.
type Driver interface {
	// Alloc returns a pinned buffer for asynchronous I/O.
	Alloc(n int) Buffer

	// Traditional API.
	Ask(ud, option int) (int, Result)
	BNA(ud int, name string) Result
	CAC(ud, synchronous int) Result
	Clr(ud int) Result
	Cmd(ud int, commands []byte) Result
	Cmda(ud int, buf Buffer, n int) Result
	Config(ud, option, setting int) Result
	Dev(board, pad, sad, tmo, eot, eos int) (int, Result)
	EOS(ud, mode int) Result
	EOT(ud, send int) Result
	Event(ud int) (int, Result)
	Find(name string) (int, Result)
	GTS(ud, shadowHandshake int) Result
	IST(ud, ist int) Result
	Lines(ud int) (int, Result)
	LN(ud, pad, sad int) (bool, Result)
	Loc(ud int) Result
	Onl(ud, online int) Result
	PAD(ud, pad int) Result
	PCT(ud int) Result
	PPC(ud, configuration int) Result
	Rd(ud int, buf []byte) Result
	Rda(ud int, buf Buffer) Result
	Rdf(ud int, path string) Result
	RPP(ud int) (int, Result)
	RSC(ud, request int) Result
	RSP(ud int) (int, Result)
	RSV(ud, statusByte int) Result
	RSV2(ud, statusByte, newReason int) Result
	SAD(ud, sad int) Result
	SIC(ud int) Result
	SPB(ud int) (int, Result)
	SRE(ud, enable int) Result
	Stop(ud int) Result
	TMO(ud, timeout int) Result
	Trg(ud int) Result
	Vers() (string, Result)
	Wait(ud, mask int) Result
	Wrt(ud int, data []byte) Result
	Wrta(ud int, buf Buffer, n int) Result
	Wrtf(ud int, path string) Result

	// 488.2 multidevice API.
	AllSPoll(board int, addrs []uint16, results []int16) Result
	DevClear(board int, addr uint16) Result
	DevClearList(board int, addrs []uint16) Result
	EnableLocal(board int, addrs []uint16) Result
	EnableRemote(board int, addrs []uint16) Result
	FindLstn(board int, pads []uint16, results []uint16) Result
	FindRQS(board int, addrs []uint16) (int, Result)
	PassControl(board int, addr uint16) Result
	PPoll(board int) (int, Result)
	PPollConfig(board int, addr uint16, line, sense int) Result
	PPollUnconfig(board int, addrs []uint16) Result
	RcvRespMsg(board int, buf []byte, termination int) Result
	ReadStatusByte(board int, addr uint16) (int, Result)
	Receive(board int, addr uint16, buf []byte, termination int) Result
	ReceiveSetup(board int, addr uint16) Result
	ResetSys(board int, addrs []uint16) Result
	Send(board int, addr uint16, data []byte, eotMode int) Result
	SendCmds(board int, commands []byte) Result
	SendDataBytes(board int, data []byte, eotMode int) Result
	SendIFC(board int) Result
	SendList(board int, addrs []uint16, data []byte, eotMode int) Result
	SendLLO(board int) Result
	SendSetup(board int, addrs []uint16) Result
	SetRWLS(board int, addrs []uint16) Result
	TestSRQ(board int) (int, Result)
	TestSys(board int, addrs []uint16, results []int16) Result
	Trigger(board int, addr uint16) Result
	TriggerList(board int, addrs []uint16) Result
	WaitSRQ(board int) (int, Result)
}

// vim: foldmethod=marker
