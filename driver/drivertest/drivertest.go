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

// Package drivertest provides a scripted driver.Driver for unit tests.
//
// The fake does not model a bus. Every call is recorded, and its result
// is taken from a per-call queue of Replies; once a queue is empty the
// call succeeds with CMPL set.
package drivertest

import (
	"sync"

	"hz.tools/linux-gpib/driver"
)

// Call is one recorded driver invocation.
type Call struct {
	Name string
	Args []interface{}
}

// Reply scripts the outcome of one call.
type Reply struct {
	// Result is returned as-is, except that Context is filled in and a
	// zero Count is replaced by the number of Data bytes delivered.
	Result driver.Result

	// Value is returned by calls that produce an int (RSP, Ask, Lines,
	// FindRQS, ...). For Dev and Find a non-zero Value is used as the
	// descriptor.
	Value int

	// Found is returned by LN.
	Found bool

	// Data is copied into the caller's buffer by Rd, RcvRespMsg, Receive
	// and by the Wait that completes an Rda.
	Data []byte

	// Addrs fills the FindLstn result list.
	Addrs []uint16

	// Values fills the AllSPoll and TestSys result lists.
	Values []int16

	// Version is returned by Vers.
	Version string

	// Hold makes Wait block until it is closed, or until Stop is called
	// on the descriptor, in which case Wait reports EABO.
	Hold chan struct{}
}

// OK returns a successful reply with the given status bits added to CMPL.
func OK(status int) Reply {
	return Reply{Result: driver.Result{Status: status | driver.StatusCMPL}}
}

// Fail returns a reply with ERR set and iberr set to code.
func Fail(code int) Reply {
	return Reply{Result: driver.Result{Status: driver.StatusERR, Error: code}}
}

// Status returns a reply carrying exactly the given status bits.
func Status(status int) Reply {
	return Reply{Result: driver.Result{Status: status}}
}

// Data returns a successful reply delivering b, with END set.
func Data(b []byte) Reply {
	r := OK(driver.StatusEND)
	r.Data = b
	return r
}

const (
	eabo = 6
	earg = 4
)

// Driver is the scripted fake.
type Driver struct {
	mu      sync.Mutex
	calls   []Call
	queues  map[string][]Reply
	nextUD  int
	online  map[int]bool
	pending map[int]*Buffer
	ops     map[int]chan struct{}
	allocs  int
	frees   int
}

// New returns an empty fake. Descriptors it hands out start at 1.
func New() *Driver {
	return &Driver{
		queues:  map[string][]Reply{},
		nextUD:  1,
		online:  map[int]bool{},
		pending: map[int]*Buffer{},
		ops:     map[int]chan struct{}{},
	}
}

// Queue appends replies for the named call, e.g. "Rda" or "Wait".
func (d *Driver) Queue(name string, replies ...Reply) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queues[name] = append(d.queues[name], replies...)
}

// Calls returns a copy of every recorded call in order.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// CallsTo returns the recorded calls with the given name.
func (d *Driver) CallsTo(name string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Call
	for _, c := range d.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Count is len(CallsTo(name)).
func (d *Driver) Count(name string) int {
	return len(d.CallsTo(name))
}

// Live is the number of allocated buffers that were not freed yet.
func (d *Driver) Live() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocs - d.frees
}

// Online reports whether ud was opened and not yet taken offline.
func (d *Driver) Online(ud int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online[ud]
}

func (d *Driver) next(name string, args ...interface{}) Reply {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.nextLocked(name, args...)
}

func (d *Driver) nextLocked(name string, args ...interface{}) Reply {
	d.calls = append(d.calls, Call{Name: name, Args: args})
	q := d.queues[name]
	if len(q) == 0 {
		return OK(0)
	}
	r := q[0]
	d.queues[name] = q[1:]
	return r
}

func finish(r Reply, delivered int) driver.Result {
	res := r.Result
	res.Context = driver.ContextThread
	if res.Count == 0 && r.Data != nil {
		res.Count = int64(delivered)
	}
	return res
}

func simple(d *Driver, name string, args ...interface{}) driver.Result {
	return finish(d.next(name, args...), 0)
}

// Buffer is the fake's stand-in for pinned memory.
type Buffer struct {
	d     *Driver
	data  []byte
	freed bool
}

func (b *Buffer) Len() int { return len(b.data) }

func (b *Buffer) Bytes() []byte {
	if b.freed {
		return nil
	}
	return b.data
}

func (b *Buffer) Free() {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	if b.freed {
		return
	}
	b.freed = true
	b.d.frees++
}

// Freed reports whether Free was called.
func (b *Buffer) Freed() bool {
	b.d.mu.Lock()
	defer b.d.mu.Unlock()
	return b.freed
}

func (d *Driver) Alloc(n int) driver.Buffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.allocs++
	return &Buffer{d: d, data: make([]byte, n)}
}

func (d *Driver) open(name string, args ...interface{}) (int, driver.Result) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.nextLocked(name, args...)
	res := finish(r, 0)
	if res.Failed() {
		return -1, res
	}
	ud := r.Value
	if ud == 0 {
		ud = d.nextUD
		d.nextUD++
	}
	d.online[ud] = true
	return ud, res
}

func (d *Driver) Ask(ud, option int) (int, driver.Result) {
	r := d.next("Ask", ud, option)
	return r.Value, finish(r, 0)
}

func (d *Driver) BNA(ud int, name string) driver.Result { return simple(d, "BNA", ud, name) }

func (d *Driver) CAC(ud, synchronous int) driver.Result {
	return simple(d, "CAC", ud, synchronous)
}

func (d *Driver) Clr(ud int) driver.Result { return simple(d, "Clr", ud) }

func (d *Driver) Cmd(ud int, commands []byte) driver.Result {
	return simple(d, "Cmd", ud, append([]byte(nil), commands...))
}

func (d *Driver) Cmda(ud int, buf driver.Buffer, n int) driver.Result {
	return d.startAsync("Cmda", ud, buf, append([]byte(nil), buf.Bytes()[:n]...))
}

func (d *Driver) Config(ud, option, setting int) driver.Result {
	return simple(d, "Config", ud, option, setting)
}

func (d *Driver) Dev(board, pad, sad, tmo, eot, eos int) (int, driver.Result) {
	return d.open("Dev", board, pad, sad, tmo, eot, eos)
}

func (d *Driver) EOS(ud, mode int) driver.Result { return simple(d, "EOS", ud, mode) }

func (d *Driver) EOT(ud, send int) driver.Result { return simple(d, "EOT", ud, send) }

func (d *Driver) Event(ud int) (int, driver.Result) {
	r := d.next("Event", ud)
	return r.Value, finish(r, 0)
}

func (d *Driver) Find(name string) (int, driver.Result) {
	return d.open("Find", name)
}

func (d *Driver) GTS(ud, shadowHandshake int) driver.Result {
	return simple(d, "GTS", ud, shadowHandshake)
}

func (d *Driver) IST(ud, ist int) driver.Result { return simple(d, "IST", ud, ist) }

func (d *Driver) Lines(ud int) (int, driver.Result) {
	r := d.next("Lines", ud)
	return r.Value, finish(r, 0)
}

func (d *Driver) LN(ud, pad, sad int) (bool, driver.Result) {
	r := d.next("LN", ud, pad, sad)
	return r.Found, finish(r, 0)
}

func (d *Driver) Loc(ud int) driver.Result { return simple(d, "Loc", ud) }

func (d *Driver) Onl(ud, online int) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.nextLocked("Onl", ud, online)
	if !d.online[ud] {
		return finish(Fail(earg), 0)
	}
	res := finish(r, 0)
	if !res.Failed() && online == 0 {
		delete(d.online, ud)
	}
	return res
}

func (d *Driver) PAD(ud, pad int) driver.Result { return simple(d, "PAD", ud, pad) }

func (d *Driver) PCT(ud int) driver.Result { return simple(d, "PCT", ud) }

func (d *Driver) PPC(ud, configuration int) driver.Result {
	return simple(d, "PPC", ud, configuration)
}

func (d *Driver) Rd(ud int, buf []byte) driver.Result {
	r := d.next("Rd", ud, len(buf))
	return finish(r, copy(buf, r.Data))
}

func (d *Driver) Rda(ud int, buf driver.Buffer) driver.Result {
	return d.startAsync("Rda", ud, buf, buf.Len())
}

func (d *Driver) Rdf(ud int, path string) driver.Result { return simple(d, "Rdf", ud, path) }

func (d *Driver) RPP(ud int) (int, driver.Result) {
	r := d.next("RPP", ud)
	return r.Value, finish(r, 0)
}

func (d *Driver) RSC(ud, request int) driver.Result { return simple(d, "RSC", ud, request) }

func (d *Driver) RSP(ud int) (int, driver.Result) {
	r := d.next("RSP", ud)
	return r.Value, finish(r, 0)
}

func (d *Driver) RSV(ud, statusByte int) driver.Result {
	return simple(d, "RSV", ud, statusByte)
}

func (d *Driver) RSV2(ud, statusByte, newReason int) driver.Result {
	return simple(d, "RSV2", ud, statusByte, newReason)
}

func (d *Driver) SAD(ud, sad int) driver.Result { return simple(d, "SAD", ud, sad) }

func (d *Driver) SIC(ud int) driver.Result { return simple(d, "SIC", ud) }

func (d *Driver) SPB(ud int) (int, driver.Result) {
	r := d.next("SPB", ud)
	return r.Value, finish(r, 0)
}

func (d *Driver) SRE(ud, enable int) driver.Result { return simple(d, "SRE", ud, enable) }

// Stop aborts the asynchronous operation pending on ud, if any.
func (d *Driver) Stop(ud int) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.nextLocked("Stop", ud)
	if op, ok := d.ops[ud]; ok {
		select {
		case <-op:
		default:
			close(op)
		}
	}
	return finish(r, 0)
}

func (d *Driver) TMO(ud, timeout int) driver.Result { return simple(d, "TMO", ud, timeout) }

func (d *Driver) Trg(ud int) driver.Result { return simple(d, "Trg", ud) }

func (d *Driver) Vers() (string, driver.Result) {
	r := d.next("Vers")
	return r.Version, finish(r, 0)
}

func (d *Driver) startAsync(name string, ud int, buf driver.Buffer, arg interface{}) driver.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	r := d.nextLocked(name, ud, arg)
	res := finish(r, 0)
	if res.Failed() {
		return res
	}
	if b, ok := buf.(*Buffer); ok && name == "Rda" {
		d.pending[ud] = b
	}
	d.ops[ud] = make(chan struct{})
	return res
}

// Wait completes the operation started by Rda, Wrta or Cmda. For a read,
// the reply's Data is copied into the pending buffer.
func (d *Driver) Wait(ud, mask int) driver.Result {
	d.mu.Lock()
	r := d.nextLocked("Wait", ud, mask)
	op := d.ops[ud]
	d.mu.Unlock()

	if r.Hold != nil {
		if op == nil {
			op = make(chan struct{})
		}
		select {
		case <-r.Hold:
		case <-op:
			d.mu.Lock()
			delete(d.ops, ud)
			delete(d.pending, ud)
			d.mu.Unlock()
			return driver.Result{
				Status:  driver.StatusERR | driver.StatusCMPL,
				Error:   eabo,
				Context: driver.ContextAsync,
			}
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	delivered := 0
	if b, ok := d.pending[ud]; ok && !b.freed {
		delivered = copy(b.data, r.Data)
	}
	delete(d.ops, ud)
	delete(d.pending, ud)
	res := finish(r, delivered)
	res.Context = driver.ContextAsync
	return res
}

func (d *Driver) Wrt(ud int, data []byte) driver.Result {
	return simple(d, "Wrt", ud, append([]byte(nil), data...))
}

func (d *Driver) Wrta(ud int, buf driver.Buffer, n int) driver.Result {
	return d.startAsync("Wrta", ud, buf, append([]byte(nil), buf.Bytes()[:n]...))
}

func (d *Driver) Wrtf(ud int, path string) driver.Result { return simple(d, "Wrtf", ud, path) }

func (d *Driver) AllSPoll(board int, addrs []uint16, results []int16) driver.Result {
	r := d.next("AllSPoll", board, append([]uint16(nil), addrs...))
	copy(results, r.Values)
	return finish(r, 0)
}

func (d *Driver) DevClear(board int, addr uint16) driver.Result {
	return simple(d, "DevClear", board, addr)
}

func (d *Driver) DevClearList(board int, addrs []uint16) driver.Result {
	return simple(d, "DevClearList", board, append([]uint16(nil), addrs...))
}

func (d *Driver) EnableLocal(board int, addrs []uint16) driver.Result {
	return simple(d, "EnableLocal", board, append([]uint16(nil), addrs...))
}

func (d *Driver) EnableRemote(board int, addrs []uint16) driver.Result {
	return simple(d, "EnableRemote", board, append([]uint16(nil), addrs...))
}

// FindLstn copies the reply's Addrs into results and sets Count to the
// number of entries copied unless the reply sets Count itself.
func (d *Driver) FindLstn(board int, pads []uint16, results []uint16) driver.Result {
	r := d.next("FindLstn", board, append([]uint16(nil), pads...), len(results))
	n := copy(results, r.Addrs)
	res := finish(r, 0)
	if res.Count == 0 {
		res.Count = int64(n)
	}
	return res
}

func (d *Driver) FindRQS(board int, addrs []uint16) (int, driver.Result) {
	r := d.next("FindRQS", board, append([]uint16(nil), addrs...))
	return r.Value, finish(r, 0)
}

func (d *Driver) PassControl(board int, addr uint16) driver.Result {
	return simple(d, "PassControl", board, addr)
}

func (d *Driver) PPoll(board int) (int, driver.Result) {
	r := d.next("PPoll", board)
	return r.Value, finish(r, 0)
}

func (d *Driver) PPollConfig(board int, addr uint16, line, sense int) driver.Result {
	return simple(d, "PPollConfig", board, addr, line, sense)
}

func (d *Driver) PPollUnconfig(board int, addrs []uint16) driver.Result {
	return simple(d, "PPollUnconfig", board, append([]uint16(nil), addrs...))
}

func (d *Driver) RcvRespMsg(board int, buf []byte, termination int) driver.Result {
	r := d.next("RcvRespMsg", board, len(buf), termination)
	return finish(r, copy(buf, r.Data))
}

func (d *Driver) ReadStatusByte(board int, addr uint16) (int, driver.Result) {
	r := d.next("ReadStatusByte", board, addr)
	return r.Value, finish(r, 0)
}

func (d *Driver) Receive(board int, addr uint16, buf []byte, termination int) driver.Result {
	r := d.next("Receive", board, addr, len(buf), termination)
	return finish(r, copy(buf, r.Data))
}

func (d *Driver) ReceiveSetup(board int, addr uint16) driver.Result {
	return simple(d, "ReceiveSetup", board, addr)
}

func (d *Driver) ResetSys(board int, addrs []uint16) driver.Result {
	return simple(d, "ResetSys", board, append([]uint16(nil), addrs...))
}

func (d *Driver) Send(board int, addr uint16, data []byte, eotMode int) driver.Result {
	return simple(d, "Send", board, addr, append([]byte(nil), data...), eotMode)
}

func (d *Driver) SendCmds(board int, commands []byte) driver.Result {
	return simple(d, "SendCmds", board, append([]byte(nil), commands...))
}

func (d *Driver) SendDataBytes(board int, data []byte, eotMode int) driver.Result {
	return simple(d, "SendDataBytes", board, append([]byte(nil), data...), eotMode)
}

func (d *Driver) SendIFC(board int) driver.Result { return simple(d, "SendIFC", board) }

func (d *Driver) SendList(board int, addrs []uint16, data []byte, eotMode int) driver.Result {
	return simple(d, "SendList", board, append([]uint16(nil), addrs...), append([]byte(nil), data...), eotMode)
}

func (d *Driver) SendLLO(board int) driver.Result { return simple(d, "SendLLO", board) }

func (d *Driver) SendSetup(board int, addrs []uint16) driver.Result {
	return simple(d, "SendSetup", board, append([]uint16(nil), addrs...))
}

func (d *Driver) SetRWLS(board int, addrs []uint16) driver.Result {
	return simple(d, "SetRWLS", board, append([]uint16(nil), addrs...))
}

func (d *Driver) TestSRQ(board int) (int, driver.Result) {
	r := d.next("TestSRQ", board)
	return r.Value, finish(r, 0)
}

func (d *Driver) TestSys(board int, addrs []uint16, results []int16) driver.Result {
	r := d.next("TestSys", board, append([]uint16(nil), addrs...))
	copy(results, r.Values)
	return finish(r, 0)
}

func (d *Driver) Trigger(board int, addr uint16) driver.Result {
	return simple(d, "Trigger", board, addr)
}

func (d *Driver) TriggerList(board int, addrs []uint16) driver.Result {
	return simple(d, "TriggerList", board, append([]uint16(nil), addrs...))
}

func (d *Driver) WaitSRQ(board int) (int, driver.Result) {
	r := d.next("WaitSRQ", board)
	return r.Value, finish(r, 0)
}

var _ driver.Driver = (*Driver)(nil)

// vim: foldmethod=marker
