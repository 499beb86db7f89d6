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
	"fmt"

	"hz.tools/linux-gpib/driver"
)

// maxListeners is the size of the FindLstn result list: one entry per
// legal primary address.
const maxListeners = 31

// Board is a GPIB interface board, identified by its index. It is a plain
// value and does not own a descriptor.
type Board struct {
	iface *Interface
	index int
}

// Board returns the board with the given index.
func (i *Interface) Board(index int) Board {
	return Board{iface: i, index: index}
}

// Index is the board index.
func (b Board) Index() int {
	return b.index
}

func (b Board) String() string {
	return fmt.Sprintf("Board(%d)", b.index)
}

func (b Board) check(call string, res driver.Result) (Status, error) {
	return b.iface.check(call, b.index, res)
}

func (b Board) list(call string, addrs []Addr, fn func(raw []uint16) driver.Result) error {
	raw, err := addrList(addrs)
	if err != nil {
		return err
	}
	_, err = b.check(call, fn(raw))
	return err
}

// FindListeners checks each primary address in pads for a listener
// (FindLstn). All secondary addresses are probed where necessary.
func (b Board) FindListeners(pads []int) ([]Addr, error) {
	list := make([]Addr, 0, len(pads))
	for _, pad := range pads {
		if err := checkPrimary(pad); err != nil {
			return nil, err
		}
		list = append(list, MakeAddr(uint16(pad), 0))
	}
	raw, err := addrList(list)
	if err != nil {
		return nil, err
	}

	results := make([]uint16, maxListeners)
	for i := range results {
		results[i] = driver.NoAddr
	}
	res := b.iface.drv.FindLstn(b.index, raw, results)
	if _, err := b.check("FindLstn", res); err != nil {
		var derr *DriverError
		if errors.As(err, &derr) {
			switch derr.Err.Code {
			case ETAB:
				return nil, fmt.Errorf("%w: %w", ErrTooManyListeners, err)
			case EBUS:
				return nil, fmt.Errorf("%w: %w", ErrNoDevices, err)
			case ECAP:
				b.iface.warnf("FindLstn(%d): board cannot monitor NDAC", b.index)
				return nil, fmt.Errorf("%w: %w", ErrNoListenerDetection, err)
			}
		}
		return nil, err
	}
	if res.Count < 0 || res.Count > int64(len(results)) {
		return nil, valueErrorf("FindLstn reported %d listeners for a %d entry list", res.Count, len(results))
	}
	return addrsFrom(results[:res.Count]), nil
}

// FindAllListeners scans primary addresses 1 through 30.
func (b Board) FindAllListeners() ([]Addr, error) {
	pads := make([]int, 0, 30)
	for pad := 1; pad <= 30; pad++ {
		pads = append(pads, pad)
	}
	return b.FindListeners(pads)
}

// DevClear clears one device.
func (b Board) DevClear(addr Addr) error {
	_, err := b.check("DevClear", b.iface.drv.DevClear(b.index, uint16(addr)))
	return err
}

// DevClearList clears several devices at once. An empty list clears every
// device on the bus.
func (b Board) DevClearList(addrs []Addr) error {
	return b.list("DevClearList", addrs, func(raw []uint16) driver.Result {
		return b.iface.drv.DevClearList(b.index, raw)
	})
}

// EnableLocal sends GTL to addrs. An empty list releases REN instead.
func (b Board) EnableLocal(addrs []Addr) error {
	return b.list("EnableLocal", addrs, func(raw []uint16) driver.Result {
		return b.iface.drv.EnableLocal(b.index, raw)
	})
}

// EnableRemote asserts REN and addresses addrs as listeners.
func (b Board) EnableRemote(addrs []Addr) error {
	return b.list("EnableRemote", addrs, func(raw []uint16) driver.Result {
		return b.iface.drv.EnableRemote(b.index, raw)
	})
}

// FindRQS serial polls addrs until one is requesting service, and returns
// its address and status byte.
func (b Board) FindRQS(addrs []Addr) (Addr, byte, error) {
	raw, err := addrList(addrs)
	if err != nil {
		return NoAddr, 0, err
	}
	stb, res := b.iface.drv.FindRQS(b.index, raw)
	if _, err := b.check("FindRQS", res); err != nil {
		return NoAddr, 0, err
	}
	if res.Count < 0 || res.Count >= int64(len(addrs)) {
		return NoAddr, 0, valueErrorf("FindRQS reported index %d for a list of %d addresses", res.Count, len(addrs))
	}
	return addrs[res.Count], byte(stb), nil
}

// PassControlTo makes addr controller-in-charge.
func (b Board) PassControlTo(addr Addr) error {
	_, err := b.check("PassControl", b.iface.drv.PassControl(b.index, uint16(addr)))
	return err
}

// PPoll conducts a parallel poll.
func (b Board) PPoll() (byte, error) {
	v, res := b.iface.drv.PPoll(b.index)
	if _, err := b.check("PPoll", res); err != nil {
		return 0, err
	}
	return byte(v), nil
}

// PPollConfig configures addr to answer parallel polls on data line
// (1 through 8) with the given sense.
func (b Board) PPollConfig(addr Addr, line int, sense bool) error {
	if line < 1 || line > 8 {
		return valueErrorf("parallel poll line must be between 1 and 8, got %d", line)
	}
	_, err := b.check("PPollConfig", b.iface.drv.PPollConfig(b.index, uint16(addr), line, boolInt(sense)))
	return err
}

// PPollUnconfig stops addrs from answering parallel polls.
func (b Board) PPollUnconfig(addrs []Addr) error {
	return b.list("PPollUnconfig", addrs, func(raw []uint16) driver.Result {
		return b.iface.drv.PPollUnconfig(b.index, raw)
	})
}

// RcvRespMsg reads into buf from devices already addressed by
// ReceiveSetup. termination is an eos byte or driver.STOPend.
func (b Board) RcvRespMsg(buf []byte, termination int) (int, Status, error) {
	res := b.iface.drv.RcvRespMsg(b.index, buf, termination)
	st, err := b.check("RcvRespMsg", res)
	if err != nil {
		return 0, st, err
	}
	if res.Count < 0 || res.Count > int64(len(buf)) {
		return 0, st, valueErrorf("RcvRespMsg reported %d bytes read into a %d byte buffer", res.Count, len(buf))
	}
	return int(res.Count), st, nil
}

// ReadStatusByte serial polls addr.
func (b Board) ReadStatusByte(addr Addr) (byte, error) {
	v, res := b.iface.drv.ReadStatusByte(b.index, uint16(addr))
	if _, err := b.check("ReadStatusByte", res); err != nil {
		return 0, err
	}
	return byte(v), nil
}

// Receive addresses addr as talker and reads into buf. termination is an
// eos byte or driver.STOPend.
func (b Board) Receive(addr Addr, buf []byte, termination int) (int, Status, error) {
	res := b.iface.drv.Receive(b.index, uint16(addr), buf, termination)
	st, err := b.check("Receive", res)
	if err != nil {
		return 0, st, err
	}
	if res.Count < 0 || res.Count > int64(len(buf)) {
		return 0, st, valueErrorf("Receive reported %d bytes read into a %d byte buffer", res.Count, len(buf))
	}
	return int(res.Count), st, nil
}

// ReceiveSetup addresses addr as talker and the board as listener.
func (b Board) ReceiveSetup(addr Addr) error {
	_, err := b.check("ReceiveSetup", b.iface.drv.ReceiveSetup(b.index, uint16(addr)))
	return err
}

// ResetSys runs the 488.2 reset protocol on addrs.
func (b Board) ResetSys(addrs []Addr) error {
	return b.list("ResetSys", addrs, func(raw []uint16) driver.Result {
		return b.iface.drv.ResetSys(b.index, raw)
	})
}

// Send writes data to addr.
func (b Board) Send(addr Addr, data []byte, mode EOTMode) error {
	if err := checkEOT(mode); err != nil {
		return err
	}
	_, err := b.check("Send", b.iface.drv.Send(b.index, uint16(addr), data, int(mode)))
	return err
}

// SendCmds writes command bytes with ATN asserted.
func (b Board) SendCmds(commands []byte) error {
	_, err := b.check("SendCmds", b.iface.drv.SendCmds(b.index, commands))
	return err
}

// SendDataBytes writes data to the devices addressed by SendSetup.
func (b Board) SendDataBytes(data []byte, mode EOTMode) error {
	if err := checkEOT(mode); err != nil {
		return err
	}
	_, err := b.check("SendDataBytes", b.iface.drv.SendDataBytes(b.index, data, int(mode)))
	return err
}

// SendSetup addresses addrs as listeners.
func (b Board) SendSetup(addrs []Addr) error {
	return b.list("SendSetup", addrs, func(raw []uint16) driver.Result {
		return b.iface.drv.SendSetup(b.index, raw)
	})
}

// SendIFC pulses IFC, making the board controller-in-charge.
func (b Board) SendIFC() error {
	_, err := b.check("SendIFC", b.iface.drv.SendIFC(b.index))
	return err
}

// SendList writes data to every address in addrs.
func (b Board) SendList(addrs []Addr, data []byte, mode EOTMode) error {
	if err := checkEOT(mode); err != nil {
		return err
	}
	return b.list("SendList", addrs, func(raw []uint16) driver.Result {
		return b.iface.drv.SendList(b.index, raw, data, int(mode))
	})
}

// SendLLO puts every device on the bus in local lockout.
func (b Board) SendLLO() error {
	_, err := b.check("SendLLO", b.iface.drv.SendLLO(b.index))
	return err
}

// SetRWLS puts addrs in remote with lockout state.
func (b Board) SetRWLS(addrs []Addr) error {
	return b.list("SetRWLS", addrs, func(raw []uint16) driver.Result {
		return b.iface.drv.SetRWLS(b.index, raw)
	})
}

// TestSRQ reports whether SRQ is asserted.
func (b Board) TestSRQ() (bool, error) {
	v, res := b.iface.drv.TestSRQ(b.index)
	if _, err := b.check("TestSRQ", res); err != nil {
		return false, err
	}
	switch v {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, valueErrorf("TestSRQ returned unexpected value %d", v)
	}
}

// TestSys asks addrs to run their self tests and returns each result.
func (b Board) TestSys(addrs []Addr) ([]int16, error) {
	raw, err := addrList(addrs)
	if err != nil {
		return nil, err
	}
	results := make([]int16, len(addrs))
	if _, err := b.check("TestSys", b.iface.drv.TestSys(b.index, raw, results)); err != nil {
		return nil, err
	}
	return results, nil
}

// TriggerAddr sends group execute trigger to addr.
func (b Board) TriggerAddr(addr Addr) error {
	_, err := b.check("Trigger", b.iface.drv.Trigger(b.index, uint16(addr)))
	return err
}

// TriggerList triggers addrs at once. An empty list triggers every
// device addressed as a listener.
func (b Board) TriggerList(addrs []Addr) error {
	return b.list("TriggerList", addrs, func(raw []uint16) driver.Result {
		return b.iface.drv.TriggerList(b.index, raw)
	})
}

// WaitSRQ blocks until SRQ is asserted or the board timeout expires, and
// reports which. Cancelling ctx stops the board.
func (b Board) WaitSRQ(ctx context.Context) (bool, error) {
	var v int
	res, err := b.iface.complete(ctx, "WaitSRQ", b.index, func() driver.Result {
		var res driver.Result
		v, res = b.iface.drv.WaitSRQ(b.index)
		return res
	})
	if err != nil {
		return false, err
	}
	if _, err := b.check("WaitSRQ", res); err != nil {
		return false, err
	}
	return v != 0, nil
}

// AllSPoll serial polls every address in addrs.
func (b Board) AllSPoll(addrs []Addr) ([]byte, error) {
	raw, err := addrList(addrs)
	if err != nil {
		return nil, err
	}
	results := make([]int16, len(addrs))
	if _, err := b.check("AllSpoll", b.iface.drv.AllSPoll(b.index, raw, results)); err != nil {
		return nil, err
	}
	out := make([]byte, len(results))
	for i, r := range results {
		out[i] = byte(r)
	}
	return out, nil
}

// vim: foldmethod=marker
