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
	"fmt"
)

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// openResult turns an ibdev/ibfind result into a descriptor. Those calls
// signal failure with a negative descriptor; ERR may or may not be set.
func (i *Interface) openResult(call string, ud int, st Status, err error) (int, error) {
	if err != nil {
		return -1, err
	}
	if ud < 0 {
		return -1, fmt.Errorf("gpib: %s returned descriptor %d [%s]", call, ud, st)
	}
	i.opened(ud)
	return ud, nil
}

// Ask queries a configuration setting (ibask).
func (i *Interface) Ask(ud int, option Option) (int, error) {
	if err := checkOption(option); err != nil {
		return 0, err
	}
	v, res := i.drv.Ask(ud, int(option))
	if _, err := i.check("ibask", ud, res); err != nil {
		return 0, err
	}
	return v, nil
}

// ChangeBoard moves a device descriptor to the board named name (ibbna).
func (i *Interface) ChangeBoard(ud int, name string) error {
	_, err := i.check("ibbna", ud, i.drv.BNA(ud, name))
	return err
}

// TakeControl asserts ATN to become active controller (ibcac). When
// synchronous is set the board waits for the current handshake to finish.
func (i *Interface) TakeControl(ud int, synchronous bool) error {
	_, err := i.check("ibcac", ud, i.drv.CAC(ud, boolInt(synchronous)))
	return err
}

// Clear sends the selected device clear command (ibclr).
func (i *Interface) Clear(ud int) error {
	_, err := i.check("ibclr", ud, i.drv.Clr(ud))
	return err
}

// Command writes command bytes with ATN asserted (ibcmd) and returns the
// number of bytes sent.
func (i *Interface) Command(ud int, commands []byte) (int, error) {
	res := i.drv.Cmd(ud, commands)
	if _, err := i.check("ibcmd", ud, res); err != nil {
		return 0, err
	}
	return int(res.Count), nil
}

// Configure changes a configuration setting (ibconfig).
func (i *Interface) Configure(ud int, option Option, setting int) error {
	if err := checkOption(option); err != nil {
		return err
	}
	_, err := i.check("ibconfig", ud, i.drv.Config(ud, int(option), setting))
	return err
}

// Dev opens a device descriptor (ibdev). sad takes the same values as
// ParseSecondary.
func (i *Interface) Dev(board, pad, sad int, tmo Timeout, sendEOI bool, eos EOSMode) (int, error) {
	if err := checkPrimary(pad); err != nil {
		return -1, err
	}
	s, err := ParseSecondary(sad)
	if err != nil {
		return -1, err
	}
	if err := checkTimeout(tmo); err != nil {
		return -1, err
	}
	if err := checkEOS(eos); err != nil {
		return -1, err
	}
	ud, res := i.drv.Dev(board, pad, s.Wire(), int(tmo), boolInt(sendEOI), int(eos))
	st, err := i.check("ibdev", ud, res)
	return i.openResult("ibdev", ud, st, err)
}

// SetEOS configures end-of-string handling (ibeos).
func (i *Interface) SetEOS(ud int, eos EOSMode) error {
	if err := checkEOS(eos); err != nil {
		return err
	}
	_, err := i.check("ibeos", ud, i.drv.EOS(ud, int(eos)))
	return err
}

// SetEOT turns EOI assertion on the last byte of writes on or off (ibeot).
func (i *Interface) SetEOT(ud int, sendEOI bool) error {
	_, err := i.check("ibeot", ud, i.drv.EOT(ud, boolInt(sendEOI)))
	return err
}

// NextEvent pops the board's event queue (ibevent).
func (i *Interface) NextEvent(ud int) (Event, error) {
	v, res := i.drv.Event(ud)
	if _, err := i.check("ibevent", ud, res); err != nil {
		return 0, err
	}
	return DecodeEvent(v)
}

// Find opens a descriptor by device or board name (ibfind).
func (i *Interface) Find(name string) (int, error) {
	ud, res := i.drv.Find(name)
	st, err := i.check("ibfind", ud, res)
	return i.openResult("ibfind", ud, st, err)
}

// GoToStandby releases ATN (ibgts).
func (i *Interface) GoToStandby(ud int, shadowHandshake bool) error {
	_, err := i.check("ibgts", ud, i.drv.GTS(ud, boolInt(shadowHandshake)))
	return err
}

// SetIST sets the individual status bit (ibist).
func (i *Interface) SetIST(ud int, ist bool) error {
	_, err := i.check("ibist", ud, i.drv.IST(ud, boolInt(ist)))
	return err
}

// Lines reads the state of the control lines (iblines).
func (i *Interface) Lines(ud int) (LineStatus, error) {
	v, res := i.drv.Lines(ud)
	if _, err := i.check("iblines", ud, res); err != nil {
		return 0, err
	}
	return LineStatus(uint16(v)), nil
}

// Listener reports whether a listener is present at pad/sad (ibln). sad
// takes the same values as ParseSecondary.
func (i *Interface) Listener(ud, pad, sad int) (bool, error) {
	if err := checkPrimary(pad); err != nil {
		return false, err
	}
	s, err := ParseSecondary(sad)
	if err != nil {
		return false, err
	}
	found, res := i.drv.LN(ud, pad, s.Wire())
	if _, err := i.check("ibln", ud, res); err != nil {
		return false, err
	}
	return found, nil
}

// Local will return local control to the user over the device (ibloc).
func (i *Interface) Local(ud int) error {
	_, err := i.check("ibloc", ud, i.drv.Loc(ud))
	return err
}

// Online resets (online) or closes (!online) a descriptor (ibonl). After a
// successful close ud must not be used again.
func (i *Interface) Online(ud int, online bool) error {
	_, err := i.check("ibonl", ud, i.drv.Onl(ud, boolInt(online)))
	if err != nil {
		return err
	}
	if !online {
		i.released(ud)
	}
	return nil
}

// SetPAD changes the primary address (ibpad).
func (i *Interface) SetPAD(ud, pad int) error {
	if err := checkPrimary(pad); err != nil {
		return err
	}
	_, err := i.check("ibpad", ud, i.drv.PAD(ud, pad))
	return err
}

// PassControl makes the device controller-in-charge (ibpct).
func (i *Interface) PassControl(ud int) error {
	_, err := i.check("ibpct", ud, i.drv.PCT(ud))
	return err
}

// ParallelPollConfigure sets the parallel poll response (ibppc).
// configuration is 0 to unconfigure, or 0x60 through 0x6f.
func (i *Interface) ParallelPollConfigure(ud, configuration int) error {
	if configuration != 0 && (configuration < 0x60 || configuration > 0x6f) {
		return valueErrorf("parallel poll configuration must be 0 or between 0x60 and 0x6f, got 0x%x", configuration)
	}
	_, err := i.check("ibppc", ud, i.drv.PPC(ud, configuration))
	return err
}

// Read reads up to len(buf) bytes (ibrd). The returned Status tells
// whether the transfer ended with END.
func (i *Interface) Read(ud int, buf []byte) (int, Status, error) {
	res := i.drv.Rd(ud, buf)
	st, err := i.check("ibrd", ud, res)
	if err != nil {
		return 0, st, err
	}
	if res.Count < 0 || res.Count > int64(len(buf)) {
		return 0, st, valueErrorf("ibrd reported %d bytes read into a %d byte buffer", res.Count, len(buf))
	}
	return int(res.Count), st, nil
}

// ReadFile reads data into the file at path (ibrdf).
func (i *Interface) ReadFile(ud int, path string) (int, error) {
	res := i.drv.Rdf(ud, path)
	if _, err := i.check("ibrdf", ud, res); err != nil {
		return 0, err
	}
	return int(res.Count), nil
}

// ParallelPoll conducts a parallel poll (ibrpp).
func (i *Interface) ParallelPoll(ud int) (byte, error) {
	v, res := i.drv.RPP(ud)
	if _, err := i.check("ibrpp", ud, res); err != nil {
		return 0, err
	}
	return byte(v), nil
}

// RequestSystemControl requests or releases system control (ibrsc).
func (i *Interface) RequestSystemControl(ud int, request bool) error {
	_, err := i.check("ibrsc", ud, i.drv.RSC(ud, boolInt(request)))
	return err
}

// SerialPoll reads the device's status byte (ibrsp).
func (i *Interface) SerialPoll(ud int) (byte, error) {
	v, res := i.drv.RSP(ud)
	if _, err := i.check("ibrsp", ud, res); err != nil {
		return 0, err
	}
	return byte(v), nil
}

// RequestService sets the board's serial poll response (ibrsv).
func (i *Interface) RequestService(ud int, statusByte byte) error {
	_, err := i.check("ibrsv", ud, i.drv.RSV(ud, int(statusByte)))
	return err
}

// RequestService2 is RequestService with explicit control of SRQ (ibrsv2).
func (i *Interface) RequestService2(ud int, statusByte byte, newReason bool) error {
	_, err := i.check("ibrsv2", ud, i.drv.RSV2(ud, int(statusByte), boolInt(newReason)))
	return err
}

// SetSAD changes the secondary address (ibsad). sad takes the same values
// as ParseSecondary.
func (i *Interface) SetSAD(ud, sad int) error {
	s, err := ParseSecondary(sad)
	if err != nil {
		return err
	}
	_, err = i.check("ibsad", ud, i.drv.SAD(ud, s.Wire()))
	return err
}

// InterfaceClear pulses IFC (ibsic).
func (i *Interface) InterfaceClear(ud int) error {
	_, err := i.check("ibsic", ud, i.drv.SIC(ud))
	return err
}

// SerialPollQueue returns how many serial poll bytes are queued (ibspb).
func (i *Interface) SerialPollQueue(ud int) (int, error) {
	v, res := i.drv.SPB(ud)
	if _, err := i.check("ibspb", ud, res); err != nil {
		return 0, err
	}
	return v, nil
}

// RemoteEnable asserts or releases REN (ibsre).
func (i *Interface) RemoteEnable(ud int, enable bool) error {
	_, err := i.check("ibsre", ud, i.drv.SRE(ud, boolInt(enable)))
	return err
}

// Stop aborts an asynchronous operation (ibstop).
func (i *Interface) Stop(ud int) error {
	_, err := i.check("ibstop", ud, i.drv.Stop(ud))
	return err
}

// SetTimeout changes the I/O timeout (ibtmo).
func (i *Interface) SetTimeout(ud int, tmo Timeout) error {
	if err := checkTimeout(tmo); err != nil {
		return err
	}
	_, err := i.check("ibtmo", ud, i.drv.TMO(ud, int(tmo)))
	return err
}

// Trigger sends group execute trigger (ibtrg).
func (i *Interface) Trigger(ud int) error {
	_, err := i.check("ibtrg", ud, i.drv.Trg(ud))
	return err
}

// Version returns the library version (ibvers).
func (i *Interface) Version() (string, error) {
	v, res := i.drv.Vers()
	if _, err := i.check("ibvers", -1, res); err != nil {
		return "", err
	}
	return v, nil
}

// Write writes data (ibwrt) and returns the number of bytes sent.
func (i *Interface) Write(ud int, data []byte) (int, error) {
	res := i.drv.Wrt(ud, data)
	if _, err := i.check("ibwrt", ud, res); err != nil {
		return 0, err
	}
	return int(res.Count), nil
}

// WriteFile writes the contents of the file at path (ibwrtf).
func (i *Interface) WriteFile(ud int, path string) (int, error) {
	res := i.drv.Wrtf(ud, path)
	if _, err := i.check("ibwrtf", ud, res); err != nil {
		return 0, err
	}
	return int(res.Count), nil
}

// vim: foldmethod=marker
