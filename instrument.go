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
	"fmt"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"hz.tools/linux-gpib/driver"
)

// Instrument is a device on a board: a plain value that can be opened,
// or used directly through the multidevice calls.
type Instrument struct {
	Board Board
	Addr  Addr
}

// Instrument returns the instrument at addr on b.
func (b Board) Instrument(addr Addr) Instrument {
	return Instrument{Board: b, Addr: addr}
}

// VISA returns the VISA resource string of the instrument.
func (in Instrument) VISA() string {
	return FormatVISA(in.Board.index, in.Addr)
}

func (in Instrument) String() string {
	return in.VISA()
}

// Open opens a descriptor for the instrument with ibdev and sends it a
// device clear. A nil params means DefaultParameters.
func (in Instrument) Open(params *Parameters) (*Device, error) {
	iface := in.Board.iface
	p := params.orDefault()
	sad := in.Addr.SAD()
	if !sad.valid() {
		return nil, valueErrorf("invalid secondary address 0x%x", int(sad))
	}
	ud, err := iface.Dev(in.Board.index, in.Addr.PAD(), sad.Wire(), p.Timeout, p.SendEOI, p.EOS)
	if err != nil {
		return nil, err
	}
	if err := iface.Clear(ud); err != nil {
		if cerr := iface.Online(ud, false); cerr != nil {
			iface.warnf("closing %s (ud = %d) after failed clear: %v", in, ud, cerr)
		}
		return nil, err
	}
	return iface.newDevice(in, ud), nil
}

// Send writes data with the multidevice Send call.
func (in Instrument) Send(data []byte, mode EOTMode) error {
	return in.Board.Send(in.Addr, data, mode)
}

// Receive reads a whole response with repeated Receive calls, stopping at
// END, a short chunk, or an empty chunk.
func (in Instrument) Receive() (string, error) {
	chunk := in.Board.iface.opts.chunkSize()
	buf := make([]byte, chunk)
	var out []byte
	for {
		n, st, err := in.Board.Receive(in.Addr, buf, driver.STOPend)
		if err != nil {
			return "", err
		}
		out = append(out, buf[:n]...)
		if n == 0 || n < chunk || st.Has(END) {
			break
		}
	}
	if !utf8.Valid(out) {
		return "", ErrInvalidText
	}
	return string(out), nil
}

// Query sends cmd and reads the response.
func (in Instrument) Query(cmd string) (string, error) {
	if err := in.Send([]byte(cmd), NULLend); err != nil {
		return "", err
	}
	return in.Receive()
}

func (b Board) owns(instruments []Instrument) ([]Addr, error) {
	addrs := make([]Addr, 0, len(instruments))
	for _, in := range instruments {
		if in.Board.index != b.index {
			return nil, valueErrorf("%s does not belong to %s", in, b)
		}
		addrs = append(addrs, in.Addr)
	}
	return addrs, nil
}

// Listeners returns every instrument answering on the board.
func (b Board) Listeners() ([]Instrument, error) {
	addrs, err := b.FindAllListeners()
	if err != nil {
		return nil, err
	}
	out := make([]Instrument, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, b.Instrument(a))
	}
	return out, nil
}

// SendTo writes data to each of instruments, which must all be on b.
func (b Board) SendTo(instruments []Instrument, data []byte, mode EOTMode) error {
	addrs, err := b.owns(instruments)
	if err != nil {
		return err
	}
	return b.SendList(addrs, data, mode)
}

// ClearDevices sends device clear to each of instruments, which must all
// be on b.
func (b Board) ClearDevices(instruments []Instrument) error {
	addrs, err := b.owns(instruments)
	if err != nil {
		return err
	}
	return b.DevClearList(addrs)
}

// InterfaceClear pulses IFC: every device untalks and unlistens, and the
// board becomes controller-in-charge.
func (b Board) InterfaceClear() error {
	return b.SendIFC()
}

// QueryAll opens every instrument and sends cmd to all of them
// concurrently, each on its own descriptor. Responses are returned in the
// order of instruments. The first failure cancels the rest.
func (b Board) QueryAll(ctx context.Context, instruments []Instrument, cmd string, params *Parameters) ([]string, error) {
	if _, err := b.owns(instruments); err != nil {
		return nil, err
	}
	out := make([]string, len(instruments))
	g, ctx := errgroup.WithContext(ctx)
	for idx, in := range instruments {
		idx, in := idx, in
		g.Go(func() error {
			dev, err := in.Open(params)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			defer dev.closeLogged()
			resp, err := dev.Query(ctx, cmd)
			if err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			out[idx] = resp
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// vim: foldmethod=marker
