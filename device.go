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
	"sync"
	"unicode/utf8"
)

// Device represents an open device connected to the GPIB. It owns one
// descriptor, which Close releases exactly once.
type Device struct {
	iface      *Interface
	instrument Instrument
	ctx        context.Context
	cancel     context.CancelFunc

	// mu is held shared for the length of every call on descriptor, and
	// exclusively by Close.
	mu         sync.RWMutex
	closed     bool
	descriptor int
}

func (i *Interface) newDevice(in Instrument, ud int) *Device {
	ctx, cancel := context.WithCancel(i.opts.context())
	return &Device{
		iface:      i,
		instrument: in,
		ctx:        ctx,
		cancel:     cancel,
		descriptor: ud,
	}
}

// Open will open the device at pad/sad on board. sad takes the same
// values as ParseSecondary.
func (i *Interface) Open(board, pad, sad int, params *Parameters) (*Device, error) {
	s, err := ParseSecondary(sad)
	if err != nil {
		return nil, err
	}
	addr, err := NewAddr(pad, s)
	if err != nil {
		return nil, err
	}
	return i.Board(board).Instrument(addr).Open(params)
}

// Instrument is the instrument the device was opened for.
func (d *Device) Instrument() Instrument {
	return d.instrument
}

// Descriptor returns the descriptor, or ErrClosed.
func (d *Device) Descriptor() (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return -1, ErrClosed
	}
	return d.descriptor, nil
}

// use runs fn with the descriptor, keeping Close out until fn returns.
// fn must not call back into use.
func (d *Device) use(fn func(ud int) error) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrClosed
	}
	return fn(d.descriptor)
}

func (d *Device) String() string {
	return d.instrument.String()
}

// join returns a context that is cancelled when either ctx or the device
// is done.
func (d *Device) join(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(d.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// Close will release the underlying descriptor, and close the related
// context, terminating any asynchronous operation still running on it.
// Close waits for calls in flight on the device to return. Once ibonl
// succeeds, later calls return ErrClosed; if it fails, the descriptor is
// still held and Close may be called again. The device's context is
// cancelled either way.
func (d *Device) Close() error {
	d.cancel()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}

	// Wait for an asynchronous operation started through the Interface
	// directly to drain.
	slot := d.iface.slot(d.descriptor)
	if err := slot.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer slot.Release(1)
	if err := d.iface.Online(d.descriptor, false); err != nil {
		d.iface.warnf("closing %s: ud %d is still open: %v", d, d.descriptor, err)
		return err
	}
	d.closed = true
	return nil
}

func (d *Device) closeLogged() {
	if err := d.Close(); err != nil {
		d.iface.warnf("error while closing %s (ud = %d): %v", d, d.descriptor, err)
	}
}

// Read will read data from the device with a single ibrd.
func (d *Device) Read(buf []byte) (n int, err error) {
	err = d.use(func(ud int) error {
		n, _, err = d.iface.Read(ud, buf)
		return err
	})
	return n, err
}

// Write will write user data to the device with a single ibwrt.
func (d *Device) Write(buf []byte) (n int, err error) {
	err = d.use(func(ud int) error {
		n, err = d.iface.Write(ud, buf)
		return err
	})
	return n, err
}

// ReadAll reads a whole response asynchronously.
func (d *Device) ReadAll(ctx context.Context) (out []byte, err error) {
	err = d.use(func(ud int) error {
		ctx, cancel := d.join(ctx)
		defer cancel()
		out, err = d.iface.ReadAll(ctx, ud)
		return err
	})
	return out, err
}

// ReadString reads a whole text response asynchronously.
func (d *Device) ReadString(ctx context.Context) (s string, err error) {
	err = d.use(func(ud int) error {
		ctx, cancel := d.join(ctx)
		defer cancel()
		s, err = d.iface.ReadString(ctx, ud)
		return err
	})
	return s, err
}

// WriteString writes s asynchronously.
func (d *Device) WriteString(ctx context.Context, s string) error {
	return d.use(func(ud int) error {
		ctx, cancel := d.join(ctx)
		defer cancel()
		return d.iface.WriteString(ctx, ud, s)
	})
}

// Query writes cmd and reads the response, asynchronously.
func (d *Device) Query(ctx context.Context, cmd string) (string, error) {
	if err := d.WriteString(ctx, cmd); err != nil {
		return "", err
	}
	return d.ReadString(ctx)
}

// BlockingRead reads a whole text response with repeated ibrd calls.
func (d *Device) BlockingRead() (string, error) {
	chunk := d.iface.opts.chunkSize()
	buf := make([]byte, chunk)
	var out []byte
	err := d.use(func(ud int) error {
		for {
			n, st, err := d.iface.Read(ud, buf)
			if err != nil {
				return err
			}
			out = append(out, buf[:n]...)
			if n == 0 || n < chunk || st.Has(END) {
				return nil
			}
		}
	})
	if err != nil {
		return "", err
	}
	if !utf8.Valid(out) {
		return "", ErrInvalidText
	}
	return string(out), nil
}

// BlockingWrite writes s with ibwrt.
func (d *Device) BlockingWrite(s string) error {
	_, err := d.Write([]byte(s))
	return err
}

// BlockingQuery writes cmd and reads the response with blocking calls.
func (d *Device) BlockingQuery(cmd string) (string, error) {
	if err := d.BlockingWrite(cmd); err != nil {
		return "", err
	}
	return d.BlockingRead()
}

// Local will return local control to the user over the device.
func (d *Device) Local() error {
	return d.use(d.iface.Local)
}

// Remote asserts or releases REN.
func (d *Device) Remote(enable bool) error {
	return d.use(func(ud int) error { return d.iface.RemoteEnable(ud, enable) })
}

// Clear sends device clear.
func (d *Device) Clear() error {
	return d.use(d.iface.Clear)
}

// Trigger sends group execute trigger.
func (d *Device) Trigger() error {
	return d.use(d.iface.Trigger)
}

// SerialPoll reads the status byte.
func (d *Device) SerialPoll() (stb byte, err error) {
	err = d.use(func(ud int) error {
		stb, err = d.iface.SerialPoll(ud)
		return err
	})
	return stb, err
}

// SetTimeout changes the I/O timeout.
func (d *Device) SetTimeout(tmo Timeout) error {
	return d.use(func(ud int) error { return d.iface.SetTimeout(ud, tmo) })
}

// vim: foldmethod=marker
