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
	"unicode/utf8"

	"hz.tools/linux-gpib/driver"
)

const (
	readMask  = TIMO | CMPL | END
	writeMask = TIMO | CMPL | END | RQS
)

type outcome struct {
	res driver.Result
	err error
}

// complete runs a blocking library call on its own goroutine. If ctx is
// cancelled first, ibstop is sent to target and complete still waits for
// the call to return, so nothing the call references is released while
// the library may be using it. A worker that fails on its own is treated
// the same way: target is stopped before the error is returned.
func (i *Interface) complete(ctx context.Context, call string, target int, fn func() driver.Result) (driver.Result, error) {
	done := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: &CompletionError{Call: call, Cause: r}}
			}
		}()
		done <- outcome{res: fn()}
	}()

	select {
	case o := <-done:
		if o.err != nil {
			i.warnf("%s(%d): %v, stopping", call, target, o.err)
			i.abort(target)
		}
		return o.res, o.err
	case <-ctx.Done():
	}

	i.debugf("%s(%d): %v, stopping", call, target, ctx.Err())
	i.abort(target)
	<-done
	return driver.Result{}, ctx.Err()
}

// abort stops whatever asynchronous operation is pending on ud. Failures
// are logged; the caller is already returning an error of its own.
func (i *Interface) abort(ud int) {
	if err := i.Stop(ud); err != nil {
		i.warnf("ibstop(%d) failed: %v", ud, err)
	}
}

func (i *Interface) acquire(ud int) (func(), error) {
	s := i.slot(ud)
	if !s.TryAcquire(1) {
		return nil, ErrAsyncInProgress
	}
	return func() { s.Release(1) }, nil
}

// Wait blocks until one of the conditions in mask is met (ibwait).
// Cancelling ctx sends ibstop, which only ends the wait if mask includes a
// condition that the stop satisfies, such as CMPL.
func (i *Interface) Wait(ctx context.Context, ud int, mask Status) (Status, error) {
	res, err := i.complete(ctx, "ibwait", ud, func() driver.Result {
		return i.drv.Wait(ud, mask.Bits())
	})
	if err != nil {
		return 0, err
	}
	return i.check("ibwait", ud, res)
}

// readChunk reads one buffer's worth with ibrda + ibwait. The caller holds
// the descriptor's async slot.
func (i *Interface) readChunk(ctx context.Context, ud int, buf driver.Buffer) (int, Status, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	if _, err := i.check("ibrda", ud, i.drv.Rda(ud, buf)); err != nil {
		return 0, 0, err
	}
	res, err := i.complete(ctx, "ibrda", ud, func() driver.Result {
		return i.drv.Wait(ud, readMask.Bits())
	})
	if err != nil {
		return 0, 0, err
	}
	st, err := i.check("ibwait", ud, res)
	if err != nil {
		return 0, st, err
	}
	if st.Has(TIMO) {
		i.abort(ud)
		return 0, st, ErrTimeout
	}
	if res.Count < 0 || res.Count > int64(buf.Len()) {
		return 0, st, valueErrorf("ibrda reported %d bytes read into a %d byte buffer", res.Count, buf.Len())
	}
	i.debugf("read(%d) -> %d bytes", ud, res.Count)
	return int(res.Count), st, nil
}

// ReadAsync reads up to len(p) bytes with ibrda, waiting for completion.
func (i *Interface) ReadAsync(ctx context.Context, ud int, p []byte) (int, Status, error) {
	release, err := i.acquire(ud)
	if err != nil {
		return 0, 0, err
	}
	defer release()

	buf := i.drv.Alloc(len(p))
	defer buf.Free()
	n, st, err := i.readChunk(ctx, ud, buf)
	if err != nil {
		return 0, st, err
	}
	return copy(p, buf.Bytes()[:n]), st, nil
}

// ReadAll reads until END, a short chunk, or an empty chunk.
func (i *Interface) ReadAll(ctx context.Context, ud int) ([]byte, error) {
	release, err := i.acquire(ud)
	if err != nil {
		return nil, err
	}
	defer release()

	chunk := i.opts.chunkSize()
	buf := i.drv.Alloc(chunk)
	defer buf.Free()

	var out []byte
	for {
		n, st, err := i.readChunk(ctx, ud, buf)
		if err != nil {
			return nil, err
		}
		out = append(out, buf.Bytes()[:n]...)
		if n == 0 || n < chunk || st.Has(END) {
			return out, nil
		}
	}
}

// ReadString is ReadAll for text responses.
func (i *Interface) ReadString(ctx context.Context, ud int) (string, error) {
	b, err := i.ReadAll(ctx, ud)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidText
	}
	return string(b), nil
}

type issueFunc func(buf driver.Buffer, n int) driver.Result

// send copies data into pinned memory, issues it, and waits on mask.
// TIMO is a timeout, CMPL or END is success, and any other wake-up is
// refused rather than guessed at.
func (i *Interface) send(ctx context.Context, call string, ud int, data []byte, mask Status, issue issueFunc) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	release, err := i.acquire(ud)
	if err != nil {
		return 0, err
	}
	defer release()

	size := len(data)
	if size == 0 {
		size = 1
	}
	buf := i.drv.Alloc(size)
	defer buf.Free()
	copy(buf.Bytes(), data)

	if _, err := i.check(call, ud, issue(buf, len(data))); err != nil {
		return 0, err
	}
	res, err := i.complete(ctx, call, ud, func() driver.Result {
		return i.drv.Wait(ud, mask.Bits())
	})
	if err != nil {
		return 0, err
	}
	st, err := i.check("ibwait", ud, res)
	switch {
	case err != nil:
		return 0, err
	case st.Has(TIMO):
		i.abort(ud)
		return 0, ErrTimeout
	case st.Has(CMPL), st.Has(END):
		return int(res.Count), nil
	default:
		i.abort(ud)
		return 0, valueErrorf("unexpected status after waiting on %s: %s", call, st)
	}
}

// WriteAsync writes data with ibwrta, waiting for completion.
func (i *Interface) WriteAsync(ctx context.Context, ud int, data []byte) (int, error) {
	return i.send(ctx, "ibwrta", ud, data, writeMask, func(buf driver.Buffer, n int) driver.Result {
		return i.drv.Wrta(ud, buf, n)
	})
}

// WriteAll writes all of data asynchronously.
func (i *Interface) WriteAll(ctx context.Context, ud int, data []byte) error {
	_, err := i.WriteAsync(ctx, ud, data)
	return err
}

// WriteString is WriteAll for text.
func (i *Interface) WriteString(ctx context.Context, ud int, s string) error {
	return i.WriteAll(ctx, ud, []byte(s))
}

// CommandAsync writes command bytes with ibcmda, waiting for completion.
func (i *Interface) CommandAsync(ctx context.Context, ud int, commands []byte) (int, error) {
	return i.send(ctx, "ibcmda", ud, commands, TIMO|CMPL, func(buf driver.Buffer, n int) driver.Result {
		return i.drv.Cmda(ud, buf, n)
	})
}

// vim: foldmethod=marker
