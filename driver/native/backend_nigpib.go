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

//go:build cgo && nigpib

package native

// #cgo LDFLAGS: -lgpibapi
import "C"

import (
	"sync"

	"hz.tools/linux-gpib/driver"
)

const (
	syncContext  = driver.ContextGlobal
	asyncContext = driver.ContextGlobal
)

// Backend names the library this binary was built against.
const Backend = "ni4882"

// NI-488.2 only has process-global Ibsta/Iberr/Ibcnt. Every call holds
// this lock until its snapshot has been taken. ibwait holds it too, so a
// cancelled wait only returns once the board timeout fires.
var global sync.Mutex

func lock()   { global.Lock() }
func unlock() { global.Unlock() }

// vim: foldmethod=marker
