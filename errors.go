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
	"errors"
	"fmt"
	"syscall"

	"hz.tools/linux-gpib/driver"
)

// ErrorCode is an iberr value.
type ErrorCode int

// Known iberr values.
const (
	EDVR ErrorCode = 0
	ECIC ErrorCode = 1
	ENOL ErrorCode = 2
	EADR ErrorCode = 3
	EARG ErrorCode = 4
	ESAC ErrorCode = 5
	EABO ErrorCode = 6
	ENEB ErrorCode = 7
	EDMA ErrorCode = 8
	EOIP ErrorCode = 10
	ECAP ErrorCode = 11
	EFSO ErrorCode = 12
	EBUS ErrorCode = 14
	ESTB ErrorCode = 15
	ESRQ ErrorCode = 16
	ETAB ErrorCode = 20
)

var errorCodes = map[ErrorCode]struct {
	name string
	desc string
}{
	EDVR: {"EDVR", "a system call has failed"},
	ECIC: {"ECIC", "interface board needs to be controller-in-charge, but is not"},
	ENOL: {"ENOL", "attempted to write data or command bytes, but there are no listeners currently addressed"},
	EADR: {"EADR", "interface board has failed to address itself properly before starting an io operation"},
	EARG: {"EARG", "arguments to the function call were invalid"},
	ESAC: {"ESAC", "interface board needs to be system controller, but is not"},
	EABO: {"EABO", "read or write of data bytes has been aborted, possibly due to a timeout or reception of a device clear command"},
	ENEB: {"ENEB", "interface board does not exist, its driver is not loaded, or it is not configured properly"},
	EDMA: {"EDMA", "DMA error"},
	EOIP: {"EOIP", "function call can not proceed due to an asynchronous IO operation in progress"},
	ECAP: {"ECAP", "board lacks the capability, or the capability is disabled in software"},
	EFSO: {"EFSO", "file system error"},
	EBUS: {"EBUS", "attempt to write command bytes to the bus has timed out"},
	ESTB: {"ESTB", "serial poll status bytes have been lost"},
	ESRQ: {"ESRQ", "serial poll request service line is stuck on"},
	ETAB: {"ETAB", "table problem reported by ibevent, FindLstn or FindRQS"},
}

func (c ErrorCode) String() string {
	if e, ok := errorCodes[c]; ok {
		return e.name
	}
	return fmt.Sprintf("iberr(%d)", int(c))
}

// Description is the long meaning of the code.
func (c ErrorCode) Description() string {
	if e, ok := errorCodes[c]; ok {
		return e.desc
	}
	return "unknown error"
}

// Error makes an ErrorCode usable as an errors.Is target, as in
// errors.Is(err, gpib.ENOL).
func (c ErrorCode) Error() string {
	return "gpib: " + c.String() + ": " + c.Description()
}

// UnrecognizedCodeError is returned when iberr holds a value that is not
// one of the known codes.
type UnrecognizedCodeError struct {
	Code int
}

func (e *UnrecognizedCodeError) Error() string {
	return fmt.Sprintf("gpib: unrecognized iberr value %d", e.Code)
}

// IbError is a decoded iberr value. Count is the ibcntl value captured
// alongside it; it only carries meaning for EDVR and EFSO.
type IbError struct {
	Code  ErrorCode
	Count int64
}

// DecodeError maps an iberr value, with the ibcntl value read in the same
// context, to an IbError.
func DecodeError(code int, count int64) (IbError, error) {
	c := ErrorCode(code)
	if _, ok := errorCodes[c]; !ok {
		return IbError{}, &UnrecognizedCodeError{Code: code}
	}
	switch c {
	case EDVR, EFSO:
		return IbError{Code: c, Count: count}, nil
	default:
		return IbError{Code: c}, nil
	}
}

func (e IbError) String() string {
	switch e.Code {
	case EDVR:
		return fmt.Sprintf("EDVR (%s)", Diagnostic(e.Count))
	case EFSO:
		return fmt.Sprintf("EFSO (ibcntl = %d)", e.Count)
	default:
		return e.Code.String()
	}
}

// Errno returns the OS error carried by EDVR or EFSO, if Count looks like
// one. NI-488.2 stores its own diagnostic codes there instead.
func (e IbError) Errno() (syscall.Errno, bool) {
	if e.Code != EDVR && e.Code != EFSO {
		return 0, false
	}
	if e.Count <= 0 || e.Count >= 4096 {
		return 0, false
	}
	return syscall.Errno(e.Count), true
}

var edvrTable = map[uint32]string{
	0xE014002C: "a call is made with a board number that is within the range of allowed board numbers, but which has not been assigned to a GPIB interface",
	0xE0140025: "a call is made with a board number that is not within the range of allowed board numbers",
	0xE0140035: "a call is made with a device name that is not listed in the logical device templates",
	0xE1080080: "a removable interface (for example, a GPIB-USB-HS) was removed or ejected while the software is trying to communicate with it",
	0xE1080081: "a removable interface (for example, a GPIB-USB-HS) was removed or ejected while the software is trying to communicate with it",
	0xE00A0047: "the driver encountered an access violation when attempting to access an object supplied by the user, such as a NULL pointer or a buffer without the right read/write characteristics",
	0xE1030043: "DOS NI-488.2 support is enabled and an old DOS NI-488.2 application using an unsupported interface was run",
	0xE1060075: "the driver is unable to communicate with a GPIB-ENET/100 during an ibfind or ibdev",
	0xE1060078: "the network link between the host and the GPIB-ENET/100 interface is broken",
}

// Diagnostic explains an ibcntl value captured with EDVR. The count may
// arrive sign-extended, so only the low 32 bits are looked up.
func Diagnostic(count int64) string {
	key := uint32(count)
	if msg, ok := edvrTable[key]; ok {
		return fmt.Sprintf("ibcntl = 0x%X: %s", key, msg)
	}
	return fmt.Sprintf("unknown ibcntl value %x", key)
}

// DriverError is returned when a library call sets ERR.
type DriverError struct {
	// Call is the library entry point, like "ibrd" or "FindLstn".
	Call string

	Status Status
	Err    IbError

	// Context is where Err was read from.
	Context driver.Context
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("gpib: %s: %s [%s]", e.Call, e.Err, e.Status)
}

// Unwrap exposes the ErrorCode, and the OS errno behind EDVR/EFSO when
// there is one.
func (e *DriverError) Unwrap() []error {
	errs := []error{e.Err.Code}
	if errno, ok := e.Err.Errno(); ok {
		errs = append(errs, errno)
	}
	return errs
}

// ValueError reports an argument that was rejected before reaching the
// library, or a library answer that cannot be interpreted.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string {
	return "gpib: " + e.Msg
}

func valueErrorf(format string, args ...interface{}) error {
	return &ValueError{Msg: fmt.Sprintf(format, args...)}
}

// CompletionError is returned when the goroutine waiting on an
// asynchronous operation failed on its own, rather than the device.
type CompletionError struct {
	Call  string
	Cause interface{}
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("gpib: %s: completion worker failed: %v", e.Call, e.Cause)
}

var (
	// ErrTimeout is returned when an operation ends with TIMO and without
	// ERR.
	ErrTimeout = errors.New("gpib: timeout")

	// ErrClosed is returned by every method of a Device after Close.
	ErrClosed = errors.New("gpib: device is closed")

	// ErrAsyncInProgress is returned when an asynchronous operation is
	// started on a descriptor that already has one outstanding.
	ErrAsyncInProgress = errors.New("gpib: asynchronous operation already in progress on descriptor")

	// ErrInvalidText is returned by the string helpers when the device
	// answered with bytes that are not valid UTF-8.
	ErrInvalidText = errors.New("gpib: response is not valid UTF-8")

	// ErrTooManyListeners is FindLstn's ETAB: more devices answered than
	// fit in the result list.
	ErrTooManyListeners = errors.New("gpib: number of listeners found exceeds the result list")

	// ErrNoDevices is FindLstn's EBUS: nothing is connected to the bus.
	ErrNoDevices = errors.New("gpib: no devices are connected to the bus")

	// ErrNoListenerDetection is FindLstn's ECAP: the board cannot monitor
	// NDAC, so it cannot detect listeners.
	ErrNoListenerDetection = errors.New("gpib: board cannot detect listeners")
)

// vim: foldmethod=marker
