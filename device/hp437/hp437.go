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

// Package hp437 drives an HP 437B power meter over GPIB.
package hp437

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gpib "hz.tools/linux-gpib"
)

// Device represents a HP 437B to be used over the GPIB / HP-IB.
type Device struct {
	*gpib.Device
}

func (dev Device) command(ctx context.Context, format string, args ...interface{}) error {
	return dev.WriteString(ctx, fmt.Sprintf(format, args...)+"\r\n")
}

// Reset will do a soft-reset of the power meter.
func (dev Device) Reset(ctx context.Context) error {
	return dev.command(ctx, "*RST")
}

// Zero will zero out the sensor against the ref power.
func (dev Device) Zero(ctx context.Context) error {
	return dev.command(ctx, "ZE")
}

// DisplayUser will display a string to the user. This will only show a few
// chars, so be careful to not blather on too long.
func (dev Device) DisplayUser(ctx context.Context, s string) error {
	return dev.command(ctx, "DU%s", s)
}

// Units are the accepted Power reading measures that this device can be
// configured to use.
type Units string

func (u Units) String() string {
	switch u {
	case DBM:
		return "dBm"
	case Watts:
		return "Watts"
	default:
		return string(u)
	}
}

var (
	// Watts can be passed to hp437.Device.Unit() to read power in terms of
	// Watts.
	Watts Units = "LN"

	// DBM can be passed to hp437.Device.Unit() to read power in terms of
	// dBm.
	DBM Units = "LG"
)

// ParseUnits accepts "dbm" or "watts", in any case.
func ParseUnits(s string) (Units, error) {
	switch strings.ToLower(s) {
	case "dbm":
		return DBM, nil
	case "w", "watts":
		return Watts, nil
	default:
		return "", fmt.Errorf("hp437: unknown units %q", s)
	}
}

// Offset controls for signal loss (e.g., couplers or attenuators).
func (dev Device) Offset(ctx context.Context, offset float64) error {
	return dev.command(ctx, "OS%fEN", offset)
}

// CalFactor sets the sensor calibration factor, in percent.
func (dev Device) CalFactor(ctx context.Context, percent float64) error {
	if percent < 1 || percent > 150 {
		return fmt.Errorf("hp437: cal factor %.1f%% out of range", percent)
	}
	return dev.command(ctx, "KB%.1fEN", percent)
}

// Unit will set the Power Meter to read in terms of either Watts or
// dBm.
func (dev Device) Unit(ctx context.Context, units Units) error {
	return dev.command(ctx, "%s", units)
}

// Power will return the power (in the configured units) as a floating point
// number.
func (dev Device) Power(ctx context.Context) (float64, error) {
	reading, err := dev.ReadString(ctx)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(reading), 64)
	if err != nil {
		return 0, fmt.Errorf("hp437: bad reading %q: %w", reading, err)
	}
	return v, nil
}

// New will create a new hp437.Device to use a Power Meter over HP-IB.
func New(dev *gpib.Device) Device {
	return Device{dev}
}

// vim: foldmethod=marker
