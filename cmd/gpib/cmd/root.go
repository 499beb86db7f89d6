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

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/spf13/cobra"

	gpib "hz.tools/linux-gpib"
	"hz.tools/linux-gpib/driver/native"
)

var rootCmd = &cobra.Command{
	Use:          "gpib",
	Short:        "GPIB swiss army tool",
	Long:         `Talk to instruments on a GPIB bus through linux-gpib or NI-488.2`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

var (
	board   int
	debug   bool
	timeout time.Duration
	retries uint
	cfgPath string
)

func init() {
	log.SetFlags(0)
	rootCmd.PersistentFlags().IntVarP(&board, "board", "b", 0, "board index")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "log every library call")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", time.Second, "I/O timeout, rounded up to the next GPIB timeout code")
	rootCmd.PersistentFlags().UintVarP(&retries, "retries", "r", 3, "attempts when opening a device")
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "gpib.yaml", "instrument inventory")
}

func openInterface(ctx context.Context) (*gpib.Interface, error) {
	return newInterface(ctx, debug, 0)
}

func newInterface(ctx context.Context, dbg bool, chunkSize int) (*gpib.Interface, error) {
	drv, err := native.New()
	if err != nil {
		return nil, err
	}
	return gpib.New(drv, &gpib.Options{
		BaseContext: ctx,
		Logger:      log.Default(),
		Debug:       dbg,
		ChunkSize:   chunkSize,
	}), nil
}

// instrument accepts a VISA resource string, or a primary address on the
// --board board.
func instrument(iface *gpib.Interface, target string) (gpib.Instrument, error) {
	if strings.HasPrefix(target, "GPIB") {
		return iface.ParseVISA(target)
	}
	pad, err := strconv.Atoi(target)
	if err != nil {
		return gpib.Instrument{}, fmt.Errorf("%q is neither a VISA resource nor a primary address", target)
	}
	addr, err := gpib.NewAddr(pad, gpib.NoSecondary)
	if err != nil {
		return gpib.Instrument{}, err
	}
	return iface.Board(board).Instrument(addr), nil
}

func parameters() *gpib.Parameters {
	p := gpib.DefaultParameters()
	p.Timeout = gpib.ClosestTimeout(timeout)
	return &p
}

// open opens in, retrying failures that are not argument errors.
func open(ctx context.Context, in gpib.Instrument, params *gpib.Parameters, attempts uint) (*gpib.Device, error) {
	var dev *gpib.Device
	err := retry.Do(func() error {
		var err error
		dev, err = in.Open(params)
		if err != nil {
			var verr *gpib.ValueError
			if errors.As(err, &verr) {
				return retry.Unrecoverable(err)
			}
		}
		return err
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(200*time.Millisecond),
		retry.OnRetry(func(n uint, err error) {
			log.Printf("open %s: retry %d: %v", in, n+1, err)
		}),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return dev, nil
}

// openTarget resolves target and opens it with the command line settings.
func openTarget(ctx context.Context, target string) (*gpib.Device, error) {
	iface, err := openInterface(ctx)
	if err != nil {
		return nil, err
	}
	in, err := instrument(iface, target)
	if err != nil {
		return nil, err
	}
	return open(ctx, in, parameters(), retries)
}

// vim: foldmethod=marker
