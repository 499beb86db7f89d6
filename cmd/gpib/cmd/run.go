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
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	gpib "hz.tools/linux-gpib"
	"hz.tools/linux-gpib/internal/config"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "set up and query every instrument in the inventory",
	Long:  `Open every instrument listed in --config concurrently, write its setup commands, and print the answer to its query`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := config.Validate(cfg); err != nil {
			return err
		}
		config.Normalize(cfg)

		iface, err := newInterface(cmd.Context(), debug || cfg.Debug, cfg.ChunkSize)
		if err != nil {
			return err
		}

		attempts := retries
		if cfg.Retries > 0 {
			attempts = cfg.Retries
		}

		answers := make([]string, len(cfg.Instruments))
		g, ctx := errgroup.WithContext(cmd.Context())
		for i, ic := range cfg.Instruments {
			i, ic := i, ic
			g.Go(func() error {
				resp, err := runInstrument(ctx, iface, ic, attempts)
				if err != nil {
					return fmt.Errorf("%s: %w", ic.Name, err)
				}
				answers[i] = resp
				return nil
			})
		}
		err = g.Wait()
		for i, ic := range cfg.Instruments {
			if answers[i] == "" {
				continue
			}
			fmt.Printf("%s %s\n", green("%-12s", ic.Name), strings.TrimRight(answers[i], "\r\n"))
		}
		if err != nil {
			log.Println(red("%v", err))
		}
		return err
	},
}

func runInstrument(ctx context.Context, iface *gpib.Interface, ic config.InstrumentConfig, attempts uint) (string, error) {
	in, err := iface.ParseVISA(ic.Resource)
	if err != nil {
		return "", err
	}
	params, err := ic.Parameters()
	if err != nil {
		return "", err
	}
	dev, err := open(ctx, in, &params, attempts)
	if err != nil {
		return "", err
	}
	defer dev.Close()

	for _, c := range ic.Setup {
		if err := dev.WriteString(ctx, c); err != nil {
			return "", fmt.Errorf("setup %q: %w", c, err)
		}
	}
	return dev.Query(ctx, ic.Query)
}

func init() {
	rootCmd.AddCommand(runCmd)
}

// vim: foldmethod=marker
