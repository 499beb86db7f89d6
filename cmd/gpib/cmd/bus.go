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
	"fmt"

	"github.com/spf13/cobra"

	gpib "hz.tools/linux-gpib"
)

var clearCmd = &cobra.Command{
	Use:   "clear [resource...]",
	Short: "send device clear",
	Long:  `Clear the given devices, or every device on the board when none are given`,
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := openInterface(cmd.Context())
		if err != nil {
			return err
		}
		b := iface.Board(board)
		instruments := make([]gpib.Instrument, 0, len(args))
		for _, a := range args {
			in, err := instrument(iface, a)
			if err != nil {
				return err
			}
			instruments = append(instruments, in)
		}
		return b.ClearDevices(instruments)
	},
}

var ifcCmd = &cobra.Command{
	Use:   "ifc",
	Short: "pulse interface clear",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := openInterface(cmd.Context())
		if err != nil {
			return err
		}
		return iface.Board(board).InterfaceClear()
	},
}

var pollCmd = &cobra.Command{
	Use:   "poll <resource...>",
	Short: "serial poll devices",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := openInterface(cmd.Context())
		if err != nil {
			return err
		}
		addrs := make([]gpib.Addr, 0, len(args))
		names := make([]string, 0, len(args))
		for _, a := range args {
			in, err := instrument(iface, a)
			if err != nil {
				return err
			}
			if in.Board.Index() != board {
				return fmt.Errorf("%s is not on board %d", in, board)
			}
			addrs = append(addrs, in.Addr)
			names = append(names, in.VISA())
		}
		stbs, err := iface.Board(board).AllSPoll(addrs)
		if err != nil {
			return err
		}
		for i, stb := range stbs {
			out := blue("0x%02x", stb)
			if stb&0x40 != 0 {
				out = red("0x%02x RQS", stb)
			}
			fmt.Printf("%s %s\n", names[i], out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(ifcCmd)
	rootCmd.AddCommand(pollCmd)
}

// vim: foldmethod=marker
