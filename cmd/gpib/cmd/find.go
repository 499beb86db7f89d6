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
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	gpib "hz.tools/linux-gpib"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "list the listeners on the bus",
	Long:  `Probe primary addresses 1 through 30 with FindLstn and print every device that answers`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		iface, err := openInterface(cmd.Context())
		if err != nil {
			return err
		}
		found, err := iface.Board(board).Listeners()
		switch {
		case errors.Is(err, gpib.ErrNoDevices):
			fmt.Println(yellow("no devices on board %d", board))
			return nil
		case err != nil:
			return err
		}
		for _, in := range found {
			fmt.Println(green("%s", in.VISA()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(findCmd)
}

// vim: foldmethod=marker
