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
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <resource> <command>",
	Short: "write a command and print the response",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := openTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		resp, err := dev.Query(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		fmt.Println(strings.TrimRight(resp, "\r\n"))
		return nil
	},
}

var writeCmd = &cobra.Command{
	Use:   "write <resource> <command>",
	Short: "write a command",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := openTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer dev.Close()
		return dev.WriteString(cmd.Context(), args[1])
	},
}

var readCmd = &cobra.Command{
	Use:   "read <resource>",
	Short: "read and print a response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dev, err := openTarget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer dev.Close()

		resp, err := dev.ReadAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%s", resp)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(readCmd)
}

// vim: foldmethod=marker
