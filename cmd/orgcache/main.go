// Command orgcache exercises the parser, interpreter, and incremental
// cache from the command line: parse/interpret files, diff a file against
// its own parse→interpret projection, run point queries against the
// cache, and watch a file for edits.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "orgcache",
		Short: "Parse, interpret, and incrementally cache org-style markup",
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a .orgcacherc.toml config file (default: ~/.orgcacherc.toml)")

	root.AddCommand(newParseCmd())
	root.AddCommand(newInterpretCmd())
	root.AddCommand(newDiffCmd())
	root.AddCommand(newQueryCmd())
	root.AddCommand(newWatchCmd())
	return root
}
