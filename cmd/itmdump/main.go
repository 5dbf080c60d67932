// Command itmdump decodes an ITM/DWT trace byte stream read from a file or
// stdin into a sequence of packets, printed as text or NDJSON.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "itmdump",
		Short: "Decode an ARMv7-M ITM/DWT trace byte stream",
	}
	cmd.PersistentFlags().String("config", "", "path to a YAML config file overriding flag defaults")
	cmd.AddCommand(newDecodeCommand())
	cmd.AddCommand(newServeCommand())
	return cmd
}
