// Package main provides the rleseq command, which encodes, inspects and
// edits run-length encoded sequence files of int32 values.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "rleseq",
		Short: "Encode, inspect and edit run-length encoded sequence files",
		Long: `rleseq works with files holding a run-length encoded sequence of
int32 values plus a list of int32 metadata values, e.g. the dimensions of a
flattened voxel grid.

Commands:
  encode    Encode whitespace separated integers
  decode    Print the decoded values
  inspect   Print file statistics
  get       Print values at logical indices
  set       Replace the value at a logical index`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (default is .rleseq.yaml in the working or home directory)")
	flags.StringP("compression", "c", "none", "stream compression: none, snappy, zstd or lz4")
	flags.Int("max-metadata", defaultMaxMetadata, "maximum number of metadata values accepted when reading")
	flags.Uint64("max-chunks", 0, "maximum number of chunks accepted when reading (0 for no limit)")
	flags.BoolP("verbose", "v", false, "verbose output")

	root.AddCommand(
		newEncodeCommand(),
		newDecodeCommand(),
		newInspectCommand(),
		newGetCommand(),
		newSetCommand(),
	)
	return root
}
