package main

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
)

func newDecodeCommand() *cobra.Command {
	var runs bool

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Print the decoded values, one per line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			seq, _, err := cfg.readFile(args[0])
			if err != nil {
				return err
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			if runs {
				for _, r := range seq.Runs() {
					fmt.Fprintf(w, "%d %d\n", r.Count, r.Value)
				}
			} else {
				iter := seq.Seek(0)
				defer iter.Release()

				for iter.Next() {
					fmt.Fprintln(w, iter.Value())
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&runs, "runs", false, "print one \"count value\" line per run")
	return cmd
}
