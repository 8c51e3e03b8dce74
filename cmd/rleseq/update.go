package main

import (
	"fmt"
	"strconv"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <file> <index>...",
		Short: "Print the values at logical indices",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			seq, _, err := cfg.readFile(args[0])
			if err != nil {
				return err
			}

			for _, s := range args[1:] {
				index, err := strconv.ParseUint(s, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid index %q: %w", s, err)
				}

				v, err := seq.Get(index)
				if err != nil {
					return fmt.Errorf("index %d: %w", index, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
			}
			return nil
		},
	}
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <file> <index> <value>",
		Short: "Replace the value at a logical index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			index, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[1], err)
			}
			v, err := strconv.ParseInt(args[2], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid value %q: %w", args[2], err)
			}

			seq, meta, err := cfg.readFile(args[0])
			if err != nil {
				return err
			}
			if err := seq.Set(index, int32(v)); err != nil {
				return fmt.Errorf("index %d: %w", index, err)
			}
			if err := cfg.writeFile(args[0], seq, meta); err != nil {
				return err
			}

			level.Debug(cfg.Logger).Log("msg", "updated", "file", args[0], "index", index, "chunks", seq.NumChunks())
			return nil
		},
	}
}
