package main

import (
	"fmt"

	"github.com/bsm/rleseq"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Print metadata and compression statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			seq, meta, err := cfg.readFile(args[0])
			if err != nil {
				return err
			}

			stats := rleseq.ContainerStats(seq, len(meta))

			tbl := table.NewWriter()
			tbl.SetStyle(table.StyleLight)
			tbl.Style().Options.SeparateColumns = false
			tbl.Style().Options.DrawBorder = false

			tbl.AppendRow(table.Row{"file", args[0]})
			tbl.AppendRow(table.Row{"compression", cfg.Compression.String()})
			tbl.AppendRow(table.Row{"metadata", fmt.Sprint(meta)})
			tbl.AppendRow(table.Row{"values", humanize.Comma(int64(stats.Len))})
			tbl.AppendRow(table.Row{"chunks", humanize.Comma(int64(stats.NumChunks))})
			tbl.AppendRow(table.Row{"raw size", humanize.Bytes(uint64(stats.RawSize))})
			tbl.AppendRow(table.Row{"encoded size", humanize.Bytes(uint64(stats.EncodedSize))})
			if stats.RawSize != 0 {
				tbl.AppendRow(table.Row{"ratio", fmt.Sprintf("%.2f", stats.Ratio())})
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), tbl.Render())
			return err
		},
	}
}
