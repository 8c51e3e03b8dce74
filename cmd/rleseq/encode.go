package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/bsm/rleseq"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
)

func newEncodeCommand() *cobra.Command {
	var (
		output string
		meta   []int32
	)

	cmd := &cobra.Command{
		Use:   "encode [input]",
		Short: "Encode whitespace separated integers from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if len(args) == 1 {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			seq, err := scanValues(in)
			if err != nil {
				return err
			}
			if err := cfg.writeFile(output, seq, meta); err != nil {
				return err
			}

			level.Info(cfg.Logger).Log("msg", "encoded", "values", seq.Len(), "chunks", seq.NumChunks(), "output", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file")
	cmd.Flags().Int32SliceVarP(&meta, "meta", "m", nil, "metadata values, e.g. grid dimensions")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

// scanValues reads whitespace separated int32 values.
func scanValues(r io.Reader) (*rleseq.Container[int32], error) {
	seq := rleseq.New[int32](nil)

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		v, err := strconv.ParseInt(scanner.Text(), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", seq.Len(), err)
		}
		seq.Add(int32(v))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return seq, nil
}
