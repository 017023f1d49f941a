package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newEncodeCmd() *cobra.Command {
	var pieces bool

	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text to token ids",
		Long:  "Encode text to token ids. Reads from stdin when no argument (or \"-\") is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			text, err := readTextArg(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			ids, err := tok.Encode(text, cfg.Tokenizer.AddBOS, cfg.Tokenizer.AddEOS)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if pieces {
				for _, id := range ids {
					piece, err := tok.IDToPiece(id)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%d\t%q\n", id, piece)
				}
				return nil
			}

			enc := json.NewEncoder(out)
			if ids == nil {
				ids = []uint32{}
			}
			return enc.Encode(ids)
		},
	}

	cmd.Flags().BoolVar(&pieces, "pieces", false, "Print one id and its piece per line instead of a JSON array")

	return cmd
}

func readTextArg(stdin io.Reader, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}
