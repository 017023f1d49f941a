package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/example/go-tekken/internal/tokenizer"
	"github.com/spf13/cobra"
)

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [id...]",
		Short: "Decode token ids to text",
		Long: "Decode token ids to text. Ids are given as arguments or, when absent, " +
			"read from stdin as a JSON array or whitespace-separated integers.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			policy, err := tokenizer.ParseSpecialTokenPolicy(cfg.Tokenizer.SpecialTokenPolicy)
			if err != nil {
				return err
			}

			ids, err := readIDs(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			text, err := tok.Decode(ids, policy)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}

	return cmd
}

func readIDs(stdin io.Reader, args []string) ([]uint32, error) {
	if len(args) == 0 {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "[") {
			var ids []uint32
			if err := json.Unmarshal([]byte(trimmed), &ids); err != nil {
				return nil, fmt.Errorf("parse JSON ids: %w", err)
			}
			return ids, nil
		}
		args = strings.Fields(trimmed)
	}

	ids := make([]uint32, 0, len(args))
	for _, arg := range args {
		n, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid token id %q: %w", arg, err)
		}
		ids = append(ids, uint32(n))
	}
	return ids, nil
}
