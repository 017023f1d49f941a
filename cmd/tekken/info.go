package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	var showSpecials bool

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Print tokenizer metadata",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "path:            %s\n", cfg.Paths.TokenizerPath)
			fmt.Fprintf(out, "version:         %s\n", tok.Version())
			fmt.Fprintf(out, "vocab size:      %d\n", tok.VocabSize())
			fmt.Fprintf(out, "special tokens:  %d\n", tok.NumSpecialTokens())
			fmt.Fprintf(out, "audio:           %v\n", tok.HasAudioSupport())

			if ac := tok.AudioConfig(); ac != nil {
				fmt.Fprintf(out, "sampling rate:   %d Hz\n", ac.SamplingRate)
				fmt.Fprintf(out, "frame rate:      %g fps\n", ac.FrameRate)
				fmt.Fprintf(out, "mel bins:        %d\n", ac.Spectrogram.NumMelBins)
				fmt.Fprintf(out, "hop / window:    %d / %d\n", ac.Spectrogram.HopLength, ac.Spectrogram.WindowSize)
			}

			if showSpecials {
				for _, s := range tok.SpecialTokens() {
					fmt.Fprintf(out, "%5d  %s\n", s.Rank, s.Token)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSpecials, "specials", false, "List the special token table")

	return cmd
}
