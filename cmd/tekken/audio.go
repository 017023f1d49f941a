package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/example/go-tekken/internal/audio"
	"github.com/spf13/cobra"
)

func newEncodeAudioCmd() *cobra.Command {
	var dumpProcessed string

	cmd := &cobra.Command{
		Use:   "encode-audio <file.wav>",
		Short: "Encode a WAV file to audio placeholder tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			tok, err := loadTokenizer(cfg)
			if err != nil {
				return err
			}
			if !tok.HasAudioSupport() {
				return fmt.Errorf("tokenizer %s has no audio configuration", cfg.Paths.TokenizerPath)
			}

			wave, err := audio.FromFile(args[0])
			if err != nil {
				return err
			}

			enc, err := tok.EncodeAudio(wave)
			if err != nil {
				return err
			}

			if dumpProcessed != "" {
				data, err := audio.EncodeWAV(enc.Audio)
				if err != nil {
					return fmt.Errorf("encode processed audio: %w", err)
				}
				if err := os.WriteFile(dumpProcessed, data, 0o644); err != nil {
					return fmt.Errorf("write processed audio: %w", err)
				}
			}

			out := struct {
				IDs             []uint32 `json:"ids"`
				FrameCount      int      `json:"frame_count"`
				DurationSeconds float64  `json:"duration_s"`
			}{
				IDs:             enc.Tokens,
				FrameCount:      enc.FrameCount,
				DurationSeconds: enc.Audio.Duration(),
			}
			return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
		},
	}

	cmd.Flags().StringVar(&dumpProcessed, "dump-processed", "", "Write the resampled and padded waveform to this WAV file")

	return cmd
}
