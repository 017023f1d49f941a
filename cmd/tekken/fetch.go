package main

import (
	"fmt"
	"os"

	"github.com/example/go-tekken/internal/artifact"
	"github.com/spf13/cobra"
)

func newFetchCmd() *cobra.Command {
	var hfRepo string
	var outDir string
	var hfToken string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download a pinned tokenizer artifact from Hugging Face",
		RunE: func(_ *cobra.Command, _ []string) error {
			if hfToken == "" {
				hfToken = os.Getenv("HF_TOKEN")
			}
			if outDir == "" {
				outDir = activeCfg.Paths.CacheDir
			}

			err := artifact.Download(artifact.DownloadOptions{
				Repo:    hfRepo,
				OutDir:  outDir,
				HFToken: hfToken,
				Stdout:  os.Stdout,
			})
			if err != nil {
				return fmt.Errorf("artifact download failed: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&hfRepo, "hf-repo", "mistralai/Mistral-Nemo-Instruct-2407", "Hugging Face repository holding tekken.json")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory where artifacts are stored (defaults to paths.cache_dir)")
	cmd.Flags().StringVar(&hfToken, "hf-token", "", "Hugging Face token (falls back to HF_TOKEN env var)")

	return cmd
}
