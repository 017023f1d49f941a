// Package artifact fetches pinned tokenizer artifacts from Hugging Face and
// verifies them against a local lock manifest.
package artifact

import "fmt"

type Manifest struct {
	Repo  string `json:"repo"`
	Files []File `json:"files"`
}

type File struct {
	Filename string `json:"filename"`
	Revision string `json:"revision"`
	SHA256   string `json:"sha256"`
}

// PinnedManifest returns the known tekken.json locations for supported
// repositories. Checksums are resolved from repository metadata on first
// download and persisted into the local lock manifest.
func PinnedManifest(repo string) (Manifest, error) {
	switch repo {
	case "mistralai/Mistral-Nemo-Instruct-2407",
		"mistralai/Pixtral-12B-2409",
		"mistralai/Voxtral-Mini-3B-2507":
		return Manifest{
			Repo: repo,
			Files: []File{
				{
					Filename: "tekken.json",
					Revision: "main",
					SHA256:   "",
				},
			},
		}, nil
	default:
		return Manifest{}, fmt.Errorf("no pinned manifest for repo %q", repo)
	}
}
