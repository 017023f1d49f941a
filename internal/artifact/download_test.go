package artifact

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestPinnedManifest(t *testing.T) {
	repos := []string{
		"mistralai/Mistral-Nemo-Instruct-2407",
		"mistralai/Pixtral-12B-2409",
		"mistralai/Voxtral-Mini-3B-2507",
	}

	for _, repo := range repos {
		m, err := PinnedManifest(repo)
		if err != nil {
			t.Errorf("PinnedManifest(%q): %v", repo, err)
			continue
		}
		if m.Repo != repo {
			t.Errorf("Repo = %q; want %q", m.Repo, repo)
		}
		if len(m.Files) != 1 || m.Files[0].Filename != "tekken.json" {
			t.Errorf("Files = %v; want single tekken.json entry", m.Files)
		}
	}

	if _, err := PinnedManifest("someone/else"); err == nil {
		t.Error("PinnedManifest for unknown repo succeeded; want error")
	}
}

func TestDownloadValidatesOptions(t *testing.T) {
	if err := Download(DownloadOptions{OutDir: t.TempDir()}); err == nil {
		t.Error("Download without repo succeeded; want error")
	}
	if err := Download(DownloadOptions{Repo: "mistralai/Pixtral-12B-2409"}); err == nil {
		t.Error("Download without out dir succeeded; want error")
	}
	if err := Download(DownloadOptions{Repo: "someone/else", OutDir: t.TempDir()}); err == nil {
		t.Error("Download for unpinned repo succeeded; want error")
	}
}

func TestResolveURL(t *testing.T) {
	got := resolveURL("mistralai/Pixtral-12B-2409", File{Filename: "tekken.json", Revision: "main"})
	want := "https://huggingface.co/mistralai/Pixtral-12B-2409/resolve/main/tekken.json"
	if got != want {
		t.Errorf("resolveURL = %q; want %q", got, want)
	}
}

func TestNormalizeETag(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"abc"`, "abc"},
		{`W/"abc"`, "abc"},
		{"  abc  ", "abc"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := normalizeETag(tt.in); got != tt.want {
			t.Errorf("normalizeETag(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsSHA256Hex(t *testing.T) {
	if !isSHA256Hex("58aa704a88faad35f22c34ea1cb55c4c5629de8b8e035c6e4936e2673dc07617") {
		t.Error("valid sha256 rejected")
	}
	if isSHA256Hex("main") || isSHA256Hex("") || isSHA256Hex("xyz") {
		t.Error("invalid value accepted as sha256")
	}
}

func TestExpectedChecksum(t *testing.T) {
	const sum = "58aa704a88faad35f22c34ea1cb55c4c5629de8b8e035c6e4936e2673dc07617"

	// Pinned checksums win and are lowercased.
	f := File{Filename: "tekken.json", Revision: "main", SHA256: strings.ToUpper(sum)}
	got, err := expectedChecksum(nil, "mistralai/Pixtral-12B-2409", f, "", lockManifest{})
	if err != nil || got != sum {
		t.Errorf("pinned: got %q, %v; want %q, nil", got, err, sum)
	}

	// An unpinned file reuses the locked checksum at the same revision.
	f.SHA256 = ""
	lock := lockManifest{Files: map[string]lockRecord{
		"tekken.json": {Revision: "main", SHA256: sum},
	}}
	got, err = expectedChecksum(nil, "mistralai/Pixtral-12B-2409", f, "", lock)
	if err != nil || got != sum {
		t.Errorf("locked: got %q, %v; want %q, nil", got, err, sum)
	}

	// A lock entry at a different revision is not reused.
	lock.Files["tekken.json"] = lockRecord{Revision: "old", SHA256: sum}
	if _, err := expectedChecksum(&http.Client{Timeout: time.Millisecond}, "mistralai/Pixtral-12B-2409", f, "", lock); err == nil {
		t.Error("stale lock revision reused without metadata resolution")
	}
}

func TestExistingMatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tekken.json")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// sha256("hello")
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

	ok, err := existingMatches(path, want)
	if err != nil || !ok {
		t.Errorf("existingMatches = %v, %v; want true, nil", ok, err)
	}

	ok, err = existingMatches(path, "0000000000000000000000000000000000000000000000000000000000000000")
	if err != nil || ok {
		t.Errorf("existingMatches on mismatch = %v, %v; want false, nil", ok, err)
	}

	ok, err = existingMatches(filepath.Join(dir, "missing"), want)
	if err != nil || ok {
		t.Errorf("existingMatches on missing file = %v, %v; want false, nil", ok, err)
	}

	if _, err := existingMatches(dir, want); err == nil {
		t.Error("existingMatches on directory succeeded; want error")
	}
}

func TestLockManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifact-manifest.lock.json")

	lock := lockManifest{
		Repo:      "mistralai/Pixtral-12B-2409",
		Generated: "2024-01-01T00:00:00Z",
		Files: map[string]lockRecord{
			"tekken.json": {Revision: "main", SHA256: "abc"},
		},
	}

	if err := writeLockManifest(path, lock); err != nil {
		t.Fatalf("writeLockManifest: %v", err)
	}

	got := readLockManifest(path)
	if got.Repo != lock.Repo {
		t.Errorf("Repo = %q; want %q", got.Repo, lock.Repo)
	}
	if rec, ok := got.Files["tekken.json"]; !ok || rec.Revision != "main" {
		t.Errorf("Files[tekken.json] = %v, %v; want main revision", rec, ok)
	}

	// Missing or corrupt lock files degrade to an empty manifest.
	if got := readLockManifest(filepath.Join(dir, "nope.json")); got.Repo != "" {
		t.Errorf("missing lock produced %v; want zero value", got)
	}
	if err := os.WriteFile(path, []byte("{bad"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := readLockManifest(path); got.Repo != "" {
		t.Errorf("corrupt lock produced %v; want zero value", got)
	}
}
