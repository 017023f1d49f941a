package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/example/go-tekken/internal/testutil"
)

// runCommand executes the root command with args and returns captured stdout.
func runCommand(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestEncodeCommand(t *testing.T) {
	path := testutil.WriteArtifact(t, testutil.ArtifactOptions{Merges: []string{"ab"}})

	out, err := runCommand(t, "", "encode", "ab",
		"--tokenizer", path, "--add-bos=false")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var ids []uint32
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &ids); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	// "ab" merges into the first learned token: 256 shifted past 20 specials.
	if len(ids) != 1 || ids[0] != 276 {
		t.Errorf("ids = %v; want [276]", ids)
	}
}

func TestEncodeCommandAddBOS(t *testing.T) {
	path := testutil.WriteArtifact(t, testutil.ArtifactOptions{})

	out, err := runCommand(t, "", "encode", "a",
		"--tokenizer", path, "--add-bos=true")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var ids []uint32
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &ids); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if len(ids) != 2 || ids[0] != 1 {
		t.Errorf("ids = %v; want bos-prefixed pair", ids)
	}
}

func TestEncodeCommandStdin(t *testing.T) {
	path := testutil.WriteArtifact(t, testutil.ArtifactOptions{})

	out, err := runCommand(t, "a\n", "encode",
		"--tokenizer", path, "--add-bos=false")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	var ids []uint32
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &ids); err != nil {
		t.Fatalf("unmarshal %q: %v", out, err)
	}
	if len(ids) != 1 || ids[0] != uint32('a')+20 {
		t.Errorf("ids = %v; want [%d]", ids, uint32('a')+20)
	}
}

func TestDecodeCommand(t *testing.T) {
	path := testutil.WriteArtifact(t, testutil.ArtifactOptions{})

	out, err := runCommand(t, "", "decode",
		"--tokenizer", path,
		"117", "105") // 'a'+20, 'U'+20

	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.TrimSuffix(out, "\n"); got != "aU" {
		t.Errorf("decode output = %q; want %q", got, "aU")
	}
}

func TestDecodeCommandRoundTrip(t *testing.T) {
	path := testutil.WriteArtifact(t, testutil.ArtifactOptions{Merges: []string{"he", "ll"}})

	encoded, err := runCommand(t, "", "encode", "hello",
		"--tokenizer", path, "--add-bos=false")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := runCommand(t, encoded, "decode", "--tokenizer", path)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := strings.TrimSuffix(decoded, "\n"); got != "hello" {
		t.Errorf("round trip = %q; want %q", got, "hello")
	}
}

func TestDecodeCommandRejectsBadID(t *testing.T) {
	path := testutil.WriteArtifact(t, testutil.ArtifactOptions{})

	if _, err := runCommand(t, "", "decode", "--tokenizer", path, "notanumber"); err == nil {
		t.Fatal("decode accepted a non-numeric id")
	}
}

func TestInfoCommand(t *testing.T) {
	path := testutil.WriteArtifact(t, testutil.ArtifactOptions{Version: "v11"})

	out, err := runCommand(t, "", "info", "--tokenizer", path)
	if err != nil {
		t.Fatalf("info: %v", err)
	}

	for _, want := range []string{"version:", "v11", "vocab size:", "special tokens:"} {
		if !strings.Contains(out, want) {
			t.Errorf("info output missing %q:\n%s", want, out)
		}
	}
}

func TestReadIDs(t *testing.T) {
	ids, err := readIDs(strings.NewReader(""), []string{"1", "2", "3"})
	if err != nil {
		t.Fatalf("readIDs: %v", err)
	}
	if len(ids) != 3 || ids[2] != 3 {
		t.Errorf("ids = %v; want [1 2 3]", ids)
	}

	ids, err = readIDs(strings.NewReader("[4,5]\n"), nil)
	if err != nil {
		t.Fatalf("readIDs JSON: %v", err)
	}
	if len(ids) != 2 || ids[0] != 4 {
		t.Errorf("ids = %v; want [4 5]", ids)
	}

	ids, err = readIDs(strings.NewReader("6 7\n"), nil)
	if err != nil {
		t.Fatalf("readIDs fields: %v", err)
	}
	if len(ids) != 2 || ids[1] != 7 {
		t.Errorf("ids = %v; want [6 7]", ids)
	}

	if _, err := readIDs(strings.NewReader(""), []string{"-1"}); err == nil {
		t.Error("readIDs accepted a negative id")
	}
}

func TestReadTextArg(t *testing.T) {
	got, err := readTextArg(strings.NewReader("ignored"), []string{"hello"})
	if err != nil || got != "hello" {
		t.Errorf("readTextArg arg = %q, %v; want hello", got, err)
	}

	got, err = readTextArg(strings.NewReader("from stdin\n"), nil)
	if err != nil || got != "from stdin" {
		t.Errorf("readTextArg stdin = %q, %v; want %q", got, err, "from stdin")
	}

	got, err = readTextArg(strings.NewReader("dash\n"), []string{"-"})
	if err != nil || got != "dash" {
		t.Errorf("readTextArg dash = %q, %v; want dash", got, err)
	}
}
