package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDigestFile_KnownContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "kernel.bin")
	content := []byte{0x7f, 0x45, 0x4c, 0x46, 0x00}
	os.WriteFile(path, content, 0o644)

	h := sha256.Sum256(content)
	want := "sha256:" + hex.EncodeToString(h[:])

	digest, size, err := DigestFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if digest != want {
		t.Errorf("digest = %q, want %q", digest, want)
	}
	if size != int64(len(content)) {
		t.Errorf("size = %d, want %d", size, len(content))
	}
}

func TestDigestFile_Missing(t *testing.T) {
	_, _, err := DigestFile(filepath.Join(t.TempDir(), "absent.bin"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDigestBytes_Format(t *testing.T) {
	d := DigestBytes([]byte("payload"))
	if !strings.HasPrefix(d, "sha256:") {
		t.Fatalf("digest = %q, want sha256: prefix", d)
	}
	if len(d) != len("sha256:")+64 {
		t.Errorf("digest length = %d", len(d))
	}
}

func TestCanonical_KeyOrderIndependent(t *testing.T) {
	a := map[string]any{"b": 1, "a": []any{"x", "y"}}
	b := map[string]any{"a": []any{"x", "y"}, "b": 1}

	ca, err := Canonical(a)
	if err != nil {
		t.Fatal(err)
	}
	cb, err := Canonical(b)
	if err != nil {
		t.Fatal(err)
	}
	if string(ca) != string(cb) {
		t.Errorf("canonical forms differ: %s vs %s", ca, cb)
	}
	if string(ca) != `{"a":["x","y"],"b":1}` {
		t.Errorf("canonical form = %s", ca)
	}
}

func TestCanonical_NumbersSurviveUntouched(t *testing.T) {
	c, err := Canonical(map[string]any{"size": 123456789})
	if err != nil {
		t.Fatal(err)
	}
	if string(c) != `{"size":123456789}` {
		t.Errorf("canonical form = %s", c)
	}
}

func TestDigestCanonical_StableAcrossRenderings(t *testing.T) {
	d1, err := DigestCanonical(map[string]any{"k": "v", "n": 2})
	if err != nil {
		t.Fatal(err)
	}
	d2, err := DigestCanonical(map[string]any{"n": 2, "k": "v"})
	if err != nil {
		t.Fatal(err)
	}
	if d1 != d2 {
		t.Errorf("digests differ: %s vs %s", d1, d2)
	}
}
