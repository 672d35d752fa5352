// Package hash computes the content digests recorded alongside build
// artifacts. Digests are produced and printed, never verified here.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// DigestFile streams a file through sha256 and returns the prefixed
// digest plus the number of bytes hashed.
func DigestFile(path string) (digest string, size int64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open artifact %s: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, fmt.Errorf("hash artifact %s: %w", path, err)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), n, nil
}

// DigestBytes digests an in-memory buffer with the same prefix format.
func DigestBytes(raw []byte) string {
	h := sha256.Sum256(raw)
	return "sha256:" + hex.EncodeToString(h[:])
}

// FileExists reports whether a path exists, hiding the stat error.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
