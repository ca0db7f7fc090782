// Package checksum fingerprints note contents so unchanged files can be
// skipped during a sync.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// Reader returns the hex-encoded SHA-256 digest of everything read from r.
func Reader(r io.Reader) (string, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
