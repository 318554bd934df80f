// pkg/extract/hash.go - checksums for extracted payloads.

package extract

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/windowsadmins/cimianboot/pkg/logging"
)

// FileSHA256 returns the SHA256 sum of a file.
func FileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Verify checks the file at path against an expected SHA256 sum. The
// comparison ignores case.
func Verify(path, expected string) error {
	actual, err := FileSHA256(path)
	if err != nil {
		return fmt.Errorf("hashing %s: %w", path, err)
	}
	logging.Debug("Calculated SHA256 hash", "path", path, "hash", actual)

	if !strings.EqualFold(actual, strings.TrimSpace(expected)) {
		return fmt.Errorf("checksum mismatch for %s: expected %s, got %s", path, expected, actual)
	}
	return nil
}
