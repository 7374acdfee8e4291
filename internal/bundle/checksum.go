package bundle

import (
	"crypto/md5"
	_ "crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/opencontainers/go-digest"

	"github.com/cruciblehq/crumake/internal/paths"
)

// Writes <path>.sha256 and <path>.md5 sidecars in the format produced by
// sha256sum and md5sum ("<hex>  <basename>").
func writeChecksums(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}
	defer f.Close()

	sha := digest.SHA256.Digester()
	md := md5.New()
	if _, err := io.Copy(io.MultiWriter(sha.Hash(), md), f); err != nil {
		return fmt.Errorf("%w: %w", ErrFilesystem, err)
	}

	sums := map[string]string{
		".sha256": sha.Digest().Encoded(),
		".md5":    hex.EncodeToString(md.Sum(nil)),
	}

	base := filepath.Base(path)
	for ext, sum := range sums {
		line := fmt.Sprintf("%s  %s\n", sum, base)
		if err := os.WriteFile(path+ext, []byte(line), paths.DefaultFileMode); err != nil {
			return fmt.Errorf("%w: %w", ErrFilesystem, err)
		}
	}

	return nil
}
