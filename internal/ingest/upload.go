package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Stage validates the extension, hashes data, and writes it to a temp file.
// Callers must defer Upload.Cleanup.
func Stage(filename string, data []byte) (*Upload, error) {
	ext := filepath.Ext(filename)
	if !AllowedExt(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExt, ext)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("uploaded file %q is empty", filename)
	}

	sum, err := ContentHash(data)
	if err != nil {
		return nil, fmt.Errorf("hash upload: %w", err)
	}

	f, err := os.CreateTemp("", "bill-*"+strings.ToLower(ext))
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	u := &Upload{
		Filename: filename,
		Path:     f.Name(),
		Ext:      strings.TrimPrefix(strings.ToLower(ext), "."),
		Size:     int64(len(data)),
		HashHex:  sum,
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = u.Cleanup()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = u.Cleanup()
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	return u, nil
}
