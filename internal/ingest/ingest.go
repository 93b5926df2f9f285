package ingest

import (
	"errors"
	"os"
)

// ErrUnsupportedExt is returned for uploads that are not PDFs.
var ErrUnsupportedExt = errors.New("unsupported or missing extension")

// Upload is a submitted document staged on disk for the duration of one request.
type Upload struct {
	Filename string // as submitted
	Path     string // temp file holding the bytes
	Ext      string // normalized, without '.'
	Size     int64
	HashHex  string // highwayhash-64 of the bytes
}

// Cleanup removes the staged file. Safe to call more than once.
func (u *Upload) Cleanup() error {
	if u == nil || u.Path == "" {
		return nil
	}
	err := os.Remove(u.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned   uint32
	Matched   uint32
	Succeeded uint32
	Failed    uint32
}
