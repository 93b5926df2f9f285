package sheet

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
)

// Mirror copies the workbook to any afs URL (file://, gs://, s3://, mem://).
type Mirror struct {
	fs     afs.Service
	url    string
	logger *slog.Logger
}

func NewMirror(url string, logger *slog.Logger) *Mirror {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mirror{fs: afs.New(), url: url, logger: logger}
}

func (m *Mirror) URL() string { return m.url }

func (m *Mirror) Upload(ctx context.Context, data []byte) error {
	if err := m.fs.Upload(ctx, m.url, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("mirror upload %s: %w", m.url, err)
	}
	m.logger.Debug("sheet.mirror.ok", "url", m.url, "bytes", len(data))
	return nil
}
