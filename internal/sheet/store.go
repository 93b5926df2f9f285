package sheet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/joseph-ayodele/bill-scanner/internal/common"
	"github.com/joseph-ayodele/bill-scanner/internal/record"
)

// Uploader receives a copy of the workbook after every successful append.
type Uploader interface {
	Upload(ctx context.Context, data []byte) error
}

// Store owns the session spreadsheet on disk. Appends are serialized within the process.
type Store struct {
	path      string
	sheetName string
	mirror    Uploader
	logger    *slog.Logger

	mu sync.Mutex
}

type Option func(*Store)

// WithMirror uploads the rewritten workbook to u after each append.
func WithMirror(u Uploader) Option {
	return func(s *Store) { s.mirror = u }
}

func NewStore(path, sheetName string, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, sheetName: sheetName, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string { return s.path }

// Init clears any spreadsheet left by a previous run.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reset spreadsheet %s: %w", s.path, err)
	}
	s.logger.Info("sheet.init", "path", s.path)
	return nil
}

// Load returns the current table, empty when nothing has been saved yet.
func (s *Store) Load() (*Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (*Table, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Table{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	return decode(data, s.sheetName)
}

// Append adds row to the spreadsheet, rewriting the whole file, and returns the combined table.
func (s *Store) Append(ctx context.Context, row *record.Record) (*Table, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.load()
	if err != nil {
		return nil, err
	}
	t.AppendRow(row)

	data, err := encode(t, s.sheetName)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return nil, fmt.Errorf("write spreadsheet: %w", err)
	}
	s.logger.Info("sheet.append.ok",
		"path", s.path,
		"rows", len(t.Rows),
		"columns", len(t.Columns),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if s.mirror != nil {
		if err := s.mirror.Upload(ctx, data); err != nil {
			s.logger.Warn("sheet.mirror.error", "error", err)
		}
	}
	return t, nil
}

// Export returns the saved workbook bytes, or common.ErrNotFound before the first append.
func (s *Store) Export() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, common.NewAppError("NOT_FOUND", "no bills have been saved yet", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read spreadsheet: %w", err)
	}
	return data, nil
}

// writeFileAtomic writes to a sibling temp file and renames it over path.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
