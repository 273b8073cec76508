package accumulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"wikiharvest/internal/types"
)

// FileStore keeps the accumulator in a single JSON file. Writes go to a
// temp file in the same directory followed by a rename, so readers never
// observe a partially written record.
type FileStore struct {
	path   string
	logger *slog.Logger
}

// NewFileStore creates a file-backed accumulator store.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With("component", "file_store"),
	}
}

func (s *FileStore) Name() string { return "json" }

// Load reads the persisted counts. A missing file yields an empty map; a
// corrupt or unreadable file is an error so a crawl never starts from an
// inconsistent state.
func (s *FileStore) Load(_ context.Context) (map[string]int, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Debug("no accumulator record, starting empty", "path", s.path)
			return make(map[string]int), nil
		}
		return nil, &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("read %s: %w", s.path, err)}
	}

	counts := make(map[string]int)
	if err := json.Unmarshal(data, &counts); err != nil {
		return nil, &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("decode %s: %w", s.path, err)}
	}
	for word, count := range counts {
		if count < 0 {
			return nil, &types.StorageError{
				Backend: s.Name(),
				Err:     fmt.Errorf("negative count %d for word %q in %s", count, word, s.path),
			}
		}
	}
	return counts, nil
}

// Save atomically replaces the record.
func (s *FileStore) Save(_ context.Context, counts map[string]int) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("create dir %s: %w", dir, err)}
	}

	tmp, err := os.CreateTemp(dir, ".word-counts-*.json")
	if err != nil {
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("create temp file: %w", err)}
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(counts); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("encode counts: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("close temp file: %w", err)}
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return &types.StorageError{Backend: s.Name(), Err: fmt.Errorf("rename into place: %w", err)}
	}

	s.logger.Debug("accumulator saved", "path", s.path, "words", len(counts))
	return nil
}

func (s *FileStore) Close(_ context.Context) error { return nil }
