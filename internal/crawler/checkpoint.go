package crawler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wikiharvest/internal/types"
)

// Checkpoint persists the visited set and pending queue between
// invocations, so a resumed crawl skips pages seen in a prior run.
type Checkpoint struct {
	path string
}

type checkpointData struct {
	Timestamp time.Time      `json:"timestamp"`
	Visited   []types.PageID `json:"visited"`
	Pending   []Entry        `json:"pending"`
}

// NewCheckpoint creates a checkpoint bound to path.
func NewCheckpoint(path string) *Checkpoint {
	return &Checkpoint{path: path}
}

// Save writes the crawl state via temp file + rename (atomic replace).
func (c *Checkpoint) Save(visited *VisitedSet, queue *fifoQueue) error {
	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}

	data := checkpointData{
		Timestamp: time.Now(),
		Visited:   visited.Export(),
		Pending:   queue.Pending(),
	}

	tmpPath := c.path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create checkpoint file: %w", err)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close checkpoint file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename checkpoint file: %w", err)
	}
	return nil
}

// Load restores crawl state into visited and queue. A missing checkpoint
// is not an error.
func (c *Checkpoint) Load(visited *VisitedSet, queue *fifoQueue) error {
	f, err := os.Open(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	var data checkpointData
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return fmt.Errorf("decode checkpoint: %w", err)
	}

	visited.Import(data.Visited)
	for _, entry := range data.Pending {
		queue.Push(entry)
	}
	return nil
}

// Clean removes the checkpoint file.
func (c *Checkpoint) Clean() error {
	if err := os.Remove(c.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
