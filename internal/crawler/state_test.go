package crawler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"wikiharvest/internal/types"
)

// --- Queue tests ---

func TestQueueFIFO(t *testing.T) {
	q := &fifoQueue{}
	q.Push(Entry{ID: "A", Depth: 0})
	q.Push(Entry{ID: "B", Depth: 1})
	q.Push(Entry{ID: "C", Depth: 1})

	if q.Len() != 3 {
		t.Fatalf("expected len 3, got %d", q.Len())
	}
	for _, want := range []types.PageID{"A", "B", "C"} {
		e, ok := q.Pop()
		if !ok || e.ID != want {
			t.Fatalf("expected %s, got %v (ok=%v)", want, e.ID, ok)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Error("expected empty pop to report not ok")
	}
}

func TestQueueCompaction(t *testing.T) {
	q := &fifoQueue{}
	for i := 0; i < 200; i++ {
		q.Push(Entry{ID: types.PageID(rune('a' + i%26)), Depth: i})
	}
	// Drain most entries to trigger compaction, then verify order survives.
	for i := 0; i < 150; i++ {
		e, ok := q.Pop()
		if !ok {
			t.Fatalf("unexpected empty queue at %d", i)
		}
		if e.Depth != i {
			t.Fatalf("order broken at %d: got depth %d", i, e.Depth)
		}
	}
	if q.Len() != 50 {
		t.Errorf("expected 50 remaining, got %d", q.Len())
	}
}

func TestQueuePending(t *testing.T) {
	q := &fifoQueue{}
	q.Push(Entry{ID: "A"})
	q.Push(Entry{ID: "B"})
	q.Pop()

	pending := q.Pending()
	if len(pending) != 1 || pending[0].ID != "B" {
		t.Errorf("expected pending [B], got %v", pending)
	}
}

// --- VisitedSet tests ---

func TestVisitedSet(t *testing.T) {
	v := NewVisitedSet()

	if v.Contains("Zenith") {
		t.Error("should not contain before add")
	}
	v.Add("Zenith")
	if !v.Contains("Zenith") {
		t.Error("should contain after add")
	}
	v.Add("Zenith")
	if v.Len() != 1 {
		t.Errorf("duplicate add changed size: %d", v.Len())
	}
}

func TestVisitedSetExportImport(t *testing.T) {
	v := NewVisitedSet()
	v.Add("Copper_Ore")
	v.Add("Anvil")

	exported := v.Export()
	if len(exported) != 2 || exported[0] != "Anvil" || exported[1] != "Copper_Ore" {
		t.Fatalf("expected sorted export [Anvil Copper_Ore], got %v", exported)
	}

	restored := NewVisitedSet()
	restored.Import(exported)
	if !restored.Contains("Anvil") || !restored.Contains("Copper_Ore") {
		t.Error("import lost identifiers")
	}
}

// --- Delayer tests ---

func TestSleepDelayerZeroDuration(t *testing.T) {
	d := NewSleepDelayer(0)
	start := time.Now()
	if err := d.Delay(context.Background()); err != nil {
		t.Fatalf("Delay: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 50*time.Millisecond {
		t.Errorf("zero delay slept for %s", elapsed)
	}
}

func TestSleepDelayerCancellation(t *testing.T) {
	d := NewSleepDelayer(10 * time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := d.Delay(ctx)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("canceled delay blocked for %s", elapsed)
	}
}

// --- Checkpoint tests ---

func TestCheckpointRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	cp := NewCheckpoint(path)

	visited := NewVisitedSet()
	visited.Add("A")
	visited.Add("B")
	queue := &fifoQueue{}
	queue.Push(Entry{ID: "C", Depth: 2})

	if err := cp.Save(visited, queue); err != nil {
		t.Fatalf("Save: %v", err)
	}

	restoredVisited := NewVisitedSet()
	restoredQueue := &fifoQueue{}
	if err := cp.Load(restoredVisited, restoredQueue); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !restoredVisited.Contains("A") || !restoredVisited.Contains("B") {
		t.Error("visited set not restored")
	}
	e, ok := restoredQueue.Pop()
	if !ok || e.ID != "C" || e.Depth != 2 {
		t.Errorf("pending queue not restored: %v (ok=%v)", e, ok)
	}
}

func TestCheckpointMissingFileIsNotAnError(t *testing.T) {
	cp := NewCheckpoint(filepath.Join(t.TempDir(), "absent.json"))
	visited := NewVisitedSet()
	queue := &fifoQueue{}

	if err := cp.Load(visited, queue); err != nil {
		t.Fatalf("expected missing checkpoint to load clean, got %v", err)
	}
	if visited.Len() != 0 || queue.Len() != 0 {
		t.Error("missing checkpoint produced state")
	}
}

func TestCheckpointClean(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.json")
	cp := NewCheckpoint(path)
	if err := cp.Save(NewVisitedSet(), &fifoQueue{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := cp.Clean(); err != nil {
		t.Fatalf("Clean: %v", err)
	}
	// Cleaning twice is fine.
	if err := cp.Clean(); err != nil {
		t.Fatalf("second Clean: %v", err)
	}
}
