package accumulator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"wikiharvest/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- FileStore tests ---

func TestFileStoreLoadAbsentFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), testLogger())

	counts, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("expected empty counts, got %v", counts)
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.json")
	store := NewFileStore(path, testLogger())
	ctx := context.Background()

	want := map[string]int{"sword": 3, "pickaxe": 1, "don't": 2}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for word, count := range want {
		if got[word] != count {
			t.Errorf("word %q: expected %d, got %d", word, count, got[word])
		}
	}
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.json")
	store := NewFileStore(path, testLogger())
	ctx := context.Background()

	if err := store.Save(ctx, map[string]int{"old": 1}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := store.Save(ctx, map[string]int{"new": 2}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := got["old"]; ok {
		t.Error("previous record leaked into replaced file")
	}
	if got["new"] != 2 {
		t.Errorf("expected new=2, got %v", got)
	}
}

func TestFileStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(path, testLogger())

	_, err := store.Load(context.Background())
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
	var storageErr *types.StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("expected StorageError, got %T", err)
	}
}

func TestFileStoreLoadRejectsNegativeCounts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "counts.json")
	if err := os.WriteFile(path, []byte(`{"sword": -1}`), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(path, testLogger())

	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected error for negative count")
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "counts.json"), testLogger())

	if err := store.Save(context.Background(), map[string]int{"a": 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "counts.json" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("expected only counts.json, got %v", names)
	}
}

// --- Merge tests ---

func TestMergeAddsCounts(t *testing.T) {
	dst := map[string]int{"sword": 2, "bow": 1}
	Merge(dst, map[string]int{"sword": 3, "arrow": 4})

	if dst["sword"] != 5 {
		t.Errorf("expected sword=5, got %d", dst["sword"])
	}
	if dst["bow"] != 1 {
		t.Errorf("expected bow=1, got %d", dst["bow"])
	}
	if dst["arrow"] != 4 {
		t.Errorf("expected arrow=4, got %d", dst["arrow"])
	}
}

func TestMergeOrderIndependent(t *testing.T) {
	a := map[string]int{"x": 1, "y": 2}
	b := map[string]int{"y": 3, "z": 4}

	first := Merge(Merge(map[string]int{}, a), b)
	second := Merge(Merge(map[string]int{}, b), a)

	if len(first) != len(second) {
		t.Fatalf("merge order changed result: %v vs %v", first, second)
	}
	for word, count := range first {
		if second[word] != count {
			t.Errorf("word %q: %d vs %d", word, count, second[word])
		}
	}
}

func TestMergeSamePageTwiceDoublesCounts(t *testing.T) {
	page := map[string]int{"guide": 2}
	dst := map[string]int{}
	Merge(dst, page)
	Merge(dst, page)

	if dst["guide"] != 4 {
		t.Errorf("expected guide=4 after double merge, got %d", dst["guide"])
	}
}

func TestMergeEmptyPage(t *testing.T) {
	dst := map[string]int{"kept": 1}
	Merge(dst, map[string]int{})

	if len(dst) != 1 || dst["kept"] != 1 {
		t.Errorf("empty merge changed accumulator: %v", dst)
	}
}
