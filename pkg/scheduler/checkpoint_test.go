package scheduler

import (
	"path/filepath"
	"testing"
)

func TestSaveAndLoadCheckpointRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".generation_checkpoint")

	want := Checkpoint{ConfigHash: 12345, Completed: []int{3, 1, 2}}
	if err := SaveCheckpoint(path, want); err != nil {
		t.Fatalf("SaveCheckpoint failed: %v", err)
	}

	got, err := LoadCheckpoint(path)
	if err != nil {
		t.Fatalf("LoadCheckpoint failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a non-nil checkpoint")
	}
	if got.ConfigHash != want.ConfigHash {
		t.Fatalf("config hash mismatch: got %d, want %d", got.ConfigHash, want.ConfigHash)
	}
	if len(got.Completed) != 3 || got.Completed[0] != 1 || got.Completed[1] != 2 || got.Completed[2] != 3 {
		t.Fatalf("expected sorted [1 2 3], got %v", got.Completed)
	}
}

func TestLoadCheckpointMissingFileReturnsNil(t *testing.T) {
	dir := t.TempDir()
	got, err := LoadCheckpoint(filepath.Join(dir, "nonexistent"))
	if err != nil {
		t.Fatalf("expected no error for a missing checkpoint, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for a missing checkpoint, got %+v", got)
	}
}
