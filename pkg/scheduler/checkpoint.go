package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Checkpoint lists every image index fully written to disk, alongside the
// config hash it was produced under, so Resume mode can detect drift.
type Checkpoint struct {
	ConfigHash uint64 `json:"config_hash"`
	Completed  []int  `json:"completed"`
}

// SaveCheckpoint writes ckpt to path by writing a temp file in the same
// directory and renaming it over path, so a crash mid-write never leaves a
// truncated checkpoint behind.
func SaveCheckpoint(path string, ckpt Checkpoint) error {
	sorted := append([]int(nil), ckpt.Completed...)
	sort.Ints(sorted)
	ckpt.Completed = sorted

	data, err := json.MarshalIndent(ckpt, "", "  ")
	if err != nil {
		return fmt.Errorf("scheduler: marshaling checkpoint: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("scheduler: writing checkpoint temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("scheduler: renaming checkpoint into place: %w", err)
	}
	return nil
}

// LoadCheckpoint reads a previously saved Checkpoint. A missing file is
// not an error: it returns (nil, nil), the "no prior run" case.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("scheduler: reading checkpoint: %w", err)
	}
	var ckpt Checkpoint
	if err := json.Unmarshal(data, &ckpt); err != nil {
		return nil, fmt.Errorf("scheduler: parsing checkpoint: %w", err)
	}
	return &ckpt, nil
}
