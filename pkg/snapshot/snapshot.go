// Package snapshot persists analysis reports as indented JSON files.
package snapshot

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jdgilhuly/premium_tracker/pkg/analysis"
)

// DefaultPath is where the tracker writes its snapshot, relative to the
// working directory.
const DefaultPath = "data/snapshots/latest.json"

// Save writes rep to path as JSON with a two-space indent, replacing any
// existing file. The parent directory must already exist; Save never creates
// it and leaves no file behind when it is missing.
func Save(rep *analysis.Report, path string) (err error) {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("snapshot directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("snapshot directory %s: %w", dir,
			&fs.PathError{Op: "stat", Path: dir, Err: fs.ErrInvalid})
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing snapshot %s: %w", path, cerr)
		}
	}()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing snapshot to %s: %w", path, err)
	}
	return nil
}

// Load reads a report previously written by Save.
func Load(path string) (*analysis.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var rep analysis.Report
	if err := json.Unmarshal(data, &rep); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return &rep, nil
}
