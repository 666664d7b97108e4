// Package manifest records copy operations to the filesystem so
// `dircomp history` can show what was copied where. One JSON file per
// operation, written atomically.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/google/uuid"

	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// Record is one logged copy operation.
type Record struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`

	// From is the side the data was copied from.
	From types.Side `json:"from"`

	// RelPath is the copied entry's path relative to the roots.
	RelPath string `json:"rel_path"`

	// SourceRoot and DestRoot are the absolute roots at copy time.
	SourceRoot string `json:"source_root"`
	DestRoot   string `json:"dest_root"`

	// Files and Bytes summarize what was transferred.
	Files int   `json:"files"`
	Bytes int64 `json:"bytes"`

	// Outcome is "ok" or the failure message.
	Outcome string `json:"outcome"`
}

// OK reports whether the operation succeeded.
func (r Record) OK() bool {
	return r.Outcome == "ok"
}

// Log manages the history directory.
type Log struct {
	dir string
	mu  sync.Mutex
}

// DefaultDir returns the standard history location under the XDG
// data directory.
func DefaultDir() string {
	dir, err := xdg.DataFile("dircomp/history")
	if err != nil {
		return filepath.Join(os.TempDir(), "dircomp-history")
	}
	return dir
}

// Open creates a Log rooted at dir. The directory is created lazily
// on the first Append.
func Open(dir string) (*Log, error) {
	if dir == "" {
		return nil, errors.New("manifest directory cannot be empty")
	}
	return &Log{dir: dir}, nil
}

// Append persists one record, assigning its ID and timestamp.
func (l *Log) Append(r Record) (Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r.ID = uuid.NewString()
	r.Timestamp = time.Now().UTC()

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return Record{}, fmt.Errorf("create history directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return Record{}, err
	}

	final := filepath.Join(l.dir, fmt.Sprintf("%s-%s.json", r.Timestamp.Format("20060102T150405"), r.ID))
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return Record{}, fmt.Errorf("write history entry: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return Record{}, fmt.Errorf("commit history entry: %w", err)
	}
	return r, nil
}

// List returns all records, newest first. A missing directory means
// no history yet.
func (l *Log) List() ([]Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var records []Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(l.dir, e.Name()))
		if err != nil {
			continue
		}
		var r Record
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		records = append(records, r)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})
	return records, nil
}
