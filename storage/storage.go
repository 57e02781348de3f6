package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"colorslide/model"
)

// Store keeps the export history on disk, one JSON file per export.
type Store struct {
	baseDir string
	mu      sync.Mutex
	now     func() time.Time
}

// New creates a new Store instance with the given base directory.
func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now}
}

func (s *Store) root() string {
	return filepath.Join(s.baseDir, "exports")
}

// EnsureDirs creates the necessary directory structure for storing records.
func (s *Store) EnsureDirs() error {
	return os.MkdirAll(s.root(), 0o755)
}

// SaveExport writes a record, organizing files by date. A missing ID or
// timestamp is filled in and written back to rec.
func (s *Store) SaveExport(rec *model.ExportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec == nil {
		return fmt.Errorf("nil record")
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.now()
	}
	rec.Timestamp = rec.Timestamp.UTC()

	t := rec.Timestamp
	dir := filepath.Join(
		s.root(),
		fmt.Sprintf("%04d", t.Year()),
		fmt.Sprintf("%02d", t.Month()),
		fmt.Sprintf("%02d", t.Day()),
	)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	filename := fmt.Sprintf("%s_%s.json", t.Format("2006-01-02T15-04-05Z07-00"), rec.ID)
	path := filepath.Join(dir, filename)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	// Write to a temp name first so readers never see a partial record.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// ListExports retrieves all records within the specified time range, sorted
// by timestamp in ascending order.
func (s *Store) ListExports(from, to time.Time) ([]model.ExportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from = from.UTC()
	to = to.UTC()

	var records []model.ExportRecord
	err := s.walk(func(path string, r model.ExportRecord) error {
		t := r.Timestamp.UTC()
		if t.Before(from) || t.After(to) {
			return nil
		}
		records = append(records, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

// PruneExports deletes records older than before and any day directories
// left empty. It returns the number of records removed.
func (s *Store) PruneExports(before time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before = before.UTC()
	removed := 0
	dirs := map[string]bool{}
	err := s.walk(func(path string, r model.ExportRecord) error {
		if !r.Timestamp.UTC().Before(before) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			return err
		}
		removed++
		dirs[filepath.Dir(path)] = true
		return nil
	})
	if err != nil {
		return removed, err
	}

	// Day, month, then year directories; os.Remove refuses non-empty ones.
	for dir := range dirs {
		for d := dir; d != s.root() && len(d) > len(s.root()); d = filepath.Dir(d) {
			if os.Remove(d) != nil {
				break
			}
		}
	}
	return removed, nil
}

func (s *Store) walk(fn func(path string, r model.ExportRecord) error) error {
	err := filepath.WalkDir(s.root(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		var r model.ExportRecord
		if err := json.Unmarshal(data, &r); err != nil {
			log.Printf("[storage] skipping %s: %v", path, err)
			return nil
		}
		if r.Timestamp.IsZero() {
			return nil
		}
		return fn(path, r)
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
