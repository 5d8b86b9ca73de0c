package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/raphi011/wts/internal/storage"
)

// fileVersion is bumped whenever the on-disk layout changes.
// Files with another version are ignored and rewritten.
const fileVersion = 1

// Entry is one persisted fact.
type Entry struct {
	Value     json.RawMessage `json:"value"`
	FetchedAt time.Time       `json:"fetched_at"`
}

// Record is an entry together with its key, as listed by Entries.
type Record struct {
	Key string
	Entry
}

type fileData struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// File is the persisted fact cache of one repository.
// It is read once by Open, mutated in memory, and written back by Flush.
type File struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
	changed map[string]bool
	deleted map[string]bool
}

// PathFor returns the cache file for the repository whose shared git
// directory is commonDir. All worktrees of a repository share one file.
func PathFor(commonDir string) (string, error) {
	dir, err := storage.Dir()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256([]byte(filepath.Clean(commonDir)))
	return filepath.Join(dir, hex.EncodeToString(sum[:8])+".json"), nil
}

// LockPath returns the path to the lock file guarding a cache file.
func LockPath(path string) string {
	return path + ".lock"
}

// Open loads the cache file at path. A missing, corrupt, or
// outdated file yields an empty cache.
func Open(path string) (*File, error) {
	entries, err := read(path)
	if err != nil {
		return nil, err
	}
	return &File{
		path:    path,
		entries: entries,
		changed: make(map[string]bool),
		deleted: make(map[string]bool),
	}, nil
}

func read(path string) (map[string]Entry, error) {
	var data fileData
	err := storage.LoadJSON(path, &data)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return make(map[string]Entry), nil
	case err != nil:
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			return make(map[string]Entry), nil
		}
		return nil, err
	}
	if data.Version != fileVersion || data.Entries == nil {
		return make(map[string]Entry), nil
	}
	return data.Entries, nil
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Load returns the raw value stored under key.
func (f *File) Load(key string) ([]byte, time.Time, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.entries[key]
	if !ok {
		return nil, time.Time{}, false
	}
	return e.Value, e.FetchedAt, true
}

// Store records a value under key. It is written on the next Flush.
func (f *File) Store(key string, raw []byte, fetchedAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.entries[key] = Entry{Value: json.RawMessage(raw), FetchedAt: fetchedAt}
	f.changed[key] = true
	delete(f.deleted, key)
}

// Delete removes every entry whose key starts with prefix and returns how
// many were removed. An empty prefix removes everything.
func (f *File) Delete(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
			delete(f.changed, key)
			f.deleted[key] = true
			n++
		}
	}
	return n
}

// Entries returns all entries sorted by key.
func (f *File) Entries() []Record {
	f.mu.Lock()
	defer f.mu.Unlock()

	records := make([]Record, 0, len(f.entries))
	for key, e := range f.entries {
		records = append(records, Record{Key: key, Entry: e})
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Key < records[j].Key
	})
	return records
}

// Dirty reports whether there are changes not yet flushed.
func (f *File) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.changed) > 0 || len(f.deleted) > 0
}

// Flush writes pending changes to disk. Another process may have written
// the file since Open, so the file is re-read under an exclusive lock and
// only this process's changes and deletions are applied on top of it.
// For keys both processes wrote, the newer fetch wins.
func (f *File) Flush(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.changed) == 0 && len(f.deleted) == 0 {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return err
	}
	lock := NewFileLock(LockPath(f.path))
	if err := lock.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire cache lock: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	onDisk, err := read(f.path)
	if err != nil {
		return fmt.Errorf("failed to reload cache: %w", err)
	}

	for key := range f.deleted {
		delete(onDisk, key)
	}
	for key := range f.changed {
		mine := f.entries[key]
		if theirs, ok := onDisk[key]; ok && theirs.FetchedAt.After(mine.FetchedAt) {
			continue
		}
		onDisk[key] = mine
	}

	if err := storage.SaveJSON(f.path, fileData{Version: fileVersion, Entries: onDisk}); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}

	f.entries = onDisk
	f.changed = make(map[string]bool)
	f.deleted = make(map[string]bool)
	return nil
}
