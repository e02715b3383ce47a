package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rohmanhakim/campus-crawler/pkg/failure"
	"github.com/rohmanhakim/campus-crawler/pkg/fileutil"
)

/*
Shelf - a small durable key-value store.

Responsibilities
- Persist crawl state (seen-set entries, aggregate record) across restarts
- Write through on every mutation; a crash never loses an acknowledged Put
- Swap to a purely in-memory variant when TESTING=true

Shelf knows nothing about URLs or deliverables. It stores opaque
JSON-encoded values under string keys.

The file variant re-reads and rewrites the whole file around each
operation. That is deliberately coarse: the write rate is bounded by the
politeness delay times the worker count, and the open-close-per-write
discipline keeps the on-disk file consistent without a WAL.
*/

type Shelf interface {
	// Get decodes the value under key into out, reporting presence.
	Get(key string, out any) (bool, failure.ClassifiedError)
	// Put encodes value under key, writing through to the backing file.
	Put(key string, value any) failure.ClassifiedError
	// ForEach visits every entry in sorted key order.
	ForEach(fn func(key string, raw json.RawMessage) error) failure.ClassifiedError
	// Len reports the number of entries.
	Len() (int, failure.ClassifiedError)
	// Path is the backing file path, empty for the memory variant.
	Path() string
}

// Open returns the shelf at path, creating its parent directory and an
// empty file state as needed. When TESTING=true it returns a fresh
// in-memory shelf instead and touches nothing on disk.
func Open(path string) (Shelf, failure.ClassifiedError) {
	if os.Getenv("TESTING") == "true" {
		return NewMemoryShelf(), nil
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fileutil.EnsureDir(dir); err != nil {
			return nil, &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCausePathError,
				Path:      path,
			}
		}
	}
	return &fileShelf{path: path}, nil
}

// Exists reports whether a shelf file is already present at path.
// Always false under TESTING=true.
func Exists(path string) bool {
	if os.Getenv("TESTING") == "true" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

type fileShelf struct {
	mu   sync.Mutex
	path string
}

func (s *fileShelf) Get(key string, out any) (bool, failure.ClassifiedError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return false, err
	}
	raw, ok := entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseDecodeFailure,
			Path:      s.path,
		}
	}
	return true, nil
}

func (s *fileShelf) Put(key string, value any) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	raw, jsonErr := json.Marshal(value)
	if jsonErr != nil {
		return &StorageError{
			Message:   jsonErr.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Path:      s.path,
		}
	}
	entries[key] = raw
	return s.save(entries)
}

func (s *fileShelf) ForEach(fn func(key string, raw json.RawMessage) error) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(entries) {
		if fnErr := fn(key, entries[key]); fnErr != nil {
			return &StorageError{
				Message:   fnErr.Error(),
				Retryable: false,
				Cause:     ErrCauseDecodeFailure,
				Path:      s.path,
			}
		}
	}
	return nil
}

func (s *fileShelf) Len() (int, failure.ClassifiedError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *fileShelf) Path() string {
	return s.path
}

func (s *fileShelf) load() (map[string]json.RawMessage, failure.ClassifiedError) {
	content, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return make(map[string]json.RawMessage), nil
	}
	if err != nil {
		return nil, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseReadFailure,
			Path:      s.path,
		}
	}
	if len(content) == 0 {
		return make(map[string]json.RawMessage), nil
	}
	entries := make(map[string]json.RawMessage)
	if err := json.Unmarshal(content, &entries); err != nil {
		return nil, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseDecodeFailure,
			Path:      s.path,
		}
	}
	return entries, nil
}

func (s *fileShelf) save(entries map[string]json.RawMessage) failure.ClassifiedError {
	content, err := json.Marshal(entries)
	if err != nil {
		return &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
			Path:      s.path,
		}
	}
	if err := os.WriteFile(s.path, content, 0644); err != nil {
		return &StorageError{
			Message:   err.Error(),
			Retryable: true,
			Cause:     ErrCauseWriteFailure,
			Path:      s.path,
		}
	}
	return nil
}

// NewMemoryShelf returns a Shelf that never touches the filesystem.
func NewMemoryShelf() Shelf {
	return &memoryShelf{entries: make(map[string]json.RawMessage)}
}

type memoryShelf struct {
	mu      sync.Mutex
	entries map[string]json.RawMessage
}

func (s *memoryShelf) Get(key string, out any) (bool, failure.ClassifiedError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.entries[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseDecodeFailure,
		}
	}
	return true, nil
}

func (s *memoryShelf) Put(key string, value any) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(value)
	if err != nil {
		return &StorageError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseEncodeFailure,
		}
	}
	s.entries[key] = raw
	return nil
}

func (s *memoryShelf) ForEach(fn func(key string, raw json.RawMessage) error) failure.ClassifiedError {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range sortedKeys(s.entries) {
		if err := fn(key, s.entries[key]); err != nil {
			return &StorageError{
				Message:   err.Error(),
				Retryable: false,
				Cause:     ErrCauseDecodeFailure,
			}
		}
	}
	return nil
}

func (s *memoryShelf) Len() (int, failure.ClassifiedError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries), nil
}

func (s *memoryShelf) Path() string {
	return ""
}

func sortedKeys(entries map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
