package usage

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Quota buckets, one per demo surface.
const (
	BucketCallMe      = "callme-demo-usage"
	BucketPrivateDemo = "private-demo-usage"
)

const fileName = "usage.yaml"

// Store keeps demo start timestamps per bucket.
type Store interface {
	// Starts returns the starts still inside the window, oldest first,
	// and persists the pruned list.
	Starts(bucket string) ([]time.Time, error)
	Record(bucket string, at time.Time) error
	Reset(bucket string) error
}

type usageFile struct {
	Buckets map[string][]time.Time `yaml:"buckets"`
}

// FileStore persists usage as YAML in the user's config directory.
type FileStore struct {
	mu     sync.Mutex
	path   string
	window time.Duration
	now    func() time.Time
}

// DefaultPath returns <user config dir>/demogate/usage.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config dir: %w", err)
	}
	return filepath.Join(dir, "demogate", fileName), nil
}

// NewFileStore creates a store at path. Entries older than window are
// dropped on every read.
func NewFileStore(path string, window time.Duration) *FileStore {
	return &FileStore{path: path, window: window, now: time.Now}
}

// Path is where the store reads and writes.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Starts(bucket string) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.load()
	kept := prune(f.Buckets[bucket], s.now(), s.window)
	if len(kept) != len(f.Buckets[bucket]) {
		f.Buckets[bucket] = kept
		if err := s.save(f); err != nil {
			return nil, err
		}
	}
	return kept, nil
}

func (s *FileStore) Record(bucket string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.load()
	starts := append(prune(f.Buckets[bucket], s.now(), s.window), at.UTC())
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	f.Buckets[bucket] = starts
	return s.save(f)
}

// Reset clears one bucket, or every bucket when bucket is empty.
func (s *FileStore) Reset(bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if bucket == "" {
		return s.save(usageFile{Buckets: map[string][]time.Time{}})
	}
	f := s.load()
	delete(f.Buckets, bucket)
	return s.save(f)
}

// load never fails: a missing or unreadable file counts as no usage.
func (s *FileStore) load() usageFile {
	f := usageFile{Buckets: map[string][]time.Time{}}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("Failed to read usage file", "path", s.path, "error", err)
		}
		return f
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		slog.Warn("Ignoring malformed usage file", "path", s.path, "error", err)
		return usageFile{Buckets: map[string][]time.Time{}}
	}
	if f.Buckets == nil {
		f.Buckets = map[string][]time.Time{}
	}
	return f
}

func (s *FileStore) save(f usageFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("failed to encode usage: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create usage dir: %w", err)
	}
	// readers never see a partial file
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write usage file: %w", err)
	}
	return nil
}

// MemoryStore keeps usage in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	window  time.Duration
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(window time.Duration) *MemoryStore {
	return &MemoryStore{buckets: map[string][]time.Time{}, window: window, now: time.Now}
}

func (s *MemoryStore) Starts(bucket string) ([]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = prune(s.buckets[bucket], s.now(), s.window)
	return append([]time.Time(nil), s.buckets[bucket]...), nil
}

func (s *MemoryStore) Record(bucket string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[bucket] = append(prune(s.buckets[bucket], s.now(), s.window), at)
	return nil
}

func (s *MemoryStore) Reset(bucket string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if bucket == "" {
		s.buckets = map[string][]time.Time{}
		return nil
	}
	delete(s.buckets, bucket)
	return nil
}

// prune keeps entries with now-ts < window.
func prune(starts []time.Time, now time.Time, window time.Duration) []time.Time {
	kept := make([]time.Time, 0, len(starts))
	for _, ts := range starts {
		if now.Sub(ts) < window {
			kept = append(kept, ts)
		}
	}
	return kept
}
