package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/five82/salecheck/internal/atomicfile"
	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// FileStore persists the snapshot as JSON on disk. An advisory file lock
// serializes access between processes and writes go through a temporary file
// and rename so readers never see a partially written state.
type FileStore struct {
	path string
	lock *flock.Flock

	// mu serializes use of the lock handle within this process.
	mu sync.Mutex
	// last is the encoding most recently delivered to subscribers.
	last []byte
	hub  hub
}

// NewFileStore prepares a store backed by the file at path, creating its
// directory when needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStore{
		path: filepath.Clean(path),
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the state file location.
func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether the state file has been written before.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads the current snapshot under a shared lock.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Snapshot{}, fmt.Errorf("lock state: %w", err)
	}
	if !locked {
		return Snapshot{}, fmt.Errorf("lock state: not acquired")
	}
	defer func() { _ = s.lock.Unlock() }()

	snap, _, err := s.read()
	return snap, err
}

// Save replaces the snapshot on disk.
func (s *FileStore) Save(ctx context.Context, snap Snapshot) error {
	_, err := s.Update(ctx, func(cur *Snapshot) error {
		*cur = snap.Clone()
		return nil
	})
	return err
}

// Update performs a read-modify-write under the exclusive lock.
func (s *FileStore) Update(ctx context.Context, fn func(*Snapshot) error) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return Snapshot{}, fmt.Errorf("lock state: %w", err)
	}
	if !locked {
		return Snapshot{}, fmt.Errorf("lock state: not acquired")
	}
	defer func() { _ = s.lock.Unlock() }()

	current, _, err := s.read()
	if err != nil {
		return Snapshot{}, err
	}
	next := current.Clone()
	if err := fn(&next); err != nil {
		return current, err
	}

	data, err := json.MarshalIndent(next, "", "  ")
	if err != nil {
		return current, fmt.Errorf("encode state: %w", err)
	}
	if err := atomicfile.Write(s.path, data, 0o600); err != nil {
		return current, fmt.Errorf("write state: %w", err)
	}

	s.last = data
	s.hub.publish(next)
	return next, nil
}

// Subscribe registers for change notifications. Writes made through this
// store are always delivered; writes by other processes are delivered while
// Watch is running.
func (s *FileStore) Subscribe() (<-chan Snapshot, func()) {
	return s.hub.subscribe()
}

// Watch observes the state directory and publishes snapshots written by other
// processes. It blocks until ctx is cancelled.
func (s *FileStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create state watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// The directory is watched because atomic renames replace the file inode.
	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch state dir: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("state watcher event channel closed")
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				s.reload(ctx)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("state watcher error channel closed")
			}
			slog.Warn("State watcher error", "error", err)
		}
	}
}

func (s *FileStore) reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked, err := s.lock.TryRLockContext(ctx, lockRetryDelay)
	if err != nil || !locked {
		return
	}
	defer func() { _ = s.lock.Unlock() }()

	snap, raw, err := s.read()
	if err != nil {
		slog.Warn("Failed to reload state after external change", "path", s.path, "error", err)
		return
	}
	if raw == nil || bytes.Equal(raw, s.last) {
		return
	}
	s.last = raw
	s.hub.publish(snap)
}

// read decodes the state file. A missing file yields the zero snapshot.
func (s *FileStore) read() (Snapshot, []byte, error) {
	// #nosec G304 -- path comes from configuration
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Snapshot{}, nil, nil
		}
		return Snapshot{}, nil, fmt.Errorf("read state: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, nil, fmt.Errorf("decode state %s: %w", s.path, err)
	}
	return snap, data, nil
}
