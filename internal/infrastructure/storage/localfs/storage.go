package localfs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

const (
	lockPollInterval = 5 * time.Millisecond
	lockTimeout      = 5 * time.Second
	staleLockAge     = 30 * time.Second
)

// Storage keeps each key in its own "<key>.json" file under basePath.
// Writes go through a temp file and a rename so readers never see a partial value.
// Compare-and-swap holds "<key>.lock" so processes sharing basePath do not
// overwrite each other.
type Storage struct {
	basePath string
	mu       sync.Mutex
	now      func() time.Time
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: basePath, now: time.Now}, nil
}

func (s *Storage) Get(_ context.Context, key string) ([]byte, bool, error) {
	path, err := s.path(key)
	if err != nil {
		return nil, false, err
	}
	return readValue(path)
}

func (s *Storage) CompareAndSwap(ctx context.Context, key string, old []byte, oldOK bool, value []byte) (bool, error) {
	path, err := s.path(key)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx, path+".lock")
	if err != nil {
		return false, err
	}
	defer unlock()

	current, ok, err := readValue(path)
	if err != nil {
		return false, err
	}
	if ok != oldOK || !bytes.Equal(current, old) {
		return false, nil
	}
	if err := s.write(key, path, value); err != nil {
		return false, err
	}
	return true, nil
}

// lock creates the lock file exclusively, waiting for the holder to release
// it. A lock older than staleLockAge is left over from a crashed process and
// is removed.
func (s *Storage) lock(ctx context.Context, lockPath string) (func(), error) {
	deadline := s.now().Add(lockTimeout)
	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = f.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil && s.now().Sub(info.ModTime()) > staleLockAge {
			_ = os.Remove(lockPath)
			continue
		}
		if s.now().After(deadline) {
			return nil, fmt.Errorf("acquire lock %s: timed out after %s", filepath.Base(lockPath), lockTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", filepath.Base(lockPath), ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

func (s *Storage) write(key, path string, value []byte) error {
	tmp, err := os.CreateTemp(s.basePath, "."+key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace file: %w", err)
	}
	return nil
}

func (s *Storage) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return "", fmt.Errorf("invalid storage key %q", key)
	}
	return filepath.Join(s.basePath, key+".json"), nil
}

func readValue(path string) ([]byte, bool, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	return raw, true, nil
}
