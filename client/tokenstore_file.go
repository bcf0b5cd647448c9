package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// FileTokenStore keeps the session in a 0600 JSON file. Concurrent processes
// (two CLI invocations, the CLI and the MCP server) serialize on a sibling
// ".lock" file.
type FileTokenStore struct {
	path string
	lock *flock.Flock
}

// NewFileTokenStore returns a store that reads and writes path.
func NewFileTokenStore(path string) *FileTokenStore {
	return &FileTokenStore{path: path, lock: flock.New(path + ".lock")}
}

// DefaultSessionPath is the session file shared by the CLI and the MCP
// server: $WELLBEING_SESSION_FILE, else <user config dir>/wellbeing/session.json.
func DefaultSessionPath() (string, error) {
	if p := os.Getenv("WELLBEING_SESSION_FILE"); p != "" {
		return p, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "wellbeing", "session.json"), nil
}

// Path is the session file location.
func (f *FileTokenStore) Path() string { return f.path }

func (f *FileTokenStore) Load(ctx context.Context) (SessionState, error) {
	if _, err := os.Stat(f.path); errors.Is(err, os.ErrNotExist) {
		return SessionState{}, ErrNoSession
	}
	unlock, err := f.acquire(ctx, false)
	if err != nil {
		return SessionState{}, err
	}
	defer unlock()

	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return SessionState{}, ErrNoSession
	}
	if err != nil {
		return SessionState{}, fmt.Errorf("read session file: %w", err)
	}
	var st SessionState
	if err := json.Unmarshal(b, &st); err != nil {
		return SessionState{}, fmt.Errorf("decode session file %s: %w", f.path, err)
	}
	if st.AccessToken == "" {
		return SessionState{}, ErrNoSession
	}
	return st, nil
}

func (f *FileTokenStore) Save(ctx context.Context, st SessionState) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	unlock, err := f.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (f *FileTokenStore) Clear(ctx context.Context) error {
	if _, err := os.Stat(filepath.Dir(f.path)); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	unlock, err := f.acquire(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

func (f *FileTokenStore) acquire(ctx context.Context, exclusive bool) (func(), error) {
	var (
		ok  bool
		err error
	)
	if exclusive {
		ok, err = f.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		ok, err = f.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("lock session file: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("lock session file: not acquired")
	}
	return func() { _ = f.lock.Unlock() }, nil
}
