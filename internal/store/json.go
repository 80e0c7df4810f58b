// Package store provides the on-disk vault.Store backends: a single JSON file
// and a LevelDB database.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/gofrs/flock"
)

// lockRetry is how often a waiting process retries the store lock.
const lockRetry = 50 * time.Millisecond

// Backend names accepted by Open.
const (
	BackendJSON    = "json"
	BackendLevelDB = "leveldb"
)

// Open returns the store for backend rooted at dir.
func Open(backend, dir string) (vault.Store, error) {
	switch backend {
	case "", BackendJSON:
		return NewJSONStore(filepath.Join(dir, "vault.json")), nil
	case BackendLevelDB:
		return OpenLevelDB(filepath.Join(dir, "vault.db"))
	}
	return nil, fmt.Errorf("unknown state backend %q", backend)
}

type jsonFile struct {
	State   *vault.State   `json:"state"`
	Journal []events.Event `json:"journal"`
}

// JSONStore keeps state and journal in one JSON file. Every commit rewrites
// the file through a temporary file and a rename. Lock takes an flock on a
// sidecar path+".lock" file, so processes sharing the file take turns.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONStore creates a JSON-backed store at path.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Lock implements vault.Store. It waits for the lock until ctx is done.
func (s *JSONStore) Lock(ctx context.Context) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}
	fl := flock.New(s.path + ".lock")
	ok, err := fl.TryLockContext(ctx, lockRetry)
	if err != nil {
		return nil, fmt.Errorf("locking %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("locking %s: held by another process", fl.Path())
	}
	return func() { _ = fl.Unlock() }, nil
}

func (s *JSONStore) read() (*jsonFile, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &jsonFile{}, nil
	}
	if err != nil {
		return nil, err
	}
	var f jsonFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	return &f, nil
}

// Load implements vault.Store.
func (s *JSONStore) Load(context.Context) (*vault.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.State, nil
}

// Commit implements vault.Store.
func (s *JSONStore) Commit(_ context.Context, st *vault.State, evs []events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return err
	}
	f.State = st
	f.Journal = append(f.Journal, evs...)

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".vault-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

// Events implements vault.Store.
func (s *JSONStore) Events(context.Context) ([]events.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.read()
	if err != nil {
		return nil, err
	}
	return f.Journal, nil
}

// Close implements vault.Store.
func (s *JSONStore) Close() error { return nil }
