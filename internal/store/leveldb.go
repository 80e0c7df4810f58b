package store

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/Mohsinsiddi/w3vault/internal/events"
	"github.com/Mohsinsiddi/w3vault/internal/vault"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
	"github.com/syndtr/goleveldb/leveldb/util"
)

var (
	stateKey    = []byte("state")
	eventPrefix = []byte("ev-") // ev- + uint64 big endian seq
)

func eventKey(seq uint64) []byte {
	key := make([]byte, len(eventPrefix)+8)
	copy(key, eventPrefix)
	binary.BigEndian.PutUint64(key[len(eventPrefix):], seq)
	return key
}

// LevelDBStore keeps the state under one key and each event under its
// sequence number. A commit is a single write batch. The database's own file
// lock keeps other processes out while it is open; Lock only orders the
// vaults of this process.
type LevelDBStore struct {
	mu sync.Mutex
	db *leveldb.DB
}

// OpenLevelDB opens or creates the database at path.
func OpenLevelDB(path string) (*LevelDBStore, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return &LevelDBStore{db: db}, nil
}

// NewMemLevelDB returns a LevelDB store backed by memory.
func NewMemLevelDB() (*LevelDBStore, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, err
	}
	return &LevelDBStore{db: db}, nil
}

// Lock implements vault.Store.
func (s *LevelDBStore) Lock(context.Context) (func(), error) {
	s.mu.Lock()
	return s.mu.Unlock, nil
}

// Load implements vault.Store.
func (s *LevelDBStore) Load(context.Context) (*vault.State, error) {
	data, err := s.db.Get(stateKey, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var st vault.State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decoding state: %w", err)
	}
	return &st, nil
}

// Commit implements vault.Store.
func (s *LevelDBStore) Commit(_ context.Context, st *vault.State, evs []events.Event) error {
	batch := new(leveldb.Batch)
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	batch.Put(stateKey, data)
	for _, ev := range evs {
		enc, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		batch.Put(eventKey(ev.Seq), enc)
	}
	return s.db.Write(batch, nil)
}

// Events implements vault.Store.
func (s *LevelDBStore) Events(context.Context) ([]events.Event, error) {
	it := s.db.NewIterator(util.BytesPrefix(eventPrefix), nil)
	defer it.Release()

	var out []events.Event
	for it.Next() {
		var ev events.Event
		if err := json.Unmarshal(it.Value(), &ev); err != nil {
			return nil, fmt.Errorf("decoding event %x: %w", it.Key(), err)
		}
		out = append(out, ev)
	}
	return out, it.Error()
}

// Close implements vault.Store.
func (s *LevelDBStore) Close() error { return s.db.Close() }
