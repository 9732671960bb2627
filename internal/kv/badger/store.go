package badger

import (
	"context"
	"errors"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"

	"github.com/kailas-cloud/pixdex/internal/kv"
)

// Compile-time check: Store implements kv.Store.
var _ kv.Store = (*Store)(nil)

// Config holds settings for the embedded badger store.
type Config struct {
	// Dir is the directory for badger data files. Required unless InMemory is set.
	Dir string
	// InMemory runs badger without disk persistence. Useful for tests.
	InMemory bool
}

// Store implements kv.Store on an embedded badger database.
type Store struct {
	db *badgerdb.DB
}

// NewStore opens (or creates) a badger-backed store.
func NewStore(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Dir == "" {
		return nil, errors.New("dir is required for on-disk mode")
	}

	opts := badgerdb.DefaultOptions(cfg.Dir).WithLogger(nopLogger{})
	if cfg.InMemory {
		opts = opts.WithInMemory(true)
	}

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, &kv.Error{Op: "OPEN", Err: err}
	}
	return &Store{db: db}, nil
}

// Ping reports whether the database is open.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return &kv.Error{Op: kv.OpPing, Err: errors.New("database closed")}
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

// WaitForReady is a no-op: an embedded store is ready once opened.
func (s *Store) WaitForReady(_ context.Context, _ time.Duration) error {
	return nil
}

// Get retrieves a value by key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var val []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, kv.ErrKeyNotFound
	}
	if err != nil {
		return nil, &kv.Error{Op: kv.OpGet, Err: err}
	}
	return val, nil
}

// Set stores a value at the given key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set([]byte(key), value)
	})
	if err != nil {
		return &kv.Error{Op: kv.OpSet, Err: err}
	}
	return nil
}

// SetWithTTL stores a value with an expiration.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.db.Update(func(txn *badgerdb.Txn) error {
		entry := badgerdb.NewEntry([]byte(key), value).WithTTL(ttl)
		return txn.SetEntry(entry)
	})
	if err != nil {
		return &kv.Error{Op: kv.OpSet, Err: err}
	}
	return nil
}

// nopLogger silences badger's own logging; pixdex logs through zap.
type nopLogger struct{}

func (nopLogger) Errorf(string, ...interface{})   {}
func (nopLogger) Warningf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})    {}
func (nopLogger) Debugf(string, ...interface{})   {}
