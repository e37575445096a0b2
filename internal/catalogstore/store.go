// Package catalogstore provides a catalog.Store backed by an embedded
// BadgerDB database, so that a catalog snapshot can be imported once and
// reused across planning runs.
//
// Keys:
//
//	obj/<collection>/<parent>/<id>    msgpack-encoded record
//	name/<collection>/<parent>/<name> canonical id
//
// Identifiers are canonicalised (upper case, no braces) before they become
// part of a key.
package catalogstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/vk/catalogplan/internal/catalog"
	"github.com/vmihailenco/msgpack/v5"
)

// Config holds configuration for the store's database.
type Config struct {
	// Path is the directory for database files. Ignored when InMemory is set.
	Path string

	// InMemory enables in-memory mode, for tests.
	InMemory bool

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool

	// Logger receives BadgerDB's internal log output. Nil disables it.
	Logger *slog.Logger
}

// DefaultConfig returns the configuration for a persistent store at path.
func DefaultConfig(path string) Config {
	return Config{Path: path, SyncWrites: true}
}

// InMemoryConfig returns configuration for a throwaway store.
func InMemoryConfig() Config {
	return Config{InMemory: true}
}

// badgerLogger adapts slog.Logger to BadgerDB's Logger interface.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// record is the stored value of an object key.
type record struct {
	Collection string `msgpack:"c"`
	Parent     string `msgpack:"p"`
	ID         string `msgpack:"i"`
	Name       string `msgpack:"n"`
}

// Store is a catalog.Store on top of BadgerDB.
type Store struct {
	db *badger.DB
}

var _ catalog.Store = (*Store)(nil)

// Open opens the store described by cfg. The caller must Close it.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent catalog store")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create catalog store directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open catalog store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func canonical(id string) string {
	return strings.ToUpper(strings.Trim(id, "{}"))
}

func scope(c catalog.Container) string {
	parent := canonical(c.Parent)
	if parent == "" {
		parent = "-"
	}
	return c.Collection + "/" + parent + "/"
}

func objectKey(c catalog.Container, id string) []byte {
	return []byte("obj/" + scope(c) + canonical(id))
}

func nameKey(c catalog.Container, name string) []byte {
	return []byte("name/" + scope(c) + name)
}

// Put implements catalog.Store. An existing object with the same identifier
// is replaced and its old name index dropped.
func (s *Store) Put(_ context.Context, e catalog.Entry) error {
	if !catalog.Valid(e.Collection) {
		return fmt.Errorf("%w '%s'", catalog.ErrUnknownCollection, e.Collection)
	}
	c := e.Container()
	value, err := msgpack.Marshal(record{Collection: e.Collection, Parent: e.Parent, ID: e.ID, Name: e.Name})
	if err != nil {
		return fmt.Errorf("encode catalog entry: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		old, found, err := get(txn, objectKey(c, e.ID))
		if err != nil {
			return err
		}
		if found && old.Name != e.Name {
			if err := txn.Delete(nameKey(c, old.Name)); err != nil {
				return err
			}
		}
		if err := txn.Set(objectKey(c, e.ID), value); err != nil {
			return err
		}
		return txn.Set(nameKey(c, e.Name), []byte(canonical(e.ID)))
	})
}

func get(txn *badger.Txn, key []byte) (record, bool, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return record{}, false, nil
	}
	if err != nil {
		return record{}, false, err
	}
	var rec record
	err = item.Value(func(val []byte) error {
		return msgpack.Unmarshal(val, &rec)
	})
	if err != nil {
		return record{}, false, fmt.Errorf("decode catalog entry %s: %w", key, err)
	}
	return rec, true, nil
}

// Find implements catalog.Catalog.
func (s *Store) Find(_ context.Context, c catalog.Container, id, name string) (catalog.Object, bool, error) {
	if id == "" && name == "" {
		return catalog.Object{}, false, nil
	}

	var rec record
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		lookup := id
		if lookup == "" {
			item, err := txn.Get(nameKey(c, name))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			raw, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			lookup = string(raw)
		}
		var err error
		rec, found, err = get(txn, objectKey(c, lookup))
		return err
	})
	if err != nil {
		return catalog.Object{}, false, fmt.Errorf("catalog lookup in %s: %w", c, err)
	}
	if !found {
		return catalog.Object{}, false, nil
	}
	return catalog.Object{ID: rec.ID, Name: rec.Name}, true, nil
}

// NewID implements catalog.Catalog.
func (s *Store) NewID() string { return catalog.NewGUID() }

// Entries returns every stored object, ordered by collection, parent and
// identifier.
func (s *Store) Entries(_ context.Context) ([]catalog.Entry, error) {
	var out []catalog.Entry
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte("obj/")
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var rec record
			if err := it.Item().Value(func(val []byte) error {
				return msgpack.Unmarshal(val, &rec)
			}); err != nil {
				return fmt.Errorf("decode catalog entry %s: %w", it.Item().Key(), err)
			}
			out = append(out, catalog.Entry{
				Collection: rec.Collection, Parent: rec.Parent, ID: rec.ID, Name: rec.Name,
			})
		}
		return nil
	})
	return out, err
}
