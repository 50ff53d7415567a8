// Package badger persists vector store snapshots in an embedded Badger
// database: one durable blob per deployment under a fixed key.
package badger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/phuslu/log"

	"aigist/internal/vectorstore"
)

var snapshotKey = []byte("aigist/vectorstore/snapshot")

// Snapshotter implements vectorstore.Snapshotter over a Badger database.
type Snapshotter struct {
	db     *badger.DB
	logger log.Logger
}

// Open opens (or creates) the Badger database at path.
func Open(path string, logger log.Logger) (*Snapshotter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	opts := badger.DefaultOptions(path)
	opts.Logger = nil // badger's own logger is too chatty, events go through ours

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database at %s: %w", path, err)
	}
	logger.Debug().Str("path", path).Msg("badger snapshot store opened")
	return &Snapshotter{db: db, logger: logger}, nil
}

func (s *Snapshotter) Load() ([]byte, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, vectorstore.ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

func (s *Snapshotter) Save(data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	})
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	s.logger.Debug().Int("bytes", len(data)).Msg("vector store snapshot written")
	return nil
}

func (s *Snapshotter) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
