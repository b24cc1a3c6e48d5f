package mappings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"material-reconciler/core/reconcile"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

const (
	badgerPrefix  = "mapping/"
	badgerRetries = 3
)

// BadgerStore persists mappings in an embedded Badger database. It serves
// single-node deployments that run without SQL access to the CRM.
type BadgerStore struct {
	db  *badger.DB
	now func() time.Time
}

// OpenBadger opens (or creates) the store at path. An empty path opens an
// in-memory store.
func OpenBadger(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store at %q: %w", path, err)
	}
	return &BadgerStore{db: db, now: time.Now}, nil
}

// Close releases the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func badgerKey(name, category string) []byte {
	return []byte(badgerPrefix + name + "\x00" + category)
}

// Lookup implements reconcile.MappingStore.
func (s *BadgerStore) Lookup(ctx context.Context, key reconcile.Key) (*reconcile.MaterialMapping, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var m reconcile.MaterialMapping
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerKey(key.StoreName(), key.Category))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &m)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, reconcile.ErrMappingNotFound
		}
		return nil, fmt.Errorf("failed to look up mapping %q: %w", key.StoreName(), err)
	}
	return &m, nil
}

// Upsert implements reconcile.MappingStore. Each write is one Badger
// transaction; conflicting concurrent transactions are retried.
func (s *BadgerStore) Upsert(ctx context.Context, m reconcile.MaterialMapping) (*reconcile.MaterialMapping, error) {
	var err error
	for attempt := 0; attempt < badgerRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var stored reconcile.MaterialMapping
		err = s.db.Update(func(txn *badger.Txn) error {
			k := badgerKey(m.CalculatorName, m.CalculatorCategory)
			now := s.now()
			stored = m
			stored.CreatedAt = now
			stored.UpdatedAt = now

			item, err := txn.Get(k)
			switch {
			case err == nil:
				var prev reconcile.MaterialMapping
				if err := item.Value(func(val []byte) error { return json.Unmarshal(val, &prev) }); err != nil {
					return err
				}
				stored.CreatedAt = prev.CreatedAt
			case !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}

			val, err := json.Marshal(stored)
			if err != nil {
				return err
			}
			return txn.Set(k, val)
		})
		if err == nil {
			return &stored, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			break
		}
	}
	return nil, fmt.Errorf("failed to upsert mapping %q: %w", m.CalculatorName, err)
}

// List implements reconcile.MappingLister. Mappings are returned in key order.
func (s *BadgerStore) List(ctx context.Context) ([]reconcile.MaterialMapping, error) {
	var out []reconcile.MaterialMapping
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(badgerPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var m reconcile.MaterialMapping
			if err := it.Item().Value(func(val []byte) error { return json.Unmarshal(val, &m) }); err != nil {
				return fmt.Errorf("corrupt mapping %q: %w", strings.TrimPrefix(string(it.Item().Key()), badgerPrefix), err)
			}
			out = append(out, m)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list mappings: %w", err)
	}
	return out, nil
}
