package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/Werneck0live/personal-controller/internal/models"
)

// Key layout:
//
//	rec/<collection>/<id>      record JSON
//	uniq/<collection>/<value>  id owning the unique key
//	vec/<entry id>             IndexEntry JSON
const (
	recPrefix  = "rec/"
	uniqPrefix = "uniq/"
	vecPrefix  = "vec/"
)

func recKey(coll, id string) []byte     { return []byte(recPrefix + coll + "/" + id) }
func uniqKey(coll, value string) []byte { return []byte(uniqPrefix + coll + "/" + value) }
func vecKey(id string) []byte           { return []byte(vecPrefix + id) }

type badgerLogger struct {
	log *slog.Logger
}

var _ badger.Logger = (*badgerLogger)(nil)

func (l *badgerLogger) Errorf(msg string, items ...any) { l.log.Error(fmt.Sprintf(msg, items...)) }
func (l *badgerLogger) Warningf(msg string, items ...any) {
	l.log.Warn(fmt.Sprintf(msg, items...))
}
func (l *badgerLogger) Infof(msg string, items ...any)  { l.log.Info(fmt.Sprintf(msg, items...)) }
func (l *badgerLogger) Debugf(msg string, items ...any) { l.log.Debug(fmt.Sprintf(msg, items...)) }

// BadgerStore is the embedded single-node store. It is the CLI default.
// Records are JSON; ids are UUID v7, so key order is creation order.
type BadgerStore struct {
	db  *badger.DB
	dim int
}

// OpenBadger opens (or creates) the database at path. An empty path opens
// an in-memory database.
func OpenBadger(path string, dim int) (*BadgerStore, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = &badgerLogger{log: slog.Default().With("cmp", "badger")}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db, dim: dim}, nil
}

func (s *BadgerStore) Insert(_ context.Context, rec models.Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	coll, id := rec.Collection(), rec.GetID()
	return s.db.Update(func(tx *badger.Txn) error {
		if _, err := tx.Get(recKey(coll, id)); err == nil {
			return fmt.Errorf("%w: id %s", ErrDuplicate, id)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if field, value, keyed := uniqueKey(rec); keyed {
			if err := claimKey(tx, coll, field, value, id); err != nil {
				return err
			}
		}
		return tx.Set(recKey(coll, id), b)
	})
}

// claimKey registers value for id, failing if another record owns it.
func claimKey(tx *badger.Txn, coll, field, value, id string) error {
	item, err := tx.Get(uniqKey(coll, value))
	switch {
	case err == nil:
		owner, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if string(owner) != id {
			return fmt.Errorf("%w: %s=%s", ErrDuplicate, field, value)
		}
		return nil
	case errors.Is(err, badger.ErrKeyNotFound):
		return tx.Set(uniqKey(coll, value), []byte(id))
	default:
		return err
	}
}

func (s *BadgerStore) Get(_ context.Context, collection, id string, dst any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	return s.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get(recKey(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error { return json.Unmarshal(v, dst) })
	})
}

func (s *BadgerStore) List(_ context.Context, collection string, limit, skip int64, dst any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	prefix := []byte(recPrefix + collection + "/")
	docs := [][]byte{}
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Reverse = true
		opts.Prefix = prefix
		it := tx.NewIterator(opts)
		defer it.Close()

		var n int64
		for it.Seek(append(append([]byte{}, prefix...), 0xFF)); it.ValidForPrefix(prefix); it.Next() {
			if n++; n <= skip {
				continue
			}
			v, err := it.Item().ValueCopy(nil)
			if err != nil {
				return err
			}
			docs = append(docs, v)
			if limit > 0 && int64(len(docs)) >= limit {
				break
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	return decodeList(docs, dst)
}

func (s *BadgerStore) Replace(_ context.Context, rec models.Record) error {
	if rec.GetID() == "" {
		return ErrNotFound
	}
	if err := prepare(rec); err != nil {
		return err
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	coll, id := rec.Collection(), rec.GetID()
	return s.db.Update(func(tx *badger.Txn) error {
		item, err := tx.Get(recKey(coll, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		field, value, keyed := uniqueKey(rec)
		if keyed {
			if err := claimKey(tx, coll, field, value, id); err != nil {
				return err
			}
		}
		// libera a chave antiga se mudou
		if err := item.Value(func(old []byte) error {
			return releaseOldKey(tx, coll, old, value)
		}); err != nil {
			return err
		}
		return tx.Set(recKey(coll, id), b)
	})
}

func releaseOldKey(tx *badger.Txn, coll string, old []byte, keep string) error {
	prev := models.New(coll)
	if err := json.Unmarshal(old, prev); err != nil {
		return err
	}
	if _, value, keyed := uniqueKey(prev); keyed && value != keep {
		return tx.Delete(uniqKey(coll, value))
	}
	return nil
}

func (s *BadgerStore) Delete(_ context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	return s.db.Update(func(tx *badger.Txn) error {
		item, err := tx.Get(recKey(collection, id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := item.Value(func(old []byte) error {
			return releaseOldKey(tx, collection, old, "")
		}); err != nil {
			return err
		}
		if err := tx.Delete(recKey(collection, id)); err != nil {
			return err
		}
		return deleteVectors(tx, collection, id)
	})
}

func deleteVectors(tx *badger.Txn, collection, recordID string) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(vecPrefix)
	it := tx.NewIterator(opts)
	var stale [][]byte
	for it.Rewind(); it.Valid(); it.Next() {
		var e IndexEntry
		if err := it.Item().Value(func(v []byte) error { return json.Unmarshal(v, &e) }); err != nil {
			it.Close()
			return err
		}
		if e.Collection == collection && e.RecordID == recordID {
			stale = append(stale, it.Item().KeyCopy(nil))
		}
	}
	it.Close()
	for _, k := range stale {
		if err := tx.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (s *BadgerStore) Count(_ context.Context, collection string) (int64, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	var n int64
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(recPrefix + collection + "/")
		it := tx.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

func (s *BadgerStore) Index(_ context.Context, e IndexEntry) error {
	if err := checkEntry(e, s.dim); err != nil {
		return err
	}
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *badger.Txn) error {
		return tx.Set(vecKey(e.ID), b)
	})
}

func (s *BadgerStore) Unindex(_ context.Context, collection, id string) error {
	return s.db.Update(func(tx *badger.Txn) error {
		return deleteVectors(tx, collection, id)
	})
}

func (s *BadgerStore) Search(_ context.Context, vector []float32, topK int) ([]Match, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, index is %d", ErrDimensionMismatch, len(vector), s.dim)
	}
	var entries []IndexEntry
	err := s.db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vecPrefix)
		it := tx.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			var e IndexEntry
			if err := it.Item().Value(func(v []byte) error { return json.Unmarshal(v, &e) }); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rank(vector, entries, topK)
}

func (s *BadgerStore) Close(context.Context) error {
	return s.db.Close()
}

var _ Store = (*BadgerStore)(nil)
