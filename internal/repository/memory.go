package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/Werneck0live/personal-controller/internal/models"
)

type memCollection struct {
	order []string // ordem de inserção
	docs  map[string][]byte
	keys  map[string]string // valor da chave única -> id
}

// MemoryStore keeps everything in process. Records are stored as JSON so
// callers never share memory with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	dim     int
	colls   map[string]*memCollection
	vectors map[string]IndexEntry
	vorder  []string
}

func NewMemoryStore(dim int) *MemoryStore {
	return &MemoryStore{
		dim:     dim,
		colls:   make(map[string]*memCollection),
		vectors: make(map[string]IndexEntry),
	}
}

func (s *MemoryStore) coll(name string) *memCollection {
	c, ok := s.colls[name]
	if !ok {
		c = &memCollection{docs: make(map[string][]byte), keys: make(map[string]string)}
		s.colls[name] = c
	}
	return c
}

func (s *MemoryStore) Insert(_ context.Context, rec models.Record) error {
	if err := prepare(rec); err != nil {
		return err
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(rec.Collection())
	if _, exists := c.docs[rec.GetID()]; exists {
		return fmt.Errorf("%w: id %s", ErrDuplicate, rec.GetID())
	}
	field, value, keyed := uniqueKey(rec)
	if keyed {
		if _, taken := c.keys[value]; taken {
			return fmt.Errorf("%w: %s=%s", ErrDuplicate, field, value)
		}
		c.keys[value] = rec.GetID()
	}
	c.docs[rec.GetID()] = b
	c.order = append(c.order, rec.GetID())
	return nil
}

func (s *MemoryStore) Get(_ context.Context, collection, id string, dst any) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.colls[collection]
	if !ok {
		if err := checkCollection(collection); err != nil {
			return err
		}
		return ErrNotFound
	}
	b, ok := c.docs[id]
	if !ok {
		return ErrNotFound
	}
	return json.Unmarshal(b, dst)
}

func (s *MemoryStore) List(_ context.Context, collection string, limit, skip int64, dst any) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	s.mu.RLock()
	var docs [][]byte
	if c, ok := s.colls[collection]; ok {
		from, to := window(len(c.order), limit, skip)
		docs = make([][]byte, 0, to-from)
		for i := from; i < to; i++ {
			docs = append(docs, c.docs[c.order[len(c.order)-1-i]])
		}
	}
	s.mu.RUnlock()
	return decodeList(docs, dst)
}

func (s *MemoryStore) Replace(_ context.Context, rec models.Record) error {
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

	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.coll(rec.Collection())
	if _, ok := c.docs[rec.GetID()]; !ok {
		return ErrNotFound
	}
	field, value, keyed := uniqueKey(rec)
	if keyed {
		if owner, taken := c.keys[value]; taken && owner != rec.GetID() {
			return fmt.Errorf("%w: %s=%s", ErrDuplicate, field, value)
		}
	}
	c.dropKey(rec.GetID())
	if keyed {
		c.keys[value] = rec.GetID()
	}
	c.docs[rec.GetID()] = b
	return nil
}

func (c *memCollection) dropKey(id string) {
	for v, owner := range c.keys {
		if owner == id {
			delete(c.keys, v)
		}
	}
}

func (s *MemoryStore) Delete(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.colls[collection]
	if !ok {
		return ErrNotFound
	}
	if _, ok := c.docs[id]; !ok {
		return ErrNotFound
	}
	delete(c.docs, id)
	c.dropKey(id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	// vetores do registro saem junto
	s.dropVectors(collection, id)
	return nil
}

func (s *MemoryStore) dropVectors(collection, id string) {
	kept := s.vorder[:0]
	for _, vid := range s.vorder {
		e := s.vectors[vid]
		if e.Collection == collection && e.RecordID == id {
			delete(s.vectors, vid)
			continue
		}
		kept = append(kept, vid)
	}
	s.vorder = kept
}

func (s *MemoryStore) Unindex(_ context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropVectors(collection, id)
	return nil
}

func (s *MemoryStore) Count(_ context.Context, collection string) (int64, error) {
	if err := checkCollection(collection); err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.colls[collection]; ok {
		return int64(len(c.docs)), nil
	}
	return 0, nil
}

func (s *MemoryStore) Index(_ context.Context, e IndexEntry) error {
	if err := checkEntry(e, s.dim); err != nil {
		return err
	}
	e.Vector = append([]float32(nil), e.Vector...)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.vectors[e.ID]; !exists {
		s.vorder = append(s.vorder, e.ID)
	}
	s.vectors[e.ID] = e
	return nil
}

func (s *MemoryStore) Search(_ context.Context, vector []float32, topK int) ([]Match, error) {
	if len(vector) != s.dim {
		return nil, fmt.Errorf("%w: query has %d, index is %d", ErrDimensionMismatch, len(vector), s.dim)
	}
	s.mu.RLock()
	entries := make([]IndexEntry, 0, len(s.vorder))
	for _, id := range s.vorder {
		entries = append(entries, s.vectors[id])
	}
	s.mu.RUnlock()
	return rank(vector, entries, topK)
}

func (s *MemoryStore) Close(context.Context) error { return nil }

var _ Store = (*MemoryStore)(nil)
