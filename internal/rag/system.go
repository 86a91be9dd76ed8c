// Package rag ranks stored records against a query and renders them into
// a prompt.
package rag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Werneck0live/personal-controller/internal/embedding"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
)

type System struct {
	store    repository.Store
	embedder embedding.Embedder
	log      *slog.Logger
}

func NewSystem(store repository.Store, emb embedding.Embedder, log *slog.Logger) *System {
	if log == nil {
		log = slog.Default()
	}
	return &System{store: store, embedder: emb, log: log.With("cmp", "rag")}
}

// RetrieveContext returns at most topK documents, best first. An empty
// index gives an empty slice and no error.
func (s *System) RetrieveContext(ctx context.Context, query string, topK int) ([]Document, error) {
	docs := []Document{}
	query = embedding.Preprocess(query)
	if query == "" || topK <= 0 {
		return docs, nil
	}

	vec, err := s.embedder.Generate(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	matches, err := s.store.Search(ctx, vec, topK)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	for _, m := range matches {
		rec := models.New(m.Collection)
		if rec == nil {
			continue
		}
		if err := s.store.Get(ctx, m.Collection, m.RecordID, rec); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				s.log.Debug("rag_stale_entry", "collection", m.Collection, "record_id", m.RecordID)
				continue
			}
			return nil, err
		}
		if d, ok := FromRecord(rec, m.Score); ok {
			docs = append(docs, d)
		}
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if len(docs) > topK {
		docs = docs[:topK]
	}

	s.log.Info("rag_retrieve", "query_len", len(query), "matches", len(matches), "documents", len(docs))
	return docs, nil
}

// Sources lists the citation labels of docs in order.
func Sources(docs []Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Source.Label()
	}
	return out
}
