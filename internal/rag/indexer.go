package rag

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Werneck0live/personal-controller/internal/embedding"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
)

const (
	DefaultChunkSize = 200
	DefaultOverlap   = 20
)

// Indexer embeds records into the store's vector index.
type Indexer struct {
	store     repository.Store
	embedder  embedding.Embedder
	chunkSize int
	overlap   int
	log       *slog.Logger
}

func NewIndexer(store repository.Store, emb embedding.Embedder, log *slog.Logger) *Indexer {
	if log == nil {
		log = slog.Default()
	}
	return &Indexer{
		store:     store,
		embedder:  emb,
		chunkSize: DefaultChunkSize,
		overlap:   DefaultOverlap,
		log:       log.With("cmp", "indexer"),
	}
}

// WithChunking changes the chunk window. Invalid values are rejected.
func (ix *Indexer) WithChunking(size, overlap int) (*Indexer, error) {
	if _, err := ChunkText("", size, overlap); err != nil {
		return nil, err
	}
	cp := *ix
	cp.chunkSize, cp.overlap = size, overlap
	return &cp, nil
}

func entryID(coll, id string, chunk int) string {
	return fmt.Sprintf("%s/%s#%d", coll, id, chunk)
}

// IndexRecord replaces the record's vectors with one per chunk of its
// current text and returns how many were written.
func (ix *Indexer) IndexRecord(ctx context.Context, rec models.Embeddable) (int, error) {
	chunks, err := ChunkText(embedding.Preprocess(rec.EmbeddingText()), ix.chunkSize, ix.overlap)
	if err != nil {
		return 0, err
	}
	if err := ix.store.Unindex(ctx, rec.Collection(), rec.GetID()); err != nil {
		return 0, fmt.Errorf("unindex %s/%s: %w", rec.Collection(), rec.GetID(), err)
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	vecs, err := ix.embedder.GenerateBatch(ctx, chunks)
	if err != nil {
		return 0, fmt.Errorf("embed %s/%s: %w", rec.Collection(), rec.GetID(), err)
	}
	for i, c := range chunks {
		e := repository.IndexEntry{
			ID:         entryID(rec.Collection(), rec.GetID(), i),
			Collection: rec.Collection(),
			RecordID:   rec.GetID(),
			Chunk:      i,
			Text:       c,
			Vector:     vecs[i],
		}
		if err := ix.store.Index(ctx, e); err != nil {
			return i, err
		}
	}
	return len(chunks), nil
}

// Reindex rebuilds the vectors of every indexable collection.
func (ix *Indexer) Reindex(ctx context.Context) (int, error) {
	total := 0
	for _, coll := range models.Collections {
		recs, err := loadEmbeddable(ctx, ix.store, coll)
		if err != nil {
			return total, fmt.Errorf("load %s: %w", coll, err)
		}
		for _, r := range recs {
			if _, err := ix.IndexRecord(ctx, r); err != nil {
				return total, err
			}
			total++
		}
		if len(recs) > 0 {
			ix.log.Info("reindex_collection", "collection", coll, "records", len(recs))
		}
	}
	ix.log.Info("reindex_done", "records", total)
	return total, nil
}

func loadEmbeddable(ctx context.Context, s repository.Store, coll string) ([]models.Embeddable, error) {
	switch coll {
	case models.CollectionFreightOrders:
		return embeddables[models.FreightOrder](ctx, s, coll)
	case models.CollectionCompanies:
		return embeddables[models.Company](ctx, s, coll)
	case models.CollectionTimesheets:
		return embeddables[models.Timesheet](ctx, s, coll)
	case models.CollectionRoutes:
		return embeddables[models.Route](ctx, s, coll)
	case models.CollectionManifests:
		return embeddables[models.Manifest](ctx, s, coll)
	case models.CollectionDocuments:
		return embeddables[models.FileDocument](ctx, s, coll)
	}
	return nil, nil
}

func embeddables[T any, PT interface {
	*T
	models.Embeddable
}](ctx context.Context, s repository.Store, coll string) ([]models.Embeddable, error) {
	items, err := repository.ListAll[T](ctx, s, coll)
	if err != nil {
		return nil, err
	}
	out := make([]models.Embeddable, len(items))
	for i := range items {
		out[i] = PT(&items[i])
	}
	return out, nil
}
