package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Werneck0live/personal-controller/internal/broker"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
)

// Indexer is satisfied by *rag.Indexer.
type Indexer interface {
	IndexRecord(ctx context.Context, rec models.Embeddable) (int, error)
	Reindex(ctx context.Context) (int, error)
}

// IndexEnsurer is implemented by stores that keep server side indexes.
type IndexEnsurer interface {
	EnsureIndexes(ctx context.Context) error
}

// Init prepares a store: indexes when the backend has them, then the seed.
// New companies are indexed right away.
func Init(ctx context.Context, store repository.Store, ix Indexer, log *slog.Logger) (*SeedResult, error) {
	if log == nil {
		log = slog.Default()
	}
	if e, ok := store.(IndexEnsurer); ok {
		if err := e.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("ensure indexes: %w", err)
		}
		log.Info("indexes_ensured")
	}
	res, err := SeedCompanies(ctx, store, log)
	if err != nil {
		return res, err
	}
	if ix == nil {
		return res, nil
	}
	for _, c := range res.Created {
		if _, err := ix.IndexRecord(ctx, c); err != nil {
			return res, err
		}
	}
	return res, nil
}

// Reindex rebuilds the vector index from the stored records and, when
// pub is set, announces it.
func Reindex(ctx context.Context, ix Indexer, pub broker.EventPublisher, log *slog.Logger) (int, error) {
	if log == nil {
		log = slog.Default()
	}
	n, err := ix.Reindex(ctx)
	if err != nil {
		log.Error("reindex_failed", "indexed", n, "err", err)
		return n, err
	}
	if pub != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := pub.PublishEvent(pctx, broker.IndexEvent(n)); err != nil {
			log.Warn("publish_event_error", "type", broker.TypeIndex, "err", err)
		}
	}
	return n, nil
}
