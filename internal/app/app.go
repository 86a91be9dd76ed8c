// Package app wires configuration into the running components shared by
// the api server and the pc command.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Werneck0live/personal-controller/internal/broker"
	"github.com/Werneck0live/personal-controller/internal/chat"
	"github.com/Werneck0live/personal-controller/internal/config"
	"github.com/Werneck0live/personal-controller/internal/db"
	"github.com/Werneck0live/personal-controller/internal/embedding"
	"github.com/Werneck0live/personal-controller/internal/importer"
	"github.com/Werneck0live/personal-controller/internal/ingest"
	"github.com/Werneck0live/personal-controller/internal/rag"
	"github.com/Werneck0live/personal-controller/internal/repository"
)

var ErrConfig = errors.New("invalid configuration")

type App struct {
	Config    *config.Config
	Store     repository.Store
	Embedder  embedding.Embedder
	Indexer   *rag.Indexer
	RAG       *rag.System
	Assistant *chat.Assistant
	Sessions  *chat.Sessions
	Ingest    *ingest.Service
	// Pub é nil quando EVENTS_ENABLED=false.
	Pub broker.EventPublisher
	Log *slog.Logger
}

// New opens the store and the optional publisher and builds the rest on
// top of them. Close releases both.
func New(cfg *config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}
	emb, err := NewEmbedder(cfg.LLM)
	if err != nil {
		return nil, err
	}
	layout := importer.DefaultLayout()
	if cfg.ImportLayoutFile != "" {
		if layout, err = importer.LoadLayout(cfg.ImportLayoutFile); err != nil {
			return nil, err
		}
	}

	store, err := OpenStore(cfg, emb.Dimension())
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Store: store, Embedder: emb, Log: log}
	if cfg.EventsEnabled {
		pub, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
		if err != nil {
			_ = store.Close(context.Background())
			return nil, fmt.Errorf("rabbitmq connect: %w", err)
		}
		a.Pub = pub
	}

	a.Indexer = rag.NewIndexer(store, emb, log)
	a.RAG = rag.NewSystem(store, emb, log)
	a.Assistant = chat.NewAssistant(ChatConfig(cfg.LLM), a.RAG, nil, log)
	a.Sessions = chat.NewSessions(cfg.LLM.MaxHistory, a.Assistant.Initialize,
		chat.WithLimits(cfg.LLM.MaxSessions, cfg.LLM.SessionTTL))
	opts := []ingest.Option{
		ingest.WithLayout(layout),
		ingest.WithWorkers(cfg.ImportWorkers),
		ingest.WithLogger(log),
	}
	if a.Pub != nil {
		opts = append(opts, ingest.WithPublisher(a.Pub))
	}
	a.Ingest = ingest.NewService(store, a.Indexer, opts...)

	log.Info("app_ready",
		"storage", cfg.StorageDriver,
		"embedding", emb.Model(),
		"dimension", emb.Dimension(),
		"events", a.Pub != nil,
	)
	return a, nil
}

// OpenStore picks the backend named by STORAGE_DRIVER.
func OpenStore(cfg *config.Config, dim int) (repository.Store, error) {
	switch cfg.StorageDriver {
	case "", config.DriverMemory:
		return repository.NewMemoryStore(dim), nil
	case config.DriverBadger:
		return repository.OpenBadger(cfg.BadgerPath, dim)
	case config.DriverMongo:
		client, err := db.NewMongoClient(cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		s := repository.NewMongoStore(client.Database(cfg.MongoDB), dim)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.EnsureIndexes(ctx); err != nil {
			_ = s.Close(context.Background())
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: unknown storage driver %q", ErrConfig, cfg.StorageDriver)
}

// NewEmbedder returns the hashing generator or a remote model.
func NewEmbedder(c config.LLMConfig) (embedding.Embedder, error) {
	switch c.EmbeddingProvider {
	case "", "hash":
		return embedding.NewGenerator(c.EmbeddingModel, c.EmbeddingDim), nil
	case "openai":
		if c.APIURL == "" {
			return nil, fmt.Errorf("%w: LLM_API_URL is required for the openai embedding provider", ErrConfig)
		}
		return embedding.NewRemote(c.APIURL, c.APIKey, c.EmbeddingModel, c.EmbeddingDim)
	}
	return nil, fmt.Errorf("%w: unknown embedding provider %q", ErrConfig, c.EmbeddingProvider)
}

func ChatConfig(c config.LLMConfig) chat.Config {
	return chat.Config{
		Model:        c.Model,
		Temperature:  c.Temperature,
		MaxTokens:    c.MaxTokens,
		UseRAG:       c.UseRAG,
		RAGTopK:      c.RAGTopK,
		MaxHistory:   c.MaxHistory,
		EmbeddingDim: c.EmbeddingDim,
	}
}

func (a *App) Close(ctx context.Context) error {
	var errPub error
	if a.Pub != nil {
		errPub = a.Pub.Close()
	}
	return errors.Join(errPub, a.Store.Close(ctx))
}
