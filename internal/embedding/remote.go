package embedding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// Remote calls an OpenAI-compatible embeddings endpoint (Ollama, vLLM,
// llama.cpp server...). Vectors of the wrong size are rejected so they
// never reach the index.
type Remote struct {
	embedder embeddings.Embedder
	model    string
	dim      int
	log      *slog.Logger
}

// NewRemote builds the client. An empty token is sent as "none", which
// local servers accept.
func NewRemote(baseURL, token, model string, dim int) (*Remote, error) {
	if token == "" {
		token = "none"
	}
	client, err := openai.New(
		openai.WithBaseURL(baseURL),
		openai.WithToken(token),
		openai.WithEmbeddingModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding client: %w", err)
	}
	return newRemote(client, model, dim)
}

func newRemote(client embeddings.EmbedderClient, model string, dim int) (*Remote, error) {
	e, err := embeddings.NewEmbedder(client, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, err
	}
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &Remote{
		embedder: e,
		model:    model,
		dim:      dim,
		log:      slog.Default().With("cmp", "embedding", "model", model),
	}, nil
}

func (r *Remote) Dimension() int { return r.dim }
func (r *Remote) Model() string  { return r.model }

func (r *Remote) Generate(ctx context.Context, text string) ([]float32, error) {
	vs, err := r.GenerateBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return make([]float32, r.dim), nil
	}
	return vs[0], nil
}

func (r *Remote) GenerateBatch(ctx context.Context, texts []string) ([][]float32, error) {
	r.log.Debug("embedding_batch", "count", len(texts))
	vs, err := r.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		r.log.Error("embedding_failed", "count", len(texts), "err", err)
		return nil, err
	}
	for _, v := range vs {
		if len(v) != r.dim {
			return nil, fmt.Errorf("%w: model returned %d, configured %d", ErrDimensionMismatch, len(v), r.dim)
		}
	}
	return vs, nil
}

var _ Embedder = (*Remote)(nil)
