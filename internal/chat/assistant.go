package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Werneck0live/personal-controller/internal/rag"
)

const (
	SystemPrompt = "Você é a Personal-Controller-LLM, uma IA especializada da Ávila Transportes. " +
		"Responda sempre em português, de forma clara e objetiva."
	defaultConfidence float32 = 0.85
)

var ErrEmptyQuery = errors.New("empty query")

type Config struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	UseRAG       bool
	RAGTopK      int
	MaxHistory   int
	EmbeddingDim int
}

func DefaultConfig() Config {
	return Config{
		Model:        "local",
		Temperature:  0.7,
		MaxTokens:    2048,
		UseRAG:       true,
		RAGTopK:      5,
		MaxHistory:   10,
		EmbeddingDim: 384,
	}
}

// Retriever is satisfied by *rag.System.
type Retriever interface {
	RetrieveContext(ctx context.Context, query string, topK int) ([]rag.Document, error)
}

// Responder produces the answer text for a rendered prompt.
type Responder interface {
	Respond(ctx context.Context, prompt string, cfg Config) (string, error)
}

// PlaceholderResponder answers with a fixed text naming the model. No
// inference is run.
type PlaceholderResponder struct{}

func (PlaceholderResponder) Respond(_ context.Context, _ string, cfg Config) (string, error) {
	return "Esta é uma resposta gerada pela Personal-Controller-LLM. " +
		"Em produção, aqui seria usada a inferência real do modelo " + cfg.Model + ".", nil
}

type Response struct {
	Response   string   `json:"response"`
	Sources    []string `json:"sources"`
	Confidence float32  `json:"confidence"`
	TokensUsed int      `json:"tokens_used"`
}

type Assistant struct {
	cfg       Config
	retriever Retriever
	responder Responder
	log       *slog.Logger
}

// NewAssistant wires the assistant. retriever may be nil (no context);
// responder defaults to PlaceholderResponder.
func NewAssistant(cfg Config, retriever Retriever, responder Responder, log *slog.Logger) *Assistant {
	if responder == nil {
		responder = PlaceholderResponder{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Assistant{cfg: cfg, retriever: retriever, responder: responder, log: log.With("cmp", "chat")}
}

func (a *Assistant) Config() Config { return a.cfg }

// Initialize seeds the system message once per session.
func (a *Assistant) Initialize(s *Session) {
	if !s.hasRole(RoleSystem) {
		s.Add(RoleSystem, SystemPrompt)
	}
}

func (a *Assistant) Chat(ctx context.Context, s *Session, query string) (*Response, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	s.Add(RoleUser, query)

	docs := []rag.Document{}
	if a.cfg.UseRAG && a.retriever != nil {
		var err error
		if docs, err = a.retriever.RetrieveContext(ctx, query, a.cfg.RAGTopK); err != nil {
			return nil, fmt.Errorf("retrieve context: %w", err)
		}
	}

	prompt := rag.BuildSimplePrompt(query)
	if len(docs) > 0 {
		prompt = rag.BuildPrompt(query, docs)
	}

	text, err := a.responder.Respond(ctx, prompt, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("respond: %w", err)
	}

	resp := &Response{
		Response:   text,
		Sources:    rag.Sources(docs),
		Confidence: defaultConfidence,
		TokensUsed: (len(prompt) + len(text)) / 4,
	}
	tokens, conf := resp.TokensUsed, resp.Confidence
	s.AddWithMetadata(RoleAssistant, text, &MessageMetadata{
		TokensUsed: &tokens,
		Model:      a.cfg.Model,
		Confidence: &conf,
		Sources:    resp.Sources,
	})

	a.log.Info("chat_answered",
		"session", s.ID(),
		"documents", len(docs),
		"tokens", resp.TokensUsed,
	)
	return resp, nil
}
