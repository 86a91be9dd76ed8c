package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Werneck0live/personal-controller/internal/chat"
	"github.com/Werneck0live/personal-controller/internal/rag"
)

func newChatAPI(retriever chat.Retriever) *API {
	h, _, _ := newTestAPI()
	a := chat.NewAssistant(chat.DefaultConfig(), retriever, nil, nil)
	h.Chat = a
	h.Sessions = chat.NewSessions(chat.DefaultMaxHistory, a.Initialize)
	return h
}

type retrieverMock struct {
	RetrieveFn func(ctx context.Context, query string, topK int) ([]rag.Document, error)
}

func (m *retrieverMock) RetrieveContext(ctx context.Context, query string, topK int) ([]rag.Document, error) {
	if m.RetrieveFn == nil {
		return []rag.Document{}, nil
	}
	return m.RetrieveFn(ctx, query, topK)
}

func TestChat_FlowWithSession(t *testing.T) {
	h := newChatAPI(&retrieverMock{
		RetrieveFn: func(_ context.Context, _ string, _ int) ([]rag.Document, error) {
			return []rag.Document{{Content: "Rota Franca", Score: 0.7, Source: rag.Source{Kind: rag.SourceRoute, Ref: "Franca - Franca"}}}, nil
		},
	})

	rr := serve(h, http.MethodPost, "/api/v1/chat", `{"query":"quais rotas?","session_id":"s1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rr.Code, rr.Body.String())
	}
	got := decode[ChatResponse](t, rr)
	if got.SessionID != "s1" || got.Response == nil || got.Confidence != 0.85 {
		t.Fatalf("resposta inesperada: %+v", got)
	}
	if len(got.Sources) != 1 || got.Sources[0] != "Route(Franca - Franca)" {
		t.Fatalf("fontes inesperadas: %v", got.Sources)
	}

	rr = serve(h, http.MethodGet, "/api/v1/chat/history?session_id=s1", nil)
	hist := decode[struct {
		Messages []chat.Message `json:"messages"`
		Stats    chat.Stats     `json:"stats"`
	}](t, rr)
	// sistema + usuário + assistente
	if len(hist.Messages) != 3 || hist.Stats.UserMessages != 1 || hist.Messages[0].Role != chat.RoleSystem {
		t.Fatalf("histórico inesperado: %+v", hist)
	}

	rr = serve(h, http.MethodPost, "/api/v1/chat/clear", `{"session_id":"s1"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("clear status=%d", rr.Code)
	}
	rr = serve(h, http.MethodGet, "/api/v1/chat/history?session_id=s1", nil)
	hist = decode[struct {
		Messages []chat.Message `json:"messages"`
		Stats    chat.Stats     `json:"stats"`
	}](t, rr)
	if len(hist.Messages) != 0 {
		t.Fatalf("histórico deveria estar vazio: %+v", hist.Messages)
	}
}

func TestChat_NewSessionID(t *testing.T) {
	h := newChatAPI(&retrieverMock{})
	rr := serve(h, http.MethodPost, "/api/v1/chat", `{"query":"oi"}`)
	if got := decode[ChatResponse](t, rr); got.SessionID == "" || len(got.Sources) != 0 {
		t.Fatalf("resposta inesperada: %+v", got)
	}
}

func TestChat_Errors(t *testing.T) {
	h := newChatAPI(&retrieverMock{
		RetrieveFn: func(context.Context, string, int) ([]rag.Document, error) { return nil, errors.New("index down") },
	})
	cases := []struct {
		name   string
		method string
		target string
		body   string
		want   int
	}{
		{"query vazia", http.MethodPost, "/api/v1/chat", `{"query":"  "}`, http.StatusBadRequest},
		{"campo desconhecido", http.MethodPost, "/api/v1/chat", `{"q":"x"}`, http.StatusBadRequest},
		{"falha na recuperação", http.MethodPost, "/api/v1/chat", `{"query":"frete"}`, http.StatusInternalServerError},
		{"método", http.MethodGet, "/api/v1/chat", ``, http.StatusMethodNotAllowed},
		{"history sem id", http.MethodGet, "/api/v1/chat/history", ``, http.StatusBadRequest},
		{"clear sem id", http.MethodPost, "/api/v1/chat/clear", `{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rr := serve(h, tc.method, tc.target, tc.body); rr.Code != tc.want {
			t.Fatalf("%s: status=%d want=%d body=%s", tc.name, rr.Code, tc.want, rr.Body.String())
		}
	}

	h.Chat = nil
	if rr := serve(h, http.MethodPost, "/api/v1/chat", `{"query":"x"}`); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("sem assistente: status=%d", rr.Code)
	}
}
