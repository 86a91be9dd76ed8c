package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Werneck0live/personal-controller/internal/broker"
	"github.com/Werneck0live/personal-controller/internal/chat"
	"github.com/Werneck0live/personal-controller/internal/importer"
	"github.com/Werneck0live/personal-controller/internal/ingest"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/repository"
	"github.com/Werneck0live/personal-controller/internal/utils"
)

const (
	Version = "0.1.0"

	requestTimeout = 5 * time.Second
	chatTimeout    = 30 * time.Second
	importTimeout  = 2 * time.Minute

	defaultPerPage = 10
	maxPerPage     = 100
)

// Indexer is satisfied by *rag.Indexer.
type Indexer interface {
	IndexRecord(ctx context.Context, rec models.Embeddable) (int, error)
}

// Ingester is satisfied by *ingest.Service.
type Ingester interface {
	ImportFile(ctx context.Context, kind importer.Kind, path string) (*ingest.Summary, error)
}

// Chatter is satisfied by *chat.Assistant.
type Chatter interface {
	Chat(ctx context.Context, s *chat.Session, query string) (*chat.Response, error)
}

// API carries the dependencies of every /api/v1 handler. Pub, Indexer,
// Ingest and Chat are optional; the endpoints that need a missing one
// answer 503.
type API struct {
	Store    repository.Store
	Pub      broker.EventPublisher
	Indexer  Indexer
	Ingest   Ingester
	Chat     Chatter
	Sessions *chat.Sessions
	Log      *slog.Logger
}

func (h *API) logger() *slog.Logger {
	if h.Log == nil {
		return slog.Default()
	}
	return h.Log
}

// Register mounts every route on mux.
func (h *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", h.Root)
	mux.HandleFunc("/health", h.Health)
	mux.HandleFunc("/healthz", h.Health)

	companies().mount(h, mux)
	freightOrders().mount(h, mux)
	timesheets().mount(h, mux)
	routes().mount(h, mux)

	mux.HandleFunc("/api/v1/import", h.Import)

	mux.HandleFunc("/api/v1/chat", h.ChatMessage)
	mux.HandleFunc("/api/v1/chat/history", h.ChatHistory)
	mux.HandleFunc("/api/v1/chat/clear", h.ChatClear)

	mux.HandleFunc("/api/v1/stats", h.Stats)
	mux.HandleFunc("/api/v1/stats/companies", h.CompanyStats)
	mux.HandleFunc("/api/v1/stats/freight", h.FreightStats)
	mux.HandleFunc("/api/v1/stats/timesheets", h.TimesheetStats)
}

func (h *API) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		notFound(w)
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"name":        "Personal Controller API",
		"version":     Version,
		"description": "REST API for Ávila Transportes Personal Controller",
		"status":      "online",
		"endpoints": map[string]string{
			"companies":      "/api/v1/companies",
			"freight_orders": "/api/v1/freight-orders",
			"timesheets":     "/api/v1/timesheets",
			"routes":         "/api/v1/routes",
			"import":         "/api/v1/import",
			"chat":           "/api/v1/chat",
			"stats":          "/api/v1/stats",
		},
	})
}

func (h *API) Health(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// garante o padrão /api/v1/{resource}/{id}
func parseIDFromPath(path, resource string) (string, bool) {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 4 && parts[0] == "api" && parts[1] == "v1" && parts[2] == resource && parts[3] != "" {
		return parts[3], true
	}
	return "", false
}

// pageParams lê page/per_page; valores inválidos caem no default.
func pageParams(r *http.Request) (page, perPage int) {
	q := r.URL.Query()
	page, perPage = 1, defaultPerPage
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(q.Get("per_page")); err == nil && v > 0 && v <= maxPerPage {
		perPage = v
	}
	return page, perPage
}

func notFound(w http.ResponseWriter) {
	utils.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
}

func unavailable(w http.ResponseWriter, what string) {
	utils.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"error": what + " not configured"})
}

// writeStoreErr maps storage errors to status codes.
func writeStoreErr(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		notFound(w)
	case errors.Is(err, repository.ErrDuplicate):
		utils.WriteJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, models.ErrValidation):
		utils.BadRequest(w, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		utils.WriteJSON(w, http.StatusGatewayTimeout, map[string]string{"error": "timeout"})
	default:
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *API) publishEvent(e broker.Event) {
	if h.Pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.Pub.PublishEvent(ctx, e); err != nil {
		h.logger().Warn("publish_event_error", "type", e.Type, "action", e.Action, "err", err)
	}
}

// index keeps the vector index in step with a write. Failures are logged;
// the record itself is already stored.
func (h *API) index(ctx context.Context, rec models.Record) {
	emb, ok := rec.(models.Embeddable)
	if h.Indexer == nil || !ok {
		return
	}
	if _, err := h.Indexer.IndexRecord(ctx, emb); err != nil {
		h.logger().Warn("index_record_error", "collection", rec.Collection(), "id", rec.GetID(), "err", err)
	}
}

// CORS libera chamadas do front-end.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
