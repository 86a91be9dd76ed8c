package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Werneck0live/personal-controller/internal/chat"
	"github.com/Werneck0live/personal-controller/internal/models"
	"github.com/Werneck0live/personal-controller/internal/utils"
)

type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

type ChatResponse struct {
	SessionID string `json:"session_id"`
	*chat.Response
}

type chatClearRequest struct {
	SessionID string `json:"session_id"`
}

// ChatMessage responde uma pergunta. Sem session_id uma nova conversa é criada.
func (h *API) ChatMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.Chat == nil || h.Sessions == nil {
		unavailable(w, "chat")
		return
	}
	var req ChatRequest
	if err := utils.DecodeStrict(r.Body, &req); err != nil {
		utils.BadRequest(w, utils.FormatUnknownFieldError(err))
		return
	}
	if req.SessionID == "" {
		req.SessionID = models.NewID()
	}

	ctx, cancel := context.WithTimeout(r.Context(), chatTimeout)
	defer cancel()
	resp, err := h.Chat.Chat(ctx, h.Sessions.Get(req.SessionID), req.Query)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyQuery) {
			utils.BadRequest(w, "query is required")
			return
		}
		h.logger().Error("chat_error", "session", req.SessionID, "err", err)
		writeStoreErr(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, ChatResponse{SessionID: req.SessionID, Response: resp})
}

// ChatHistory: GET ?session_id=...; conversa desconhecida devolve lista vazia.
func (h *API) ChatHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.Sessions == nil {
		unavailable(w, "chat")
		return
	}
	id := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if id == "" {
		utils.BadRequest(w, "session_id is required")
		return
	}
	out := map[string]any{"session_id": id, "messages": []chat.Message{}, "stats": chat.Stats{}}
	if s, ok := h.Sessions.Lookup(id); ok {
		out["messages"] = s.History()
		out["stats"] = s.Stats()
	}
	utils.WriteJSON(w, http.StatusOK, out)
}

func (h *API) ChatClear(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if h.Sessions == nil {
		unavailable(w, "chat")
		return
	}
	var req chatClearRequest
	if err := utils.DecodeStrict(r.Body, &req); err != nil {
		utils.BadRequest(w, utils.FormatUnknownFieldError(err))
		return
	}
	if req.SessionID == "" {
		utils.BadRequest(w, "session_id is required")
		return
	}
	h.Sessions.Delete(req.SessionID)
	utils.WriteJSON(w, http.StatusOK, map[string]string{"session_id": req.SessionID, "status": "cleared"})
}
