// Package chat holds conversation sessions and the assistant that answers
// on top of the retrieval layer.
package chat

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"
)

const DefaultMaxHistory = 100

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Label is the speaker name used when the history is rendered as text.
func (r Role) Label() string {
	switch r {
	case RoleUser:
		return "Usuário"
	case RoleAssistant:
		return "Assistente"
	case RoleSystem:
		return "Sistema"
	}
	return string(r)
}

type MessageMetadata struct {
	TokensUsed *int     `json:"tokens_used,omitempty"`
	Model      string   `json:"model,omitempty"`
	Confidence *float32 `json:"confidence,omitempty"`
	Sources    []string `json:"sources"`
}

type Message struct {
	Role      Role             `json:"role"`
	Content   string           `json:"content"`
	Timestamp time.Time        `json:"timestamp"`
	Metadata  *MessageMetadata `json:"metadata,omitempty"`
}

// Session is one conversation. History is bounded; the oldest messages
// are dropped first.
type Session struct {
	mu         sync.Mutex
	id         string
	maxHistory int
	messages   []Message
}

func NewSession(id string, maxHistory int) *Session {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Session{id: id, maxHistory: maxHistory}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Add(role Role, content string) Message {
	return s.AddWithMetadata(role, content, nil)
}

func (s *Session) AddWithMetadata(role Role, content string, meta *MessageMetadata) Message {
	m := Message{Role: role, Content: content, Timestamp: time.Now().UTC(), Metadata: meta}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, m)
	s.trim()
	return m
}

// trim expects s.mu held.
func (s *Session) trim() {
	if over := len(s.messages) - s.maxHistory; over > 0 {
		s.messages = append([]Message(nil), s.messages[over:]...)
	}
}

func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.messages...)
}

// Context returns the last n messages in chronological order.
func (s *Session) Context(n int) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n <= 0 {
		return []Message{}
	}
	from := max(len(s.messages)-n, 0)
	return append([]Message{}, s.messages[from:]...)
}

func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *Session) Clear() {
	s.mu.Lock()
	s.messages = nil
	s.mu.Unlock()
}

func (s *Session) hasRole(r Role) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.messages {
		if m.Role == r {
			return true
		}
	}
	return false
}

// FormatAsPrompt renders the last n messages as "Label: content" blocks.
func (s *Session) FormatAsPrompt(n int) string {
	var b strings.Builder
	for _, m := range s.Context(n) {
		fmt.Fprintf(&b, "%s: %s\n\n", m.Role.Label(), m.Content)
	}
	return b.String()
}

func (s *Session) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(s.History(), "", "  ")
}

// ImportJSON replaces the history with an exported one.
func (s *Session) ImportJSON(b []byte) error {
	var msgs []Message
	if err := json.Unmarshal(b, &msgs); err != nil {
		return fmt.Errorf("import conversation: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = msgs
	s.trim()
	return nil
}

type Stats struct {
	TotalMessages     int `json:"total_messages"`
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`
	SystemMessages    int `json:"system_messages"`
	TotalChars        int `json:"total_chars"`
	TotalTokens       int `json:"total_tokens"`
}

func (s *Session) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := Stats{TotalMessages: len(s.messages)}
	for _, m := range s.messages {
		switch m.Role {
		case RoleUser:
			st.UserMessages++
		case RoleAssistant:
			st.AssistantMessages++
		case RoleSystem:
			st.SystemMessages++
		}
		st.TotalChars += len(m.Content)
		if m.Metadata != nil && m.Metadata.TokensUsed != nil {
			st.TotalTokens += *m.Metadata.TokensUsed
		}
	}
	return st
}

// Registry limits. Idle sessions expire and, past the cap, the least
// recently used one is evicted.
const (
	DefaultMaxSessions = 1000
	DefaultSessionTTL  = 30 * time.Minute
)

// Sessions is a registry of conversations keyed by id.
type Sessions struct {
	mu          sync.Mutex
	maxHistory  int
	maxSessions int
	ttl         time.Duration
	now         func() time.Time
	byID        map[string]*entry
	onCreate    func(*Session)
}

type entry struct {
	s    *Session
	used time.Time
}

type SessionsOption func(*Sessions)

// WithLimits sets the session cap and the idle TTL. Zero keeps the default;
// a negative ttl disables expiry.
func WithLimits(maxSessions int, ttl time.Duration) SessionsOption {
	return func(r *Sessions) {
		if maxSessions > 0 {
			r.maxSessions = maxSessions
		}
		if ttl != 0 {
			r.ttl = ttl
		}
	}
}

func withClock(now func() time.Time) SessionsOption {
	return func(r *Sessions) { r.now = now }
}

// NewSessions calls onCreate (may be nil) once for every new session.
func NewSessions(maxHistory int, onCreate func(*Session), opts ...SessionsOption) *Sessions {
	r := &Sessions{
		maxHistory:  maxHistory,
		maxSessions: DefaultMaxSessions,
		ttl:         DefaultSessionTTL,
		now:         time.Now,
		byID:        make(map[string]*entry),
		onCreate:    onCreate,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Get returns the session for id, creating it on first use.
func (r *Sessions) Get(id string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	e, ok := r.byID[id]
	if ok && r.expired(e, now) {
		delete(r.byID, id)
		ok = false
	}
	if !ok {
		r.prune(now)
		s := NewSession(id, r.maxHistory)
		if r.onCreate != nil {
			r.onCreate(s)
		}
		e = &entry{s: s}
		r.byID[id] = e
	}
	e.used = now
	return e.s
}

// Lookup returns the session only if it exists and has not expired.
func (r *Sessions) Lookup(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || r.expired(e, r.now()) {
		return nil, false
	}
	return e.s, true
}

func (r *Sessions) Delete(id string) {
	r.mu.Lock()
	delete(r.byID, id)
	r.mu.Unlock()
}

func (r *Sessions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}

func (r *Sessions) expired(e *entry, now time.Time) bool {
	return r.ttl > 0 && now.Sub(e.used) > r.ttl
}

// prune drops expired sessions and makes room for one more.
func (r *Sessions) prune(now time.Time) {
	for id, e := range r.byID {
		if r.expired(e, now) {
			delete(r.byID, id)
		}
	}
	for len(r.byID) >= r.maxSessions {
		var oldest string
		var at time.Time
		for id, e := range r.byID {
			if oldest == "" || e.used.Before(at) {
				oldest, at = id, e.used
			}
		}
		delete(r.byID, oldest)
	}
}
