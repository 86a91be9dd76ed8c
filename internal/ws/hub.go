package ws

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// Client is one websocket connection. An empty Topics set receives
// every message.
type Client struct {
	ID     string
	Send   chan []byte
	Topics map[string]bool
}

// ParseTopics reads a comma-separated subscription list ("import,record").
func ParseTopics(raw string) map[string]bool {
	out := map[string]bool{}
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(strings.ToLower(t)); t != "" {
			out[t] = true
		}
	}
	return out
}

func (c *Client) wants(topic string) bool {
	return len(c.Topics) == 0 || topic == "" || c.Topics[topic]
}

type message struct {
	topic string
	id    string // vazio = broadcast
	body  []byte
}

type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	register chan *Client
	unreg    chan *Client
	outbox   chan message

	log     *slog.Logger
	stop    chan struct{}
	stopped chan struct{}

	nextID atomic.Uint64
}

func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		outbox:   make(chan message, 1024),
		log:      log.With("cmp", "ws.hub"),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (h *Hub) newID() string {
	return fmt.Sprintf("c%d", h.nextID.Add(1))
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// drop expects h.mu held for writing.
func (h *Hub) drop(c *Client) {
	if _, ok := h.clients[c.ID]; ok {
		delete(h.clients, c.ID)
		close(c.Send)
	}
}

func (h *Hub) Run() {
	h.log.Info("hub_run_start")
	defer close(h.stopped)

	for {
		select {
		case c := <-h.register:
			if c.ID == "" {
				c.ID = h.newID()
			}
			h.mu.Lock()
			h.clients[c.ID] = c
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client_registered", "id", c.ID, "total", total)

		case c := <-h.unreg:
			if c == nil {
				continue
			}
			h.mu.Lock()
			h.drop(c)
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Info("client_unregistered", "id", c.ID, "total", total)

		case m := <-h.outbox:
			h.deliver(m)

		case <-h.stop:
			h.mu.Lock()
			for _, c := range h.clients {
				h.drop(c)
			}
			h.mu.Unlock()
			h.log.Info("hub_run_stop")
			return
		}
	}
}

func (h *Hub) deliver(m message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if m.id != "" {
		c := h.clients[m.id]
		if c == nil {
			h.log.Warn("send_one_miss", "id", m.id)
			return
		}
		select {
		case c.Send <- m.body:
		default:
			h.drop(c)
			h.log.Warn("send_one_drop_slow", "id", m.id)
		}
		return
	}

	for _, c := range h.clients {
		if !c.wants(m.topic) {
			continue
		}
		select {
		case c.Send <- m.body:
		default:
			// cliente lento -> remove para não travar o hub
			h.drop(c)
			h.log.Warn("client_drop_slow", "id", c.ID)
		}
	}
}

func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

func (h *Hub) Register(c *Client)   { h.register <- c }
func (h *Hub) Unregister(c *Client) { h.unreg <- c }

// Broadcast reaches every client regardless of subscription.
func (h *Hub) Broadcast(b []byte) { h.outbox <- message{body: b} }

// Publish reaches the clients subscribed to topic.
func (h *Hub) Publish(topic string, b []byte) { h.outbox <- message{topic: topic, body: b} }

func (h *Hub) SendToClient(id string, b []byte) { h.outbox <- message{id: id, body: b} }
