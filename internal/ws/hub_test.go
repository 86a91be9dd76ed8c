package ws

import (
	"log/slog"
	"testing"
	"time"
)

func recv(t *testing.T, c *Client, want string) {
	t.Helper()
	select {
	case got := <-c.Send:
		if string(got) != want {
			t.Fatalf("%s got %q, want %q", c.ID, got, want)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatalf("timeout waiting %s", c.ID)
	}
}

func silent(t *testing.T, c *Client) {
	t.Helper()
	select {
	case got := <-c.Send:
		t.Fatalf("%s não deveria receber, obteve %q", c.ID, got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_Broadcast(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	c1 := &Client{Send: make(chan []byte, 1)}
	c2 := &Client{Send: make(chan []byte, 1)}
	h.Register(c1)
	h.Register(c2)

	h.Broadcast([]byte("hello"))
	recv(t, c1, "hello")
	recv(t, c2, "hello")
}

func TestHub_PublishFiltersByTopic(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	imports := &Client{ID: "imp", Send: make(chan []byte, 2), Topics: ParseTopics("import")}
	all := &Client{ID: "all", Send: make(chan []byte, 2)}
	h.Register(imports)
	h.Register(all)

	h.Publish("record", []byte("r1"))
	recv(t, all, "r1")
	silent(t, imports)

	h.Publish("import", []byte("i1"))
	recv(t, imports, "i1")
	recv(t, all, "i1")
}

func TestHub_SendToClientAndUnregister(t *testing.T) {
	h := NewHub(slog.Default())
	go h.Run()
	defer h.Stop()

	c := &Client{ID: "x", Send: make(chan []byte, 1)}
	h.Register(c)
	h.SendToClient("x", []byte("only"))
	recv(t, c, "only")

	h.Unregister(c)
	select {
	case _, ok := <-c.Send:
		if ok {
			t.Fatalf("canal deveria estar fechado")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout esperando fechamento")
	}
}

func TestParseTopics(t *testing.T) {
	got := ParseTopics(" Import, ,record ")
	if len(got) != 2 || !got["import"] || !got["record"] {
		t.Fatalf("tópicos inesperados: %v", got)
	}
	if len(ParseTopics("")) != 0 {
		t.Fatalf("lista vazia deveria dar conjunto vazio")
	}
}
