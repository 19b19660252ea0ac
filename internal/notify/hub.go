// Package notify delivers simulation events to renderers and brokers. Every
// sink implements game.Listener and never blocks the caller: events are
// queued on a buffered channel and dropped when it is full.
package notify

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"cabin_boarding/internal/models"
)

const (
	hubBuffer    = 256
	clientBuffer = 128
)

// Envelope is the websocket message format.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub streams events to connected websocket clients.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan []byte
	done       chan struct{}
	conns      sync.WaitGroup
	snapshot   func() any
	upgrader   websocket.Upgrader
	dropped    atomic.Int64
	count      atomic.Int64
}

// NewHub creates a hub. snapshot, when set, is sent to every client right
// after it connects.
func NewHub(snapshot func() any) *Hub {
	return &Hub{
		clients:    map[*client]bool{},
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan []byte, hubBuffer),
		done:       make(chan struct{}),
		snapshot:   snapshot,
		upgrader:   websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// Run owns the client set until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
				c.conn.Close()
			}
			h.count.Store(0)
			return
		case c := <-h.register:
			h.clients[c] = true
			h.count.Store(int64(len(h.clients)))
		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
			}
			h.count.Store(int64(len(h.clients)))
		case msg := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- msg:
				default:
					// slow reader
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.count.Store(int64(len(h.clients)))
		}
	}
}

// Notify queues ev for every client.
func (h *Hub) Notify(ev models.Event) {
	b, err := json.Marshal(Envelope{Type: "event", Payload: ev})
	if err != nil {
		log.Printf("hub: marshal event: %v", err)
		return
	}
	select {
	case h.broadcast <- b:
	default:
		h.dropped.Add(1)
	}
}

// Clients is the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Dropped is the number of events lost because the hub was saturated.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// ServeWS upgrades the request and streams events until the client leaves.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("hub: upgrade: %v", err)
		return
	}
	c := &client{id: uuid.NewString(), conn: conn, send: make(chan []byte, clientBuffer)}
	if h.snapshot != nil {
		if b, err := json.Marshal(Envelope{Type: "state", Payload: h.snapshot()}); err == nil {
			c.send <- b
		}
	}
	h.conns.Add(2)
	select {
	case h.register <- c:
	case <-h.done:
		h.conns.Add(-2)
		conn.Close()
		return
	}
	go func() { defer h.conns.Done(); c.writer() }()
	go func() { defer h.conns.Done(); c.reader(h) }()
}

// Wait blocks until the goroutines of every client have exited. Call it
// after the context passed to Run is done.
func (h *Hub) Wait() {
	h.conns.Wait()
}

// reader discards client messages and unregisters on disconnect.
func (c *client) reader(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writer() {
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Printf("hub: write to %s: %v", c.id, err)
			return
		}
	}
}
