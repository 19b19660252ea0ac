package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"cabin_boarding/internal/models"
)

func TestHubStreamsSnapshotThenEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub := NewHub(func() any { return map[string]int{"tick": 0} })
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&first); err != nil || first.Type != "state" {
		t.Fatalf("expected state envelope first, got %+v %v", first, err)
	}

	node := models.NodeID(4)
	hub.Notify(models.Event{Type: models.EventSeated, Tick: 3, PassengerID: 2, NodeID: &node})

	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read event: %v", err)
	}
	var ev models.Event
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		t.Fatalf("decode event: %v", err)
	}
	if msg.Type != "event" || ev.Type != models.EventSeated || ev.PassengerID != 2 || *ev.NodeID != 4 {
		t.Fatalf("unexpected event %s %+v", msg.Type, ev)
	}
	if hub.Clients() != 1 {
		t.Fatalf("expected one client, got %d", hub.Clients())
	}
}

func TestHubReleasesClientsOnShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(nil)
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Clients() != 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()

	finished := make(chan struct{})
	go func() {
		hub.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatalf("client goroutines still running after shutdown")
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatalf("connection should be closed by the hub")
	}
}

func TestHubDropsWhenSaturated(t *testing.T) {
	hub := NewHub(nil)
	for i := 0; i < hubBuffer+10; i++ {
		hub.Notify(models.Event{Type: models.EventEnterNode, Tick: i})
	}
	if hub.Dropped() != 10 {
		t.Fatalf("expected 10 dropped events, got %d", hub.Dropped())
	}
}

func TestRedisPublisherNeverBlocks(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()
	pub := NewRedisPublisher(client, "boarding.events", "boarding:stats")
	for i := 0; i < sinkBuffer+5; i++ {
		pub.Notify(models.Event{Type: models.EventDepartNode, Tick: i})
	}
	if pub.Dropped() != 5 {
		t.Fatalf("expected 5 dropped events, got %d", pub.Dropped())
	}
}
