package api

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/apex-citadels/citadel/internal/domain"
)

// ─── Event Feed ─────────────────────────────────────────────────────────────
// The HUD subscribes to ws://.../api/events and receives one JSON message per
// ledger notification. The hub implements the domain event interface, so the
// ledger never knows the presentation layer exists.
//
// Message types:
//   resource_changed       {resource, old, new, delta, reason}
//   resources_loaded       {}
//   transaction            {transaction}
//   resource_depleted      {resource}
//   resource_maxed         {resource}
//   insufficient_resources {cost}

// EventMessage is the wire envelope for one ledger notification.
type EventMessage struct {
	Type        string              `json:"type"`
	Resource    domain.Resource     `json:"resource,omitempty"`
	Old         int64               `json:"old,omitempty"`
	New         int64               `json:"new,omitempty"`
	Delta       int64               `json:"delta,omitempty"`
	Reason      string              `json:"reason,omitempty"`
	Cost        domain.Cost         `json:"cost,omitempty"`
	Transaction *domain.Transaction `json:"transaction,omitempty"`
}

// Hub fans ledger events out to connected HUD clients. Events are fired from
// the frame loop, so a broadcast never blocks: a client whose send buffer is
// full is dropped.
type Hub struct {
	log      *log.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates an event hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(log.Writer(), "hub: ", log.LstdFlags)
	}
	return &Hub{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // local client
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// Handler upgrades the connection and streams events until the client
// disconnects.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		c := &hubClient{conn: conn, send: make(chan []byte, 256)}

		h.mu.Lock()
		h.clients[c] = struct{}{}
		h.mu.Unlock()

		go h.writeLoop(c)

		// Read loop only to observe close; clients never send.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
		h.drop(c)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) writeLoop(c *hubClient) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast serializes msg once and offers it to every client without
// blocking. Slow clients lose the race and are disconnected.
func (h *Hub) broadcast(msg EventMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Printf("marshal event: %v", err)
		return
	}

	h.mu.Lock()
	var slow []*hubClient
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// ─── domain.EventSink ───────────────────────────────────────────────────────

func (h *Hub) ResourceChanged(r domain.Resource, oldAmount, newAmount, delta int64, reason string) {
	h.broadcast(EventMessage{
		Type:     "resource_changed",
		Resource: r,
		Old:      oldAmount,
		New:      newAmount,
		Delta:    delta,
		Reason:   reason,
	})
}

func (h *Hub) ResourcesLoaded() {
	h.broadcast(EventMessage{Type: "resources_loaded"})
}

func (h *Hub) TransactionComplete(tx domain.Transaction) {
	h.broadcast(EventMessage{Type: "transaction", Transaction: &tx})
}

func (h *Hub) ResourceDepleted(r domain.Resource) {
	h.broadcast(EventMessage{Type: "resource_depleted", Resource: r})
}

func (h *Hub) ResourceMaxed(r domain.Resource) {
	h.broadcast(EventMessage{Type: "resource_maxed", Resource: r})
}

func (h *Hub) InsufficientResources(cost domain.Cost) {
	h.broadcast(EventMessage{Type: "insufficient_resources", Cost: cost})
}
