// Package ws serves the live parts of the app over WebSocket: deck views
// that follow every deck change, and detached search windows.
package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/youruser/hvdeck/internal/bridge"
	"github.com/youruser/hvdeck/internal/cards"
	"github.com/youruser/hvdeck/internal/deck"
)

// Message types pushed to clients.
const (
	TypeDeck    = "deck"
	TypeResults = "results"
	TypePicked  = "picked"
	TypeError   = "error"
)

// Event is one message pushed to a client.
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// DeckView is the payload of a TypeDeck event.
type DeckView struct {
	Entries []DeckRow `json:"entries"`
	Total   int       `json:"total"`
}

// DeckRow is one deck entry as shown to a viewer.
type DeckRow struct {
	Card  cards.Card `json:"card"`
	Count int        `json:"count"`
	// Name is the card name without its "_<n>" copy suffix.
	Name string `json:"name"`
}

// NewDeckView summarises entries.
func NewDeckView(entries []deck.Entry) DeckView {
	rows := make([]DeckRow, len(entries))
	for i, e := range entries {
		rows[i] = DeckRow{Card: e.Card, Count: e.Count, Name: e.Card.DisplayName()}
	}
	return DeckView{Entries: rows, Total: deck.TotalCount(entries)}
}

// Hub tracks connected clients and pushes deck changes to deck views.
type Hub struct {
	origin   string
	snapshot func() []deck.Entry
	logger   *slog.Logger
	upgrader websocket.Upgrader

	clients    map[*Client]bool
	broadcast  chan []byte
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once

	mu      sync.RWMutex
	stopped bool
}

// NewHub creates a hub. Upgrades are accepted from origin, or from
// requests without an Origin header. snapshot supplies the deck sent to a
// newly connected deck view.
func NewHub(origin string, snapshot func() []deck.Entry, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		origin:     bridge.NormalizeOrigin(origin),
		snapshot:   snapshot,
		logger:     logger,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 256),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	o := r.Header.Get("Origin")
	return o == "" || bridge.NormalizeOrigin(o) == h.origin
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case <-h.done:
			h.mu.Lock()
			h.stopped = true
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()
			h.logger.Info("websocket hub stopped")
			return

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("websocket client disconnected", "client", c.ID, "clients", n)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if c.kind != kindDeck {
					continue
				}
				select {
				case c.send <- msg:
				default:
					h.logger.Warn("websocket client too slow, disconnecting", "client", c.ID)
					delete(h.clients, c)
					close(c.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop closes every client and ends Run. Safe to call more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// PublishDeck queues a deck snapshot for every deck view. It never blocks;
// snapshots are dropped when the queue is full. It has the deck.Observer
// signature.
func (h *Hub) PublishDeck(entries []deck.Entry) {
	data, err := json.Marshal(Event{Type: TypeDeck, Data: NewDeckView(entries)})
	if err != nil {
		h.logger.Error("encode deck event", "error", err)
		return
	}
	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.logger.Warn("deck broadcast queue full, dropping snapshot")
	}
}

// ServeDeck upgrades a deck view connection and sends it the current deck.
func (h *Hub) ServeDeck(w http.ResponseWriter, r *http.Request) {
	c := h.accept(w, r, kindDeck)
	if c == nil {
		return
	}
	var entries []deck.Entry
	if h.snapshot != nil {
		entries = h.snapshot()
	}
	c.push(Event{Type: TypeDeck, Data: NewDeckView(entries)})
	go c.writePump()
	go c.readPump(nil)
}

// accept upgrades the connection and registers the client. Registration
// happens before accept returns so the first push cannot be lost.
func (h *Hub) accept(w http.ResponseWriter, r *http.Request, kind string) *Client {
	h.mu.RLock()
	stopped := h.stopped
	h.mu.RUnlock()
	if stopped {
		http.Error(w, "websocket hub is not running", http.StatusServiceUnavailable)
		return nil
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return nil
	}
	c := &Client{
		ID:   uuid.New().String(),
		kind: kind,
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		conn.Close()
		return nil
	}
	h.clients[c] = true
	n := len(h.clients)
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "client", c.ID, "kind", kind, "clients", n)
	return c
}
