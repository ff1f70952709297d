package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. A pick carries a full card.
	maxMessageSize = 8192

	sendBufferSize = 64
)

const (
	kindDeck   = "deck"
	kindSearch = "search"
)

// Client is one WebSocket connection.
type Client struct {
	ID   string
	kind string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// push queues ev without blocking. It reports false when the buffer is full
// or the client is gone.
func (c *Client) push(ev Event) bool {
	data, err := json.Marshal(ev)
	if err != nil {
		c.hub.logger.Error("encode websocket event", "error", err)
		return false
	}
	// send is closed under the hub lock once the client is unregistered.
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// readPump reads messages until the connection fails, handing each to
// handle when it is not nil.
func (c *Client) readPump(handle func([]byte)) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("websocket read error", "client", c.ID, "error", err)
			}
			return
		}
		if handle != nil {
			handle(data)
		}
	}
}

// writePump writes queued messages and keeps the connection alive.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.hub.logger.Debug("websocket write error", "client", c.ID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
