package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const sendBufferSize = 64

// client is one websocket connection of a player. Outbound frames go through send and are
// written by writePump only.
type client struct {
	conn     *websocket.Conn
	playerId string
	send     chan []byte

	mu     sync.Mutex
	closed bool
}

func newClient(conn *websocket.Conn, playerId string) *client {
	return &client{
		conn:     conn,
		playerId: playerId,
		send:     make(chan []byte, sendBufferSize),
	}
}

// writeJson queues msg for delivery. It reports false if the client is gone or too slow.
func (c *client) writeJson(msg any) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal message", zap.Error(err))
		return false
	}
	return c.enqueue(data)
}

func (c *client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		logging.Warn("client send buffer full, message dropped", zap.String("player_id", c.playerId))
		return false
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (c *client) writePump(writeTimeout, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logging.Info("failed to write message", zap.String("player_id", c.playerId), zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return
			}
		}
	}
}
