package server

import (
	"encoding/json"
	"sync"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/pkg/logging"
	"go.uber.org/zap"
)

// Hub routes outbound notifications to connected clients: game messages go to both seats and
// to every watcher of the game, player messages to every connection of that player.
type Hub struct {
	mu       sync.RWMutex
	players  map[string]map[*client]struct{}
	watchers map[string]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		players:  make(map[string]map[*client]struct{}),
		watchers: make(map[string]map[*client]struct{}),
	}
}

// register reports whether c is the first connection of its player.
func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.players[c.playerId]
	if !ok {
		conns = make(map[*client]struct{})
		h.players[c.playerId] = conns
	}
	conns[c] = struct{}{}
	return len(conns) == 1
}

// unregister closes c and reports whether it was the last connection of its player.
func (h *Hub) unregister(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for gameId, watchers := range h.watchers {
		delete(watchers, c)
		if len(watchers) == 0 {
			delete(h.watchers, gameId)
		}
	}
	c.close()

	conns, ok := h.players[c.playerId]
	if !ok {
		return false
	}
	delete(conns, c)
	if len(conns) > 0 {
		return false
	}
	delete(h.players, c.playerId)
	return true
}

func (h *Hub) watch(c *client, gameId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	watchers, ok := h.watchers[gameId]
	if !ok {
		watchers = make(map[*client]struct{})
		h.watchers[gameId] = watchers
	}
	watchers[c] = struct{}{}
}

func (h *Hub) PublishGame(msg dtos.GameMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal game message", zap.String("game_id", msg.GameId), zap.Error(err))
		return
	}

	if msg.Status.IsTerminal() {
		defer h.unwatchGame(msg.GameId)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	recipients := make(map[*client]struct{})
	for _, playerId := range []string{msg.WhitePlayerId, msg.BlackPlayerId} {
		for c := range h.players[playerId] {
			recipients[c] = struct{}{}
		}
	}
	for c := range h.watchers[msg.GameId] {
		recipients[c] = struct{}{}
	}
	for c := range recipients {
		c.enqueue(data)
	}
}

func (h *Hub) PublishPlayer(playerId string, msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		logging.Error("failed to marshal player message", zap.String("player_id", playerId), zap.Error(err))
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.players[playerId] {
		c.enqueue(data)
	}
}

func (h *Hub) unwatchGame(gameId string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.watchers, gameId)
}

// Connections counts open websocket connections.
func (h *Hub) Connections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, conns := range h.players {
		n += len(conns)
	}
	return n
}
