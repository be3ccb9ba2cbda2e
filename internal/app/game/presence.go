package game

import (
	"time"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/internal/domains/entities"
)

func (mgr *Manager) PlayerConnected(playerId string) {
	mgr.presence.Delete(playerId)
	mgr.notifyPresence(playerId, dtos.MessagePlayerJoined)
}

// PlayerDisconnected starts the abandonment grace period for every live game of the player.
func (mgr *Manager) PlayerDisconnected(playerId string) {
	mgr.presence.Store(playerId, mgr.now())
	mgr.notifyPresence(playerId, dtos.MessagePlayerLeft)
}

func (mgr *Manager) disconnectedSince(playerId string) (time.Time, bool) {
	v, ok := mgr.presence.Load(playerId)
	if !ok {
		return time.Time{}, false
	}
	return v.(time.Time), true
}

// GamesOf returns the live games the player is seated in.
func (mgr *Manager) GamesOf(playerId string) []entities.Game {
	var games []entities.Game
	for _, g := range mgr.LiveGames() {
		if g.Seat(playerId) != "" {
			games = append(games, g)
		}
	}
	return games
}

func (mgr *Manager) notifyPresence(playerId string, msgType dtos.MessageType) {
	for _, g := range mgr.GamesOf(playerId) {
		mgr.publisher.PublishGame(dtos.GameMessageFromEntity(msgType, playerId, g))
	}
}
