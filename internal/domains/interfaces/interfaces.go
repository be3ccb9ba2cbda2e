package interfaces

import (
	"context"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/internal/domains/entities"
)

type (
	IPlayerRepository interface {
		GetPlayer(ctx context.Context, id string) (entities.Player, error)
		CreatePlayer(ctx context.Context, player entities.Player) error
		SavePlayer(ctx context.Context, player entities.Player) error
		TopPlayers(ctx context.Context, limit int) ([]entities.Player, error)
	}

	IGameRepository interface {
		SaveGame(ctx context.Context, game entities.Game) error
		GetGame(ctx context.Context, id string) (entities.Game, error)
	}

	// IPublisher delivers outbound notifications to connected clients.
	IPublisher interface {
		PublishGame(msg dtos.GameMessage)
		PublishPlayer(playerId string, msg any)
	}
)
