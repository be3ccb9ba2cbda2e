package repositories

import (
	"context"
	"errors"
	"sync"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/internal/domains/interfaces"
)

var ErrGameRecordNotFound = errors.New("game record not found")

type gameRepository struct {
	games sync.Map
}

func NewGameRepository() interfaces.IGameRepository {
	return &gameRepository{}
}

func (r *gameRepository) SaveGame(ctx context.Context, game entities.Game) error {
	r.games.Store(game.Id, game.Clone())
	return nil
}

func (r *gameRepository) GetGame(ctx context.Context, id string) (entities.Game, error) {
	v, ok := r.games.Load(id)
	if !ok {
		return entities.Game{}, ErrGameRecordNotFound
	}
	return v.(entities.Game).Clone(), nil
}
