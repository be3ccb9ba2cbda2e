package repositories

import (
	"context"
	"testing"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewPlayerRepository()

	_, err := repo.GetPlayer(ctx, "p1")
	assert.ErrorIs(t, err, entities.ErrPlayerNotFound)

	require.NoError(t, repo.CreatePlayer(ctx, entities.Player{Id: "p1", Username: "Magnus", Rating: 1200}))
	err = repo.CreatePlayer(ctx, entities.Player{Id: "p2", Username: "magnus", Rating: 1200})
	assert.ErrorIs(t, err, entities.ErrUsernameTaken)

	require.NoError(t, repo.CreatePlayer(ctx, entities.Player{Id: "p2", Username: "Hikaru", Rating: 1500}))
	require.NoError(t, repo.CreatePlayer(ctx, entities.Player{Id: "p3", Username: "Judit", Rating: 1300}))

	p, err := repo.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	p.Rating = 1216
	require.NoError(t, repo.SavePlayer(ctx, p))

	p.Username = "Hikaru"
	assert.ErrorIs(t, repo.SavePlayer(ctx, p), entities.ErrUsernameTaken)
	assert.ErrorIs(t, repo.SavePlayer(ctx, entities.Player{Id: "ghost"}), entities.ErrPlayerNotFound)

	p.Username = "Magnus"
	p.Rating = 1300
	assert.ErrorIs(t, repo.SavePlayer(ctx, p), entities.ErrPlayerConflict)
	current, err := repo.GetPlayer(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1216, current.Rating)
	assert.Equal(t, 1, current.Version)

	top, err := repo.TopPlayers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "p2", top[0].Id)
	assert.Equal(t, "p3", top[1].Id)
}

func TestGameRepositoryCopiesMoves(t *testing.T) {
	ctx := context.Background()
	repo := NewGameRepository()

	game := entities.Game{Id: "g1", Moves: []string{"e2e4"}}
	require.NoError(t, repo.SaveGame(ctx, game))
	game.Moves[0] = "d2d4"

	stored, err := repo.GetGame(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"e2e4"}, stored.Moves)

	_, err = repo.GetGame(ctx, "missing")
	assert.ErrorIs(t, err, ErrGameRecordNotFound)
}
