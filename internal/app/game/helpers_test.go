package game

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/internal/domains/interfaces"
	"github.com/chess-vn/chessd/internal/repositories"
	"github.com/chess-vn/chessd/pkg/board"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	games   []dtos.GameMessage
	players map[string][]any
}

func (r *recorder) PublishGame(msg dtos.GameMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games = append(r.games, msg)
}

func (r *recorder) PublishPlayer(playerId string, msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.players == nil {
		r.players = make(map[string][]any)
	}
	r.players[playerId] = append(r.players[playerId], msg)
}

func (r *recorder) types() []dtos.MessageType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]dtos.MessageType, len(r.games))
	for i, msg := range r.games {
		types[i] = msg.Type
	}
	return types
}

func (r *recorder) last() dtos.GameMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.games[len(r.games)-1]
}

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeAnalyzer struct {
	mu   sync.Mutex
	reqs []dtos.AnalysisRequest
}

func (a *fakeAnalyzer) Submit(req dtos.AnalysisRequest) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reqs = append(a.reqs, req)
	return true
}

type fixture struct {
	mgr     *Manager
	players interfaces.IPlayerRepository
	pub     *recorder
	clock   *fakeClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		players: repositories.NewPlayerRepository(),
		pub:     &recorder{},
		clock:   newFakeClock(),
	}
	for _, p := range []entities.Player{
		{Id: "alice", Username: "alice", Rating: 1200},
		{Id: "bob", Username: "bob", Rating: 1200},
		{Id: "carol", Username: "carol", Rating: 1500},
	} {
		require.NoError(t, f.players.CreatePlayer(context.Background(), p))
	}
	opts = append([]Option{WithClock(f.clock.now)}, opts...)
	f.mgr = NewManager(f.players, repositories.NewGameRepository(), f.pub, DefaultConfig(), opts...)
	return f
}

// start creates a game by alice (white) and seats bob as black.
func (f *fixture) start(t *testing.T, minutes, increment int) string {
	t.Helper()
	ctx := context.Background()
	game, err := f.mgr.CreateGame(ctx, "alice", minutes, increment)
	require.NoError(t, err)
	_, err = f.mgr.JoinGame(ctx, game.Id, "bob")
	require.NoError(t, err)
	return game.Id
}

func (f *fixture) play(t *testing.T, gameId string, moves ...string) entities.Game {
	t.Helper()
	var game entities.Game
	for _, text := range moves {
		current, err := f.mgr.GetGame(context.Background(), gameId)
		require.NoError(t, err)
		player := current.WhitePlayerId
		if current.Turn == entities.SideBlack {
			player = current.BlackPlayerId
		}
		mv, err := board.ParseMove(text)
		require.NoError(t, err)
		game, err = f.mgr.MakeMove(context.Background(), gameId, player, mv)
		require.NoError(t, err, "move %s", text)
	}
	return game
}

func (f *fixture) player(t *testing.T, id string) entities.Player {
	t.Helper()
	p, err := f.players.GetPlayer(context.Background(), id)
	require.NoError(t, err)
	return p
}

func mustMove(t *testing.T, text string) board.Move {
	t.Helper()
	mv, err := board.ParseMove(text)
	require.NoError(t, err)
	return mv
}
