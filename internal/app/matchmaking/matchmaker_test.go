package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/chess-vn/chessd/internal/app/game"
	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/internal/domains/interfaces"
	"github.com/chess-vn/chessd/internal/repositories"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	players map[string][]any
}

func (r *recorder) PublishGame(dtos.GameMessage) {}

func (r *recorder) PublishPlayer(playerId string, msg any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.players == nil {
		r.players = make(map[string][]any)
	}
	r.players[playerId] = append(r.players[playerId], msg)
}

func (r *recorder) matchesOf(playerId string) []dtos.MatchFoundMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found []dtos.MatchFoundMessage
	for _, msg := range r.players[playerId] {
		if m, ok := msg.(dtos.MatchFoundMessage); ok {
			found = append(found, m)
		}
	}
	return found
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	mm      *Matchmaker
	games   *game.Manager
	players interfaces.IPlayerRepository
	pub     *recorder
	clock   *testClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		players: repositories.NewPlayerRepository(),
		pub:     &recorder{},
		clock:   &testClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, p := range []entities.Player{
		{Id: "alice", Username: "alice", Rating: 1200},
		{Id: "bob", Username: "bob", Rating: 1200},
		{Id: "carol", Username: "carol", Rating: 1350},
		{Id: "dave", Username: "dave", Rating: 1800},
	} {
		require.NoError(t, f.players.CreatePlayer(context.Background(), p))
	}
	f.games = game.NewManager(f.players, repositories.NewGameRepository(), f.pub, game.DefaultConfig())
	opts = append([]Option{WithClock(f.clock.now), WithCoinFlip(func() bool { return true })}, opts...)
	f.mm = NewMatchmaker(f.players, f.games, f.pub, DefaultConfig(), opts...)
	return f
}

func TestAllowedRatingDiff(t *testing.T) {
	tests := []struct {
		wait time.Duration
		want int
	}{
		{0, 100},
		{9 * time.Second, 100},
		{10 * time.Second, 150},
		{25 * time.Second, 200},
		{80 * time.Second, 500},
		{time.Hour, 500},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, allowedRatingDiff(tt.wait), "wait %s", tt.wait)
	}
}

func TestQueueToleranceWidens(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mm.JoinQueue(ctx, "alice", 5, 0)
	require.NoError(t, err)
	_, err = f.mm.JoinQueue(ctx, "carol", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, f.mm.QueueSize())
	assert.Zero(t, f.mm.Sweep(ctx))

	f.clock.advance(10 * time.Second)
	assert.Equal(t, 1, f.mm.Sweep(ctx))
	assert.Zero(t, f.mm.QueueSize())

	found := f.pub.matchesOf("alice")
	require.Len(t, found, 1)
	assert.Equal(t, found, f.pub.matchesOf("carol"))
	assert.Equal(t, "alice", found[0].WhitePlayerId)
	assert.Equal(t, "carol", found[0].BlackPlayerId)
	assert.Equal(t, 5, found[0].TimeControl)

	g, err := f.games.GetGame(ctx, found[0].GameId)
	require.NoError(t, err)
	assert.Equal(t, entities.GameStatusActive, g.Status)
}

func TestQueueRequiresSameTimeControl(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mm.JoinQueue(ctx, "alice", 5, 0)
	require.NoError(t, err)
	_, err = f.mm.JoinQueue(ctx, "bob", 5, 3)
	require.NoError(t, err)
	_, err = f.mm.JoinQueue(ctx, "dave", 5, 0)
	require.NoError(t, err)

	f.clock.advance(time.Hour)
	assert.Zero(t, f.mm.Sweep(ctx))
	assert.Equal(t, 3, f.mm.QueueSize())
}

func TestJoinQueueReplacesEntry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mm.JoinQueue(ctx, "alice", 5, 0)
	require.NoError(t, err)
	_, err = f.mm.JoinQueue(ctx, "alice", 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, f.mm.QueueSize())

	f.clock.advance(4 * time.Second)
	pos, wait, ok := f.mm.QueueStatus("alice")
	require.True(t, ok)
	assert.Equal(t, 1, pos)
	assert.Equal(t, 4*time.Second, wait)

	_, err = f.mm.JoinQueue(ctx, "bob", 3, 2)
	require.NoError(t, err)
	assert.Zero(t, f.mm.QueueSize())
	require.Len(t, f.pub.matchesOf("bob"), 1)
	assert.Equal(t, 2, f.pub.matchesOf("bob")[0].Increment)
}

func TestJoinQueueRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mm.JoinQueue(ctx, "ghost", 5, 0)
	assert.ErrorIs(t, err, entities.ErrPlayerNotFound)
	_, err = f.mm.JoinQueue(ctx, "alice", 0, 0)
	assert.ErrorIs(t, err, game.ErrInvalidTimeControl)
	assert.Zero(t, f.mm.QueueSize())
}

func TestLeaveQueue(t *testing.T) {
	f := newFixture(t)
	_, err := f.mm.JoinQueue(context.Background(), "alice", 5, 0)
	require.NoError(t, err)

	assert.True(t, f.mm.LeaveQueue("alice"))
	assert.False(t, f.mm.LeaveQueue("alice"))
	_, _, ok := f.mm.QueueStatus("alice")
	assert.False(t, ok)
}

func TestConcurrentJoinsPairEachPlayerOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := range 20 {
		id := fmt.Sprintf("p%02d", i)
		ids = append(ids, id)
		require.NoError(t, f.players.CreatePlayer(ctx, entities.Player{Id: id, Username: id, Rating: 1500}))
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.mm.JoinQueue(ctx, id, 3, 0)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	f.mm.Sweep(ctx)

	assert.Zero(t, f.mm.QueueSize())
	for _, id := range ids {
		assert.Len(t, f.pub.matchesOf(id), 1, id)
	}
	assert.Len(t, f.games.LiveGames(), 10)
}

func TestInvitationLifecycle(t *testing.T) {
	f := newFixture(t, WithCoinFlip(func() bool { return false }))
	ctx := context.Background()

	inv, err := f.mm.CreateInvitation(ctx, "alice", 10, 5)
	require.NoError(t, err)
	assert.Len(t, inv.Code, 8)
	assert.Regexp(t, "^[0-9A-F]{8}$", inv.Code)
	assert.Equal(t, inv.CreatedAt.Add(15*time.Minute), inv.ExpiresAt)

	_, err = f.mm.AcceptInvitation(ctx, inv.Code, "alice")
	assert.ErrorIs(t, err, ErrSelfAccept)

	g, err := f.mm.AcceptInvitation(ctx, " "+inv.Code+" ", "bob")
	require.NoError(t, err)
	assert.Equal(t, entities.GameStatusActive, g.Status)
	assert.Equal(t, "bob", g.WhitePlayerId)
	assert.Equal(t, "alice", g.BlackPlayerId)
	assert.Equal(t, 10, g.TimeControl)
	require.Len(t, f.pub.matchesOf("alice"), 1)

	_, err = f.mm.AcceptInvitation(ctx, inv.Code, "carol")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestCancelInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	inv, err := f.mm.CreateInvitation(ctx, "alice", 5, 0)
	require.NoError(t, err)

	assert.ErrorIs(t, f.mm.CancelInvitation(ctx, inv.Code, "bob"), ErrNotInvitationCreator)
	assert.NoError(t, f.mm.CancelInvitation(ctx, inv.Code, "alice"))
	assert.NoError(t, f.mm.CancelInvitation(ctx, inv.Code, "alice"))

	_, err = f.mm.AcceptInvitation(ctx, inv.Code, "bob")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationExpiry(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expiring, err := f.mm.CreateInvitation(ctx, "alice", 5, 0)
	require.NoError(t, err)
	f.clock.advance(10 * time.Minute)
	fresh, err := f.mm.CreateInvitation(ctx, "carol", 5, 0)
	require.NoError(t, err)

	f.clock.advance(5 * time.Minute)
	_, err = f.mm.AcceptInvitation(ctx, expiring.Code, "bob")
	assert.ErrorIs(t, err, ErrInvitationNotFound)

	assert.Zero(t, f.mm.SweepInvitations(ctx))
	f.clock.advance(10 * time.Minute)
	assert.Equal(t, 1, f.mm.SweepInvitations(ctx))
	_, err = f.mm.AcceptInvitation(ctx, fresh.Code, "bob")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

func TestInvitationCodeCollision(t *testing.T) {
	codes := []string{"AAAAAAAA", "AAAAAAAA", "BBBBBBBB"}
	var i int
	f := newFixture(t, WithCodeGenerator(func() string {
		code := codes[i]
		i++
		return code
	}))
	ctx := context.Background()

	first, err := f.mm.CreateInvitation(ctx, "alice", 5, 0)
	require.NoError(t, err)
	second, err := f.mm.CreateInvitation(ctx, "bob", 5, 0)
	require.NoError(t, err)
	assert.Equal(t, "AAAAAAAA", first.Code)
	assert.Equal(t, "BBBBBBBB", second.Code)
}

func newRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb)
}

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	store := newRedisStore(t)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	inv := entities.Invitation{
		Code:            "ABCD1234",
		CreatorId:       "alice",
		CreatorUsername: "alice",
		CreatorRating:   1200,
		TimeControl:     5,
		CreatedAt:       now,
		ExpiresAt:       now.Add(15 * time.Minute),
	}
	require.NoError(t, store.Add(ctx, inv))
	assert.ErrorIs(t, store.Add(ctx, inv), errCodeInUse)

	got, err := store.Get(ctx, inv.Code)
	require.NoError(t, err)
	assert.Equal(t, inv.CreatorId, got.CreatorId)
	assert.True(t, inv.ExpiresAt.Equal(got.ExpiresAt))

	taken, err := store.Take(ctx, inv.Code)
	require.NoError(t, err)
	assert.Equal(t, inv.Code, taken.Code)
	_, err = store.Take(ctx, inv.Code)
	assert.ErrorIs(t, err, ErrInvitationNotFound)

	inv.Code = "EXPIRED1"
	require.NoError(t, store.Add(ctx, inv))
	removed, err := store.DeleteExpired(ctx, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Zero(t, removed)
	removed, err = store.DeleteExpired(ctx, now.Add(16*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	_, err = store.Get(ctx, inv.Code)
	assert.ErrorIs(t, err, ErrInvitationNotFound)
}

// failDel fails any pipeline that deletes key.
type failDel struct{ key string }

func (failDel) DialHook(next redis.DialHook) redis.DialHook { return next }
func (failDel) ProcessHook(next redis.ProcessHook) redis.ProcessHook { return next }

func (h failDel) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			if args := cmd.Args(); cmd.Name() == "del" && len(args) > 1 && args[1] == h.key {
				return errors.New("connection reset by peer")
			}
		}
		return next(ctx, cmds)
	}
}

func TestRedisStoreDeleteExpiredContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	store := NewRedisStore(rdb)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, code := range []string{"AAAAAAAA", "BBBBBBBB", "CCCCCCCC"} {
		require.NoError(t, store.Add(ctx, entities.Invitation{
			Code:      code,
			CreatorId: "alice",
			CreatedAt: now,
			ExpiresAt: now.Add(time.Minute),
		}))
	}
	rdb.AddHook(failDel{key: store.key("BBBBBBBB")})

	removed, err := store.DeleteExpired(ctx, now.Add(2*time.Minute))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BBBBBBBB")
	assert.Equal(t, 2, removed)

	_, err = store.Get(ctx, "AAAAAAAA")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
	_, err = store.Get(ctx, "CCCCCCCC")
	assert.ErrorIs(t, err, ErrInvitationNotFound)
	_, err = store.Get(ctx, "BBBBBBBB")
	assert.NoError(t, err)
}

func TestMatchmakerWithRedisStore(t *testing.T) {
	f := newFixture(t, WithInvitationStore(newRedisStore(t)))
	ctx := context.Background()

	inv, err := f.mm.CreateInvitation(ctx, "carol", 3, 0)
	require.NoError(t, err)
	_, err = f.mm.AcceptInvitation(ctx, inv.Code, "carol")
	assert.ErrorIs(t, err, ErrSelfAccept)

	g, err := f.mm.AcceptInvitation(ctx, inv.Code, "dave")
	require.NoError(t, err)
	assert.Equal(t, "carol", g.WhitePlayerId)
	assert.Equal(t, "dave", g.BlackPlayerId)
}
