package matchmaking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/chess-vn/chessd/internal/app/game"
	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/internal/domains/interfaces"
	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	baseRatingDiff    = 100
	ratingDiffStep    = 50
	ratingDiffMax     = 500
	toleranceInterval = 10 * time.Second

	codeLength   = 8
	codeAttempts = 5
)

// GameCreator is the game entry point used to seat a matched pair.
type GameCreator interface {
	CreateGame(ctx context.Context, creatorId string, minutes, increment int) (entities.Game, error)
	JoinGame(ctx context.Context, gameId, playerId string) (entities.Game, error)
}

type Config struct {
	InvitationTTL time.Duration
}

func DefaultConfig() Config {
	return Config{InvitationTTL: 15 * time.Minute}
}

type Matchmaker struct {
	mu    sync.Mutex
	queue []entities.QueueEntry

	invitations InvitationStore
	players     interfaces.IPlayerRepository
	games       GameCreator
	publisher   interfaces.IPublisher

	cfg     Config
	now     func() time.Time
	flip    func() bool
	newCode func() string
}

type Option func(*Matchmaker)

func WithClock(now func() time.Time) Option {
	return func(m *Matchmaker) { m.now = now }
}

// WithCoinFlip overrides color assignment. flip returning true keeps the first player white.
func WithCoinFlip(flip func() bool) Option {
	return func(m *Matchmaker) { m.flip = flip }
}

func WithCodeGenerator(f func() string) Option {
	return func(m *Matchmaker) { m.newCode = f }
}

func WithInvitationStore(s InvitationStore) Option {
	return func(m *Matchmaker) { m.invitations = s }
}

func NewMatchmaker(
	players interfaces.IPlayerRepository,
	games GameCreator,
	publisher interfaces.IPublisher,
	cfg Config,
	opts ...Option,
) *Matchmaker {
	m := &Matchmaker{
		players:   players,
		games:     games,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		flip:      func() bool { return rand.IntN(2) == 0 },
		newCode:   newInvitationCode,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.invitations == nil {
		m.invitations = NewMemoryStore()
	}
	if m.cfg.InvitationTTL <= 0 {
		m.cfg.InvitationTTL = DefaultConfig().InvitationTTL
	}
	return m
}

func newInvitationCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:codeLength])
}

func validTimeControl(minutes, increment int) error {
	if minutes <= 0 || increment < 0 {
		return fmt.Errorf("%w: %d+%d", game.ErrInvalidTimeControl, minutes, increment)
	}
	return nil
}

// JoinQueue enqueues the player, replacing any earlier entry, and tries to pair immediately.
func (m *Matchmaker) JoinQueue(ctx context.Context, playerId string, minutes, increment int) (entities.QueueEntry, error) {
	if err := validTimeControl(minutes, increment); err != nil {
		return entities.QueueEntry{}, err
	}
	player, err := m.players.GetPlayer(ctx, playerId)
	if err != nil {
		return entities.QueueEntry{}, fmt.Errorf("failed to load player: %w", err)
	}
	entry := entities.QueueEntry{
		PlayerId:    player.Id,
		Username:    player.Username,
		Rating:      player.Rating,
		TimeControl: minutes,
		Increment:   increment,
		QueuedAt:    m.now(),
	}

	m.mu.Lock()
	m.removeLocked(playerId)
	m.queue = append(m.queue, entry)
	pairs := m.pairLocked(entry.QueuedAt)
	m.mu.Unlock()

	logging.Info("player queued",
		zap.String("player_id", playerId),
		zap.Int("rating", player.Rating),
		zap.Int("minutes", minutes),
		zap.Int("increment", increment),
	)
	m.startMatches(ctx, pairs)
	return entry, nil
}

// LeaveQueue reports whether the player had a queue entry.
func (m *Matchmaker) LeaveQueue(playerId string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.removeLocked(playerId)
}

// Sweep pairs compatible queue entries whose tolerance has widened since they joined.
func (m *Matchmaker) Sweep(ctx context.Context) int {
	m.mu.Lock()
	pairs := m.pairLocked(m.now())
	m.mu.Unlock()

	m.startMatches(ctx, pairs)
	return len(pairs)
}

// QueueStatus returns the 1-based queue position of a player and how long they have waited.
func (m *Matchmaker) QueueStatus(playerId string) (int, time.Duration, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, e := range m.queue {
		if e.PlayerId == playerId {
			return i + 1, m.now().Sub(e.QueuedAt), true
		}
	}
	return 0, 0, false
}

func (m *Matchmaker) QueueSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *Matchmaker) removeLocked(playerId string) bool {
	for i, e := range m.queue {
		if e.PlayerId == playerId {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}
	return false
}

// pairLocked runs one first-fit scan in queue order and removes every matched entry.
func (m *Matchmaker) pairLocked(now time.Time) [][2]entities.QueueEntry {
	var pairs [][2]entities.QueueEntry
	matched := make([]bool, len(m.queue))
	for i := range m.queue {
		if matched[i] {
			continue
		}
		for j := i + 1; j < len(m.queue); j++ {
			if matched[j] || !compatible(m.queue[i], m.queue[j], now) {
				continue
			}
			matched[i], matched[j] = true, true
			pairs = append(pairs, [2]entities.QueueEntry{m.queue[i], m.queue[j]})
			break
		}
	}
	if len(pairs) == 0 {
		return nil
	}
	remaining := m.queue[:0]
	for i, e := range m.queue {
		if !matched[i] {
			remaining = append(remaining, e)
		}
	}
	clear(m.queue[len(remaining):])
	m.queue = remaining
	return pairs
}

func compatible(a, b entities.QueueEntry, now time.Time) bool {
	if a.PlayerId == b.PlayerId || a.TimeControl != b.TimeControl || a.Increment != b.Increment {
		return false
	}
	wait := min(now.Sub(a.QueuedAt), now.Sub(b.QueuedAt))
	diff := a.Rating - b.Rating
	if diff < 0 {
		diff = -diff
	}
	return diff <= allowedRatingDiff(wait)
}

// allowedRatingDiff widens the tolerance by 50 points for every 10 seconds of waiting, up to 500.
func allowedRatingDiff(wait time.Duration) int {
	if wait < 0 {
		wait = 0
	}
	steps := int(wait / toleranceInterval)
	return min(ratingDiffMax, baseRatingDiff+ratingDiffStep*steps)
}

func (m *Matchmaker) startMatches(ctx context.Context, pairs [][2]entities.QueueEntry) {
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		err := m.safeStart(ctx, seat{a.PlayerId, a.Username}, seat{b.PlayerId, b.Username}, a.TimeControl, a.Increment)
		if err != nil {
			logging.Error("failed to start matched game",
				zap.String("player_a", a.PlayerId),
				zap.String("player_b", b.PlayerId),
				zap.Error(err),
			)
			for _, playerId := range []string{a.PlayerId, b.PlayerId} {
				m.publisher.PublishPlayer(playerId, dtos.ErrorMessage{
					Type:    dtos.MessageError,
					Code:    "MATCH_FAILED",
					Message: "failed to start matched game",
				})
			}
		}
	}
}

type seat struct {
	id       string
	username string
}

func (m *Matchmaker) safeStart(ctx context.Context, a, b seat, minutes, increment int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	_, err = m.start(ctx, a, b, minutes, increment)
	return err
}

// start seats a pair with random colors and notifies both players.
func (m *Matchmaker) start(ctx context.Context, a, b seat, minutes, increment int) (entities.Game, error) {
	white, black := a, b
	if !m.flip() {
		white, black = b, a
	}
	created, err := m.games.CreateGame(ctx, white.id, minutes, increment)
	if err != nil {
		return entities.Game{}, err
	}
	started, err := m.games.JoinGame(ctx, created.Id, black.id)
	if err != nil {
		return entities.Game{}, err
	}

	msg := dtos.MatchFoundMessage{
		Type:          dtos.MessageMatchFound,
		GameId:        started.Id,
		WhitePlayerId: white.id,
		WhiteUsername: white.username,
		BlackPlayerId: black.id,
		BlackUsername: black.username,
		TimeControl:   minutes,
		Increment:     increment,
	}
	m.publisher.PublishPlayer(white.id, msg)
	m.publisher.PublishPlayer(black.id, msg)
	logging.Info("match found",
		zap.String("game_id", started.Id),
		zap.String("white_id", white.id),
		zap.String("black_id", black.id),
	)
	return started, nil
}

func (m *Matchmaker) CreateInvitation(ctx context.Context, creatorId string, minutes, increment int) (entities.Invitation, error) {
	if err := validTimeControl(minutes, increment); err != nil {
		return entities.Invitation{}, err
	}
	creator, err := m.players.GetPlayer(ctx, creatorId)
	if err != nil {
		return entities.Invitation{}, fmt.Errorf("failed to load creator: %w", err)
	}
	now := m.now()
	inv := entities.Invitation{
		CreatorId:       creator.Id,
		CreatorUsername: creator.Username,
		CreatorRating:   creator.Rating,
		TimeControl:     minutes,
		Increment:       increment,
		CreatedAt:       now,
		ExpiresAt:       now.Add(m.cfg.InvitationTTL),
	}
	for range codeAttempts {
		inv.Code = m.newCode()
		err = m.invitations.Add(ctx, inv)
		if !errors.Is(err, errCodeInUse) {
			break
		}
	}
	if err != nil {
		return entities.Invitation{}, fmt.Errorf("failed to create invitation: %w", err)
	}
	logging.Info("invitation created", zap.String("code", inv.Code), zap.String("player_id", creatorId))
	return inv, nil
}

// AcceptInvitation consumes the invitation and starts the game. Only one acceptor can win a race.
func (m *Matchmaker) AcceptInvitation(ctx context.Context, code, playerId string) (entities.Game, error) {
	code = normalizeCode(code)
	inv, err := m.invitations.Get(ctx, code)
	if err != nil {
		return entities.Game{}, err
	}
	if inv.Expired(m.now()) {
		_ = m.invitations.Delete(ctx, code)
		return entities.Game{}, ErrInvitationNotFound
	}
	if inv.CreatorId == playerId {
		return entities.Game{}, ErrSelfAccept
	}
	acceptor, err := m.players.GetPlayer(ctx, playerId)
	if err != nil {
		return entities.Game{}, fmt.Errorf("failed to load player: %w", err)
	}
	if inv, err = m.invitations.Take(ctx, code); err != nil {
		return entities.Game{}, err
	}
	return m.start(ctx,
		seat{inv.CreatorId, inv.CreatorUsername},
		seat{acceptor.Id, acceptor.Username},
		inv.TimeControl, inv.Increment,
	)
}

// CancelInvitation removes an invitation owned by playerId. Cancelling a missing invitation is not an error.
func (m *Matchmaker) CancelInvitation(ctx context.Context, code, playerId string) error {
	code = normalizeCode(code)
	inv, err := m.invitations.Get(ctx, code)
	if errors.Is(err, ErrInvitationNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if inv.CreatorId != playerId {
		return ErrNotInvitationCreator
	}
	return m.invitations.Delete(ctx, code)
}

func (m *Matchmaker) SweepInvitations(ctx context.Context) int {
	removed, err := m.invitations.DeleteExpired(ctx, m.now())
	if err != nil {
		logging.Error("invitation sweep failed", zap.Error(err))
	}
	if removed > 0 {
		logging.Debug("expired invitations removed", zap.Int("count", removed))
	}
	return removed
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
