package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/internal/domains/interfaces"
	"github.com/chess-vn/chessd/pkg/board"
	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Analyzer accepts fire-and-forget analysis requests. Submit must not block.
type Analyzer interface {
	Submit(req dtos.AnalysisRequest) bool
}

// EndGameHook runs once per game after it reaches a terminal status.
type EndGameHook func(ctx context.Context, game entities.Game)

// Manager is the registry of live games. Each game is owned by its own match goroutine.
type Manager struct {
	matches     sync.Map
	presence    sync.Map
	playerLocks playerLocks

	players   interfaces.IPlayerRepository
	games     interfaces.IGameRepository
	publisher interfaces.IPublisher
	analyzer  Analyzer
	hooks     []EndGameHook

	cfg   Config
	now   func() time.Time
	newId func() string
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithAnalyzer(a Analyzer) Option {
	return func(m *Manager) { m.analyzer = a }
}

func WithEndGameHook(h EndGameHook) Option {
	return func(m *Manager) { m.hooks = append(m.hooks, h) }
}

func WithIdGenerator(f func() string) Option {
	return func(m *Manager) { m.newId = f }
}

func NewManager(
	players interfaces.IPlayerRepository,
	games interfaces.IGameRepository,
	publisher interfaces.IPublisher,
	cfg Config,
	opts ...Option,
) *Manager {
	mgr := &Manager{
		players:   players,
		games:     games,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
		newId:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(mgr)
	}
	if mgr.publisher == nil {
		mgr.publisher = nopPublisher{}
	}
	if mgr.cfg.StoreTimeout <= 0 {
		mgr.cfg.StoreTimeout = 5 * time.Second
	}
	return mgr
}

// CreateGame opens a WAITING game with the creator seated as white.
func (mgr *Manager) CreateGame(ctx context.Context, creatorId string, minutes, increment int) (entities.Game, error) {
	if minutes <= 0 || increment < 0 {
		return entities.Game{}, fmt.Errorf("%w: %d+%d", ErrInvalidTimeControl, minutes, increment)
	}
	if _, err := mgr.players.GetPlayer(ctx, creatorId); err != nil {
		return entities.Game{}, fmt.Errorf("failed to load creator: %w", err)
	}

	now := mgr.now()
	pos := board.StartingPosition()
	clock := int64(minutes) * 60_000
	game := entities.Game{
		Id:                 mgr.newId(),
		WhitePlayerId:      creatorId,
		Fen:                pos.Encode(),
		Moves:              []string{},
		Status:             entities.GameStatusWaiting,
		Turn:               pos.Turn.String(),
		TimeControl:        minutes,
		Increment:          increment,
		WhiteTimeRemaining: clock,
		BlackTimeRemaining: clock,
		CreatedAt:          now,
	}
	mgr.save(game)
	mgr.publisher.PublishGame(dtos.GameMessageFromEntity(dtos.MessagePlayerJoined, creatorId, game))

	m := newMatch(mgr, game, pos)
	mgr.matches.Store(game.Id, m)
	go m.run()
	logging.Info("game created",
		zap.String("game_id", game.Id),
		zap.String("player_id", creatorId),
		zap.Int("minutes", minutes),
		zap.Int("increment", increment),
	)
	return game.Clone(), nil
}

func (mgr *Manager) JoinGame(ctx context.Context, gameId, playerId string) (entities.Game, error) {
	m, err := mgr.lookup(gameId)
	if err != nil {
		return entities.Game{}, err
	}
	if _, err := mgr.players.GetPlayer(ctx, playerId); err != nil {
		return entities.Game{}, fmt.Errorf("failed to load player: %w", err)
	}
	return m.submit(ctx, command{action: actionJoin, playerId: playerId})
}

func (mgr *Manager) MakeMove(ctx context.Context, gameId, playerId string, mv board.Move) (entities.Game, error) {
	m, err := mgr.lookup(gameId)
	if err != nil {
		return entities.Game{}, err
	}
	return m.submit(ctx, command{action: actionMove, playerId: playerId, move: mv})
}

func (mgr *Manager) Resign(ctx context.Context, gameId, playerId string) (entities.Game, error) {
	return mgr.dispatch(ctx, gameId, command{action: actionResign, playerId: playerId})
}

func (mgr *Manager) OfferDraw(ctx context.Context, gameId, playerId string) (entities.Game, error) {
	return mgr.dispatch(ctx, gameId, command{action: actionOfferDraw, playerId: playerId})
}

func (mgr *Manager) AcceptDraw(ctx context.Context, gameId, playerId string) (entities.Game, error) {
	return mgr.dispatch(ctx, gameId, command{action: actionAcceptDraw, playerId: playerId})
}

func (mgr *Manager) DeclineDraw(ctx context.Context, gameId, playerId string) (entities.Game, error) {
	return mgr.dispatch(ctx, gameId, command{action: actionDeclineDraw, playerId: playerId})
}

func (mgr *Manager) Abort(ctx context.Context, gameId, playerId string) (entities.Game, error) {
	return mgr.dispatch(ctx, gameId, command{action: actionAbort, playerId: playerId})
}

// HandleTimeout ends an ACTIVE game whose side to move has run out of time. It is a no-op otherwise.
func (mgr *Manager) HandleTimeout(ctx context.Context, gameId string) (entities.Game, error) {
	return mgr.dispatch(ctx, gameId, command{action: actionTimeout})
}

func (mgr *Manager) dispatch(ctx context.Context, gameId string, cmd command) (entities.Game, error) {
	m, err := mgr.lookup(gameId)
	if err != nil {
		return entities.Game{}, err
	}
	return m.submit(ctx, cmd)
}

// GetGame returns the live snapshot, falling back to the stored record for pruned games.
func (mgr *Manager) GetGame(ctx context.Context, gameId string) (entities.Game, error) {
	if m, err := mgr.lookup(gameId); err == nil {
		return m.Snapshot(), nil
	}
	game, err := mgr.games.GetGame(ctx, gameId)
	if err != nil {
		return entities.Game{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameId)
	}
	return game, nil
}

// LiveGames returns snapshots of every game that has not finished yet.
func (mgr *Manager) LiveGames() []entities.Game {
	var games []entities.Game
	mgr.matches.Range(func(_, value any) bool {
		if g := value.(*match).Snapshot(); !g.Status.IsTerminal() {
			games = append(games, g)
		}
		return true
	})
	return games
}

func (mgr *Manager) lookup(gameId string) (*match, error) {
	value, ok := mgr.matches.Load(gameId)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameId)
	}
	return value.(*match), nil
}

// save persists a snapshot. Storage failures never block game play.
func (mgr *Manager) save(game entities.Game) {
	ctx, cancel := context.WithTimeout(context.Background(), mgr.cfg.StoreTimeout)
	defer cancel()
	if err := mgr.games.SaveGame(ctx, game); err != nil {
		logging.Error("failed to save game", zap.String("game_id", game.Id), zap.Error(err))
	}
}

func (mgr *Manager) handleEndGame(game entities.Game) {
	logging.Info("game ended",
		zap.String("game_id", game.Id),
		zap.String("status", string(game.Status)),
		zap.String("result", string(game.Result)),
	)
	for _, hook := range mgr.hooks {
		ctx, cancel := context.WithTimeout(context.Background(), mgr.cfg.StoreTimeout)
		hook(ctx, game)
		cancel()
	}
}

type nopPublisher struct{}

func (nopPublisher) PublishGame(dtos.GameMessage) {}

func (nopPublisher) PublishPlayer(string, any) {}
