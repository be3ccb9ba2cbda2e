package game

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/pkg/board"
	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/chess-vn/chessd/pkg/pgn"
	"go.uber.org/zap"
)

type action int

const (
	actionJoin action = iota
	actionMove
	actionResign
	actionOfferDraw
	actionAcceptDraw
	actionDeclineDraw
	actionTimeout
	actionAbort
	actionAbandon
)

type command struct {
	action   action
	playerId string
	move     board.Move
	replyCh  chan reply
}

type reply struct {
	game entities.Game
	err  error
}

// match owns one game. Only run mutates pos and game.
type match struct {
	id   string
	mgr  *Manager
	pos  board.Position
	game entities.Game

	cmdCh chan command
	done  chan struct{}

	mu       sync.RWMutex
	snapshot entities.Game
}

func newMatch(mgr *Manager, game entities.Game, pos board.Position) *match {
	return &match{
		id:       game.Id,
		mgr:      mgr,
		pos:      pos,
		game:     game,
		cmdCh:    make(chan command),
		done:     make(chan struct{}),
		snapshot: game.Clone(),
	}
}

func (m *match) run() {
	defer close(m.done)
	for cmd := range m.cmdCh {
		game, err := m.handle(cmd)
		cmd.replyCh <- reply{game: game, err: err}
		if m.game.Status.IsTerminal() {
			m.mgr.handleEndGame(m.Snapshot())
			return
		}
	}
}

func (m *match) submit(ctx context.Context, cmd command) (entities.Game, error) {
	cmd.replyCh = make(chan reply, 1)
	select {
	case m.cmdCh <- cmd:
	case <-m.done:
		return m.closed(cmd.action)
	case <-ctx.Done():
		return entities.Game{}, ctx.Err()
	}
	select {
	case r := <-cmd.replyCh:
		return r.game, r.err
	case <-ctx.Done():
		return entities.Game{}, ctx.Err()
	}
}

// closed answers commands that arrive after the game has finished.
func (m *match) closed(a action) (entities.Game, error) {
	snapshot := m.Snapshot()
	switch a {
	case actionJoin:
		return snapshot, ErrGameNotJoinable
	case actionTimeout, actionAbandon:
		return snapshot, nil
	}
	return snapshot, ErrGameNotActive
}

func (m *match) Snapshot() entities.Game {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot.Clone()
}

func (m *match) handle(cmd command) (entities.Game, error) {
	switch cmd.action {
	case actionJoin:
		return m.join(cmd.playerId)
	case actionMove:
		return m.makeMove(cmd.playerId, cmd.move)
	case actionResign:
		return m.resign(cmd.playerId)
	case actionOfferDraw:
		return m.offerDraw(cmd.playerId)
	case actionAcceptDraw:
		return m.answerDraw(cmd.playerId, true)
	case actionDeclineDraw:
		return m.answerDraw(cmd.playerId, false)
	case actionTimeout:
		return m.timeout()
	case actionAbort:
		return m.abort(cmd.playerId)
	case actionAbandon:
		return m.abandon(cmd.playerId)
	}
	return m.game.Clone(), fmt.Errorf("unknown action %d", cmd.action)
}

func (m *match) join(playerId string) (entities.Game, error) {
	if m.game.Status != entities.GameStatusWaiting {
		return m.game.Clone(), ErrGameNotJoinable
	}
	if playerId == m.game.WhitePlayerId {
		return m.game.Clone(), ErrSelfJoin
	}
	now := m.mgr.now()
	m.game.BlackPlayerId = playerId
	m.game.Status = entities.GameStatusActive
	m.game.StartedAt = now
	m.game.LastMoveAt = now

	logging.Info("game started",
		zap.String("game_id", m.id),
		zap.String("white_id", m.game.WhitePlayerId),
		zap.String("black_id", playerId),
	)
	return m.commit(m.message(dtos.MessageGameStart, playerId)), nil
}

func (m *match) makeMove(playerId string, mv board.Move) (entities.Game, error) {
	if m.game.Status != entities.GameStatusActive {
		return m.game.Clone(), ErrGameNotActive
	}
	mover := m.pos.Turn
	if m.game.Seat(playerId) != mover.String() {
		return m.game.Clone(), ErrNotYourTurn
	}
	if !m.pos.IsLegal(mv) {
		return m.game.Clone(), fmt.Errorf("%w: %s", ErrIllegalMove, mv)
	}

	now := m.mgr.now()
	m.chargeClock(mover, now)
	m.addIncrement(mover)

	san := m.pos.Notation(mv)
	if mover == board.White {
		m.game.Transcript += fmt.Sprintf("%d. %s ", m.pos.FullMoveNumber, san)
	} else {
		m.game.Transcript += san + " "
	}
	m.pos = m.pos.Apply(mv)
	m.game.Moves = append(m.game.Moves, mv.String())
	m.game.Fen = m.pos.Encode()
	m.game.Turn = m.pos.Turn.String()
	m.game.LastMoveAt = now

	msgType := dtos.MessageMove
	switch {
	case m.pos.IsCheckmate():
		result := entities.ResultWhiteWins
		if mover == board.Black {
			result = entities.ResultBlackWins
		}
		m.finish(entities.GameStatusCompleted, result, now)
	case m.pos.IsStalemate():
		m.finish(entities.GameStatusCompleted, entities.ResultStalemate, now)
	case m.pos.IsInsufficientMaterial():
		m.finish(entities.GameStatusCompleted, entities.ResultDraw, now)
	}
	if m.game.Status.IsTerminal() {
		msgType = dtos.MessageGameEnd
	}

	msg := m.message(msgType, playerId)
	msg.From = mv.From.String()
	msg.To = mv.To.String()
	if mv.Promotion != board.NoPieceType {
		msg.Promotion = mv.String()[4:]
	}
	return m.commit(msg), nil
}

func (m *match) resign(playerId string) (entities.Game, error) {
	if m.game.Status != entities.GameStatusActive && m.game.Status != entities.GameStatusDrawOffered {
		return m.game.Clone(), ErrGameNotActive
	}
	var result entities.GameResult
	switch m.game.Seat(playerId) {
	case entities.SideWhite:
		result = entities.ResultWhiteResigned
	case entities.SideBlack:
		result = entities.ResultBlackResigned
	default:
		return m.game.Clone(), ErrNotInGame
	}
	m.finish(entities.GameStatusCompleted, result, m.mgr.now())
	return m.commit(m.message(dtos.MessageResign, playerId)), nil
}

func (m *match) offerDraw(playerId string) (entities.Game, error) {
	if m.game.Status != entities.GameStatusActive {
		return m.game.Clone(), ErrGameNotActive
	}
	if m.game.Seat(playerId) == "" {
		return m.game.Clone(), ErrNotInGame
	}
	m.game.Status = entities.GameStatusDrawOffered
	m.game.DrawOfferedBy = playerId
	return m.commit(m.message(dtos.MessageDrawOffer, playerId)), nil
}

func (m *match) answerDraw(playerId string, accept bool) (entities.Game, error) {
	if m.game.Status != entities.GameStatusDrawOffered {
		if m.game.Status == entities.GameStatusActive {
			return m.game.Clone(), ErrNoDrawOffer
		}
		return m.game.Clone(), ErrGameNotActive
	}
	if m.game.Seat(playerId) == "" {
		return m.game.Clone(), ErrNotInGame
	}
	if playerId == m.game.DrawOfferedBy {
		return m.game.Clone(), ErrOwnDrawOffer
	}
	if accept {
		m.finish(entities.GameStatusCompleted, entities.ResultDraw, m.mgr.now())
		return m.commit(m.message(dtos.MessageDrawAccept, playerId)), nil
	}
	m.game.Status = entities.GameStatusActive
	m.game.DrawOfferedBy = ""
	return m.commit(m.message(dtos.MessageDrawDecline, playerId)), nil
}

func (m *match) timeout() (entities.Game, error) {
	if m.game.Status != entities.GameStatusActive {
		return m.game.Clone(), nil
	}
	now := m.mgr.now()
	white, black := remainingAt(m.game, now)
	var result entities.GameResult
	switch {
	case white <= 0:
		result = entities.ResultWhiteTimeout
	case black <= 0:
		result = entities.ResultBlackTimeout
	default:
		return m.game.Clone(), nil
	}
	m.game.WhiteTimeRemaining = max(0, white)
	m.game.BlackTimeRemaining = max(0, black)
	m.finish(entities.GameStatusCompleted, result, now)
	return m.commit(m.message(dtos.MessageTimeout, "")), nil
}

func (m *match) abort(playerId string) (entities.Game, error) {
	switch m.game.Status {
	case entities.GameStatusWaiting:
		if playerId != m.game.WhitePlayerId {
			return m.game.Clone(), ErrNotInGame
		}
	case entities.GameStatusActive:
		if m.game.Seat(playerId) == "" {
			return m.game.Clone(), ErrNotInGame
		}
		if len(m.game.Moves) > 0 {
			return m.game.Clone(), ErrAbortTooLate
		}
	default:
		return m.game.Clone(), ErrGameNotActive
	}
	m.finish(entities.GameStatusAborted, entities.ResultAborted, m.mgr.now())
	return m.commit(m.message(dtos.MessageAbort, playerId)), nil
}

// abandon forfeits the game of a player who left it.
func (m *match) abandon(playerId string) (entities.Game, error) {
	if m.game.Status != entities.GameStatusActive && m.game.Status != entities.GameStatusDrawOffered {
		return m.game.Clone(), nil
	}
	var result entities.GameResult
	switch m.game.Seat(playerId) {
	case entities.SideWhite:
		result = entities.ResultBlackWins
	case entities.SideBlack:
		result = entities.ResultWhiteWins
	default:
		return m.game.Clone(), ErrNotInGame
	}
	m.finish(entities.GameStatusAbandoned, result, m.mgr.now())
	return m.commit(m.message(dtos.MessageAbandon, playerId)), nil
}

// finish moves the game into a terminal status, settles ratings and renders its record.
func (m *match) finish(status entities.GameStatus, result entities.GameResult, now time.Time) {
	m.game.Status = status
	m.game.Result = result
	m.game.EndedAt = now
	m.game.DrawOfferedBy = ""
	if status != entities.GameStatusAborted {
		m.mgr.settle(&m.game)
	}
	text, err := pgn.Export(m.game)
	if err != nil {
		logging.Warn("failed to export pgn", zap.String("game_id", m.id), zap.Error(err))
		return
	}
	m.game.Pgn = text
}

func (m *match) message(msgType dtos.MessageType, playerId string) dtos.GameMessage {
	return dtos.GameMessageFromEntity(msgType, playerId, m.game)
}

// commit publishes the current state: snapshot first, then storage and subscribers.
func (m *match) commit(msg dtos.GameMessage) entities.Game {
	snapshot := m.game.Clone()
	m.mu.Lock()
	m.snapshot = snapshot
	m.mu.Unlock()

	m.mgr.save(snapshot)
	m.mgr.publisher.PublishGame(msg)
	return snapshot.Clone()
}
