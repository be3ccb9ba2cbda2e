package game

import (
	"context"
	"fmt"
	"time"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/pkg/logging"
	"go.uber.org/zap"
)

// SweepTimeouts checks every live game once: flag falls, abandoned seats, stale open games and
// expired finished games.
// A failing game is logged and skipped.
func (mgr *Manager) SweepTimeouts(ctx context.Context) {
	now := mgr.now()
	mgr.matches.Range(func(key, value any) bool {
		if ctx.Err() != nil {
			return false
		}
		m := value.(*match)
		if err := mgr.sweepMatch(ctx, m, now); err != nil {
			logging.Error("timeout sweep failed", zap.String("game_id", m.id), zap.Error(err))
		}
		return true
	})
}

func (mgr *Manager) sweepMatch(ctx context.Context, m *match, now time.Time) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	game := m.Snapshot()
	switch game.Status {
	case entities.GameStatusWaiting:
		if mgr.waitingExpired(game, now) {
			logging.Info("open game expired", zap.String("game_id", game.Id), zap.String("player_id", game.WhitePlayerId))
			_, err = m.submit(ctx, command{action: actionAbort, playerId: game.WhitePlayerId})
			return err
		}
	case entities.GameStatusActive:
		if white, black := remainingAt(game, now); white <= 0 || black <= 0 {
			_, err = m.submit(ctx, command{action: actionTimeout})
			return err
		}
		return mgr.sweepPresence(ctx, m, game, now)
	case entities.GameStatusDrawOffered:
		return mgr.sweepPresence(ctx, m, game, now)
	case entities.GameStatusCompleted, entities.GameStatusAbandoned, entities.GameStatusAborted:
		if now.Sub(game.EndedAt) >= mgr.cfg.FinishedRetention {
			mgr.matches.Delete(game.Id)
			logging.Debug("game pruned", zap.String("game_id", game.Id))
		}
	}
	return nil
}

func (mgr *Manager) sweepPresence(ctx context.Context, m *match, game entities.Game, now time.Time) error {
	if mgr.cfg.AbandonAfter <= 0 {
		return nil
	}
	for _, playerId := range []string{game.WhitePlayerId, game.BlackPlayerId} {
		since, ok := mgr.disconnectedSince(playerId)
		if !ok || now.Sub(since) < mgr.cfg.AbandonAfter {
			continue
		}
		logging.Info("player abandoned game", zap.String("game_id", game.Id), zap.String("player_id", playerId))
		_, err := m.submit(ctx, command{action: actionAbandon, playerId: playerId})
		return err
	}
	return nil
}

// waitingExpired reports whether an unjoined game has waited too long or its creator has left.
func (mgr *Manager) waitingExpired(game entities.Game, now time.Time) bool {
	if mgr.cfg.WaitingExpiry > 0 && now.Sub(game.CreatedAt) >= mgr.cfg.WaitingExpiry {
		return true
	}
	if mgr.cfg.AbandonAfter <= 0 {
		return false
	}
	since, ok := mgr.disconnectedSince(game.WhitePlayerId)
	return ok && now.Sub(since) >= mgr.cfg.AbandonAfter
}
