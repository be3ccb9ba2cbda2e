package game

import (
	"context"
	"errors"
	"fmt"

	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/chess-vn/chessd/pkg/utils"
	"go.uber.org/zap"
)

// saveAttempts bounds retries when another writer saved the player first.
const saveAttempts = 3

// settle updates both players' ratings and tallies and stamps the deltas on the game.
// Storage failures leave the game unsettled but never block its termination.
func (mgr *Manager) settle(game *entities.Game) {
	if game.RatingsSettled || game.BlackPlayerId == "" {
		return
	}
	whiteScore, rated := game.Result.WhiteScore()
	if !rated {
		return
	}

	unlock := mgr.playerLocks.lock(game.WhitePlayerId, game.BlackPlayerId)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), mgr.cfg.StoreTimeout)
	defer cancel()

	white, err := mgr.players.GetPlayer(ctx, game.WhitePlayerId)
	if err != nil {
		logging.Error("failed to load white player", zap.String("game_id", game.Id), zap.Error(err))
		return
	}
	black, err := mgr.players.GetPlayer(ctx, game.BlackPlayerId)
	if err != nil {
		logging.Error("failed to load black player", zap.String("game_id", game.Id), zap.Error(err))
		return
	}

	whiteDelta, blackDelta := utils.CalculateRatingChanges(white.Rating, black.Rating, game.Result)
	if err := mgr.updatePlayer(ctx, white, whiteDelta, whiteScore); err != nil {
		logging.Error("failed to save white player", zap.String("player_id", white.Id), zap.Error(err))
	}
	if err := mgr.updatePlayer(ctx, black, blackDelta, 1-whiteScore); err != nil {
		logging.Error("failed to save black player", zap.String("player_id", black.Id), zap.Error(err))
	}

	game.WhiteRatingChange = whiteDelta
	game.BlackRatingChange = blackDelta
	game.RatingsSettled = true
	logging.Info("ratings settled",
		zap.String("game_id", game.Id),
		zap.String("result", string(game.Result)),
		zap.Int("white_delta", whiteDelta),
		zap.Int("black_delta", blackDelta),
	)
}

// updatePlayer applies one result to p, reloading and reapplying it if the record moved on meanwhile.
func (mgr *Manager) updatePlayer(ctx context.Context, p entities.Player, delta int, score float64) error {
	for attempt := 1; ; attempt++ {
		err := mgr.players.SavePlayer(ctx, utils.ApplyResult(p, delta, score))
		if !errors.Is(err, entities.ErrPlayerConflict) {
			return err
		}
		if attempt == saveAttempts {
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		}
		if p, err = mgr.players.GetPlayer(ctx, p.Id); err != nil {
			return err
		}
	}
}
