package game

import (
	"context"
	"fmt"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/chess-vn/chessd/pkg/pgn"
	"go.uber.org/zap"
)

// RequestAnalysis queues the current position of a game for the engine. It never waits for the result.
func (mgr *Manager) RequestAnalysis(ctx context.Context, gameId string, depth int) error {
	m, err := mgr.lookup(gameId)
	if err != nil {
		return err
	}
	mgr.submitAnalysis(dtos.AnalysisRequest{
		GameId: gameId,
		Fen:    m.Snapshot().Fen,
		Depth:  depth,
	})
	return nil
}

// RequestReview queues every position of a finished game and returns how many were submitted.
func (mgr *Manager) RequestReview(ctx context.Context, gameId string) (int, error) {
	game, err := mgr.GetGame(ctx, gameId)
	if err != nil {
		return 0, err
	}
	if !game.Status.IsTerminal() || game.Pgn == "" {
		return 0, ErrReviewUnavailable
	}
	fens, err := pgn.Positions(game.Pgn)
	if err != nil {
		return 0, fmt.Errorf("failed to replay game record: %w", err)
	}
	submitted := 0
	for _, fen := range fens {
		if mgr.submitAnalysis(dtos.AnalysisRequest{GameId: gameId, Fen: fen}) {
			submitted++
		}
	}
	return submitted, nil
}

func (mgr *Manager) submitAnalysis(req dtos.AnalysisRequest) bool {
	if mgr.analyzer == nil {
		logging.Debug("analysis unavailable, request dropped", zap.String("game_id", req.GameId))
		return false
	}
	if req.Depth <= 0 {
		req.Depth = mgr.cfg.AnalysisDepth
	}
	return mgr.analyzer.Submit(req)
}

// DeliverAnalysis publishes an engine result on the game's topic, or drops it if the game is gone.
func (mgr *Manager) DeliverAnalysis(req dtos.AnalysisRequest, result dtos.AnalysisResult) {
	m, err := mgr.lookup(req.GameId)
	if err != nil {
		logging.Debug("analysis result dropped", zap.String("game_id", req.GameId))
		return
	}
	game := m.Snapshot()
	mgr.publisher.PublishGame(dtos.GameMessage{
		Type:               dtos.MessageAnalysis,
		GameId:             game.Id,
		Fen:                req.Fen,
		Status:             game.Status,
		CurrentTurn:        game.Turn,
		WhiteTimeRemaining: game.WhiteTimeRemaining,
		BlackTimeRemaining: game.BlackTimeRemaining,
		WhitePlayerId:      game.WhitePlayerId,
		BlackPlayerId:      game.BlackPlayerId,
		Analysis:           &result,
	})
}
