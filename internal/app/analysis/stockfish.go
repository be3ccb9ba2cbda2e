package analysis

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/freeeve/uci"
)

var ErrNoResult = errors.New("engine returned no result")

// Engine evaluates one position at a time.
type Engine interface {
	Analyze(fen string, depth int) (dtos.AnalysisResult, error)
	Close()
}

type Stockfish struct {
	mu     sync.Mutex
	engine *uci.Engine
}

func NewStockfish(cfg Config) (*Stockfish, error) {
	engine, err := uci.NewEngine(cfg.StockfishPath)
	if err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}
	err = engine.SetOptions(uci.Options{
		Threads: cfg.Threads,
		Hash:    cfg.Hash,
		MultiPV: 1,
		Ponder:  false,
		OwnBook: false,
	})
	if err != nil {
		engine.Close()
		return nil, fmt.Errorf("failed to set engine options: %w", err)
	}
	return &Stockfish{engine: engine}, nil
}

func (s *Stockfish) Analyze(fen string, depth int) (dtos.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.engine.SetFEN(fen); err != nil {
		return dtos.AnalysisResult{}, fmt.Errorf("failed to set position: %w", err)
	}
	results, err := s.engine.GoDepth(depth, uci.HighestDepthOnly)
	if err != nil {
		return dtos.AnalysisResult{}, fmt.Errorf("failed to search: %w", err)
	}
	return resultFromUCI(results)
}

func (s *Stockfish) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Close()
}

// resultFromUCI keeps the principal line of the deepest search.
func resultFromUCI(results *uci.Results) (dtos.AnalysisResult, error) {
	if results == nil || len(results.Results) == 0 {
		return dtos.AnalysisResult{}, ErrNoResult
	}
	best := results.Results[0]
	for _, r := range results.Results[1:] {
		if r.MultiPV <= 1 && r.Depth > best.Depth {
			best = r
		}
	}

	res := dtos.AnalysisResult{
		BestMove: results.BestMove,
		Pv:       strings.Join(best.BestMoves, " "),
		Depth:    best.Depth,
	}
	if res.BestMove == "" && len(best.BestMoves) > 0 {
		res.BestMove = best.BestMoves[0]
	}
	if best.Mate {
		mate := best.Score
		res.Mate = &mate
	} else {
		res.Evaluation = best.Score
	}
	return res, nil
}
