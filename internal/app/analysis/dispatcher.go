package analysis

import (
	"context"
	"time"

	"github.com/chess-vn/chessd/internal/domains/dtos"
	"github.com/chess-vn/chessd/pkg/logging"
	"go.uber.org/zap"
)

// DeliverFunc receives each finished analysis.
type DeliverFunc func(req dtos.AnalysisRequest, result dtos.AnalysisResult)

// Dispatcher queues analysis requests for a single engine worker. A full queue or a missing
// engine drops requests instead of blocking the caller.
type Dispatcher struct {
	engine Engine
	queue  chan dtos.AnalysisRequest
	cfg    Config
}

func NewDispatcher(engine Engine, cfg Config) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultConfig().QueueSize
	}
	if cfg.Depth <= 0 {
		cfg.Depth = DefaultConfig().Depth
	}
	return &Dispatcher{
		engine: engine,
		queue:  make(chan dtos.AnalysisRequest, cfg.QueueSize),
		cfg:    cfg,
	}
}

func (d *Dispatcher) Submit(req dtos.AnalysisRequest) bool {
	if d == nil || d.engine == nil {
		return false
	}
	select {
	case d.queue <- req:
		return true
	default:
		logging.Warn("analysis queue full, request dropped", zap.String("game_id", req.GameId))
		return false
	}
}

func (d *Dispatcher) Pending() int {
	return len(d.queue)
}

// Run drains the queue until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context, deliver DeliverFunc) {
	if d.engine == nil {
		<-ctx.Done()
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.queue:
			result, ok := d.analyze(ctx, req)
			if ok {
				deliver(req, result)
			}
		}
	}
}

func (d *Dispatcher) analyze(ctx context.Context, req dtos.AnalysisRequest) (dtos.AnalysisResult, bool) {
	depth := req.Depth
	if depth <= 0 {
		depth = d.cfg.Depth
	}

	type outcome struct {
		result dtos.AnalysisResult
		err    error
	}
	done := make(chan outcome, 1)
	start := time.Now()
	go func() {
		result, err := d.engine.Analyze(req.Fen, depth)
		done <- outcome{result, err}
	}()

	var timeout <-chan time.Time
	if d.cfg.Timeout > 0 {
		timer := time.NewTimer(d.cfg.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case o := <-done:
		if o.err != nil {
			logging.Error("analysis failed", zap.String("game_id", req.GameId), zap.Error(o.err))
			return dtos.AnalysisResult{}, false
		}
		logging.Debug("analysis finished",
			zap.String("game_id", req.GameId),
			zap.Int("depth", o.result.Depth),
			zap.Duration("took", time.Since(start)),
		)
		return o.result, true
	case <-timeout:
		logging.Warn("analysis timed out", zap.String("game_id", req.GameId))
	case <-ctx.Done():
	}
	return dtos.AnalysisResult{}, false
}

func (d *Dispatcher) Close() {
	if d.engine != nil {
		d.engine.Close()
	}
}
