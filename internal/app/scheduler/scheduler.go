package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

// Job is a periodic background task. Run must return once ctx is cancelled.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context)
}

type Scheduler struct {
	cron   gocron.Scheduler
	ctx    context.Context
	cancel context.CancelFunc
}

func New(jobs ...Job) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(gocron.WithLogger(cronLogger{logging.L().Sugar()}))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{cron: cron, ctx: ctx, cancel: cancel}

	for _, job := range jobs {
		if job.Interval <= 0 {
			logging.Warn("job disabled", zap.String("job", job.Name))
			continue
		}
		_, err := cron.NewJob(
			gocron.DurationJob(job.Interval),
			gocron.NewTask(s.wrap(job)),
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			cancel()
			_ = cron.Shutdown()
			return nil, fmt.Errorf("failed to schedule %s: %w", job.Name, err)
		}
	}
	return s, nil
}

// wrap keeps a panicking job from taking the scheduler down with it.
func (s *Scheduler) wrap(job Job) func() {
	return func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("job panicked", zap.String("job", job.Name), zap.Any("panic", r))
			}
		}()
		job.Run(s.ctx)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Shutdown() error {
	s.cancel()
	return s.cron.Shutdown()
}

type cronLogger struct {
	*zap.SugaredLogger
}

func (l cronLogger) Debug(msg string, args ...any) { l.Debugw(msg, args...) }
func (l cronLogger) Info(msg string, args ...any)  { l.Infow(msg, args...) }
func (l cronLogger) Warn(msg string, args ...any)  { l.Warnw(msg, args...) }
func (l cronLogger) Error(msg string, args ...any) { l.Errorw(msg, args...) }
