package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/chess-vn/chessd/internal/app/analysis"
	"github.com/chess-vn/chessd/internal/app/game"
	"github.com/chess-vn/chessd/internal/app/matchmaking"
	"github.com/chess-vn/chessd/internal/app/scheduler"
	"github.com/chess-vn/chessd/internal/app/server"
	"github.com/chess-vn/chessd/internal/aws/functions"
	"github.com/chess-vn/chessd/internal/aws/storage"
	"github.com/chess-vn/chessd/internal/domains/interfaces"
	"github.com/chess-vn/chessd/internal/repositories"
	"github.com/chess-vn/chessd/pkg/logging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "", "directory containing config.yaml")
	flag.Parse()

	var paths []string
	if *configDir != "" {
		paths = []string{*configDir}
	}
	cfg, err := server.LoadConfig(paths, ".env")
	if err != nil {
		logging.Fatal("failed to load config", zap.Error(err))
	}
	if err := logging.Init(cfg.LogLevel, cfg.LogFormat); err != nil {
		logging.Fatal("failed to init logger", zap.Error(err))
	}
	defer logging.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		players  interfaces.IPlayerRepository = repositories.NewPlayerRepository()
		games    interfaces.IGameRepository   = repositories.NewGameRepository()
		gameOpts []game.Option
	)
	if cfg.AwsEnabled {
		awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AwsRegion))
		if err != nil {
			logging.Fatal("unable to load SDK config", zap.Error(err))
		}
		storageClient := storage.NewClient(
			dynamodb.NewFromConfig(awsCfg),
			storage.NewConfig(cfg.PlayersTable, cfg.UsernamesTable, cfg.GamesTable, cfg.GameRecordsTable),
		)
		players, games = storageClient, storageClient
		if cfg.EndGameFunctionArn != "" {
			functionsClient := functions.NewClient(lambda.NewFromConfig(awsCfg), cfg.EndGameFunctionArn)
			gameOpts = append(gameOpts, game.WithEndGameHook(functionsClient.EndGameHook))
		}
		logging.Info("using dynamodb storage", zap.String("region", cfg.AwsRegion))
	}

	var engine analysis.Engine
	if cfg.Analysis.StockfishPath != "" {
		stockfish, err := analysis.NewStockfish(cfg.Analysis)
		if err != nil {
			logging.Warn("analysis disabled", zap.Error(err))
		} else {
			engine = stockfish
		}
	}
	dispatcher := analysis.NewDispatcher(engine, cfg.Analysis)
	defer dispatcher.Close()
	gameOpts = append(gameOpts, game.WithAnalyzer(dispatcher))

	hub := server.NewHub()
	gameManager := game.NewManager(players, games, hub, cfg.Game, gameOpts...)

	var mmOpts []matchmaking.Option
	if cfg.RedisUrl != "" {
		opt, err := redis.ParseURL(cfg.RedisUrl)
		if err != nil {
			logging.Fatal("invalid redis url", zap.Error(err))
		}
		rdb := redis.NewClient(opt)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logging.Fatal("failed to connect to redis", zap.Error(err))
		}
		mmOpts = append(mmOpts, matchmaking.WithInvitationStore(matchmaking.NewRedisStore(rdb)))
	}
	matchmaker := matchmaking.NewMatchmaker(players, gameManager, hub, cfg.Matchmaking, mmOpts...)

	go dispatcher.Run(ctx, gameManager.DeliverAnalysis)

	jobs, err := scheduler.New(
		scheduler.Job{Name: "timeouts", Interval: cfg.TimeoutSweepInterval, Run: gameManager.SweepTimeouts},
		scheduler.Job{Name: "matchmaking", Interval: cfg.MatchmakingSweepInterval, Run: func(ctx context.Context) {
			matchmaker.Sweep(ctx)
		}},
		scheduler.Job{Name: "invitations", Interval: cfg.InvitationSweepInterval, Run: func(ctx context.Context) {
			matchmaker.SweepInvitations(ctx)
		}},
	)
	if err != nil {
		logging.Fatal("failed to start scheduler", zap.Error(err))
	}
	jobs.Start()

	srv := server.NewServer(cfg, hub, gameManager, matchmaker, players)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error("game server exited", zap.Error(err))
		}
	case <-ctx.Done():
		logging.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		logging.Error("failed to shut down server", zap.Error(err))
	}
	if err := jobs.Shutdown(); err != nil {
		logging.Error("failed to stop scheduler", zap.Error(err))
	}
}
