package server

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/chess-vn/chessd/internal/app/analysis"
	"github.com/chess-vn/chessd/internal/app/game"
	"github.com/chess-vn/chessd/internal/app/matchmaking"
	"github.com/spf13/viper"
)

type Config struct {
	Port         string
	IdleTimeout  time.Duration
	WriteTimeout time.Duration
	JwtSecret    string

	Game                 game.Config
	TimeoutSweepInterval time.Duration

	Matchmaking              matchmaking.Config
	MatchmakingSweepInterval time.Duration
	InvitationSweepInterval  time.Duration

	RedisUrl string

	Analysis analysis.Config

	AwsEnabled         bool
	AwsRegion          string
	PlayersTable       string
	UsernamesTable     string
	GamesTable         string
	GameRecordsTable   string
	EndGameFunctionArn string

	LogLevel  string
	LogFormat string
}

// LoadConfig reads config.yaml from the given directories (./configs/server and . by default),
// merges any optional env files and lets environment variables override every key.
func LoadConfig(paths []string, envFiles ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./configs/server", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	if err := loadEnvFiles(v, envFiles); err != nil {
		return Config{}, fmt.Errorf("failed to load env files: %w", err)
	}

	cfg := Config{
		Port:         v.GetString("Server.Port"),
		IdleTimeout:  v.GetDuration("Server.IdleTimeout"),
		WriteTimeout: v.GetDuration("Server.WriteTimeout"),
		JwtSecret:    v.GetString("Server.JwtSecret"),
		Game: game.Config{
			FinishedRetention: v.GetDuration("Game.FinishedRetention"),
			AbandonAfter:      v.GetDuration("Game.AbandonAfter"),
			WaitingExpiry:     v.GetDuration("Game.WaitingExpiry"),
			AnalysisDepth:     v.GetInt("Analysis.Depth"),
			StoreTimeout:      v.GetDuration("Game.StoreTimeout"),
		},
		TimeoutSweepInterval: v.GetDuration("Game.TimeoutSweepInterval"),
		Matchmaking: matchmaking.Config{
			InvitationTTL: v.GetDuration("Matchmaking.InvitationTTL"),
		},
		MatchmakingSweepInterval: v.GetDuration("Matchmaking.SweepInterval"),
		InvitationSweepInterval:  v.GetDuration("Matchmaking.InvitationSweepInterval"),
		RedisUrl:                 v.GetString("Redis.Url"),
		Analysis: analysis.Config{
			StockfishPath: v.GetString("Analysis.StockfishPath"),
			Depth:         v.GetInt("Analysis.Depth"),
			QueueSize:     v.GetInt("Analysis.QueueSize"),
			Timeout:       v.GetDuration("Analysis.Timeout"),
			Threads:       v.GetInt("Analysis.Threads"),
			Hash:          v.GetInt("Analysis.Hash"),
		},
		AwsEnabled:         v.GetBool("Aws.Enabled"),
		AwsRegion:          v.GetString("Aws.Region"),
		PlayersTable:       v.GetString("Aws.PlayersTable"),
		UsernamesTable:     v.GetString("Aws.UsernamesTable"),
		GamesTable:         v.GetString("Aws.GamesTable"),
		GameRecordsTable:   v.GetString("Aws.GameRecordsTable"),
		EndGameFunctionArn: v.GetString("Aws.EndGameFunctionArn"),
		LogLevel:           v.GetString("Log.Level"),
		LogFormat:          v.GetString("Log.Format"),
	}
	if cfg.JwtSecret == "" {
		return Config{}, errors.New("Server.JwtSecret is required")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	gameDefaults := game.DefaultConfig()
	analysisDefaults := analysis.DefaultConfig()

	v.SetDefault("Server.Port", "7202")
	v.SetDefault("Server.IdleTimeout", "60s")
	v.SetDefault("Server.WriteTimeout", "10s")
	v.SetDefault("Game.TimeoutSweepInterval", "1s")
	v.SetDefault("Game.FinishedRetention", gameDefaults.FinishedRetention)
	v.SetDefault("Game.AbandonAfter", gameDefaults.AbandonAfter)
	v.SetDefault("Game.WaitingExpiry", gameDefaults.WaitingExpiry)
	v.SetDefault("Game.StoreTimeout", gameDefaults.StoreTimeout)
	v.SetDefault("Matchmaking.SweepInterval", "2s")
	v.SetDefault("Matchmaking.InvitationTTL", matchmaking.DefaultConfig().InvitationTTL)
	v.SetDefault("Matchmaking.InvitationSweepInterval", "60s")
	v.SetDefault("Analysis.Depth", analysisDefaults.Depth)
	v.SetDefault("Analysis.QueueSize", analysisDefaults.QueueSize)
	v.SetDefault("Analysis.Timeout", analysisDefaults.Timeout)
	v.SetDefault("Analysis.Threads", analysisDefaults.Threads)
	v.SetDefault("Analysis.Hash", analysisDefaults.Hash)
	v.SetDefault("Aws.Region", "ap-southeast-1")
	v.SetDefault("Aws.PlayersTable", "Players")
	v.SetDefault("Aws.UsernamesTable", "PlayerUsernames")
	v.SetDefault("Aws.GamesTable", "Games")
	v.SetDefault("Aws.GameRecordsTable", "GameRecords")
	v.SetDefault("Log.Level", "info")
	v.SetDefault("Log.Format", "json")
}

// loadEnvFiles merges env files that exist. Missing files are skipped.
func loadEnvFiles(v *viper.Viper, filenames []string) error {
	for _, file := range filenames {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		v.SetConfigFile(file)
		v.SetConfigType("env")
		if err := v.MergeInConfig(); err != nil {
			return err
		}
	}
	return nil
}
