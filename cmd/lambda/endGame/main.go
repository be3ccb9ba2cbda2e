package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chess-vn/chessd/internal/aws/functions"
	"github.com/chess-vn/chessd/internal/aws/storage"
	"github.com/chess-vn/chessd/pkg/logging"
	"go.uber.org/zap"
)

var storageClient *storage.Client

func init() {
	cfg, _ := config.LoadDefaultConfig(context.TODO())
	storageClient = storage.NewClient(
		dynamodb.NewFromConfig(cfg),
		storage.NewConfig(
			os.Getenv("PLAYERS_TABLE_NAME"),
			os.Getenv("USERNAMES_TABLE_NAME"),
			os.Getenv("GAMES_TABLE_NAME"),
			os.Getenv("GAME_RECORDS_TABLE_NAME"),
		),
	)
}

// handler archives a finished game for both players.
func handler(ctx context.Context, event functions.EndGamePayload) error {
	if event.GameId == "" {
		return fmt.Errorf("missing game id")
	}
	if err := storageClient.PutGameRecords(ctx, event.Records()...); err != nil {
		return fmt.Errorf("failed to archive game %s: %w", event.GameId, err)
	}
	logging.Info("game archived", zap.String("game_id", event.GameId), zap.String("result", string(event.Result)))
	return nil
}

func main() {
	lambda.Start(handler)
}
