package functions

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/chess-vn/chessd/internal/domains/entities"
	"github.com/chess-vn/chessd/pkg/logging"
	"go.uber.org/zap"
)

type lambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// EndGamePayload is the event sent to the end game function.
type EndGamePayload struct {
	GameId            string              `json:"gameId"`
	WhitePlayerId     string              `json:"whitePlayerId"`
	BlackPlayerId     string              `json:"blackPlayerId"`
	Status            entities.GameStatus `json:"status"`
	Result            entities.GameResult `json:"result"`
	WhiteRatingChange int                 `json:"whiteRatingChange"`
	BlackRatingChange int                 `json:"blackRatingChange"`
	Moves             []string            `json:"moves"`
	Pgn               string              `json:"pgn"`
	EndedAt           time.Time           `json:"endedAt"`
}

// Records splits the event into one history record per seat.
func (p EndGamePayload) Records() []entities.GameRecord {
	record := func(playerId, opponentId, side string, change int) entities.GameRecord {
		return entities.GameRecord{
			PlayerId:     playerId,
			GameId:       p.GameId,
			OpponentId:   opponentId,
			Side:         side,
			Status:       p.Status,
			Result:       p.Result,
			RatingChange: change,
			Pgn:          p.Pgn,
			EndedAt:      p.EndedAt,
		}
	}
	var records []entities.GameRecord
	if p.WhitePlayerId != "" {
		records = append(records, record(p.WhitePlayerId, p.BlackPlayerId, entities.SideWhite, p.WhiteRatingChange))
	}
	if p.BlackPlayerId != "" {
		records = append(records, record(p.BlackPlayerId, p.WhitePlayerId, entities.SideBlack, p.BlackRatingChange))
	}
	return records
}

type Client struct {
	lambda              lambdaAPI
	endGameFunctionName string
}

func NewClient(lambdaClient lambdaAPI, endGameFunctionName string) *Client {
	return &Client{
		lambda:              lambdaClient,
		endGameFunctionName: endGameFunctionName,
	}
}

func (client *Client) InvokeEndGame(ctx context.Context, game entities.Game) error {
	payload, err := json.Marshal(EndGamePayload{
		GameId:            game.Id,
		WhitePlayerId:     game.WhitePlayerId,
		BlackPlayerId:     game.BlackPlayerId,
		Status:            game.Status,
		Result:            game.Result,
		WhiteRatingChange: game.WhiteRatingChange,
		BlackRatingChange: game.BlackRatingChange,
		Moves:             game.Moves,
		Pgn:               game.Pgn,
		EndedAt:           game.EndedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}
	_, err = client.lambda.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(client.endGameFunctionName),
		Payload:        payload,
		InvocationType: types.InvocationTypeEvent,
	})
	if err != nil {
		return fmt.Errorf("failed to invoke end game: %w", err)
	}
	return nil
}

// EndGameHook adapts InvokeEndGame to the game manager's hook signature.
func (client *Client) EndGameHook(ctx context.Context, game entities.Game) {
	if err := client.InvokeEndGame(ctx, game); err != nil {
		logging.Error("end game hook failed", zap.String("game_id", game.Id), zap.Error(err))
	}
}
