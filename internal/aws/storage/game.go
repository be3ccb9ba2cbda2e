package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chess-vn/chessd/internal/domains/entities"
)

var ErrGameNotFound = fmt.Errorf("game not found")

func (client *Client) GetGame(ctx context.Context, id string) (entities.Game, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.GamesTableName,
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{
				Value: id,
			},
		},
	})
	if err != nil {
		return entities.Game{}, err
	}
	if output.Item == nil {
		return entities.Game{}, ErrGameNotFound
	}
	var game entities.Game
	if err := attributevalue.UnmarshalMap(output.Item, &game); err != nil {
		return entities.Game{}, err
	}
	return game, nil
}

func (client *Client) SaveGame(ctx context.Context, game entities.Game) error {
	av, err := attributevalue.MarshalMap(game)
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: client.cfg.GamesTableName,
		Item:      av,
	})
	return err
}
