package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chess-vn/chessd/internal/domains/entities"
)

type usernameClaim struct {
	Username string `dynamodbav:"Username"`
	PlayerId string `dynamodbav:"PlayerId"`
}

func (client *Client) GetPlayer(ctx context.Context, id string) (entities.Player, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.PlayersTableName,
		Key: map[string]types.AttributeValue{
			"Id": &types.AttributeValueMemberS{
				Value: id,
			},
		},
	})
	if err != nil {
		return entities.Player{}, err
	}
	if output.Item == nil {
		return entities.Player{}, entities.ErrPlayerNotFound
	}
	var player entities.Player
	if err := attributevalue.UnmarshalMap(output.Item, &player); err != nil {
		return entities.Player{}, err
	}
	return player, nil
}

// CreatePlayer claims the lowercase username first so two players can never share one.
func (client *Client) CreatePlayer(ctx context.Context, player entities.Player) error {
	claim, err := attributevalue.MarshalMap(usernameClaim{
		Username: strings.ToLower(player.Username),
		PlayerId: player.Id,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           client.cfg.UsernamesTableName,
		Item:                claim,
		ConditionExpression: aws.String("attribute_not_exists(Username) OR PlayerId = :playerId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":playerId": &types.AttributeValueMemberS{Value: player.Id},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return entities.ErrUsernameTaken
		}
		return fmt.Errorf("failed to claim username: %w", err)
	}

	av, err := attributevalue.MarshalMap(player)
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: client.cfg.PlayersTableName,
		Item:      av,
	})
	return err
}

// SavePlayer overwrites an existing player record if it is still at player.Version.
// Usernames are fixed at creation.
func (client *Client) SavePlayer(ctx context.Context, player entities.Player) error {
	expected := player.Version
	player.Version++
	av, err := attributevalue.MarshalMap(player)
	if err != nil {
		return fmt.Errorf("failed to marshal map: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           client.cfg.PlayersTableName,
		Item:                av,
		ConditionExpression: aws.String("attribute_exists(Id) AND Version = :version"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":version": &types.AttributeValueMemberN{Value: strconv.Itoa(expected)},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if !errors.As(err, &ccf) {
			return err
		}
		if _, err := client.GetPlayer(ctx, player.Id); err != nil {
			return err
		}
		return entities.ErrPlayerConflict
	}
	return nil
}

func (client *Client) TopPlayers(ctx context.Context, limit int) ([]entities.Player, error) {
	var (
		players []entities.Player
		lastKey map[string]types.AttributeValue
	)
	for {
		output, err := client.dynamodb.Scan(ctx, &dynamodb.ScanInput{
			TableName:         client.cfg.PlayersTableName,
			ExclusiveStartKey: lastKey,
		})
		if err != nil {
			return nil, err
		}
		var page []entities.Player
		if err := attributevalue.UnmarshalListOfMaps(output.Items, &page); err != nil {
			return nil, err
		}
		players = append(players, page...)
		if len(output.LastEvaluatedKey) == 0 {
			break
		}
		lastKey = output.LastEvaluatedKey
	}

	sort.Slice(players, func(i, j int) bool {
		if players[i].Rating != players[j].Rating {
			return players[i].Rating > players[j].Rating
		}
		return players[i].Username < players[j].Username
	})
	if limit > 0 && len(players) > limit {
		players = players[:limit]
	}
	return players, nil
}
