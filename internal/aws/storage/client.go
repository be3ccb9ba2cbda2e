package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// dynamoAPI is the subset of *dynamodb.Client the repositories use.
type dynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

type Config struct {
	PlayersTableName   *string
	UsernamesTableName *string
	GamesTableName     *string
	RecordsTableName   *string
}

func NewConfig(players, usernames, games, records string) Config {
	return Config{
		PlayersTableName:   aws.String(players),
		UsernamesTableName: aws.String(usernames),
		GamesTableName:     aws.String(games),
		RecordsTableName:   aws.String(records),
	}
}

type Client struct {
	dynamodb dynamoAPI
	cfg      Config
}

func NewClient(dynamoClient dynamoAPI, cfg Config) *Client {
	return &Client{
		dynamodb: dynamoClient,
		cfg:      cfg,
	}
}
