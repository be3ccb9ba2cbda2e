package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chess-vn/chessd/internal/domains/entities"
)

func (client *Client) PutGameRecords(ctx context.Context, records ...entities.GameRecord) error {
	for _, record := range records {
		av, err := attributevalue.MarshalMap(record)
		if err != nil {
			return fmt.Errorf("failed to marshal game record map: %w", err)
		}
		_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: client.cfg.RecordsTableName,
			Item:      av,
		})
		if err != nil {
			return fmt.Errorf("failed to put game record: %w", err)
		}
	}
	return nil
}
