package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
)

type dynamoAPI interface {
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// DynamoStore keeps each document as one item with partition key "name".
type DynamoStore struct {
	client dynamoAPI
	table  string
	logger *zap.Logger
}

type ddbDocument struct {
	Name      string `dynamodbav:"name"`
	Body      string `dynamodbav:"body"`
	UpdatedAt string `dynamodbav:"updated_at"`
}

func NewDynamoStore(client *dynamodb.Client, table string, logger *zap.Logger) *DynamoStore {
	return newDynamoStore(client, table, logger)
}

func newDynamoStore(client dynamoAPI, table string, logger *zap.Logger) *DynamoStore {
	return &DynamoStore{client: client, table: table, logger: logger}
}

func (s *DynamoStore) Load(ctx context.Context, name string, out any, def any) error {
	if err := validateName(name); err != nil {
		return err
	}
	key, err := attributevalue.MarshalMap(map[string]string{"name": name})
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	res, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.table,
		Key:            key,
		ConsistentRead: boolPtr(true),
	})
	if err != nil {
		return fmt.Errorf("dynamodb GetItem %s failed: %w", name, err)
	}
	if len(res.Item) == 0 {
		if err := s.Save(ctx, name, def); err != nil {
			return err
		}
		return assign(out, def)
	}

	var doc ddbDocument
	if err := attributevalue.UnmarshalMap(res.Item, &doc); err != nil {
		return fmt.Errorf("unmarshal item %s: %w", name, err)
	}
	fellBack, err := decodeOrDefault([]byte(doc.Body), out, def)
	if fellBack {
		s.logger.Warn("document is not valid JSON, using default", zap.String("document", name))
	}
	return err
}

func (s *DynamoStore) Save(ctx context.Context, name string, v any) error {
	if err := validateName(name); err != nil {
		return err
	}
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode document %s: %w", name, err)
	}
	item, err := attributevalue.MarshalMap(ddbDocument{
		Name:      name,
		Body:      string(body),
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", name, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: &s.table, Item: item}); err != nil {
		return fmt.Errorf("dynamodb PutItem %s failed: %w", name, err)
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
