// Package dynamo implements the storage contract on DynamoDB via
// aws-sdk-go-v2.
package dynamo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/aussiebroadwan/grantstore/internal/oauth2/store"
	"github.com/aussiebroadwan/grantstore/pkg/slogx"
)

type Store struct {
	client *dynamodb.Client
	logger *slog.Logger
}

type Options struct {
	Region string

	// Endpoint overrides the service endpoint, used to target a local
	// DynamoDB. Local endpoints accept any static credentials.
	Endpoint string
}

func NewStore(ctx context.Context, opts Options, logger *slog.Logger) (*Store, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.Endpoint != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return &Store{
		client: client,
		logger: slogx.Component(logger, "store.dynamo"),
	}, nil
}

func (s *Store) Query(ctx context.Context, table string, criteria store.Criteria) ([]store.Record, error) {
	input := &dynamodb.QueryInput{
		TableName:        aws.String(table),
		ScanIndexForward: aws.Bool(true),
	}

	if criteria.Index != "" {
		input.IndexName = aws.String(criteria.Index)
		input.Select = types.SelectAllProjectedAttributes
	}

	if criteria.Where != "" {
		input.KeyConditionExpression = aws.String(criteria.Where)
		if len(criteria.Values) > 0 {
			values, err := attributevalue.MarshalMap(criteria.Values)
			if err != nil {
				return nil, fmt.Errorf("marshal criteria values: %w", err)
			}
			input.ExpressionAttributeValues = values
		}
	}

	s.logger.DebugContext(ctx, "querying",
		slog.String("table", table),
		slog.String("index", criteria.Index),
		slog.String("where", criteria.Where),
	)

	out, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	return unmarshalItems(out.Items)
}

func (s *Store) Put(ctx context.Context, table string, item store.Record) error {
	marshaled, err := attributevalue.MarshalMap(map[string]any(item))
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}

	s.logger.DebugContext(ctx, "putting item", slog.String("table", table))

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      marshaled,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", table, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, table string, key store.Record) error {
	marshaled, err := attributevalue.MarshalMap(map[string]any(key))
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}

	s.logger.DebugContext(ctx, "deleting item", slog.String("table", table))

	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       marshaled,
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func (s *Store) List(ctx context.Context, table string) ([]store.Record, error) {
	var records []store.Record

	paginator := dynamodb.NewScanPaginator(s.client, &dynamodb.ScanInput{
		TableName: aws.String(table),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		items, err := unmarshalItems(page.Items)
		if err != nil {
			return nil, err
		}
		records = append(records, items...)
	}

	return records, nil
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.client.ListTables(ctx, &dynamodb.ListTablesInput{
		Limit: aws.Int32(1),
	})
	return err
}

func (s *Store) Close() error { return nil }

func unmarshalItems(items []map[string]types.AttributeValue) ([]store.Record, error) {
	records := make([]store.Record, len(items))
	for i, item := range items {
		var record map[string]any
		if err := attributevalue.UnmarshalMap(item, &record); err != nil {
			return nil, fmt.Errorf("unmarshal item: %w", err)
		}
		records[i] = store.Record(record)
	}
	return records, nil
}
