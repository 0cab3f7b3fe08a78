package cache

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/LavishGent/breedbase/internal/config"
	"github.com/LavishGent/breedbase/internal/types"
)

// DynamoAPI is the subset of the DynamoDB client used by DynamoBackend.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// dynamoItem is one row of the cache table. ExpiresAt is a unix-seconds TTL
// attribute; zero means the row never expires.
type dynamoItem struct {
	Key       string `dynamodbav:"key"`
	Value     []byte `dynamodbav:"value"`
	ExpiresAt int64  `dynamodbav:"expiresAt,omitempty"`
	UpdatedAt int64  `dynamodbav:"updatedAt"`
}

// DynamoBackend stores records in a DynamoDB table keyed by the string attribute "key".
type DynamoBackend struct {
	client DynamoAPI
	table  string
	logger *slog.Logger
	now    func() time.Time

	hits   atomic.Int64
	misses atomic.Int64
	closed atomic.Bool
}

// NewDynamoBackend loads AWS credentials from the default chain and builds a client
// for cfg.Region. A non-empty cfg.Endpoint points the client at e.g. DynamoDB Local.
func NewDynamoBackend(ctx context.Context, cfg config.DynamoDBConfig, logger *slog.Logger) (*DynamoBackend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewDynamoBackendWithClient(client, cfg.Table, logger), nil
}

// NewDynamoBackendWithClient wraps an existing client.
func NewDynamoBackendWithClient(client DynamoAPI, table string, logger *slog.Logger) *DynamoBackend {
	if logger == nil {
		logger = slog.Default()
	}
	return &DynamoBackend{
		client: client,
		table:  table,
		logger: logger.With("component", "dynamodb-backend", "table", table),
		now:    time.Now,
	}
}

// Name returns "dynamodb".
func (d *DynamoBackend) Name() string {
	return config.BackendDynamoDB
}

// IsAvailable reports false once the backend is closed.
func (d *DynamoBackend) IsAvailable() bool {
	return !d.closed.Load()
}

// Get reads the row for key. Rows past their expiresAt are treated as a miss
// because DynamoDB deletes expired items lazily.
func (d *DynamoBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if d.closed.Load() {
		return nil, types.ErrClosed
	}

	out, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.table),
		ConsistentRead: aws.Bool(true),
		Key: map[string]ddbtypes.AttributeValue{
			"key": &ddbtypes.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, types.NewCacheError("Get", key, "dynamodb", err)
	}
	if len(out.Item) == 0 {
		d.misses.Add(1)
		return nil, types.ErrCacheMiss
	}

	var item dynamoItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, types.NewCacheError("Get", key, "dynamodb", fmt.Errorf("%w: %v", types.ErrSerializationFailed, err))
	}
	if item.ExpiresAt > 0 && d.now().Unix() >= item.ExpiresAt {
		d.misses.Add(1)
		return nil, types.ErrCacheMiss
	}

	d.hits.Add(1)
	return item.Value, nil
}

// Set replaces the row for key.
func (d *DynamoBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if d.closed.Load() {
		return types.ErrClosed
	}

	now := d.now()
	item := dynamoItem{
		Key:       key,
		Value:     value,
		UpdatedAt: now.UnixMilli(),
	}
	if ttl > 0 {
		item.ExpiresAt = now.Add(ttl).Unix()
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return types.NewCacheError("Set", key, "dynamodb", fmt.Errorf("%w: %v", types.ErrSerializationFailed, err))
	}

	if _, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.table),
		Item:      av,
	}); err != nil {
		return types.NewCacheError("Set", key, "dynamodb", err)
	}

	d.logger.Debug("Record written", "key", key, "bytes", len(value))
	return nil
}

// Stats returns hit and miss counters.
func (d *DynamoBackend) Stats() types.BackendStats {
	return types.BackendStats{
		Hits:   d.hits.Load(),
		Misses: d.misses.Load(),
	}
}

// Close marks the backend closed. The SDK client holds no resources to release.
func (d *DynamoBackend) Close() error {
	d.closed.Store(true)
	return nil
}

var (
	_ types.Backend       = (*DynamoBackend)(nil)
	_ types.StatsProvider = (*DynamoBackend)(nil)
)
