package connect

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joshua-takyi/events-api/internal/config"
	"github.com/joshua-takyi/events-api/internal/models"
	"github.com/joshua-takyi/events-api/internal/notify"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

var (
	MongoDBClient  *mongo.Client
	DynamoDBClient *dynamodb.Client
	Publisher      *notify.Publisher
)

// OpenStore connects the backend named in cfg and returns its EventStore.
func OpenStore(cfg *config.Config) (models.EventStore, error) {
	switch cfg.StorageBackend {
	case config.BackendDynamoDB:
		client, err := DynamoDBConnect(cfg)
		if err != nil {
			return nil, err
		}
		return models.DynamodbNewRepo(client, cfg.DynamoDBTable), nil
	case config.BackendMongoDB:
		client, err := MongoDBConnect(cfg)
		if err != nil {
			return nil, err
		}
		return models.MongodbNewRepo(client, cfg.MongoDBDatabase, cfg.MongoDBCollection), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.StorageBackend)
	}
}

// dynamodb init

func DynamoDBConnect(cfg *config.Config) (*dynamodb.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	DynamoDBClient = dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
	return DynamoDBClient, nil
}

// mongo init

func MongoDBConnect(cfg *config.Config) (*mongo.Client, error) {
	fullUri := strings.Replace(cfg.MongoDBURI, "<password>", cfg.MongoDBPassword, 1)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	clientOptions := options.Client().ApplyURI(fullUri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoDBClient = client
	return MongoDBClient, nil
}

func MongoDBDisconnect() error {
	if MongoDBClient == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	err := MongoDBClient.Disconnect(ctx)
	if err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	MongoDBClient = nil
	return nil
}

// rabbitmq init

func RabbitMQConnect(url string, logger *slog.Logger) (*notify.Publisher, error) {
	p, err := notify.NewPublisher(url, logger)
	if err != nil {
		return nil, err
	}
	Publisher = p
	return Publisher, nil
}

// Disconnect releases every client opened by this package.
func Disconnect(logger *slog.Logger) {
	if Publisher != nil {
		if err := Publisher.Close(); err != nil {
			logger.Error("Error closing RabbitMQ publisher", "error", err)
		}
		Publisher = nil
	}
	if err := MongoDBDisconnect(); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}
	DynamoDBClient = nil
}
