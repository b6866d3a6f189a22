package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/timmy/tubevault/internal/domain"
	"github.com/timmy/tubevault/internal/logger"
)

// MongoConfig holds the MongoDB document store settings.
type MongoConfig struct {
	URI            string
	Database       string
	Collection     string
	ConnectTimeout time.Duration
}

// MongoVideoStore is the MongoDB document store. Every Connect opens a
// fresh client which the handle's Close disconnects.
type MongoVideoStore struct {
	cfg       MongoConfig
	indexOnce sync.Once
}

// NewMongoVideoStore creates a store for the given collection.
func NewMongoVideoStore(cfg MongoConfig) *MongoVideoStore {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	return &MongoVideoStore{cfg: cfg}
}

// Connect opens a client and pings the primary.
func (s *MongoVideoStore) Connect(ctx context.Context) (DocumentConn, error) {
	opts := options.Client().
		ApplyURI(s.cfg.URI).
		SetConnectTimeout(s.cfg.ConnectTimeout).
		SetServerSelectionTimeout(s.cfg.ConnectTimeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.WithoutCancel(ctx))
		return nil, fmt.Errorf("%w: %v", domain.ErrConnection, err)
	}

	coll := client.Database(s.cfg.Database).Collection(s.cfg.Collection)
	s.indexOnce.Do(func() {
		_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: "video_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		})
		if err != nil {
			logger.CtxWarn(ctx, "Failed to ensure unique video_id index: %v", err)
		}
	})

	return &mongoVideoConn{client: client, coll: coll}, nil
}

type mongoVideoConn struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func (c *mongoVideoConn) Insert(ctx context.Context, video *domain.Video) error {
	_, err := c.coll.InsertOne(ctx, video)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s", domain.ErrAlreadyExists, video.VideoID)
	}
	if err != nil {
		return fmt.Errorf("failed to insert video %s: %w", video.VideoID, err)
	}
	return nil
}

func (c *mongoVideoConn) Exists(ctx context.Context, videoID string) (bool, error) {
	n, err := c.coll.CountDocuments(ctx, bson.M{"video_id": videoID}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to look up video %s: %w", videoID, err)
	}
	return n > 0, nil
}

func (c *mongoVideoConn) List(ctx context.Context) ([]domain.Video, error) {
	cursor, err := c.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	videos := []domain.Video{}
	if err := cursor.All(ctx, &videos); err != nil {
		return nil, fmt.Errorf("failed to decode videos: %w", err)
	}
	return videos, nil
}

func (c *mongoVideoConn) Delete(ctx context.Context, videoID string) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"video_id": videoID})
	if err != nil {
		return fmt.Errorf("failed to delete video %s: %w", videoID, err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, videoID)
	}
	return nil
}

func (c *mongoVideoConn) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
