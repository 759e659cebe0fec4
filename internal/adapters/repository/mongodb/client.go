package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	pollsCollection = "polls"
	usersCollection = "users"
)

func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(5 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}
	return client, nil
}

// EnsureIndexes creates the indexes the poll queries rely on. It is safe to
// run repeatedly.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	polls := []mongo.IndexModel{
		{
			Keys:    bsonD("issue", "text", "searchKeywords", "text"),
			Options: options.Index().SetName("poll_search"),
		},
		{Keys: bsonD("authorId", 1, "postDate", -1)},
		{Keys: bsonD("postDate", -1)},
		{Keys: bsonD("lastInteractionDate", -1)},
	}
	if _, err := db.Collection(pollsCollection).Indexes().CreateMany(ctx, polls); err != nil {
		return fmt.Errorf("failed to create poll indexes: %w", err)
	}
	return nil
}
