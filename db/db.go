package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection     *mongo.Collection
	PostsCollection    *mongo.Collection
	CommentsCollection *mongo.Collection
	Client             *mongo.Client
)

// Init connects to MongoDB and binds the collections. Call once at startup.
func Init(ctx context.Context) error {
	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	dbName := os.Getenv("MONGODB_DB")
	if dbName == "" {
		dbName = "auriedb"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	Client = client

	UserCollection = Client.Database(dbName).Collection("users")
	PostsCollection = Client.Database(dbName).Collection("posts")
	CommentsCollection = Client.Database(dbName).Collection("comments")

	return nil
}

// Close disconnects the client on shutdown.
func Close(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
