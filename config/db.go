package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	connectTimeout = 15 * time.Second
	retryDelay     = 5 * time.Second
)

// ConnectWithRetry connects to MongoDB, retrying on failure. The returned
// client is the single handle for the process; callers pass it down
// explicitly instead of reading a package global.
func ConnectWithRetry(maxRetries int) (*mongo.Client, error) {
	mongoURI := GetEnvWithDefault("MONGO_URI", "mongodb://localhost:27017")

	var (
		client *mongo.Client
		err    error
	)
	for i := 0; i < maxRetries; i++ {
		client, err = connect(mongoURI)
		if err == nil {
			return client, nil
		}
		log.Printf("Failed to connect to MongoDB (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to MongoDB after %d attempts: %w", maxRetries, err)
}

func connect(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(100).
		SetMinPoolSize(10).
		SetConnectTimeout(connectTimeout).
		SetServerSelectionTimeout(connectTimeout).
		SetRetryReads(true).
		SetReadPreference(readpref.Primary())

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("error connecting to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("error pinging MongoDB: %w", err)
	}
	return client, nil
}

// Database returns the application database on the given client.
func Database(client *mongo.Client) *mongo.Database {
	return client.Database(GetEnvWithDefault("MONGO_DB_NAME", "wimb"))
}

// EnsureIndexes creates the lookup indexes the search endpoints rely on:
// busNumber for number search and (from, to) for route search.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection("buses")
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "busNumber", Value: 1}},
			Options: options.Index().SetName("bus_number_idx"),
		},
		{
			Keys: bson.D{
				{Key: "from", Value: 1},
				{Key: "to", Value: 1},
			},
			Options: options.Index().SetName("route_idx"),
		},
	}

	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("error creating bus indexes: %w", err)
	}
	log.Printf("Successfully created bus indexes")
	return nil
}

// CheckMongoHealth pings the server with a short timeout.
func CheckMongoHealth(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("MongoDB health check failed: %w", err)
	}
	return nil
}

// Disconnect closes the Mongo connection during shutdown.
func Disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := client.Disconnect(ctx); err != nil {
		log.Printf("Error closing MongoDB connection: %v", err)
	}
}
