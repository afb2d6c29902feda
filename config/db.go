package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

var (
	MongoDB     *mongo.Database
	MongoClient *mongo.Client
)

const retryDelay = 5 * time.Second

// ConnectWithRetry attempts to connect to MongoDB with retries
func ConnectWithRetry(maxRetries int) error {
	var err error
	for i := 0; i < maxRetries; i++ {
		err = connectMongo(MongoURI())
		if err == nil {
			return nil
		}
		log.Printf("Failed to connect to MongoDB (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(retryDelay)
	}
	return fmt.Errorf("failed to connect after %d attempts: %v", maxRetries, err)
}

// connectMongo initializes the MongoDB connection
func connectMongo(uri string) error {
	clientOptions := options.Client().ApplyURI(uri).
		SetMaxPoolSize(100).
		SetMinPoolSize(10).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetSocketTimeout(30 * time.Second).
		SetRetryWrites(true).
		SetRetryReads(true).
		SetWriteConcern(writeconcern.Majority()).
		SetReadConcern(readconcern.Majority()).
		SetReadPreference(readpref.Primary())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	var err error
	MongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("error connecting to MongoDB: %v", err)
	}

	if err = MongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("error pinging MongoDB: %v", err)
	}

	MongoDB = MongoClient.Database(MongoDBName())
	log.Printf("Successfully connected to MongoDB database: %s", MongoDBName())

	if err := createIndexes(ctx); err != nil {
		return fmt.Errorf("error creating indexes: %v", err)
	}

	return nil
}

func createIndexes(ctx context.Context) error {
	adminCollection := MongoDB.Collection("admins")
	adminIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "username", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName("username_idx"),
		},
	}

	if _, err := adminCollection.Indexes().CreateMany(ctx, adminIndexes); err != nil {
		return fmt.Errorf("error creating admin indexes: %v", err)
	}
	log.Printf("Successfully created admin indexes")

	locationCollection := MongoDB.Collection("locations")
	locationIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "serviceType", Value: 1},
			},
			Options: options.Index().SetName("service_type_idx"),
		},
	}

	if _, err := locationCollection.Indexes().CreateMany(ctx, locationIndexes); err != nil {
		return fmt.Errorf("error creating location indexes: %v", err)
	}
	log.Printf("Successfully created location indexes")

	return nil
}

// CheckMongoHealth pings the server with a short deadline.
func CheckMongoHealth() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := MongoClient.Ping(ctx, nil); err != nil {
		return fmt.Errorf("MongoDB health check failed: %v", err)
	}
	return nil
}

// Graceful shutdown
func CloseDB() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if MongoClient != nil {
		if err := MongoClient.Disconnect(ctx); err != nil {
			log.Printf("Error closing MongoDB connection: %v", err)
		}
	}
}
