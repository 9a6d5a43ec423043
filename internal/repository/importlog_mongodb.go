package repository

import (
	"context"
	"fmt"
	"time"

	"fieldstock-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBImportLogRepository implements ImportLogRepository for MongoDB,
// used when the item store also lives in MongoDB so the audit trail syncs
// with it.
type MongoDBImportLogRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoDBImportLogRepository creates a new MongoDB import-log repository.
func NewMongoDBImportLogRepository(uri, dbName, collectionName string) (*MongoDBImportLogRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	collection := client.Database(dbName).Collection(collectionName)

	return &MongoDBImportLogRepository{
		client:     client,
		collection: collection,
	}, nil
}

// Insert records one import batch.
func (r *MongoDBImportLogRepository) Insert(ctx context.Context, entry *model.ImportLog) error {
	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to insert import log: %w", err)
	}
	return nil
}

// List returns audit records newest first, with the total count for paging.
func (r *MongoDBImportLogRepository) List(ctx context.Context, limit, offset int) ([]model.ImportLog, int64, error) {
	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})
	findOptions.SetLimit(int64(limit))
	findOptions.SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var logs []model.ImportLog
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, 0, err
	}

	// Ensure not nil slice for JSON
	if logs == nil {
		logs = []model.ImportLog{}
	}

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}

	return logs, count, nil
}

// DeleteOlderThan purges audit records created before the cutoff.
func (r *MongoDBImportLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"created_at": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete import logs: %w", err)
	}
	return res.DeletedCount, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBImportLogRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

var _ ImportLogRepository = (*MongoDBImportLogRepository)(nil)
