package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"fieldstock-api/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBItemRepository implements ItemRepository using MongoDB. This is
// the cloud sync backend: the mobile clients' documents live here and last
// writer wins, exactly like the document store the app was built around.
type MongoDBItemRepository struct {
	client     *mongo.Client
	db         *mongo.Database
	collection *mongo.Collection
}

// NewMongoDBItemRepository creates a new MongoDB item repository.
func NewMongoDBItemRepository(uri, database, collection string) (*MongoDBItemRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	clientOpts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(50).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	coll := db.Collection(collection)

	indexModel := mongo.IndexModel{
		Keys: bson.D{{Key: "barcode", Value: 1}},
	}
	if _, err := coll.Indexes().CreateOne(ctx, indexModel); err != nil {
		log.Printf("[MongoDB] Warning: failed to create index: %v", err)
	}

	log.Printf("[MongoDB] Connected to %s/%s", database, collection)
	return &MongoDBItemRepository{
		client:     client,
		db:         db,
		collection: coll,
	}, nil
}

// List returns every item, newest first.
func (r *MongoDBItemRepository) List(ctx context.Context) ([]model.Item, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer cursor.Close(ctx)

	items := []model.Item{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, fmt.Errorf("failed to decode items: %w", err)
	}
	return items, nil
}

// Get retrieves one item by ID.
func (r *MongoDBItemRepository) Get(ctx context.Context, id string) (*model.Item, error) {
	var item model.Item
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

// FindByBarcode retrieves the first item carrying the barcode.
func (r *MongoDBItemRepository) FindByBarcode(ctx context.Context, barcode string) (*model.Item, error) {
	var item model.Item
	err := r.collection.FindOne(ctx, bson.M{"barcode": barcode}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find item by barcode: %w", err)
	}
	return &item, nil
}

// Create inserts a new item.
func (r *MongoDBItemRepository) Create(ctx context.Context, item *model.Item) error {
	if _, err := r.collection.InsertOne(ctx, item); err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// Update replaces an existing item document (last writer wins).
func (r *MongoDBItemRepository) Update(ctx context.Context, item *model.Item) error {
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an item by ID.
func (r *MongoDBItemRepository) Delete(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// BatchUpsert upserts multiple item documents in one bulk write.
func (r *MongoDBItemRepository) BatchUpsert(ctx context.Context, items []model.Item) error {
	if len(items) == 0 {
		return nil
	}

	models := make([]mongo.WriteModel, 0, len(items))
	for i := range items {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": items[i].ID}).
			SetReplacement(&items[i]).
			SetUpsert(true))
	}

	opts := options.BulkWrite().SetOrdered(false)
	if _, err := r.collection.BulkWrite(ctx, models, opts); err != nil {
		return fmt.Errorf("failed to batch upsert items: %w", err)
	}
	return nil
}

// ApplyMerge upserts the merged record and removes the non-keeper documents
// in one bulk write.
func (r *MongoDBItemRepository) ApplyMerge(ctx context.Context, merged model.Item, removeIDs []string) error {
	models := []mongo.WriteModel{
		mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": merged.ID}).
			SetReplacement(&merged).
			SetUpsert(true),
	}
	for _, id := range removeIDs {
		models = append(models, mongo.NewDeleteOneModel().SetFilter(bson.M{"_id": id}))
	}

	if _, err := r.collection.BulkWrite(ctx, models); err != nil {
		return fmt.Errorf("failed to apply merge: %w", err)
	}
	return nil
}

// Stats returns statistics about the item store.
func (r *MongoDBItemRepository) Stats(ctx context.Context) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	stats["total_items"] = count

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$quantity"}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err == nil {
		var result []bson.M
		if err := cursor.All(ctx, &result); err == nil && len(result) > 0 {
			stats["total_quantity"] = result[0]["total"]
		}
	}

	return stats, nil
}

// Close disconnects from MongoDB.
func (r *MongoDBItemRepository) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return r.client.Disconnect(ctx)
}

var _ ItemRepository = (*MongoDBItemRepository)(nil)
