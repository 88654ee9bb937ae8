package session

import (
	"context"
	"fmt"

	"github.com/nitrr/campus-assistant/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type conversationDocument struct {
	ID      string          `bson:"_id"`
	History []model.Message `bson:"history"`
}

// MongoRepository implements Repository using MongoDB, so conversation
// history survives process restarts in addition to the flat transcript.
type MongoRepository struct {
	collection *mongo.Collection
}

// NewMongoRepository creates a repository over the given database.
// collectionName defaults to "conversations" if empty.
func NewMongoRepository(db *mongo.Database, collectionName string) *MongoRepository {
	if collectionName == "" {
		collectionName = "conversations"
	}
	return &MongoRepository{
		collection: db.Collection(collectionName),
	}
}

func (r *MongoRepository) Save(ctx context.Context, id string, history []model.Message) error {
	doc := conversationDocument{
		ID:      id,
		History: history,
	}

	filter := bson.M{"_id": id}
	update := bson.M{"$set": doc}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("session: upsert %q: %w", id, err)
	}

	return nil
}

func (r *MongoRepository) Load(ctx context.Context, id string) ([]model.Message, error) {
	filter := bson.M{"_id": id}

	var doc conversationDocument
	err := r.collection.FindOne(ctx, filter).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: find %q: %w", id, err)
	}

	return doc.History, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) error {
	filter := bson.M{"_id": id}

	_, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("session: delete %q: %w", id, err)
	}

	return nil
}
