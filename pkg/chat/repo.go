package chat

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "messages"

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection(Collection),
	}
}

func (r *MongoRepo) Create(ctx context.Context, m *Message) error {
	result, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	m.MongoID = oid
	m.ID = oid.Hex()
	return nil
}

// History returns the messages of a session, oldest first.
func (r *MongoRepo) History(ctx context.Context, sessionID string) ([]*Message, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}, {Key: "_id", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find messages: %w", err)
	}
	defer cursor.Close(ctx)

	messages := make([]*Message, 0)
	for cursor.Next(ctx) {
		var m Message
		if err := cursor.Decode(&m); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		m.ID = m.MongoID.Hex()
		messages = append(messages, &m)
	}
	return messages, cursor.Err()
}
