package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"devloop/pkg/apperr"
)

const Collection = "reviews"

var ErrInvalidID = fmt.Errorf("%w: invalid review id format", apperr.ErrInvalidInput)

type MongoRepo struct {
	collection *mongo.Collection
}

func NewMongoRepo(db *mongo.Database) *MongoRepo {
	return &MongoRepo{
		collection: db.Collection(Collection),
	}
}

func (r *MongoRepo) Create(ctx context.Context, rev *Review) error {
	result, err := r.collection.InsertOne(ctx, rev)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	rev.MongoID = oid
	rev.ID = oid.Hex()
	return nil
}

func (r *MongoRepo) GetByID(ctx context.Context, id string) (*Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var rev Review
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&rev)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("review", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch review: %w", err)
	}

	rev.ID = rev.MongoID.Hex()
	return &rev, nil
}

func (r *MongoRepo) GetBySession(ctx context.Context, sessionID string) ([]*Review, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("find reviews: %w", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]*Review, 0)
	for cursor.Next(ctx) {
		var rev Review
		if err := cursor.Decode(&rev); err != nil {
			return nil, fmt.Errorf("decode review: %w", err)
		}
		rev.ID = rev.MongoID.Hex()
		reviews = append(reviews, &rev)
	}
	return reviews, cursor.Err()
}

func (r *MongoRepo) Update(ctx context.Context, id string, rating int, comment string, at time.Time) (*Review, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	var updated Review
	err = r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"rating": rating, "comment": comment, "updated_at": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("review", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	updated.ID = updated.MongoID.Hex()
	return &updated, nil
}

func (r *MongoRepo) Delete(ctx context.Context, id string) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apperr.NotFound("review", id)
	}
	return nil
}
