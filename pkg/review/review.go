package review

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	MongoID    primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID         string             `bson:"-" json:"id"`
	SessionID  string             `bson:"session_id" json:"sessionId"`
	ReviewerID string             `bson:"reviewer_id" json:"reviewerId"`
	Rating     int                `bson:"rating" json:"rating"`
	Comment    string             `bson:"comment" json:"comment"`
	CreatedAt  time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Repository interface {
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id string) (*Review, error)
	GetBySession(ctx context.Context, sessionID string) ([]*Review, error)
	Update(ctx context.Context, id string, rating int, comment string, at time.Time) (*Review, error)
	Delete(ctx context.Context, id string) error
}
