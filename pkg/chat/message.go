package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	MongoID   primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	ID        string             `bson:"-" json:"id"`
	SessionID string             `bson:"session_id" json:"sessionId"`
	SenderID  string             `bson:"sender_id" json:"senderId"`
	Content   string             `bson:"content" json:"content"`
	SentAt    time.Time          `bson:"sent_at" json:"sentAt"`
}

type Repository interface {
	Create(ctx context.Context, m *Message) error
	History(ctx context.Context, sessionID string) ([]*Message, error)
}
