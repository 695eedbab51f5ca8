package chat

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

// MongoRepo stores turns in the chat_messages collection.
type MongoRepo struct {
	Coll *mongo.Collection
}

func NewMongoRepo(coll *mongo.Collection) *MongoRepo {
	return &MongoRepo{Coll: coll}
}

type mongoTurn struct {
	ID         string  `bson:"id"`
	DocumentID *string `bson:"document_id"`
	Message    string  `bson:"message"`
	Response   string  `bson:"response"`
	CreatedAt  string  `bson:"created_at"`
}

// Create inserts a chat turn.
func (r *MongoRepo) Create(ctx context.Context, turn Turn) error {
	raw := mongoTurn{
		ID:        turn.ID,
		Message:   turn.Message,
		Response:  turn.Response,
		CreatedAt: turn.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if turn.DocumentID != "" {
		id := turn.DocumentID
		raw.DocumentID = &id
	}
	_, err := r.Coll.InsertOne(ctx, raw)
	return err
}
