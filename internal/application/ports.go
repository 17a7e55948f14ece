package application

import (
	"context"
	"io"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Publisher enqueues background jobs (helpers.RabbitPublisher in production).
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// Upload is a file received from a multipart request.
type Upload struct {
	Filename    string
	ContentType string
	Reader      io.Reader
}

// ParseID converts a hex string into an ObjectID.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidID
	}
	return id, nil
}
