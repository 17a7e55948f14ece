package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
)

type TweetRepository interface {
	Create(ctx context.Context, t *entity.Tweet) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Tweet, error)
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]entity.Tweet, error)
	UpdateContent(ctx context.Context, id primitive.ObjectID, content string) (*entity.Tweet, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*entity.Tweet, error)
}
