package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
)

// VideoFields is a partial update applied with $set.
type VideoFields struct {
	Title       *string
	Description *string
	Thumbnail   *string
	IsPublished *bool
}

type VideoRepository interface {
	Create(ctx context.Context, v *entity.Video) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.Video, error)
	Update(ctx context.Context, id primitive.ObjectID, f VideoFields) (*entity.Video, error)
	// TogglePublished atomically flips isPublished on a video owned by owner.
	TogglePublished(ctx context.Context, id, owner primitive.ObjectID) (*entity.Video, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	IncrementViews(ctx context.Context, id primitive.ObjectID) error
	// List runs the search/listing aggregation and returns one page.
	List(ctx context.Context, q entity.VideoQuery) (*entity.VideoPage, error)
}
