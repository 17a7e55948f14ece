package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no document matches.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("duplicate")
)

// UserFields is a partial update applied with $set.
type UserFields struct {
	FullName   *string
	Email      *string
	Avatar     *string
	CoverImage *string
	Password   *string
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*entity.User, error)
	// GetByUsernameOrEmail matches either field; empty values are ignored.
	GetByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)
	Update(ctx context.Context, id primitive.ObjectID, f UserFields) (*entity.User, error)
	SetRefreshToken(ctx context.Context, id primitive.ObjectID, token string) error
	ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error
	AddToWatchHistory(ctx context.Context, id, videoID primitive.ObjectID) error
	RemoveFromWatchHistories(ctx context.Context, videoID primitive.ObjectID) error
	ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*entity.ChannelProfile, error)
	WatchHistory(ctx context.Context, id primitive.ObjectID) ([]entity.VideoWithOwner, error)
	// Each streams every user to fn in _id order; iteration stops on the first error.
	Each(ctx context.Context, fn func(*entity.User) error) error
}
