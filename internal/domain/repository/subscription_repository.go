package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
)

type SubscriptionRepository interface {
	Find(ctx context.Context, subscriber, channel primitive.ObjectID) (*entity.Subscription, error)
	Create(ctx context.Context, s *entity.Subscription) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// Subscribers lists users subscribed to channel.
	Subscribers(ctx context.Context, channel primitive.ObjectID) ([]entity.SubscriptionEntry, error)
	// Channels lists channels subscriber is subscribed to.
	Channels(ctx context.Context, subscriber primitive.ObjectID) ([]entity.SubscriptionEntry, error)
}
