package application

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
	repo "github.com/oksasatya/videotube-api/internal/domain/repository"
)

type SubscriptionService struct {
	Repo  repo.SubscriptionRepository
	Users repo.UserRepository
}

func NewSubscriptionService(r repo.SubscriptionRepository, users repo.UserRepository) *SubscriptionService {
	return &SubscriptionService{Repo: r, Users: users}
}

// Toggle subscribes subscriber to channel, or unsubscribes when already subscribed.
// It reports whether the subscriber is subscribed afterwards.
func (s *SubscriptionService) Toggle(ctx context.Context, subscriber, channel primitive.ObjectID) (bool, error) {
	if subscriber == channel {
		return false, ErrSelfSubscription
	}
	if _, err := s.Users.GetByID(ctx, channel); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrChannelNotFound
		}
		return false, err
	}

	existing, err := s.Repo.Find(ctx, subscriber, channel)
	switch {
	case err == nil:
		if err := s.Repo.Delete(ctx, existing.ID); err != nil && !errors.Is(err, repo.ErrNotFound) {
			return true, err
		}
		return false, nil
	case errors.Is(err, repo.ErrNotFound):
		sub := &entity.Subscription{Subscriber: subscriber, Channel: channel}
		if err := s.Repo.Create(ctx, sub); err != nil && !errors.Is(err, repo.ErrDuplicate) {
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

func (s *SubscriptionService) Subscribers(ctx context.Context, channel primitive.ObjectID) ([]entity.SubscriptionEntry, error) {
	return nonNil(s.Repo.Subscribers(ctx, channel))
}

func (s *SubscriptionService) Channels(ctx context.Context, subscriber primitive.ObjectID) ([]entity.SubscriptionEntry, error) {
	return nonNil(s.Repo.Channels(ctx, subscriber))
}

func nonNil(entries []entity.SubscriptionEntry, err error) ([]entity.SubscriptionEntry, error) {
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []entity.SubscriptionEntry{}
	}
	return entries, nil
}
