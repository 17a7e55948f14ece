package application

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
	repo "github.com/oksasatya/videotube-api/internal/domain/repository"
)

const MaxTweetLength = 280

type TweetService struct {
	Repo repo.TweetRepository
}

func NewTweetService(r repo.TweetRepository) *TweetService {
	return &TweetService{Repo: r}
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrTweetContentRequired
	}
	if utf8.RuneCountInString(content) > MaxTweetLength {
		return "", ErrTweetTooLong
	}
	return content, nil
}

func (s *TweetService) Create(ctx context.Context, owner primitive.ObjectID, content string) (*entity.Tweet, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	t := &entity.Tweet{Content: content, Owner: owner}
	if err := s.Repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// ListByUser returns the user's tweets, newest first.
func (s *TweetService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]entity.Tweet, error) {
	tweets, err := s.Repo.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if tweets == nil {
		tweets = []entity.Tweet{}
	}
	return tweets, nil
}

func (s *TweetService) Update(ctx context.Context, id, caller primitive.ObjectID, content string) (*entity.Tweet, error) {
	content, err := normalizeContent(content)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, id, caller); err != nil {
		return nil, err
	}
	t, err := s.Repo.UpdateContent(ctx, id, content)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTweetNotFound
	}
	return t, err
}

func (s *TweetService) Delete(ctx context.Context, id, caller primitive.ObjectID) (*entity.Tweet, error) {
	if err := s.authorize(ctx, id, caller); err != nil {
		return nil, err
	}
	t, err := s.Repo.Delete(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrTweetNotFound
	}
	return t, err
}

func (s *TweetService) authorize(ctx context.Context, id, caller primitive.ObjectID) error {
	t, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTweetNotFound
		}
		return err
	}
	if t.Owner != caller {
		return ErrForbidden
	}
	return nil
}
