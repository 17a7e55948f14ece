// Package memory holds in-memory repositories and adapters. The repositories
// back service and handler tests; Uploader also serves STORAGE_DRIVER=memory
// for local development without a bucket.
package memory

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
	repo "github.com/oksasatya/videotube-api/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.Mutex
	byID    map[primitive.ObjectID]*entity.User
	History map[primitive.ObjectID][]primitive.ObjectID
	Removed []primitive.ObjectID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    map[primitive.ObjectID]*entity.User{},
		History: map[primitive.ObjectID][]primitive.ObjectID{},
	}
}

func (f *UserRepository) Create(_ context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, x := range f.byID {
		if x.Username == u.Username || x.Email == u.Email {
			return repo.ErrDuplicate
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.CreatedAt, u.UpdatedAt = time.Now(), time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *UserRepository) GetByID(_ context.Context, id primitive.ObjectID) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *UserRepository) GetByUsernameOrEmail(_ context.Context, username, email string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	username, email = strings.ToLower(username), strings.ToLower(email)
	for _, u := range f.byID {
		if (username != "" && u.Username == username) || (email != "" && u.Email == email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *UserRepository) Update(_ context.Context, id primitive.ObjectID, p repo.UserFields) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.CoverImage != nil {
		u.CoverImage = *p.CoverImage
	}
	if p.Password != nil {
		u.Password = *p.Password
	}
	cp := *u
	return &cp, nil
}

func (f *UserRepository) SetRefreshToken(_ context.Context, id primitive.ObjectID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	u.RefreshToken = token
	return nil
}

func (f *UserRepository) ClearRefreshToken(ctx context.Context, id primitive.ObjectID) error {
	return f.SetRefreshToken(ctx, id, "")
}

func (f *UserRepository) AddToWatchHistory(_ context.Context, id, videoID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.History[id] = append([]primitive.ObjectID{videoID}, f.History[id]...)
	return nil
}

func (f *UserRepository) RemoveFromWatchHistories(_ context.Context, videoID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Removed = append(f.Removed, videoID)
	return nil
}

func (f *UserRepository) ChannelProfile(ctx context.Context, username string, _ primitive.ObjectID) (*entity.ChannelProfile, error) {
	u, err := f.GetByUsernameOrEmail(ctx, username, "")
	if err != nil {
		return nil, err
	}
	return &entity.ChannelProfile{ID: u.ID, Username: u.Username, FullName: u.FullName}, nil
}

func (f *UserRepository) WatchHistory(_ context.Context, id primitive.ObjectID) ([]entity.VideoWithOwner, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return nil, repo.ErrNotFound
	}
	var out []entity.VideoWithOwner
	for _, vid := range f.History[id] {
		out = append(out, entity.VideoWithOwner{ID: vid})
	}
	return out, nil
}

func (f *UserRepository) Each(ctx context.Context, fn func(*entity.User) error) error {
	f.mu.Lock()
	users := make([]*entity.User, 0, len(f.byID))
	for _, u := range f.byID {
		users = append(users, u)
	}
	f.mu.Unlock()
	for _, u := range users {
		if err := fn(u); err != nil {
			return err
		}
	}
	return nil
}

type VideoRepository struct {
	mu        sync.Mutex
	byID      map[primitive.ObjectID]*entity.Video
	LastQuery entity.VideoQuery
}

func NewVideoRepository() *VideoRepository {
	return &VideoRepository{byID: map[primitive.ObjectID]*entity.Video{}}
}

func (f *VideoRepository) Create(_ context.Context, v *entity.Video) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = primitive.NewObjectID()
	cp := *v
	f.byID[v.ID] = &cp
	return nil
}

func (f *VideoRepository) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *VideoRepository) Update(_ context.Context, id primitive.ObjectID, p repo.VideoFields) (*entity.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if p.Title != nil {
		v.Title = *p.Title
	}
	if p.Description != nil {
		v.Description = *p.Description
	}
	if p.Thumbnail != nil {
		v.Thumbnail = *p.Thumbnail
	}
	if p.IsPublished != nil {
		v.IsPublished = *p.IsPublished
	}
	cp := *v
	return &cp, nil
}

func (f *VideoRepository) TogglePublished(_ context.Context, id, owner primitive.ObjectID) (*entity.Video, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.byID[id]
	if !ok || v.Owner != owner {
		return nil, repo.ErrNotFound
	}
	v.IsPublished = !v.IsPublished
	cp := *v
	return &cp, nil
}

func (f *VideoRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repo.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *VideoRepository) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.byID[id]; ok {
		v.Views++
	}
	return nil
}

func (f *VideoRepository) List(_ context.Context, q entity.VideoQuery) (*entity.VideoPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastQuery = q
	var all []entity.VideoWithOwner
	for _, v := range f.byID {
		if q.OnlyPublished && !v.IsPublished {
			continue
		}
		if !q.Owner.IsZero() && v.Owner != q.Owner {
			continue
		}
		all = append(all, entity.VideoWithOwner{ID: v.ID, Title: v.Title, IsPublished: v.IsPublished})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	total := int64(len(all))
	start := q.Skip()
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return entity.NewVideoPage(all[start:end], total, q.Page, q.Limit), nil
}

type TweetRepository struct {
	mu   sync.Mutex
	byID map[primitive.ObjectID]*entity.Tweet
}

func NewTweetRepository() *TweetRepository {
	return &TweetRepository{byID: map[primitive.ObjectID]*entity.Tweet{}}
}

func (f *TweetRepository) Create(_ context.Context, t *entity.Tweet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t.ID = primitive.NewObjectID()
	t.CreatedAt = time.Now()
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *TweetRepository) GetByID(_ context.Context, id primitive.ObjectID) (*entity.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (f *TweetRepository) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]entity.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.Tweet
	for _, t := range f.byID {
		if t.Owner == owner {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *TweetRepository) UpdateContent(_ context.Context, id primitive.ObjectID, content string) (*entity.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	t.Content = content
	cp := *t
	return &cp, nil
}

func (f *TweetRepository) Delete(_ context.Context, id primitive.ObjectID) (*entity.Tweet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	delete(f.byID, id)
	return t, nil
}

type SubscriptionRepository struct {
	mu   sync.Mutex
	subs []entity.Subscription
}

func (f *SubscriptionRepository) Find(_ context.Context, subscriber, channel primitive.ObjectID) (*entity.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].Subscriber == subscriber && f.subs[i].Channel == channel {
			cp := f.subs[i]
			return &cp, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (f *SubscriptionRepository) Create(_ context.Context, s *entity.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = primitive.NewObjectID()
	f.subs = append(f.subs, *s)
	return nil
}

func (f *SubscriptionRepository) Delete(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.subs {
		if f.subs[i].ID == id {
			f.subs = append(f.subs[:i], f.subs[i+1:]...)
			return nil
		}
	}
	return repo.ErrNotFound
}

func (f *SubscriptionRepository) Subscribers(_ context.Context, channel primitive.ObjectID) ([]entity.SubscriptionEntry, error) {
	return f.entries(func(s entity.Subscription) (bool, primitive.ObjectID) { return s.Channel == channel, s.Subscriber }), nil
}

func (f *SubscriptionRepository) Channels(_ context.Context, subscriber primitive.ObjectID) ([]entity.SubscriptionEntry, error) {
	return f.entries(func(s entity.Subscription) (bool, primitive.ObjectID) { return s.Subscriber == subscriber, s.Channel }), nil
}

func (f *SubscriptionRepository) entries(match func(entity.Subscription) (bool, primitive.ObjectID)) []entity.SubscriptionEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []entity.SubscriptionEntry
	for _, s := range f.subs {
		if ok, other := match(s); ok {
			out = append(out, entity.SubscriptionEntry{ID: s.ID, User: entity.UserSummary{ID: other}})
		}
	}
	return out
}

// Uploader records object paths and returns BaseURL+path (default "memory://").
type Uploader struct {
	BaseURL string

	mu    sync.Mutex
	Paths []string
	Err   error
}

func (f *Uploader) Upload(_ context.Context, objectPath, _ string, r io.Reader) (string, error) {
	if f.Err != nil {
		return "", f.Err
	}
	_, _ = io.Copy(io.Discard, r)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Paths = append(f.Paths, objectPath)
	base := f.BaseURL
	if base == "" {
		base = "memory://"
	}
	return base + objectPath, nil
}

// Publisher collects published jobs.
type Publisher struct {
	mu   sync.Mutex
	Jobs []any
}

func (f *Publisher) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Jobs = append(f.Jobs, body)
	return nil
}

var (
	_ repo.UserRepository         = (*UserRepository)(nil)
	_ repo.VideoRepository        = (*VideoRepository)(nil)
	_ repo.TweetRepository        = (*TweetRepository)(nil)
	_ repo.SubscriptionRepository = (*SubscriptionRepository)(nil)
)
