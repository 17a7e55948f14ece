package application

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/domain/entity"
	repo "github.com/oksasatya/videotube-api/internal/domain/repository"
	"github.com/oksasatya/videotube-api/internal/infrastructure/storage"
	"github.com/oksasatya/videotube-api/pkg/helpers"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

var sortableVideoFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"views":     true,
	"duration":  true,
	"title":     true,
}

type VideoService struct {
	Videos  repo.VideoRepository
	Users   repo.UserRepository
	Storage storage.Uploader
	Logger  *logrus.Logger
}

func NewVideoService(videos repo.VideoRepository, users repo.UserRepository, uploader storage.Uploader, logger *logrus.Logger) *VideoService {
	return &VideoService{Videos: videos, Users: users, Storage: uploader, Logger: logger}
}

func (s *VideoService) log() *logrus.Entry { return helpers.Component(s.Logger, "video_service") }

// ListVideosInput carries the raw query string values of a listing request.
type ListVideosInput struct {
	Page     string
	Limit    string
	Query    string
	SortBy   string
	SortType string
	UserID   string
	Caller   primitive.ObjectID
}

// BuildVideoQuery normalizes paging and sort parameters. Unpublished videos
// are only included when the caller lists their own channel.
func BuildVideoQuery(in ListVideosInput) (entity.VideoQuery, error) {
	q := entity.VideoQuery{
		Page:          parsePositive(in.Page, 1),
		Limit:         parsePositive(in.Limit, DefaultPageLimit),
		Search:        strings.TrimSpace(in.Query),
		SortBy:        "createdAt",
		SortDir:       -1,
		OnlyPublished: true,
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	// keeps (Page-1)*Limit within int64 for the $skip stage
	if maxPage := math.MaxInt64 / q.Limit; q.Page > maxPage {
		q.Page = maxPage
	}
	if sortableVideoFields[in.SortBy] {
		q.SortBy = in.SortBy
	}
	switch strings.ToLower(strings.TrimSpace(in.SortType)) {
	case "asc", "1":
		q.SortDir = 1
	}
	if uid := strings.TrimSpace(in.UserID); uid != "" {
		owner, err := ParseID(uid)
		if err != nil {
			return q, err
		}
		q.Owner = owner
		q.OnlyPublished = owner != in.Caller
	}
	return q, nil
}

func parsePositive(s string, def int64) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func (s *VideoService) List(ctx context.Context, in ListVideosInput) (*entity.VideoPage, error) {
	q, err := BuildVideoQuery(in)
	if err != nil {
		return nil, err
	}
	page, err := s.Videos.List(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(page.Videos) == 0 {
		return nil, ErrNoVideos
	}
	return page, nil
}

type PublishVideoInput struct {
	Title       string
	Description string
	Duration    float64
	VideoFile   *Upload
	Thumbnail   *Upload
}

func (s *VideoService) Publish(ctx context.Context, owner primitive.ObjectID, in PublishVideoInput) (*entity.Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" {
		return nil, ErrMissingFields
	}
	if in.VideoFile == nil {
		return nil, ErrVideoFileRequired
	}
	if in.Thumbnail == nil {
		return nil, ErrThumbnailRequired
	}

	videoURL, err := s.upload(ctx, "videos", owner, in.VideoFile)
	if err != nil {
		return nil, err
	}
	thumbURL, err := s.upload(ctx, "thumbnails", owner, in.Thumbnail)
	if err != nil {
		return nil, err
	}

	v := &entity.Video{
		VideoFile:   videoURL,
		Thumbnail:   thumbURL,
		Title:       in.Title,
		Description: in.Description,
		Duration:    in.Duration,
		IsPublished: true,
		Owner:       owner,
	}
	if err := s.Videos.Create(ctx, v); err != nil {
		s.log().WithError(err).WithField("owner", owner.Hex()).Error("create video failed")
		return nil, err
	}
	return v, nil
}

// Get returns a video and records the view. Unpublished videos are only
// visible to their owner.
func (s *VideoService) Get(ctx context.Context, id, caller primitive.ObjectID) (*entity.Video, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.IsPublished && !v.OwnedBy(caller) {
		return nil, ErrVideoNotFound
	}

	if err := s.Videos.IncrementViews(ctx, id); err != nil {
		s.log().WithError(err).WithField("video_id", id.Hex()).Warn("increment views failed")
	} else {
		v.Views++
	}
	if !caller.IsZero() {
		if err := s.Users.AddToWatchHistory(ctx, caller, id); err != nil {
			s.log().WithError(err).WithField("video_id", id.Hex()).Warn("watch history update failed")
		}
	}
	return v, nil
}

type UpdateVideoInput struct {
	Title       string
	Description string
	Thumbnail   *Upload
}

func (s *VideoService) Update(ctx context.Context, id, caller primitive.ObjectID, in UpdateVideoInput) (*entity.Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if in.Title == "" || in.Description == "" {
		return nil, ErrMissingFields
	}
	if _, err := s.owned(ctx, id, caller); err != nil {
		return nil, err
	}

	f := repo.VideoFields{Title: &in.Title, Description: &in.Description}
	if in.Thumbnail != nil {
		url, err := s.upload(ctx, "thumbnails", caller, in.Thumbnail)
		if err != nil {
			return nil, err
		}
		f.Thumbnail = &url
	}
	v, err := s.Videos.Update(ctx, id, f)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrVideoNotFound
	}
	return v, err
}

// Delete removes the video and drops it from every watch history.
func (s *VideoService) Delete(ctx context.Context, id, caller primitive.ObjectID) error {
	if _, err := s.owned(ctx, id, caller); err != nil {
		return err
	}
	if err := s.Videos.Delete(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}
	if err := s.Users.RemoveFromWatchHistories(ctx, id); err != nil {
		s.log().WithError(err).WithField("video_id", id.Hex()).Warn("watch history cleanup failed")
	}
	return nil
}

func (s *VideoService) TogglePublish(ctx context.Context, id, caller primitive.ObjectID) (bool, error) {
	if _, err := s.owned(ctx, id, caller); err != nil {
		return false, err
	}
	updated, err := s.Videos.TogglePublished(ctx, id, caller)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, ErrVideoNotFound
		}
		return false, err
	}
	return updated.IsPublished, nil
}

func (s *VideoService) find(ctx context.Context, id primitive.ObjectID) (*entity.Video, error) {
	v, err := s.Videos.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrVideoNotFound
		}
		return nil, err
	}
	return v, nil
}

func (s *VideoService) owned(ctx context.Context, id, caller primitive.ObjectID) (*entity.Video, error) {
	v, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !v.OwnedBy(caller) {
		return nil, ErrForbidden
	}
	return v, nil
}

func (s *VideoService) upload(ctx context.Context, kind string, owner primitive.ObjectID, f *Upload) (string, error) {
	if s.Storage == nil {
		return "", storage.ErrNotConfigured
	}
	url, err := s.Storage.Upload(ctx, storage.ObjectPath(kind, owner.Hex(), f.Filename), f.ContentType, f.Reader)
	if err != nil {
		s.log().WithError(err).WithFields(logrus.Fields{"kind": kind, "owner": owner.Hex()}).Error("media upload failed")
		return "", err
	}
	return url, nil
}
