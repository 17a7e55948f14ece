package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/config"
	"github.com/oksasatya/videotube-api/internal/domain/entity"
	repo "github.com/oksasatya/videotube-api/internal/domain/repository"
	"github.com/oksasatya/videotube-api/internal/infrastructure/storage"
	"github.com/oksasatya/videotube-api/pkg/helpers"
	"github.com/oksasatya/videotube-api/pkg/mailer"
	mailtpl "github.com/oksasatya/videotube-api/pkg/mailer/templates"
)

type UserService struct {
	Repo    repo.UserRepository
	JWT     *helpers.JWTManager
	Storage storage.Uploader
	Redis   *redis.Client
	Logger  *logrus.Logger

	// optional integrations
	Mail         Publisher
	Cfg          *config.Config
	ES           *elasticsearch.Client
	ESUsersIndex string
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

func NewUserService(repo repo.UserRepository, jwt *helpers.JWTManager, uploader storage.Uploader, rdb *redis.Client, logger *logrus.Logger) *UserService {
	return &UserService{
		Repo:    repo,
		JWT:     jwt,
		Storage: uploader,
		Redis:   rdb,
		Logger:  logger,
	}
}

// WithMail enables transactional email jobs.
func (s *UserService) WithMail(pub Publisher, cfg *config.Config) *UserService {
	s.Mail, s.Cfg = pub, cfg
	return s
}

// WithSearch enables Elasticsearch indexing and search of users.
func (s *UserService) WithSearch(es *elasticsearch.Client, index string) *UserService {
	s.ES, s.ESUsersIndex = es, index
	return s
}

func (s *UserService) log() *logrus.Entry { return helpers.Component(s.Logger, "user_service") }

type RegisterInput struct {
	FullName   string
	Email      string
	Username   string
	Password   string
	Avatar     *Upload
	CoverImage *Upload
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if in.FullName == "" || in.Email == "" || in.Username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, ErrMissingFields
	}
	if in.Avatar == nil {
		return nil, ErrAvatarRequired
	}

	existing, err := s.Repo.GetByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	u := &entity.User{
		ID:       primitive.NewObjectID(),
		Username: in.Username,
		Email:    in.Email,
		FullName: in.FullName,
		Password: hash,
	}
	if u.Avatar, err = s.upload(ctx, "avatars", u.ID, in.Avatar); err != nil {
		return nil, err
	}
	if in.CoverImage != nil {
		if u.CoverImage, err = s.upload(ctx, "covers", u.ID, in.CoverImage); err != nil {
			return nil, err
		}
	}

	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrUserExists
		}
		s.log().WithError(err).WithField("username", u.Username).Error("create user failed")
		return nil, err
	}

	s.enqueueMail(ctx, u, mailtpl.Welcome, mailtpl.NewWelcomeData)
	_ = s.indexUser(ctx, u)
	return u, nil
}

type LoginInput struct {
	Email    string
	Username string
	Password string
}

// Login verifies credentials by email or username and opens a new session.
func (s *UserService) Login(ctx context.Context, in LoginInput) (*entity.User, TokenPair, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.ToLower(strings.TrimSpace(in.Username))
	if in.Email == "" && in.Username == "" {
		return nil, TokenPair{}, ErrMissingFields
	}
	u, err := s.Repo.GetByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, TokenPair{}, ErrUserNotFound
		}
		return nil, TokenPair{}, err
	}
	if !helpers.CompareHashAndPassword(u.Password, in.Password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// issueTokens generates access/refresh tokens, stores the refresh token on the
// user and records the session id in Redis.
func (s *UserService) issueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sub := helpers.TokenSubject{
		UserID:    u.ID.Hex(),
		SessionID: uuid.NewString(),
		Username:  u.Username,
		Email:     u.Email,
	}
	access, aexp, err := s.JWT.GenerateAccessToken(sub)
	if err != nil {
		s.log().WithError(err).WithField("user_id", sub.UserID).Error("generate access token failed")
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(sub)
	if err != nil {
		s.log().WithError(err).WithField("user_id", sub.UserID).Error("generate refresh token failed")
		return TokenPair{}, err
	}

	if err := s.Repo.SetRefreshToken(ctx, u.ID, refresh); err != nil {
		return TokenPair{}, err
	}
	u.RefreshToken = refresh

	if s.Redis != nil {
		key := helpers.SessionKey(sub.UserID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":    sub.UserID,
			"username":   u.Username,
			"sid":        sub.SessionID,
			"created_at": time.Now().UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, s.JWT.RefreshTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil {
			s.log().WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Logout unsets the stored refresh token and drops the Redis session.
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	if err := s.Repo.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if s.Redis != nil {
		if err := s.Redis.Del(ctx, helpers.SessionKey(userID.Hex())).Err(); err != nil {
			s.log().WithError(err).WithField("user_id", userID.Hex()).Warn("redis session delete failed")
		}
	}
	return nil
}

// Refresh rotates both tokens when token matches the one stored on the user.
func (s *UserService) Refresh(ctx context.Context, token string) (*entity.User, TokenPair, error) {
	if strings.TrimSpace(token) == "" {
		return nil, TokenPair{}, ErrUnauthorized
	}
	claims, err := s.JWT.ParseRefreshToken(token)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}
	uid, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}
	u, err := s.Repo.GetByID(ctx, uid)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidRefreshToken
	}
	if u.RefreshToken == "" || u.RefreshToken != token {
		return nil, TokenPair{}, ErrRefreshTokenUsed
	}
	pair, err := s.issueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, oldPassword, newPassword string) error {
	u, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if !helpers.CompareHashAndPassword(u.Password, oldPassword) {
		return ErrInvalidOldPassword
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if _, err := s.Repo.Update(ctx, userID, repo.UserFields{Password: &hash}); err != nil {
		return err
	}
	s.enqueueMail(ctx, u, mailtpl.PasswordChanged, mailtpl.NewPasswordChangedData)
	return nil
}

func (s *UserService) CurrentUser(ctx context.Context, userID primitive.ObjectID) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// UpdateAccount sets full name and email; the email must not belong to another user.
func (s *UserService) UpdateAccount(ctx context.Context, userID primitive.ObjectID, fullName, email string) (*entity.User, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))
	if fullName == "" || email == "" {
		return nil, ErrMissingFields
	}

	owner, err := s.Repo.GetByUsernameOrEmail(ctx, "", email)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if owner != nil && owner.ID != userID {
		return nil, ErrEmailTaken
	}

	prev, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	u, err := s.Repo.Update(ctx, userID, repo.UserFields{FullName: &fullName, Email: &email})
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicate):
			return nil, ErrEmailTaken
		case errors.Is(err, repo.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	changes := map[string]string{}
	if prev.FullName != u.FullName {
		changes["fullName"] = u.FullName
	}
	if prev.Email != u.Email {
		changes["email"] = u.Email
	}
	if len(changes) > 0 {
		s.enqueueMail(ctx, u, mailtpl.AccountUpdated, func(cfg *config.Config, name, username, email string, opts ...mailtpl.Option) map[string]any {
			return mailtpl.NewAccountUpdatedData(cfg, name, username, email, changes, opts...)
		})
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

func (s *UserService) UpdateAvatar(ctx context.Context, userID primitive.ObjectID, file *Upload) (*entity.User, error) {
	if file == nil {
		return nil, ErrAvatarRequired
	}
	url, err := s.upload(ctx, "avatars", userID, file)
	if err != nil {
		return nil, err
	}
	return s.updateMedia(ctx, userID, repo.UserFields{Avatar: &url})
}

func (s *UserService) UpdateCoverImage(ctx context.Context, userID primitive.ObjectID, file *Upload) (*entity.User, error) {
	if file == nil {
		return nil, ErrCoverImageRequired
	}
	url, err := s.upload(ctx, "covers", userID, file)
	if err != nil {
		return nil, err
	}
	return s.updateMedia(ctx, userID, repo.UserFields{CoverImage: &url})
}

func (s *UserService) updateMedia(ctx context.Context, userID primitive.ObjectID, f repo.UserFields) (*entity.User, error) {
	u, err := s.Repo.Update(ctx, userID, f)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

// ChannelProfile returns the public channel of username as seen by viewer.
func (s *UserService) ChannelProfile(ctx context.Context, username string, viewer primitive.ObjectID) (*entity.ChannelProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrMissingFields
	}
	p, err := s.Repo.ChannelProfile(ctx, username, viewer)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrChannelNotFound
		}
		return nil, err
	}
	return p, nil
}

// WatchHistory returns the videos the user watched, most recent first.
func (s *UserService) WatchHistory(ctx context.Context, userID primitive.ObjectID) ([]entity.VideoWithOwner, error) {
	videos, err := s.Repo.WatchHistory(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if videos == nil {
		videos = []entity.VideoWithOwner{}
	}
	return videos, nil
}

func (s *UserService) upload(ctx context.Context, kind string, owner primitive.ObjectID, f *Upload) (string, error) {
	if s.Storage == nil {
		return "", storage.ErrNotConfigured
	}
	url, err := s.Storage.Upload(ctx, storage.ObjectPath(kind, owner.Hex(), f.Filename), f.ContentType, f.Reader)
	if err != nil {
		s.log().WithError(err).WithFields(logrus.Fields{"kind": kind, "user_id": owner.Hex()}).Error("media upload failed")
		return "", err
	}
	return url, nil
}

type mailDataFunc func(cfg *config.Config, name, username, email string, opts ...mailtpl.Option) map[string]any

// enqueueMail publishes an email job; failures are logged and never surface to the caller.
func (s *UserService) enqueueMail(ctx context.Context, u *entity.User, template string, data mailDataFunc) {
	if s.Mail == nil || s.Cfg == nil || !s.Cfg.MailSendEnabled {
		return
	}
	job := mailer.EmailJob{
		To:       u.Email,
		Template: template,
		Data:     data(s.Cfg, u.FullName, u.Username, u.Email),
	}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := s.Mail.PublishJSON(c, job); err != nil {
		s.log().WithError(err).WithFields(logrus.Fields{"template": template, "user_id": u.ID.Hex()}).Warn("enqueue email failed")
	}
}
