package application

import "errors"

var (
	ErrMissingFields        = errors.New("all fields are required")
	ErrAvatarRequired       = errors.New("avatar is required")
	ErrCoverImageRequired   = errors.New("cover image is required")
	ErrUserExists           = errors.New("user with email or username already exists")
	ErrEmailTaken           = errors.New("email is already in use")
	ErrUserNotFound         = errors.New("user does not exist")
	ErrInvalidCredentials   = errors.New("invalid user credentials")
	ErrInvalidOldPassword   = errors.New("invalid old password")
	ErrUnauthorized         = errors.New("unauthorized request")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrRefreshTokenUsed     = errors.New("refresh token is expired or used")
	ErrChannelNotFound      = errors.New("channel does not exist")
	ErrInvalidID            = errors.New("invalid id")
	ErrForbidden            = errors.New("you are not allowed to modify this resource")
	ErrVideoNotFound        = errors.New("video not found")
	ErrNoVideos             = errors.New("no videos found")
	ErrVideoFileRequired    = errors.New("video file is required")
	ErrThumbnailRequired    = errors.New("thumbnail is required")
	ErrTweetNotFound        = errors.New("tweet not found")
	ErrTweetContentRequired = errors.New("content is required")
	ErrTweetTooLong         = errors.New("tweet exceeds 280 characters")
	ErrSelfSubscription     = errors.New("cannot subscribe to your own channel")
	ErrSearchUnavailable    = errors.New("search is not configured")
)
