package handlers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/oksasatya/videotube-api/internal/application"
	"github.com/oksasatya/videotube-api/internal/infrastructure/storage"
	"github.com/oksasatya/videotube-api/internal/interface/middleware"
	"github.com/oksasatya/videotube-api/pkg/response"
)

// errorStatus maps service errors to HTTP status codes.
var errorStatus = []struct {
	err    error
	status int
}{
	{application.ErrMissingFields, http.StatusBadRequest},
	{application.ErrAvatarRequired, http.StatusBadRequest},
	{application.ErrCoverImageRequired, http.StatusBadRequest},
	{application.ErrVideoFileRequired, http.StatusBadRequest},
	{application.ErrThumbnailRequired, http.StatusBadRequest},
	{application.ErrInvalidID, http.StatusBadRequest},
	{application.ErrInvalidOldPassword, http.StatusBadRequest},
	{application.ErrTweetContentRequired, http.StatusBadRequest},
	{application.ErrTweetTooLong, http.StatusBadRequest},
	{application.ErrSelfSubscription, http.StatusBadRequest},
	{application.ErrInvalidCredentials, http.StatusUnauthorized},
	{application.ErrUnauthorized, http.StatusUnauthorized},
	{application.ErrInvalidRefreshToken, http.StatusUnauthorized},
	{application.ErrRefreshTokenUsed, http.StatusUnauthorized},
	{application.ErrForbidden, http.StatusForbidden},
	{application.ErrUserNotFound, http.StatusNotFound},
	{application.ErrChannelNotFound, http.StatusNotFound},
	{application.ErrVideoNotFound, http.StatusNotFound},
	{application.ErrNoVideos, http.StatusNotFound},
	{application.ErrTweetNotFound, http.StatusNotFound},
	{application.ErrUserExists, http.StatusConflict},
	{application.ErrEmailTaken, http.StatusConflict},
	{application.ErrSearchUnavailable, http.StatusServiceUnavailable},
	{storage.ErrNotConfigured, http.StatusServiceUnavailable},
}

// fail writes the error response for err. Unknown errors are logged and
// reported as 500 without leaking details.
func fail(c *gin.Context, logger *logrus.Logger, err error) {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			response.Error(c, e.status, err.Error(), nil)
			return
		}
	}
	if logger != nil {
		logger.WithError(err).WithFields(logrus.Fields{
			"request_id": c.GetString("request_id"),
			"path":       c.FullPath(),
		}).Error("request failed")
	}
	_ = c.Error(err)
	response.Error(c, http.StatusInternalServerError, "something went wrong", nil)
}

// callerID returns the authenticated user id set by middleware.Auth.
func callerID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "unauthorized request", nil)
		return primitive.NilObjectID, false
	}
	return id, true
}

// pathID parses an ObjectID path parameter, writing a 400 when malformed.
func pathID(c *gin.Context, param string) (primitive.ObjectID, bool) {
	id, err := application.ParseID(c.Param(param))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid "+param, nil)
		return primitive.NilObjectID, false
	}
	return id, true
}

// formFile opens an optional multipart file. A missing field yields nil.
func formFile(c *gin.Context, field string) (*application.Upload, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, func() {}, nil
		}
		return nil, func() {}, err
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*application.Upload, func(), error) {
	f, err := fh.Open()
	if err != nil {
		return nil, func() {}, err
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = "application/octet-stream"
	}
	return &application.Upload{Filename: fh.Filename, ContentType: ct, Reader: f}, func() { _ = f.Close() }, nil
}

// badUpload reports a multipart parsing failure.
func badUpload(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, "upload exceeds the size limit", nil)
		return
	}
	response.Error(c, http.StatusBadRequest, "invalid multipart form", err.Error())
}
