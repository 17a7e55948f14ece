package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/videotube-api/internal/application"
	"github.com/oksasatya/videotube-api/pkg/response"
)

type VideoHandler struct {
	Svc    *application.VideoService
	Logger *logrus.Logger
}

func NewVideoHandler(svc *application.VideoService, logger *logrus.Logger) *VideoHandler {
	return &VideoHandler{Svc: svc, Logger: logger}
}

// List: /videos?page=1&limit=10&query=&sortBy=createdAt&sortType=desc&userId=
func (h *VideoHandler) List(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	page, err := h.Svc.List(c.Request.Context(), application.ListVideosInput{
		Page:     c.Query("page"),
		Limit:    c.Query("limit"),
		Query:    c.Query("query"),
		SortBy:   c.Query("sortBy"),
		SortType: c.Query("sortType"),
		UserID:   c.Query("userId"),
		Caller:   uid,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, page, "videos fetched successfully", nil)
}

func (h *VideoHandler) Publish(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	var duration float64
	if raw := strings.TrimSpace(c.PostForm("duration")); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 {
			response.Error(c, http.StatusBadRequest, "duration must be a positive number of seconds", nil)
			return
		}
		duration = d
	}
	videoFile, closeVideo, err := formFile(c, "videoFile")
	if err != nil {
		badUpload(c, err)
		return
	}
	defer closeVideo()
	thumb, closeThumb, err := formFile(c, "thumbnail")
	if err != nil {
		badUpload(c, err)
		return
	}
	defer closeThumb()

	v, err := h.Svc.Publish(c.Request.Context(), uid, application.PublishVideoInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Duration:    duration,
		VideoFile:   videoFile,
		Thumbnail:   thumb,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, v, "video published successfully", nil)
}

func (h *VideoHandler) Get(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}
	v, err := h.Svc.Get(c.Request.Context(), id, uid)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "video fetched successfully", nil)
}

func (h *VideoHandler) Update(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}
	thumb, closeThumb, err := formFile(c, "thumbnail")
	if err != nil {
		badUpload(c, err)
		return
	}
	defer closeThumb()

	v, err := h.Svc.Update(c.Request.Context(), id, uid, application.UpdateVideoInput{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Thumbnail:   thumb,
	})
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, v, "video updated successfully", nil)
}

func (h *VideoHandler) Delete(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id, uid); err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{}, "video deleted successfully", nil)
}

func (h *VideoHandler) TogglePublish(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "videoId")
	if !ok {
		return
	}
	published, err := h.Svc.TogglePublish(c.Request.Context(), id, uid)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"isPublished": published}, "video publish status toggled", nil)
}
