package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/videotube-api/internal/application"
	"github.com/oksasatya/videotube-api/pkg/response"
	"github.com/oksasatya/videotube-api/pkg/validation"
)

type TweetHandler struct {
	Svc    *application.TweetService
	Logger *logrus.Logger
}

func NewTweetHandler(svc *application.TweetService, logger *logrus.Logger) *TweetHandler {
	return &TweetHandler{Svc: svc, Logger: logger}
}

type tweetRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *TweetHandler) bind(c *gin.Context) (string, bool) {
	var req tweetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "content is required", validation.ToDetails(err))
		return "", false
	}
	return req.Content, true
}

func (h *TweetHandler) Create(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	content, ok := h.bind(c)
	if !ok {
		return
	}
	t, err := h.Svc.Create(c.Request.Context(), uid, content)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, t, "tweet created successfully", nil)
}

func (h *TweetHandler) ListByUser(c *gin.Context) {
	id, ok := pathID(c, "userId")
	if !ok {
		return
	}
	tweets, err := h.Svc.ListByUser(c.Request.Context(), id)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"totalTweets": len(tweets), "tweets": tweets}, "tweets fetched successfully", nil)
}

func (h *TweetHandler) Update(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "tweetId")
	if !ok {
		return
	}
	content, ok := h.bind(c)
	if !ok {
		return
	}
	t, err := h.Svc.Update(c.Request.Context(), id, uid, content)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, t, "tweet updated successfully", nil)
}

func (h *TweetHandler) Delete(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "tweetId")
	if !ok {
		return
	}
	t, err := h.Svc.Delete(c.Request.Context(), id, uid)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, t, "tweet deleted successfully", nil)
}
