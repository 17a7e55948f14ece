package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/videotube-api/internal/application"
	"github.com/oksasatya/videotube-api/pkg/response"
)

type SubscriptionHandler struct {
	Svc    *application.SubscriptionService
	Logger *logrus.Logger
}

func NewSubscriptionHandler(svc *application.SubscriptionService, logger *logrus.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{Svc: svc, Logger: logger}
}

func (h *SubscriptionHandler) Toggle(c *gin.Context) {
	uid, ok := callerID(c)
	if !ok {
		return
	}
	channel, ok := pathID(c, "channelId")
	if !ok {
		return
	}
	subscribed, err := h.Svc.Toggle(c.Request.Context(), uid, channel)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	msg := "unsubscribed successfully"
	if subscribed {
		msg = "subscribed successfully"
	}
	response.Success(c, http.StatusOK, gin.H{"subscribed": subscribed}, msg, nil)
}

func (h *SubscriptionHandler) Subscribers(c *gin.Context) {
	channel, ok := pathID(c, "channelId")
	if !ok {
		return
	}
	list, err := h.Svc.Subscribers(c.Request.Context(), channel)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "subscribers fetched successfully", map[string]any{"count": len(list)})
}

func (h *SubscriptionHandler) Channels(c *gin.Context) {
	subscriber, ok := pathID(c, "subscriberId")
	if !ok {
		return
	}
	list, err := h.Svc.Channels(c.Request.Context(), subscriber)
	if err != nil {
		fail(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, list, "subscribed channels fetched successfully", map[string]any{"count": len(list)})
}
