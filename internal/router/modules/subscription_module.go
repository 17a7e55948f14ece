package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/videotube-api/internal/interface/http"
	"github.com/oksasatya/videotube-api/internal/interface/middleware"
	"github.com/oksasatya/videotube-api/pkg/helpers"
)

type SubscriptionModule struct {
	Handler *handlers.SubscriptionHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewSubscriptionModule(h *handlers.SubscriptionHandler, rdb *redis.Client, jwt *helpers.JWTManager) *SubscriptionModule {
	return &SubscriptionModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *SubscriptionModule) Register(rg *gin.RouterGroup) {
	subs := rg.Group("/subscriptions")
	subs.Use(protected(m.Redis, middleware.Auth(m.Redis, m.JWT))...)
	{
		subs.POST("/c/:channelId", m.Handler.Toggle)
		subs.GET("/c/:channelId", m.Handler.Subscribers)
		subs.GET("/u/:subscriberId", m.Handler.Channels)
	}
}
