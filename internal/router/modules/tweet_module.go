package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/videotube-api/internal/interface/http"
	"github.com/oksasatya/videotube-api/internal/interface/middleware"
	"github.com/oksasatya/videotube-api/pkg/helpers"
)

type TweetModule struct {
	Handler *handlers.TweetHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewTweetModule(h *handlers.TweetHandler, rdb *redis.Client, jwt *helpers.JWTManager) *TweetModule {
	return &TweetModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *TweetModule) Register(rg *gin.RouterGroup) {
	tweets := rg.Group("/tweets")
	tweets.Use(protected(m.Redis, middleware.Auth(m.Redis, m.JWT))...)
	{
		tweets.POST("", perMinute(m.Redis, 30, middleware.KeyByUserID()), m.Handler.Create)
		tweets.GET("/user/:userId", m.Handler.ListByUser)
		tweets.PATCH("/:tweetId", m.Handler.Update)
		tweets.DELETE("/:tweetId", m.Handler.Delete)
	}
}
