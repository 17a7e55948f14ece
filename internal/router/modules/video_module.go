package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/videotube-api/internal/interface/http"
	"github.com/oksasatya/videotube-api/internal/interface/middleware"
	"github.com/oksasatya/videotube-api/pkg/helpers"
)

type VideoModule struct {
	Handler *handlers.VideoHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewVideoModule(h *handlers.VideoHandler, rdb *redis.Client, jwt *helpers.JWTManager) *VideoModule {
	return &VideoModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *VideoModule) Register(rg *gin.RouterGroup) {
	videos := rg.Group("/videos")
	videos.Use(protected(m.Redis, middleware.Auth(m.Redis, m.JWT))...)
	{
		videos.GET("", m.Handler.List)
		// uploads are expensive, keep them on a tighter budget
		videos.POST("", perMinute(m.Redis, 10, middleware.KeyByUserID()), m.Handler.Publish)
		videos.GET("/:videoId", m.Handler.Get)
		videos.PATCH("/:videoId", m.Handler.Update)
		videos.DELETE("/:videoId", m.Handler.Delete)
		videos.PATCH("/toggle/publish/:videoId", m.Handler.TogglePublish)
	}
}
