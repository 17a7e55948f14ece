package modules

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/videotube-api/internal/interface/http"
	"github.com/oksasatya/videotube-api/internal/interface/middleware"
	"github.com/oksasatya/videotube-api/pkg/helpers"
)

// UserModule wires account, session and channel routes under /users.
// Public: register, login, refresh-token
// Protected: everything else
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/users")

	// Public with rate limiting
	users.POST("/register", perMinute(m.Redis, 10, middleware.KeyByIPAndPath()), m.Handler.Register)
	users.POST("/login", perMinute(m.Redis, 10, middleware.KeyByIPAndPath()), m.Handler.Login)
	users.POST("/refresh-token", perMinute(m.Redis, 60, middleware.KeyByIP()), m.Handler.RefreshAccessToken)

	auth := users.Group("/")
	auth.Use(protected(m.Redis, middleware.Auth(m.Redis, m.JWT))...)
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.POST("/change-password", perMinute(m.Redis, 5, middleware.KeyByUserID()), m.Handler.ChangePassword)
		auth.GET("/current-user", m.Handler.CurrentUser)
		auth.PATCH("/update-account", m.Handler.UpdateAccount)
		auth.PATCH("/avatar", m.Handler.UpdateAvatar)
		auth.PATCH("/cover-image", m.Handler.UpdateCoverImage)
		auth.GET("/c/:username", m.Handler.ChannelProfile)
		auth.GET("/history", m.Handler.WatchHistory)
		// Search users via Elasticsearch
		auth.GET("/search", m.Handler.Search)
	}
}
