package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/videotube-api/internal/container"
	"github.com/oksasatya/videotube-api/internal/interface/middleware"
)

// bypass skips rate limits for the healthcheck, and for private addresses
// during local development.
func bypass() middleware.AllowFunc {
	var private middleware.AllowFunc
	if cfg := container.GetConfig(); cfg != nil && cfg.Env == "development" {
		private = middleware.AllowPrivateIP()
	}
	return middleware.AnyOf(middleware.AllowPaths("/api/v1/healthcheck"), private)
}

func perMinute(rdb *redis.Client, max int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(rdb, max, time.Minute, key, bypass())
}

// protected is the middleware chain shared by authenticated routes.
func protected(rdb *redis.Client, auth gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		auth,
		perMinute(rdb, 300, middleware.KeyByIP()),
		perMinute(rdb, 120, middleware.KeyByUserID()),
	}
}
