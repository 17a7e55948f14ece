package router

import (
	"context"

	"github.com/oksasatya/videotube-api/internal/application"
	"github.com/oksasatya/videotube-api/internal/container"
	"github.com/oksasatya/videotube-api/internal/infrastructure/mongodb"
	handlers "github.com/oksasatya/videotube-api/internal/interface/http"
	"github.com/oksasatya/videotube-api/internal/router/modules"
)

type Deps struct {
	Users         *handlers.UserHandler
	Videos        *handlers.VideoHandler
	Tweets        *handlers.TweetHandler
	Subscriptions *handlers.SubscriptionHandler
	Health        *handlers.HealthHandler
}

func buildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	db := container.GetMongoDB()

	userRepo := mongodb.NewUserRepository(db)
	userSvc := application.NewUserService(userRepo, container.GetJWT(), container.GetUploader(), container.GetRedis(), logger)
	if pub := container.GetRabbitPub(); pub != nil {
		userSvc.WithMail(pub, cfg)
	}
	if es := container.GetES(); es != nil {
		userSvc.WithSearch(es, cfg.ESUsersIndex)
	}

	videoSvc := application.NewVideoService(mongodb.NewVideoRepository(db), userRepo, container.GetUploader(), logger)
	tweetSvc := application.NewTweetService(mongodb.NewTweetRepository(db))
	subSvc := application.NewSubscriptionService(mongodb.NewSubscriptionRepository(db), userRepo)

	var redisPing handlers.Pinger
	if rdb := container.GetRedis(); rdb != nil {
		redisPing = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	mongoPing := func(ctx context.Context) error { return container.GetMongoClient().Ping(ctx, nil) }

	return Deps{
		Users:         handlers.NewUserHandler(userSvc, logger, cfg.CookieDomain, cfg.CookieSecure),
		Videos:        handlers.NewVideoHandler(videoSvc, logger),
		Tweets:        handlers.NewTweetHandler(tweetSvc, logger),
		Subscriptions: handlers.NewSubscriptionHandler(subSvc, logger),
		Health:        handlers.NewHealthHandler(mongoPing, redisPing),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	deps := buildDeps()
	rdb := container.GetRedis()
	jwt := container.GetJWT()

	r.Add(modules.NewHealthModule(deps.Health))
	r.Add(modules.NewUserModule(deps.Users, rdb, jwt))
	r.Add(modules.NewVideoModule(deps.Videos, rdb, jwt))
	r.Add(modules.NewTweetModule(deps.Tweets, rdb, jwt))
	r.Add(modules.NewSubscriptionModule(deps.Subscriptions, rdb, jwt))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(rdb))
	}
}
