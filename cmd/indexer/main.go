package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/oksasatya/videotube-api/config"
	"github.com/oksasatya/videotube-api/internal/application"
	"github.com/oksasatya/videotube-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/videotube-api/pkg/helpers"
)

// indexer rebuilds the Elasticsearch users index from MongoDB on a cron schedule.
func main() {
	once := flag.Bool("once", false, "reindex once and exit")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-indexer", cfg.Env)
	ctx := context.Background()

	client, err := mongodb.NewClient(ctx, cfg.MongoURI, cfg.MongoMaxPool, cfg.MongoTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("failed to init elasticsearch: %v", err)
	}

	svc := application.NewUserService(mongodb.NewUserRepository(client.Database(cfg.MongoDB)), nil, nil, nil, logger).
		WithSearch(es, cfg.ESUsersIndex)
	entry := helpers.Component(logger, "indexer")

	run := func() {
		n, err := svc.ReindexUsers(ctx)
		if err != nil {
			entry.WithError(err).WithField("indexed", n).Error("reindex failed")
			return
		}
		entry.WithField("indexed", n).Info("reindex complete")
	}

	if *once {
		run()
		return
	}

	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.IndexerSchedule, run); err != nil {
		log.Fatalf("invalid INDEXER_SCHEDULE %q: %v", cfg.IndexerSchedule, err)
	}
	c.Start()
	entry.WithField("schedule", cfg.IndexerSchedule).Info("indexer started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	<-c.Stop().Done()
	entry.Info("indexer stopped")
}
