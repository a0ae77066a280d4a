package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"taskportal/internal/mqhandler"
	"taskportal/internal/repository"
	"taskportal/pkg/config"
	"taskportal/pkg/db"
	"taskportal/pkg/logger"
	"taskportal/pkg/mq"
	redisclient "taskportal/pkg/redis"
	"taskportal/pkg/util"
)

func main() {
	cfg, err := config.Load(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	if cfg.MQ.URL == "" {
		log.Fatal("Activity worker needs mq.url")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting activity worker...",
		zap.String("queue", cfg.Worker.Queue),
		zap.String("routing_key", cfg.Worker.RoutingKey),
	)

	var recorder mqhandler.ActivityRecorder
	if cfg.Storage.Driver == "memory" {
		log.Warn("Using in-memory activity log, entries are lost on restart")
		recorder = repository.NewMemoryStore().Activity()
	} else {
		pool, err := db.NewConnection(ctx, cfg.DB, log)
		if err != nil {
			log.Fatal("Failed to init DB", zap.Error(err))
		}
		defer pool.Close()
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			log.Fatal("Failed to apply schema", zap.Error(err))
		}
		recorder = repository.NewActivityRepository(pool, log)
	}

	var (
		deduper mqhandler.Deduper
		retries mqhandler.RetryCounter
	)
	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, relying on storage for dedup and requeueing without a retry limit", zap.Error(err))
		} else {
			defer rdb.Close()
			deduper = util.NewDeduper(rdb, cfg.Worker.DedupTTL, log)
			retries = util.NewRetryCounter(rdb, cfg.Worker.DedupTTL)
		}
	}

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.Worker.Queue, cfg.Worker.RoutingKey, log)
	if err != nil {
		log.Fatal("Failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.SetHandler(mqhandler.NewActivityHandler(recorder, deduper, retries, cfg.Worker.MaxRetries, log).Handle)
	consumer.SetRetryDelay(cfg.Worker.RetryDelay)

	if err := consumer.StartConsuming(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Consumer stopped", zap.Error(err))
		return
	}
	log.Info("Activity worker shutdown complete")
}
