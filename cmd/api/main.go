package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"taskportal/internal/cache"
	"taskportal/internal/handler"
	"taskportal/internal/httpserver"
	"taskportal/internal/repository"
	"taskportal/internal/service"
	"taskportal/pkg/config"
	"taskportal/pkg/db"
	"taskportal/pkg/logger"
	"taskportal/pkg/mq"
	redisclient "taskportal/pkg/redis"
)

type storage struct {
	employees service.EmployeeRepository
	tasks     service.TaskRepository
	activity  handler.ActivityReader
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn("Using in-memory storage, data is lost on restart")
		mem := repository.NewMemoryStore()
		return &storage{employees: mem.Employees(), tasks: mem.Tasks(), activity: mem.Activity(), close: func() {}}, nil
	}

	pool, err := db.NewConnection(ctx, cfg.DB, log)
	if err != nil {
		return nil, err
	}
	if err := repository.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &storage{
		employees: repository.NewEmployeeRepository(pool, log),
		tasks:     repository.NewTaskRepository(pool, log),
		activity:  repository.NewActivityRepository(pool, log),
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load(config.GetConfigEnv(), config.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		panic(err)
	}

	log := logger.NewLogger(cfg.Log.Level)
	defer log.Sync()

	log.Info("Starting portal api...",
		zap.String("env", cfg.Env),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("port", cfg.Server.Port),
	)

	ctx := context.Background()

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to init storage", zap.Error(err))
	}
	defer store.close()

	// Redis 列表缓存（可选）
	var listCache service.Cache = service.NopCache{}
	if cfg.Redis.Addr != "" {
		rdb, err := redisclient.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, list cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			listCache = cache.NewRedisCache(rdb, cfg.Redis.CacheTTL, log)
			log.Info("Redis list cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// MQ 事件发布（可选）
	var publisher service.Publisher = service.NopPublisher{}
	if cfg.MQ.URL != "" {
		p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange)
		if err != nil {
			log.Warn("RabbitMQ unavailable, events disabled", zap.Error(err))
		} else {
			defer p.Close()
			publisher = p
			log.Info("Event publishing enabled", zap.String("exchange", cfg.MQ.Exchange))
		}
	}

	authService := service.NewAuthService(store.employees, log)
	employeeService := service.NewEmployeeService(store.employees, listCache, publisher, log)
	taskService := service.NewTaskService(store.tasks, store.employees, listCache, publisher, log)

	if err := authService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		log.Fatal("Failed to seed admin account", zap.Error(err))
	}

	router := httpserver.NewRouter(httpserver.Handlers{
		Auth:      handler.NewAuthHandler(authService, log),
		Employees: handler.NewEmployeeHandler(employeeService, log),
		Tasks:     handler.NewTaskHandler(taskService, log),
		Activity:  handler.NewActivityHandler(store.activity, log),
	}, employeeService, log)

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 优雅退出处理
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down portal api gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}
}
