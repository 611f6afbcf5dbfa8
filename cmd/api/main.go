package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"task-manager/internal/config"
	"task-manager/internal/db"
	apihttp "task-manager/internal/http"
	"task-manager/internal/metrics"
	"task-manager/internal/repository"
	"task-manager/internal/service"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// stores agrupa los repositorios del driver elegido.
type stores struct {
	users repository.UserRepository
	tasks repository.TaskRepository
	ping  func(ctx context.Context) error
	close func()
}

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	st := openStores(ctx, cfg, logger)
	defer st.close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(reg)

	jwtSvc := service.NewJWTService(
		cfg.JWTSecret,
		time.Duration(cfg.JWTTTLMinutes)*time.Minute,
		cfg.JWTIssuer,
	)
	hasher := service.NewBcryptHasher(cfg.BcryptCost)

	authSvc := service.NewAuthService(logger, st.users, hasher, jwtSvc)
	taskSvc := service.NewTaskService(logger, st.tasks)

	authHandler := apihttp.NewAuthHandler(logger, authSvc, collector)
	taskHandler := apihttp.NewTaskHandler(logger, taskSvc, collector)
	healthHandler := apihttp.NewHealthHandler(logger, st.ping)
	router := apihttp.NewRouter(logger, collector, jwtSvc, authHandler, taskHandler, healthHandler, apihttp.RouterConfig{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		MetricsHandler:    metrics.Handler(reg),
	})

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("starting server",
			zap.String("port", cfg.HTTPPort),
			zap.String("store", cfg.StoreDriver),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	<-stop
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
		return
	}
	logger.Info("server stopped")
}

func openStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) stores {
	switch cfg.StoreDriver {
	case config.StoreDriverRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		if err := client.Ping(ctxPing).Err(); err != nil {
			logger.Fatal("redis ping failed", zap.Error(err))
		}
		return stores{
			users: repository.NewRedisUserRepository(client),
			tasks: repository.NewRedisTaskRepository(client),
			ping:  func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close: func() { _ = client.Close() },
		}

	case config.StoreDriverMemory:
		logger.Warn("using in-memory store, data is lost on restart")
		return stores{
			users: repository.NewMemoryUserRepository(),
			tasks: repository.NewMemoryTaskRepository(),
			close: func() {},
		}

	default:
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		if cfg.MigrateOnStart {
			if err := db.Migrate(ctx, pool); err != nil {
				logger.Fatal("db migrate", zap.Error(err))
			}
			logger.Info("migrations applied")
		}
		return stores{
			users: repository.NewPgUserRepository(pool),
			tasks: repository.NewPgTaskRepository(pool),
			ping:  func(ctx context.Context) error { return db.Ping(ctx, pool) },
			close: pool.Close,
		}
	}
}
