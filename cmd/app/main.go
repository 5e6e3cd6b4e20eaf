package main

import (
	"context"
	"errors"
	"fmt"
	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
	"issue-service/internal/config"
	"issue-service/internal/logger"
	"issue-service/internal/repository"
	"issue-service/internal/service"
	transportHttp "issue-service/internal/transport/http"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
)

func main() {
	// Config
	cfg := config.MustLoad()

	// Logger
	l, err := logger.New(cfg.LogLevel, cfg.LogEncoding)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer l.Sync()

	// PostgreSQL
	pgPool := initPostgres(cfg, l)
	defer pgPool.Close()

	// Redis
	redisClient := initRedis(cfg, l)
	defer redisClient.Close()

	// ClickHouse
	clickhouseConn := initClickhouse(cfg, l)
	defer clickhouseConn.Close()

	// NATS
	natsConn := initNATS(cfg, l)
	defer natsConn.Close()

	// Repos
	postgresRepo := repository.NewPostgresRepository(pgPool)
	redisRepo := repository.NewRedisRepository(redisClient, time.Duration(cfg.CacheTTLSeconds)*time.Second)
	clickhouseRepo := repository.NewClickhouseRepository(clickhouseConn)

	// NATS -> ClickHouse audit log
	natsSubscriber := service.NewNATSSubscriber(natsConn, clickhouseRepo, l)
	if err := natsSubscriber.Subscribe(); err != nil {
		l.Fatal("failed to start NATS subscriber", zap.Error(err))
	}

	// Service
	issueService := service.NewIssueService(postgresRepo, redisRepo, service.NewNATSPublisher(natsConn), l)

	// Handler, Routes
	handler := transportHttp.NewHandler(issueService, transportHttp.Pagination{
		DefaultSize: cfg.DefaultPageSize,
		MaxSize:     cfg.MaxPageSize,
	}, l)
	router := transportHttp.NewRouter(handler, transportHttp.RouterConfig{
		BasePath:       cfg.ApiBasePath,
		AllowedOrigins: cfg.AllowedOrigins(),
	}, l)

	// HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.HttpPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server
	go func() {
		l.Info("starting server", zap.String("port", cfg.HttpPort), zap.String("base_path", cfg.ApiBasePath))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		l.Error("server forced to shutdown", zap.Error(err))
	}

	if err := natsSubscriber.Unsubscribe(); err != nil {
		l.Warn("failed to drain NATS subscription", zap.Error(err))
	}

	l.Info("server exiting")
}

func initPostgres(cfg *config.Config, l *zap.Logger) *pgxpool.Pool {
	connStr := cfg.PostgresDSN()

	l.Info("connecting to PostgreSQL",
		zap.String("dsn", strings.Replace(connStr, cfg.DbPassword, "***", 1)))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		l.Fatal("unable to connect to database", zap.Error(err))
	}

	if err := pool.Ping(ctx); err != nil {
		l.Fatal("unable to ping database", zap.Error(err))
	}

	return pool
}

func initRedis(cfg *config.Config, l *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		l.Fatal("unable to connect to Redis", zap.Error(err))
	}

	return client
}

func initClickhouse(cfg *config.Config, l *zap.Logger) clickhouse.Conn {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%s", cfg.ChHost, cfg.ChPort)},
		Auth: clickhouse.Auth{
			Database: cfg.ChDatabase,
		},
	})
	if err != nil {
		l.Fatal("unable to connect to Clickhouse", zap.Error(err))
	}

	return conn
}

func initNATS(cfg *config.Config, l *zap.Logger) *nats.Conn {
	nc, err := nats.Connect(cfg.NatsURL, nats.Name("issue-service"))
	if err != nil {
		l.Fatal("unable to connect to NATS", zap.Error(err))
	}

	return nc
}
