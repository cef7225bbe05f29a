package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"kanban-api/api"
	"kanban-api/board"
	"kanban-api/config"
	"kanban-api/tracing"
)

const serviceName = "kanban-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		logger.WithError(err).Fatal("tracing setup")
	}

	store := board.New(board.Seed(cfg.BoardTitle, uuid.NewString), board.WithLogger(logger))

	var deduper api.Deduper
	var rc *redis.Client
	if opts := cfg.RedisOptions(); opts != nil {
		rc = redis.NewClient(opts)
		deduper = api.NewRedisDeduper(rc, cfg.DeduperTTL)
	} else {
		logger.Warn("REDIS_CONNECTION_STRING not set; idempotency keys are not enforced")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = api.JSONSerializer{}
	// Request contexts end with the signal context so open streams return
	// when shutdown starts.
	e.Server.BaseContext = func(net.Listener) context.Context { return ctx }
	e.Use(middleware.Decompress())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:  cfg.AllowOrigins,
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, "If-None-Match"},
		ExposeHeaders: []string{"ETag"},
	}))

	api.Register(e, store, api.Options{
		Deduper:   deduper,
		Logger:    logger,
		Heartbeat: cfg.StreamHeartbeat,
	})

	go func() {
		logger.WithFields(log.Fields{"addr": cfg.ListenAddr(), "board": store.Snapshot().Board.ID}).Info("board api starting")
		if err := e.Start(cfg.ListenAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("board api shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Warn("http shutdown")
	}
	if rc != nil {
		if err := rc.Close(); err != nil {
			logger.WithError(err).Warn("redis close")
		}
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.WithError(err).Warn("tracer shutdown")
	}
}
