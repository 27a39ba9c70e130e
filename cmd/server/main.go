package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/plumekit/plume/internal/api/handler"
	"github.com/plumekit/plume/internal/api/router"
	"github.com/plumekit/plume/internal/auth"
	"github.com/plumekit/plume/internal/cache"
	"github.com/plumekit/plume/internal/config"
	"github.com/plumekit/plume/internal/db"
	"github.com/plumekit/plume/internal/observability"
	"github.com/plumekit/plume/internal/repository"
	"github.com/plumekit/plume/internal/service"
	"github.com/plumekit/plume/pkg/render"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := observability.NewLogger(cfg.GinMode == "debug")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx := context.Background()

	shutdownTracing, err := observability.SetupTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		log.Fatal("tracing setup failed", zap.Error(err))
	}
	defer func() { _ = shutdownTracing(ctx) }()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.SentryDSN}); err != nil {
			log.Fatal("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	gdb, err := db.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal("database open failed", zap.Error(err))
	}
	if err := db.Migrate(gdb); err != nil {
		log.Fatal("migration failed", zap.Error(err))
	}

	redisAddr := cfg.RedisAddr
	if redisAddr == "" {
		// No external redis configured: run an embedded one so the
		// view cache works out of the box.
		mr, err := miniredis.Run()
		if err != nil {
			log.Fatal("embedded redis failed", zap.Error(err))
		}
		defer mr.Close()
		redisAddr = mr.Addr()
		log.Info("using embedded redis", zap.String("addr", redisAddr))
	}
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	viewCache := cache.NewViewCache(rdb, cfg.IndexCacheTTL)

	secret := cfg.SessionSecret
	if secret == "" {
		secret = randomSecret()
		log.Warn("no session secret configured, sessions will not survive a restart")
	}
	tokens := auth.NewTokenManager(secret, cfg.SessionLifetime)

	renderer, err := render.New(cfg.TemplatesGlob)
	if err != nil {
		log.Fatal("template load failed", zap.Error(err))
	}

	users := repository.NewUserRepository(gdb)
	groups := repository.NewGroupRepository(gdb)
	posts := repository.NewPostRepository(gdb)
	comments := repository.NewCommentRepository(gdb)
	follows := repository.NewFollowRepository(gdb)

	h := handler.New(
		service.NewFeedService(posts, groups, users, comments, follows, cfg.PageSize),
		service.NewPostService(gdb, groups),
		service.NewCommentService(gdb),
		service.NewRelationshipService(users, follows),
		auth.NewService(users),
		tokens,
		viewCache,
		renderer,
		log,
		cfg.MediaDir,
	)

	engine := router.New(router.Options{
		Handler:       h,
		Tokens:        tokens,
		Log:           log,
		MediaDir:      cfg.MediaDir,
		GinMode:       cfg.GinMode,
		SentryEnabled: cfg.SentryDSN != "",
		Tracing:       cfg.OTLPEndpoint != "",
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: engine}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return hex.EncodeToString(buf)
}
