package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/wizzchat/wizzchat/internal/cache"
	"github.com/wizzchat/wizzchat/internal/config"
	"github.com/wizzchat/wizzchat/internal/domain"
	"github.com/wizzchat/wizzchat/internal/handler"
	"github.com/wizzchat/wizzchat/internal/hub"
	"github.com/wizzchat/wizzchat/internal/middleware"
	"github.com/wizzchat/wizzchat/internal/repository"
	"github.com/wizzchat/wizzchat/internal/service"
	"github.com/wizzchat/wizzchat/pkg/database"
	"github.com/wizzchat/wizzchat/pkg/jwt"
	"github.com/wizzchat/wizzchat/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	l := log.L()

	db, err := database.New(&cfg.Database)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db,
		&domain.UserModel{},
		&domain.ConversationModel{},
		&domain.MessageModel{},
		&domain.ReactionModel{},
	); err != nil {
		l.Fatal().Err(err).Msg("failed to migrate database")
	}

	userRepo := repository.NewGormUserRepository(db)
	chatRepo := repository.NewGormChatRepository(db)

	var userCache cache.UserCache
	if cfg.Redis.Enabled {
		rc, err := cache.NewRedisUserCache(cache.Config{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, "wizzchat")
		if err != nil {
			l.Warn().Err(err).Msg("redis unavailable, running without user cache")
		} else {
			userCache = rc
			defer rc.Close()
		}
	}

	tokens := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer)

	h := hub.NewHub(cfg.WebSocket)

	authSvc := service.NewAuthService(userRepo, tokens, userCache, cfg.Redis.TTL)
	chatSvc := service.NewChatService(chatRepo, userRepo, h)
	realtimeSvc := service.NewRealtimeService(tokens, chatRepo, h)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(log.GinMiddleware(l))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigin))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	handler.NewHandler(authSvc, chatSvc, tokens).RegisterRoutes(r)
	handler.NewWSHandler(h, realtimeSvc, cfg.WebSocket, cfg.CORS.AllowedOrigin).RegisterRoutes(r)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		h.Run(gctx)
		return nil
	})

	g.Go(func() error {
		l.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		l.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		l.Fatal().Err(err).Msg("server exited with error")
	}
	l.Info().Msg("server stopped")
}
