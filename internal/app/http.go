package app

import (
	"context"
	"net/http"
	"time"

	"github.com/Jacky-Bruse/movecar/internal/config"
	"github.com/Jacky-Bruse/movecar/internal/logger"
	"github.com/Jacky-Bruse/movecar/internal/middleware"
	"github.com/Jacky-Bruse/movecar/internal/movecar"
	"github.com/Jacky-Bruse/movecar/internal/movecar/handler"
	"github.com/Jacky-Bruse/movecar/internal/notify"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, []func() error, error) {
	var closers []func() error

	store, storeClose, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, storeClose)

	// ----------------------------
	// Dependencies
	// ----------------------------

	httpClient := &http.Client{Timeout: 10 * time.Second}

	var channels []notify.Channel
	if ch, err := notify.NewBark(cfg.BarkURL, httpClient); err == nil {
		channels = append(channels, ch)
	}
	if ch, err := notify.NewWxPusher(cfg.WxPusherToken, cfg.WxPusherUID, httpClient); err == nil {
		channels = append(channels, ch)
	}
	if ch, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, httpClient); err == nil {
		channels = append(channels, ch)
	}
	for _, ch := range channels {
		logger.Info("notification channel configured", map[string]any{
			"channel": ch.Name(),
		})
	}

	dispatcher := notify.NewDispatcher(notify.NewRegistry(channels...))

	service := movecar.NewService(store, dispatcher, cfg.NotifyChannel, cfg.StatusTTL)

	apiHandler := handler.NewHandler(service, cfg.PublicBaseURL, cfg.PhoneNumber)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID())

	router.LoadHTMLGlob("web/*.html")

	// One notification burst every few seconds is plenty: the pages
	// enforce a 30s retry cooldown of their own.
	notifyLimit := middleware.NotifyLimit(rate.NewLimiter(rate.Every(5*time.Second), 3))

	apiHandler.RegisterRoutes(router, notifyLimit)
	apiHandler.RegisterPages(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return router, closers, nil
}
