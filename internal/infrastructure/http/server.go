package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	handlers "github.com/wekeepgrowing/closerlink/internal/adapter/handler/http"
	"github.com/wekeepgrowing/closerlink/internal/config"
	"github.com/wekeepgrowing/closerlink/internal/middleware/auth"
	"github.com/wekeepgrowing/closerlink/pkg/logger"
	"go.uber.org/zap"
)

type Server struct {
	config  *config.Config
	logger  *zap.Logger
	echo    *echo.Echo
	webhook *handlers.WebhookHandler
	admin   *handlers.AdminHandler
}

func NewServer(cfg *config.Config, log *zap.Logger, webhook *handlers.WebhookHandler, admin *handlers.AdminHandler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.HTTP.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.HTTP.WriteTimeout
	e.Validator = handlers.NewRequestValidator()
	logger.WithEchoLogger(e, log)

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	if cfg.Server.HTTP.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.Server.HTTP.BodyLimit))
	}
	e.Use(logger.NewEchoRequestLogger(log))

	s := &Server{
		config:  cfg,
		logger:  log,
		echo:    e,
		webhook: webhook,
		admin:   admin,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the routed echo instance.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.HTTP.Host, s.config.Server.HTTP.Port)
	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) setupRoutes() {
	// Health check
	s.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.Service.Name,
		})
	})

	// Inbound webhooks; authenticated by signature, not JWT
	s.echo.POST("/webhooks/whop", s.webhook.HandleWebhook)
	s.echo.POST("/webhook", s.webhook.HandleWebhook)

	jwtConfig := auth.JWTConfig{
		Secret:       s.config.Auth.JWTSecret,
		Logger:       s.logger,
		RequiredRole: s.config.Auth.AdminRole,
	}

	// Admin routes (require an admin JWT)
	admin := s.echo.Group("/api/v1/admin", auth.JWTMiddleware(jwtConfig))
	admin.GET("/webhooks/status", s.admin.GetWebhookStatus)
	admin.POST("/webhooks/outbound-retry", s.admin.RetryDelivery)
	admin.GET("/settings/outbound", s.admin.GetOutboundSettings)
	admin.PUT("/settings/outbound", s.admin.UpdateOutboundSettings)
	admin.PATCH("/plans/:id/down-payment-status", s.admin.UpdateDownPaymentStatus)
}
