package api

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/telecal/telecal/internal/calendar"
	"github.com/telecal/telecal/internal/config"
	"github.com/telecal/telecal/internal/scheduler"
	"github.com/telecal/telecal/internal/shows"
	"github.com/telecal/telecal/internal/showsync"
)

// Server handles HTTP requests for the telecal API.
type Server struct {
	echo   *echo.Echo
	cfg    *config.Config
	logger zerolog.Logger

	showService     *shows.Service
	calendarService *calendar.Service
	syncService     *showsync.Service
	sched           *scheduler.Scheduler
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, showService *shows.Service, calendarService *calendar.Service, syncService *showsync.Service, sched *scheduler.Scheduler, logger zerolog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:            e,
		cfg:             cfg,
		logger:          logger,
		showService:     showService,
		calendarService: calendarService,
		syncService:     syncService,
		sched:           sched,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Info().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))
}

// setupRoutes configures API routes. The calendar feed and the health check
// are public; everything else requires the auth token.
func (s *Server) setupRoutes() {
	auth := s.requireToken

	s.echo.GET("/health", s.healthCheck)

	calendar.NewHandlers(s.calendarService).RegisterRoutes(s.echo)
	shows.NewHandlers(s.showService).RegisterRoutes(s.echo, auth)
	showsync.NewHandlers(s.syncService, s.sched).RegisterRoutes(s.echo, auth)
}

// requireToken checks the Authorization header against the configured
// token. With no token configured every guarded request is rejected rather
// than left open.
func (s *Server) requireToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := s.cfg.Auth.Token
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}

		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if subtle.ConstantTimeCompare([]byte(header), []byte(token)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
		}

		return next(c)
	}
}

// healthCheck returns server health status.
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.echo.Start(s.cfg.Server.Address())
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Echo exposes the underlying echo instance for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
