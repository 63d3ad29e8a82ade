// Package server exposes the coach pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/educoach-ai/educoach/internal/coach"
	"github.com/educoach-ai/educoach/internal/content"
	"github.com/educoach-ai/educoach/internal/llm"
)

// Server is the EduCoach web service.
type Server struct {
	e       *echo.Echo
	coach   *coach.Coach
	content *content.Content

	host    string
	port    int
	version string
	logger  *slog.Logger
}

// New creates a server with all routes and middleware registered.
func New(ch *coach.Coach, c *content.Content, options ...Option) (*Server, error) {
	s := &Server{
		coach:   ch,
		content: c,
		host:    "0.0.0.0",
		port:    8000,
		version: "1.0.0",
		logger:  slog.Default(),
	}
	if err := s.setOptions(options...); err != nil {
		return nil, err
	}

	s.e = echo.New()
	s.e.HideBanner = true
	s.e.HidePort = true
	s.e.Logger.SetLevel(log.WARN)
	s.e.HTTPErrorHandler = s.handleError

	s.e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			req := c.Request()
			c.SetRequest(req.WithContext(llm.WithRequestID(req.Context(), id)))
		},
	}))
	s.e.Use(s.accessLog())
	s.e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			s.logger.ErrorContext(c.Request().Context(), "panic recovered", "error", err, "stack", string(stack))
			return err
		},
	}))
	s.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))

	s.e.GET("/", s.handleRoot)
	s.e.GET("/passage", s.handlePassage)
	s.e.POST("/evaluate", s.handleEvaluate)
	s.e.GET("/health", s.handleHealth)

	return s, nil
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler { return s.e }

// Addr is the host:port the server listens on.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// Start serves until Shutdown is called. It returns nil after a clean
// shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.Addr(), "version", s.version)
	if err := s.e.Start(s.Addr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.e.Shutdown(ctx); err != nil {
		return fmt.Errorf("could not shut down server cleanly: %w", err)
	}
	return nil
}

// accessLog writes one structured line per request.
func (s *Server) accessLog() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			ctx := c.Request().Context()
			if v.Error != nil {
				s.logger.ErrorContext(ctx, "request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			s.logger.InfoContext(ctx, "request", attrs...)
			return nil
		},
	})
}

// handleError renders every error as {"detail": message}.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	detail := fmt.Sprintf("%s: %v", s.content.Messages().InternalError, err)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			detail = msg
		} else {
			detail = fmt.Sprint(he.Message)
		}
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.JSON(code, echo.Map{"detail": detail})
	}
	if err != nil {
		s.logger.Error("could not write error response", "error", err)
	}
}
