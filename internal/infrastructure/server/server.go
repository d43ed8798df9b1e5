package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	_ "github.com/taskflow/core/docs"
	httpHandlers "github.com/taskflow/core/internal/adapters/http"
	"github.com/taskflow/core/internal/application/services"
	"github.com/taskflow/core/internal/application/validation"
	"github.com/taskflow/core/internal/domain/entities"
	"github.com/taskflow/core/internal/infrastructure/config"
	"github.com/taskflow/core/internal/infrastructure/logger"
	"github.com/taskflow/core/internal/infrastructure/metrics"
	"github.com/taskflow/core/internal/ports"
)

// Dependencies are the services and probes the server exposes. Metrics and
// Identity may be nil.
type Dependencies struct {
	Tasks     *services.TaskService
	Contacts  *services.ContactService
	Discounts *services.DiscountService
	Identity  *services.IdentityService
	Metrics   *metrics.Metrics
	// Checks are pinged by /ready and /health/detailed, keyed by name.
	Checks map[string]ports.Pinger
}

// Server represents the HTTP server
type Server struct {
	echo   *echo.Echo
	config *config.Config
	logger *logger.Logger
	checks map[string]ports.Pinger
}

// New creates a new server instance
func New(cfg *config.Config, deps Dependencies, appLogger *logger.Logger) *Server {
	e := echo.New()

	e.Validator = validation.New()

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	taskHandler := httpHandlers.NewTaskHandler(deps.Tasks, appLogger)
	contactHandler := httpHandlers.NewContactHandler(deps.Contacts, appLogger)
	discountHandler := httpHandlers.NewDiscountHandler(deps.Discounts, appLogger)
	identityHandler := httpHandlers.NewIdentityHandler(appLogger)

	server := &Server{
		echo:   e,
		config: cfg,
		logger: appLogger.WithComponent("http"),
		checks: deps.Checks,
	}

	server.setupMiddleware(deps.Metrics, deps.Identity)
	server.setupRoutes(taskHandler, contactHandler, discountHandler, identityHandler)

	if deps.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(deps.Metrics.Handler()))
	}

	return server
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware(m *metrics.Metrics, identity *services.IdentityService) {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Request ID middleware
	s.echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))

	// Logger middleware
	s.echo.Use(s.requestLogger())

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))

	// Rate limiting middleware
	if s.config.Security.RateLimitRequests > 0 {
		s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
			Store: middleware.NewRateLimiterMemoryStoreWithConfig(
				middleware.RateLimiterMemoryStoreConfig{
					Rate:      perSecond(s.config.Security.RateLimitRequests, s.config.Security.RateLimitWindow),
					Burst:     s.config.Security.RateLimitRequests,
					ExpiresIn: s.config.Security.RateLimitWindow,
				},
			),
			IdentifierExtractor: func(ctx echo.Context) (string, error) {
				return ctx.RealIP(), nil
			},
			ErrorHandler: func(context echo.Context, err error) error {
				return context.JSON(http.StatusForbidden, httpHandlers.ErrorResponse{Message: "rate limit exceeded"})
			},
			DenyHandler: func(context echo.Context, identifier string, err error) error {
				return context.JSON(http.StatusTooManyRequests, httpHandlers.ErrorResponse{Message: "rate limit exceeded"})
			},
		}))
	}

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	// Request deadline, honoured by the records stores
	if s.config.Server.RequestTimeout > 0 {
		s.echo.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{
			Timeout: s.config.Server.RequestTimeout,
		}))
	}

	if m != nil {
		s.echo.Use(m.Middleware())
	}

	s.echo.Use(s.identityMiddleware(identity))
}

func perSecond(requests int, window time.Duration) rate.Limit {
	if window <= 0 {
		return rate.Limit(requests)
	}
	return rate.Limit(float64(requests) / window.Seconds())
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(taskHandler *httpHandlers.TaskHandler, contactHandler *httpHandlers.ContactHandler, discountHandler *httpHandlers.DiscountHandler, identityHandler *httpHandlers.IdentityHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 routes
	v1 := s.echo.Group("/api/v1")

	v1.GET("/me", identityHandler.Me)

	taskGroup := v1.Group("/tasks")
	taskGroup.GET("", taskHandler.ListTasks)
	taskGroup.POST("", taskHandler.CreateTask)
	taskGroup.GET("/stats", taskHandler.Stats)
	taskGroup.GET("/:id", taskHandler.GetTask)
	taskGroup.PUT("/:id", taskHandler.UpdateTask)
	taskGroup.PATCH("/:id/toggle", taskHandler.ToggleTask)
	taskGroup.DELETE("/:id", taskHandler.DeleteTask)

	contactGroup := v1.Group("/contacts")
	contactGroup.GET("", contactHandler.ListContacts)
	contactGroup.POST("", contactHandler.CreateContact)
	contactGroup.GET("/:id", contactHandler.GetContact)
	contactGroup.PUT("/:id", contactHandler.UpdateContact)
	contactGroup.DELETE("/:id", contactHandler.DeleteContact)

	discountGroup := v1.Group("/discounts")
	discountGroup.GET("", discountHandler.ListDiscounts)
	discountGroup.GET("/categories", discountHandler.Categories)
	discountGroup.GET("/:id", discountHandler.GetDiscount)
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// runChecks pings every dependency and returns the names that failed
func (s *Server) runChecks(ctx context.Context) (map[string]interface{}, []string) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	results := make(map[string]interface{}, len(s.checks))
	var failed []string
	for name, pinger := range s.checks {
		if err := pinger.Ping(ctx); err != nil {
			failed = append(failed, name)
			results[name] = map[string]string{"status": "error", "error": err.Error()}
			continue
		}
		results[name] = map[string]string{"status": "ok"}
	}
	sort.Strings(failed)
	return results, failed
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	checks, failed := s.runChecks(c.Request().Context())

	status := "ok"
	if len(failed) > 0 {
		status = "error"
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"store":  s.config.Store.Backend,
		"version": map[string]string{
			"app": s.config.App.Version,
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	if _, failed := s.runChecks(c.Request().Context()); len(failed) > 0 {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": strings.Join(failed, ",") + "_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Infow("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var (
			he   *echo.HTTPError
			verr *entities.ValidationError
		)
		if errors.As(err, &he) {
			code = he.Code
			msg = he.Message
			if _, ok := msg.(string); ok {
				msg = httpHandlers.ErrorResponse{Message: fmt.Sprint(he.Message)}
			}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if errors.As(err, &verr) {
			code = http.StatusBadRequest
			msg = httpHandlers.ErrorResponse{Message: "validation failed", Fields: verr.Fields}
		} else {
			msg = httpHandlers.ErrorResponse{Message: http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
