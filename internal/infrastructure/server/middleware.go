package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpHandlers "github.com/taskflow/core/internal/adapters/http"
	"github.com/taskflow/core/internal/application/services"
)

// requestLogger logs each request through zap
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			s.logger.LogHTTPRequest(
				values.Method,
				values.URI,
				values.RequestID,
				values.RemoteIP,
				values.Status,
				float64(values.Latency.Nanoseconds())/1000000,
				values.Error,
			)
			return nil
		},
	})
}

// identityMiddleware reads an optional bearer token. Requests without one
// pass through anonymously; a malformed or invalid token is rejected.
func (s *Server) identityMiddleware(identity *services.IdentityService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" || identity == nil || !identity.Enabled() {
				return next(c)
			}

			// Extract token from "Bearer <token>"
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, httpHandlers.ErrorResponse{Message: "Invalid authorization header format"})
			}

			id, err := identity.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				s.logger.WithRequestID(c.Response().Header().Get(echo.HeaderXRequestID)).
					WithError(err).
					Warnw("Invalid token", "ip", c.RealIP())
				return echo.NewHTTPError(http.StatusUnauthorized, httpHandlers.ErrorResponse{Message: "Invalid token"})
			}

			c.Set(httpHandlers.IdentityContextKey, id)

			return next(c)
		}
	}
}
