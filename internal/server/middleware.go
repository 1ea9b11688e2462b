package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/papapumpkin/when/internal/telemetry"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
)

// requestID tags every request with an id, reusing one supplied by the
// client, and logs the request once it completes.
func (s *Server) requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Response().Header().Set(headerRequestID, id)

		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.logger.LogAttrs(c.Request().Context(), slog.LevelInfo, "request",
			slog.String("request_id", id),
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.Int("status", c.Response().Status),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}
}

// rateLimit rejects clients that exceed their token bucket.
func (s *Server) rateLimit(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()
		if s.limiter.Allow(ip) {
			return next(c)
		}
		s.emit(telemetry.Event{
			Kind:      telemetry.KindRateLimited,
			RequestID: requestIDOf(c),
			Data:      map[string]string{"client": ip},
		})
		return c.JSON(http.StatusTooManyRequests, errorResponse("rate limit exceeded"))
	}
}

func requestIDOf(c echo.Context) string {
	id, _ := c.Get(ctxRequestID).(string)
	return id
}
