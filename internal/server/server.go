// Package server exposes the converter over a small JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/papapumpkin/when/internal/convert"
	"github.com/papapumpkin/when/internal/telemetry"
)

// ZoneSource provides zone lookups for the zone query parameter and the zone
// listing.
type ZoneSource interface {
	Load(id string) (*time.Location, error)
	Names() []string
}

// Server serves /api/convert, /api/zones and /healthz. The converter can be
// swapped while requests are in flight.
type Server struct {
	echo    *echo.Echo
	conv    atomic.Pointer[convert.Converter]
	zones   ZoneSource
	local   *time.Location
	addr    string
	limiter *rateLimiter
	emitter *telemetry.Emitter
	logger  *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithAddr sets the listen address used by Start.
func WithAddr(addr string) Option {
	return func(s *Server) { s.addr = addr }
}

// WithRateLimit allows each client rps requests per second with the given
// burst. A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(s *Server) {
		if rps <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = newRateLimiter(rps, burst)
	}
}

// WithLocal sets the zone used when a request carries no zone parameter.
func WithLocal(loc *time.Location) Option {
	return func(s *Server) { s.local = loc }
}

// WithTelemetry records request events to e.
func WithTelemetry(e *telemetry.Emitter) Option {
	return func(s *Server) { s.emitter = e }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a Server around conv.
func New(conv *convert.Converter, zones ZoneSource, opts ...Option) *Server {
	s := &Server{
		echo:   echo.New(),
		zones:  zones,
		local:  time.UTC,
		addr:   "127.0.0.1:8080",
		logger: slog.New(slog.DiscardHandler),
	}
	s.conv.Store(conv)
	for _, o := range opts {
		o(s)
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(s.requestID)

	api := s.echo.Group("/api", s.rateLimit)
	api.GET("/convert", s.handleConvert)
	api.GET("/zones", s.handleZones)
	s.echo.GET("/healthz", s.handleHealth)
	return s
}

// Swap replaces the converter used by subsequent requests.
func (s *Server) Swap(conv *convert.Converter) {
	s.conv.Store(conv)
}

// Handler returns the HTTP handler, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.echo.Start(s.addr) }()

	s.logger.Info("server listening", "addr", s.addr)
	s.emit(telemetry.Event{Kind: telemetry.KindServerStart, Data: map[string]string{"addr": s.addr}})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: listen %s: %w", s.addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown stops accepting connections and waits for active requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.emit(telemetry.Event{Kind: telemetry.KindServerStop})
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

func (s *Server) emit(evt telemetry.Event) {
	if err := s.emitter.Emit(evt); err != nil {
		s.logger.Warn("telemetry emit failed", "error", err)
	}
}
