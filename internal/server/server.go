package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/orgball2608/tweet-screenshot-agent/internal/agent"
	"github.com/orgball2608/tweet-screenshot-agent/internal/metrics"
	"github.com/orgball2608/tweet-screenshot-agent/internal/ratelimit"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/config"
	"github.com/orgball2608/tweet-screenshot-agent/pkg/logger"
	"go.uber.org/fx"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 10 * time.Second
)

type Opts struct {
	fx.In

	LC      fx.Lifecycle
	Config  *config.Config
	Logger  logger.Logger
	Agent   agent.Client
	Limiter ratelimit.Limiter `optional:"true"`
	Metrics *metrics.Metrics  `optional:"true"`
}

type Server struct {
	Agent   agent.Client
	Logger  logger.Logger
	Limiter ratelimit.Limiter
	Metrics *metrics.Metrics

	http *http.Server
}

func New(opts Opts) *Server {
	s := &Server{
		Agent:   opts.Agent,
		Logger:  opts.Logger.WithComponent("HTTP"),
		Limiter: opts.Limiter,
		Metrics: opts.Metrics,
	}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Config.App.Port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	opts.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			ln, err := net.Listen("tcp", s.http.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
			}
			s.Logger.Info("Starting server", "addr", s.http.Addr)
			go func() {
				if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					s.Logger.Error("Server stopped unexpectedly", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
			defer cancel()
			return s.http.Shutdown(ctx)
		},
	})
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleInfo)
	r.Get("/healthz", s.handleHealth)
	r.Get("/image/{imageID}", s.handleImage)
	r.With(s.rateLimit).Post("/a2a", s.handleA2A)
	r.Method(http.MethodGet, "/metrics", s.Metrics.Handler())

	return r
}

// rateLimit keys the token bucket on the client address. RealIP has already
// rewritten RemoteAddr from proxy headers.
func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.Limiter != nil && !s.Limiter.Allow(clientKey(r)) {
			s.Logger.Warn("Rate limit exceeded", "remote", r.RemoteAddr)
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "Too many requests"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
