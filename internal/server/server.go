// Package server exposes the service over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/greenloop-ai/ecoscan/internal/config"
	"github.com/greenloop-ai/ecoscan/pkg/ecoscan"
)

// Version is the service release identifier reported by the version
// endpoints.
const Version = "0.3.0"

// Server routes HTTP traffic to an ecoscan.Service.
type Server struct {
	svc     *ecoscan.Service
	cfg     *config.Config
	logger  *zap.Logger
	results resultStore
	engine  *gin.Engine
}

// New creates a Server. When cfg.Redis is enabled and reachable, detection
// responses are cached by image digest; an unreachable redis disables the
// cache and is logged, never fatal.
func New(svc *ecoscan.Service, cfg *config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), corsMiddleware())

	s := &Server{
		svc:    svc,
		cfg:    cfg,
		logger: logger,
		engine: engine,
	}
	if rc := newResultCache(cfg.Redis, logger); rc != nil {
		s.results = rc
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/version", s.handleVersion)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/models", s.handleModels)
	s.engine.GET("/environmental-impact/:item", s.handleEnvironmentalImpact)
	s.engine.POST("/detect", s.handleDetect)
	s.engine.POST("/optimize", s.handleOptimize)
	s.engine.POST("/feedback", s.handleFeedback)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
// within the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http server")
	return srv.Shutdown(shutdownCtx)
}
