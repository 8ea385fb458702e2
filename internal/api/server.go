// Package api exposes the services over HTTP.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vladimiradmaev/glycocare/internal/config"
	"github.com/vladimiradmaev/glycocare/internal/domain"
	apperrors "github.com/vladimiradmaev/glycocare/internal/errors"
	"github.com/vladimiradmaev/glycocare/internal/interfaces"
	"github.com/vladimiradmaev/glycocare/internal/logger"
	"github.com/vladimiradmaev/glycocare/internal/realtime"
)

const (
	maxBodyBytes    = 12 << 20 // base64 photos
	shutdownTimeout = 10 * time.Second
)

// Server bundles router and dependencies for the REST API.
type Server struct {
	cfg      config.HTTPConfig
	services interfaces.Services
	identity domain.IdentityProvider
	hub      *realtime.Hub
	errs     *apperrors.Handler
	engine   *gin.Engine
}

// New constructs a server with routes and middleware. hub may be nil.
func New(cfg config.HTTPConfig, services interfaces.Services, identity domain.IdentityProvider, hub *realtime.Hub) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(requestIDMiddleware())
	engine.Use(recoveryMiddleware())
	engine.Use(accessLogMiddleware())
	engine.Use(corsMiddleware())

	s := &Server{
		cfg:      cfg,
		services: services,
		identity: identity,
		hub:      hub,
		errs:     apperrors.NewHandler(logger.GetLogger()),
		engine:   engine,
	}
	s.registerRoutes()
	return s
}

// Engine exposes the underlying gin engine (for tests).
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run starts the HTTP server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.engine.Group("/api/v1")
	v1.Use(authMiddleware(s.identity, s.renderError))

	v1.POST("/analyze", s.handleAnalyze)
	v1.GET("/meals", s.handleListMeals)
	v1.POST("/meals", s.handleSaveMeal)
	v1.POST("/vitals", s.handleRecordVitals)
	v1.GET("/dashboard", s.handleDashboard)
	v1.GET("/profile", s.handleGetProfile)
	v1.PUT("/profile", s.handleUpdateProfile)
	v1.POST("/chat", s.handleChat)
	v1.GET("/planner", s.handlePlanner)
	if s.hub != nil {
		v1.GET("/ws", s.handleWebsocket)
	}
}

// renderError writes {error, kind} with the status mapped from the error type.
func (s *Server) renderError(c *gin.Context, err error) {
	s.errs.Handle(c.Request.Context(), err)
	c.AbortWithStatusJSON(apperrors.HTTPStatus(err), errorResponse{
		Error: apperrors.PublicMessage(err),
		Kind:  string(apperrors.TypeOf(err)),
	})
}
