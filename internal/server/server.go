// Package server exposes the example JSON API the caller is exercised against.
package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/jsonfetch/internal/config"
	"github.com/samvad-hq/jsonfetch/internal/logger"
	"github.com/samvad-hq/jsonfetch/internal/storage"
	"github.com/samvad-hq/jsonfetch/pkg/publishers"
)

// EventPublisher receives example change events. *publishers.Fanout satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Server wires the gin engine to the example store.
type Server struct {
	cfg    *config.Config
	store  storage.Store
	events EventPublisher
	log    logger.Logger
	engine *gin.Engine
}

// New builds the router. events may be nil when no publishers are configured.
func New(cfg *config.Config, store storage.Store, events EventPublisher, log logger.Logger) *Server {
	if log == nil {
		log = logger.NopLogger{}
	}
	if cfg == nil {
		cfg = &config.Config{Env: config.EnvDevelopment}
	}
	gin.SetMode(ginMode(cfg.Env))

	s := &Server{
		cfg:    cfg,
		store:  store,
		events: events,
		log:    log,
		engine: gin.New(),
	}
	s.routes()
	return s
}

// Handler returns the http.Handler serving every route.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() {
	e := s.engine
	e.HandleMethodNotAllowed = true

	e.Use(
		recovery(s.log),
		requestID(),
		accessLog(s.log),
		cors(apiPrefix, s.cfg.CORSOrigins),
		bodyLimit(s.cfg.MaxBodyBytes),
	)

	e.NoRoute(func(c *gin.Context) {
		abortWithError(c, http.StatusNotFound, "The requested resource was not found")
	})
	e.NoMethod(func(c *gin.Context) {
		abortWithError(c, http.StatusMethodNotAllowed, "The method is not allowed for the requested URL")
	})

	e.GET("/health", s.health)
	e.GET("/", s.index)

	api := e.Group(apiPrefix)
	api.GET("/", s.index)
	api.GET("/examples", s.listExamples)
	api.POST("/examples", s.createExample)
	api.GET("/examples/:id", s.getExample)
	api.PUT("/examples/:id", s.updateExample)
	api.DELETE("/examples/:id", s.deleteExample)
	api.POST("/echo", s.echo)
}

func ginMode(env string) string {
	switch env {
	case config.EnvProduction:
		return gin.ReleaseMode
	case config.EnvTesting:
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}
