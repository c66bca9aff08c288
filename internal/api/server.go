// Package api serves records over HTTP.
//
// The public engine carries the browser-facing routes; the admin engine is
// JSON-only and is expected to be bound to loopback by the caller.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/maloquacious/datacycle/internal/logger"
	"github.com/maloquacious/datacycle/internal/service"
	"github.com/maloquacious/datacycle/internal/store"
)

// BuildInfo is reported by /admin/status.
type BuildInfo struct {
	Version       string
	SchemaVersion string
	BuildDate     string
}

// Server serves the public record API and the admin endpoints.
type Server struct {
	svc  *service.Service
	log  logger.Logger
	info BuildInfo
	now  func() time.Time

	// OnShutdown is called after /admin/shutdown has written its response.
	OnShutdown func()
}

// NewServer returns a Server reading records through svc.
func NewServer(svc *service.Service, log logger.Logger, info BuildInfo) *Server {
	if log == nil {
		log = logger.Default
	}
	return &Server{
		svc:  svc,
		log:  log,
		info: info,
		now:  time.Now,
	}
}

// Routes returns the public handler.
func (s *Server) Routes() http.Handler {
	engine := gin.New()
	engine.Use(requestID(), accessLog(s.log), gin.Recovery(), cors())
	engine.GET("/api/data", s.handleData)
	// un-proxied path used when the client talks to the server directly
	engine.GET("/data", s.handleData)
	engine.GET("/live", s.handleLive)
	engine.GET("/ready", s.handleReady)
	return engine
}

// AdminRoutes returns the admin handler.
func (s *Server) AdminRoutes() http.Handler {
	engine := gin.New()
	engine.Use(requestID(), accessLog(s.log), gin.Recovery(), jsonOnly())
	admin := engine.Group("/admin")
	admin.GET("/status", s.handleStatus)
	admin.POST("/shutdown", s.handleShutdown)
	return engine
}

// handleData returns every record as a JSON array.
func (s *Server) handleData(c *gin.Context) {
	records, err := s.svc.ListRecords(c.Request.Context())
	if err != nil {
		// the service has already logged the cause
		writeJSONError(c, http.StatusInternalServerError, "query_failed", "failed to query records")
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleLive(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleReady(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	state, err := s.svc.Ready(ctx)
	if err != nil || state != store.StateReady {
		if err != nil {
			s.log.Warn("readiness check failed: %v", err)
		}
		c.String(http.StatusServiceUnavailable, "NOT READY: %s", state)
		return
	}
	c.String(http.StatusOK, "READY")
}

func (s *Server) handleStatus(c *gin.Context) {
	state, err := s.svc.Ready(c.Request.Context())
	resp := gin.H{
		"version":       s.info.Version,
		"schemaVersion": s.info.SchemaVersion,
		"buildDate":     s.info.BuildDate,
		"time":          s.now().UTC().Format(time.RFC3339),
		"mode":          "running",
		"store":         state.String(),
	}
	if err != nil {
		resp["storeError"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleShutdown(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "shutting down"})
	if s.OnShutdown != nil {
		s.OnShutdown()
	}
}

func writeJSONError(c *gin.Context, status int, code, msg string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   code,
		"message": msg,
	})
}
