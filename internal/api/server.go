package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"kitchensync/internal/catalog"
	"kitchensync/internal/config"
	"kitchensync/internal/logger"
	"kitchensync/internal/monitoring"
	"kitchensync/internal/store"
	"kitchensync/internal/sync"
)

// Server is the HTTP surface for triggering and observing catalog syncs.
type Server struct {
	Router *gin.Engine

	cfg     *config.Config
	store   store.Store
	orch    *sync.Orchestrator
	hub     *ProgressHub
	monitor *monitoring.Monitor
	metrics *monitoring.Metrics
	log     *logger.Logger
}

// NewServer wires the router and all sync endpoints.
func NewServer(cfg *config.Config, st store.Store, orch *sync.Orchestrator, monitor *monitoring.Monitor, metrics *monitoring.Metrics, baseLog *logger.Logger) *Server {
	s := &Server{
		Router:  gin.Default(),
		cfg:     cfg,
		store:   st,
		orch:    orch,
		hub:     NewProgressHub(baseLog),
		monitor: monitor,
		metrics: metrics,
		log:     baseLog.With("component", "api"),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.Router.Group("/api/v1")
	v1.Use(AuthRequired(s.cfg.Auth.JWTSecret))
	{
		// Catalog sync
		v1.POST("/sync/menu-items", s.SyncMenuItems)
		v1.GET("/sync/status", s.SyncStatus)
		v1.GET("/sync/ws", s.handleProgressWS)

		// Dashboard metrics
		v1.GET("/metrics", s.Metrics)
	}
}

// SyncMenuItems runs a full catalog sync for the authenticated owner and
// returns the report. Fatal pipeline errors map to an error envelope with
// no counts.
func (s *Server) SyncMenuItems(c *gin.Context) {
	ownerID := OwnerID(c)

	result, err := s.orch.Run(c.Request.Context(), sync.Options{
		OwnerID: ownerID,
		Credentials: catalog.Credentials{
			AccessToken: s.cfg.Provider.AccessToken,
		},
		Location: c.Query("location"),
		Progress: s.hub.SinkFor(ownerID),
	})
	if err != nil {
		switch {
		case errors.Is(err, sync.ErrNoCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		case errors.Is(err, catalog.ErrProvider):
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	s.monitor.RecordSyncRun(ownerID, result.ItemsProcessed, result.ItemsCreated, result.ItemsFailed, result.DurationMs)
	if s.metrics != nil {
		s.metrics.ObserveRun(result.Success,
			result.ItemsProcessed, result.ItemsFailed,
			result.Stats.Allergens.Created,
			result.Stats.Ingredients.Created,
			result.Stats.MenuItems.Created,
			result.DurationMs)
	}

	c.JSON(http.StatusOK, result)
}

// SyncStatus returns the owner's last-synced marker and recent audit rows.
func (s *Server) SyncStatus(c *gin.Context) {
	ownerID := OwnerID(c)

	status, err := s.store.LastSynced(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	audits, err := s.store.RecentAudits(c.Request.Context(), ownerID, 10)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	response := gin.H{"recentRuns": audits}
	if status != nil {
		response["lastSyncedAt"] = status.LastSyncedAt
	}
	c.JSON(http.StatusOK, response)
}

// Metrics returns the in-memory monitor snapshot for the dashboard.
func (s *Server) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.monitor.GetMetrics())
}
