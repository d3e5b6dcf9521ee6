// Copyright (c) 2025 Lazycat Apps
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package router provides HTTP routing configuration for the scan
// orchestrator's control plane.
package router

import (
	"github.com/clamguard/backend/internal/handler"
	"github.com/clamguard/backend/internal/middleware"
	"github.com/clamguard/backend/internal/types"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router manages HTTP request routing and handler registration.
type Router struct {
	statusHandler     *handler.StatusHandler
	scanHandler       *handler.ScanHandler
	updateHandler     *handler.UpdateHandler
	threatHandler     *handler.ThreatHandler
	quarantineHandler *handler.QuarantineHandler
	configHandler     *handler.ConfigHandler
}

// New creates a new Router instance with the provided handlers.
func New(
	statusHandler *handler.StatusHandler,
	scanHandler *handler.ScanHandler,
	updateHandler *handler.UpdateHandler,
	threatHandler *handler.ThreatHandler,
	quarantineHandler *handler.QuarantineHandler,
	configHandler *handler.ConfigHandler,
) *Router {
	return &Router{
		statusHandler:     statusHandler,
		scanHandler:       scanHandler,
		updateHandler:     updateHandler,
		threatHandler:     threatHandler,
		quarantineHandler: quarantineHandler,
		configHandler:     configHandler,
	}
}

// Setup initializes the Gin engine with middleware and routes.
func (r *Router) Setup(cfg *types.Config) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Disable trusted proxy feature for security
	engine.SetTrustedProxies(nil)

	r.registerRoutes(engine)

	return engine
}

// registerRoutes registers every endpoint of the control plane contract.
func (r *Router) registerRoutes(engine *gin.Engine) {
	engine.GET("/health", r.statusHandler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := engine.Group("/api")
	{
		api.GET("/status", r.statusHandler.Status)

		api.POST("/scan/start", r.scanHandler.StartScan)
		api.POST("/scan/stop", r.scanHandler.StopScan)
		api.GET("/scan/status", r.scanHandler.Status)
		api.GET("/scan/history", r.scanHandler.History)

		api.POST("/update/start", r.updateHandler.Start)
		api.GET("/update/status", r.updateHandler.Status)
		api.GET("/update/version", r.updateHandler.Version)
		api.GET("/update/history", r.updateHandler.History)

		api.GET("/threats", r.threatHandler.List)
		api.POST("/threats/:id/action", r.threatHandler.Action)

		api.GET("/quarantine", r.quarantineHandler.List)
		api.POST("/quarantine/:id/restore", r.quarantineHandler.Restore)
		api.DELETE("/quarantine/:id", r.quarantineHandler.Delete)
		api.POST("/quarantine/cleanup", r.quarantineHandler.Cleanup)

		api.GET("/config", r.configHandler.GetConfig)
		api.PUT("/config", r.configHandler.PutConfig)
	}
}
