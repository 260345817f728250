package main

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"leadcenter/internal/httpapi"
	"leadcenter/internal/rbac"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// Dashboards are served from other origins; the API itself carries no
	// cookies, so a permissive policy is acceptable here.
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:          12 * time.Hour,
	}))

	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// AUTH routes (token issuance).
	// NOTE: This is a placeholder login route; real credential validation is not implemented.
	r.POST("/v1/auth/login", h.Login)

	// protected API group
	v1 := r.Group("/v1")
	v1.Use(authMW)
	v1.Use(rbac.RequireOrg())
	{
		// Synchronization triggers. Agents cannot start runs; admins and
		// analysts can.
		sync := v1.Group("/call-logs")
		sync.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			sync.POST("/sync", h.SyncCallLogs)
			sync.POST("/:id/sync", h.SyncOneCallLog)
			sync.GET("", h.ListCallLogs)
			sync.GET("/:id", h.GetCallLog)
		}

		reports := v1.Group("/reports")
		reports.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleAgent, rbac.RoleAnalyst, rbac.RoleSuperAdmin))
		{
			reports.GET("/calls-summary", h.CallsSummary)
			reports.GET("/outcomes", h.CallOutcomes)
		}

		runs := v1.Group("/sync-runs")
		runs.Use(rbac.RequireAnyRole(rbac.RoleAdmin, rbac.RoleSuperAdmin))
		{
			runs.GET("", h.RecentSyncRuns)
		}
	}
}
