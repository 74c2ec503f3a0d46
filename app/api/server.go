package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ideaoasis/ideaoasis/app/cfg"
)

// NewServer creates a new HTTP server with all routes configured
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, x-ingest-token")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler) {
	appCfg := cfg.Get()

	// Public read paths
	r.GET("/ideas", handler.ListIdeas)
	r.GET("/ideas/:id", handler.GetIdea)
	r.POST("/ideas/:id/vote", handler.VoteIdea)
	r.POST("/ideas/:id/bookmark", handler.BookmarkIdea)

	// Enrichment pipeline endpoints
	r.POST("/enhance", handler.EnhanceIdea)
	r.PUT("/enhance", handler.EnhanceAll)

	// Bulk ingestion, guarded by its own shared token
	r.POST("/ingest-bulk", ingestAuthMiddleware(appCfg.IngestToken), handler.IngestBulk)

	// Quality monitoring
	r.GET("/quality-check", handler.QualityCheck)
	r.POST("/quality-check", handler.QualityFix)

	// Health and status endpoints
	r.GET("/health", handler.GetHealth)
	r.GET("/stats", handler.GetStats)

	// Admin endpoints (conditionally enabled with authentication)
	if appCfg.APIAccessKey != "" {
		api := r.Group("/api")
		api.Use(authMiddleware(appCfg.APIAccessKey))
		{
			api.GET("/ideas", handler.ListIdeas)
			api.POST("/ideas/:id/review", handler.ReviewIdea)
		}
		slog.Info("Admin API endpoints enabled with authentication")
	} else {
		slog.Info("Admin API endpoints disabled", "reason", "API_ACCESS_KEY not set")
	}

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		endpoints := map[string]string{
			"ideas":         "/ideas",
			"idea":          "/ideas/<id>",
			"enhance":       "/enhance (POST single, PUT all)",
			"ingest":        "/ingest-bulk (POST, requires x-ingest-token header)",
			"quality_check": "/quality-check (GET validate, POST auto-fix)",
			"health":        "/health",
			"stats":         "/stats",
		}

		if appCfg.APIAccessKey != "" {
			endpoints["admin_ideas"] = "/api/ideas (requires X-API-Key header)"
			endpoints["admin_review"] = "/api/ideas/<id>/review (POST, requires X-API-Key header)"
		}

		serviceURL := appCfg.BaseUrl
		if serviceURL == "" {
			serviceURL = "http://localhost:" + appCfg.Port
		}

		c.JSON(200, gin.H{
			"service":     "IdeaOasis",
			"version":     appCfg.Version,
			"url":         serviceURL,
			"description": "Startup idea curation with Korea-fit scoring, trend analysis, and roadmap generation",
			"endpoints":   endpoints,
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for admin endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// ingestAuthMiddleware guards the bulk ingestion endpoint with a
// shared token. Ingestion stays closed when no token is configured.
func ingestAuthMiddleware(ingestToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ingestToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Ingestion disabled",
				"message": "INGEST_TOKEN is not configured",
			})
			c.Abort()
			return
		}

		if c.GetHeader("x-ingest-token") != ingestToken {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid ingest token",
				"message": "Provide the shared token in the x-ingest-token header",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
