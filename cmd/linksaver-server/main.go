package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/auth"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/config"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/database"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/importexport"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/links"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/metadata"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/models"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/summary"
	"github.com/yashbansal82/Live-Saver-Summary/pkg/linksaver/tags"
)

// @title LinkSaver API
// @version 1.0
// @description A personal bookmark manager with metadata scraping, summaries and drag-and-drop ordering.

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token. Format: "Bearer {token}". Browser clients use the token cookie instead.

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Infof("Configuration loaded: port=%d db=%s summaries=%v",
		cfg.Server.Port, cfg.Database.Path, cfg.Summary.APIKey != "")

	// Connect to database
	if err := database.Connect(cfg.Database.Path); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := models.AutoMigrate(database.GetDB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Info("Database migrations completed")

	// Auth gate: the token secret is injected here, nothing below reads
	// the environment for it.
	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenHours)*time.Hour)

	// Collaborators. Both are best-effort: their failures degrade saved
	// links to fallback values and never fail a request.
	fetchTimeout := time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second
	fetcher := metadata.NewHTTPFetcher(fetchTimeout, cfg.Fetch.UserAgent, log)

	var summaries summary.Provider
	if cfg.Summary.APIKey != "" {
		summaries = summary.NewOpenAIProvider(summary.OpenAIConfig{
			APIKey:          cfg.Summary.APIKey,
			BaseURL:         cfg.Summary.BaseURL,
			Model:           cfg.Summary.Model,
			MaxContentBytes: cfg.Summary.MaxContentBytes,
			Timeout:         fetchTimeout,
		}, log)
	} else {
		log.Info("No summary API key configured - using page descriptions as summaries")
		summaries = summary.NewDescriptionProvider()
	}

	// Set up Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "linksaver",
			})
		})

		// Auth routes (public)
		authHandler := auth.NewHandler(database.GetDB(), tokenService, cfg.Auth.SecureCookies)
		authHandler.RegisterRoutes(api.Group("/auth"))

		authRequired := auth.Middleware(tokenService)

		// Links routes (protected)
		linksHandler := links.NewHandler(database.GetDB(), fetcher, summaries)
		linksHandler.RegisterRoutes(api.Group("", authRequired))

		// Tags routes (protected)
		tagsHandler := tags.NewHandler(database.GetDB())
		tagsHandler.RegisterRoutes(api.Group("", authRequired))

		// Import/Export routes (protected)
		importExportHandler := importexport.NewHandler(database.GetDB())
		importExportHandler.RegisterRoutes(api.Group("", authRequired))
	}

	// Serve the frontend if web/static exists
	webDir := "./web/static"
	if _, err := os.Stat(webDir); err == nil {
		r.Static("/static", webDir)

		indexHTML := filepath.Join(webDir, "index.html")
		for _, route := range []string{"/", "/login"} {
			r.GET(route, func(c *gin.Context) {
				c.File(indexHTML)
			})
		}

		log.Infof("Serving frontend from %s", webDir)
	} else {
		log.Info("No frontend found at ./web/static - API only mode")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Infof("Starting LinkSaver server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
