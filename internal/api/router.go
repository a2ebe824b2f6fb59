package api

import (
	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/magda-composer/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/magda-composer/internal/api/middleware"
	"github.com/Conceptual-Machines/magda-composer/internal/config"
	"github.com/Conceptual-Machines/magda-composer/internal/logger"
	"github.com/Conceptual-Machines/magda-composer/internal/metrics"
	"github.com/Conceptual-Machines/magda-composer/internal/middleware"
	"github.com/Conceptual-Machines/magda-composer/internal/services"
)

// SetupRouter wires the HTTP API. cloudwatch may be nil.
func SetupRouter(svc *services.GenerationService, cfg *config.Config, version string, cloudwatch *metrics.Client) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(cloudwatch))

	// CORS middleware
	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(svc)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, runtimeSettings(cfg, cloudwatch))
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(cfg))
	{
		theoryHandler := handlers.NewTheoryHandler(svc)
		v1.POST("/chords/normalize", theoryHandler.NormalizeChords)
		v1.GET("/scales/:tonic/:mode", theoryHandler.GetScale)

		generationHandler := handlers.NewGenerationHandler(svc)
		v1.POST("/generations", generationHandler.Generate)
		v1.GET("/generations/:id", generationHandler.GetGeneration)

		humanizeHandler := handlers.NewHumanizeHandler(svc)
		v1.POST("/humanize", humanizeHandler.Humanize)
		v1.POST("/presets", humanizeHandler.CreatePreset)
		v1.GET("/presets", humanizeHandler.ListPresets)
		v1.GET("/presets/:name", humanizeHandler.GetPreset)

		exportHandler := handlers.NewExportHandler(svc)
		v1.POST("/export/midi", exportHandler.ExportMIDI)
	}

	return router
}

// authMiddleware selects the auth layer for AUTH_MODE
func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch {
	case cfg.IsJWTMode():
		logger.Info("Auth mode: JWT (HS256 bearer tokens)", nil)
		return middleware.JWTAuth(cfg.JWTSecret)
	case cfg.IsGatewayMode():
		logger.Info("Auth mode: Gateway (trusting X-User-* headers)", nil)
		return apimiddleware.GatewayAuth()
	default:
		logger.Info("Auth mode: None (no authentication)", nil)
		return apimiddleware.NoAuth()
	}
}

func runtimeSettings(cfg *config.Config, cloudwatch *metrics.Client) handlers.RuntimeSettings {
	store := "memory"
	if cfg.UsesDatabase() {
		store = "postgres"
	}
	return handlers.RuntimeSettings{
		Environment:      cfg.Environment,
		AuthMode:         cfg.AuthMode,
		Store:            store,
		NoiseStrategy:    cfg.NoiseStrategy,
		HumanizeTemplate: cfg.DefaultHumanizeTemplate,
		DefaultTempo:     cfg.DefaultTempo,
		MinNoteDuration:  cfg.MinNoteDuration,
		CloudWatch:       cloudwatch.Enabled(),
	}
}
