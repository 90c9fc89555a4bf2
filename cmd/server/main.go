package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"shorts-backend/internal/config"
	"shorts-backend/internal/database"
	"shorts-backend/internal/falai"
	"shorts-backend/internal/handlers"
	"shorts-backend/internal/logging"
	"shorts-backend/internal/media"
	"shorts-backend/internal/middleware"
	"shorts-backend/internal/openai"
	"shorts-backend/internal/pipeline"
	"shorts-backend/internal/planner"
	"shorts-backend/internal/services"
	"shorts-backend/internal/supabase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Init("development", "info")
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(cfg.Environment, cfg.LogLevel)
	logger := logging.NewLogger()
	srvLog := logging.WithComponent("server")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		srvLog.Fatal().Err(err).Msg("failed to load catalog")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := supabase.NewDatabaseClient(ctx, cfg.DatabaseURL)
	if err != nil {
		srvLog.Fatal().Err(err).Msg("failed to initialize database client")
	}

	if err := database.NewMigrator(dbClient.DB(), logger).Run(ctx); err != nil {
		srvLog.Fatal().Err(err).Msg("migration failed")
	}

	supabaseClient, err := supabase.NewClient(cfg)
	if err != nil {
		srvLog.Fatal().Err(err).Msg("failed to initialize supabase client")
	}
	artifacts := services.NewArtifactService(supabaseClient.Storage(), dbClient, logger)

	openaiClient := openai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey)
	falClient := falai.NewClient(cfg.FalBaseURL, cfg.FalAPIKey)

	backends := media.Backends{
		OpenAIImages: openaiClient,
		Downloader:   falClient,
		Speech:       openaiClient,
		Transcriber:  openaiClient,
		Artifacts:    artifacts,
	}
	if cfg.FalAPIKey != "" {
		backends.FalImages = falClient
	} else {
		srvLog.Warn().Msg("FAL_API_KEY not set, flux and nano-banana models are unavailable")
	}

	coordinator := media.NewCoordinator(backends, media.Options{
		MaxConcurrency: cfg.MediaMaxConcurrency,
		RateLimitRPM:   cfg.ProviderRateLimitRPM,
	}, logger)

	orchestrator := pipeline.NewOrchestrator(
		dbClient,
		planner.NewPlanner(openaiClient, logger),
		coordinator,
		catalog,
		logger,
	)

	editor := pipeline.NewSegmentEditor(dbClient, coordinator, catalog, logger)

	healthHandler := handlers.NewHealthHandler(dbClient)
	projectsHandler := handlers.NewProjectsHandler(dbClient, artifacts, logger)
	generateHandler := handlers.NewGenerateHandler(dbClient, orchestrator, logger)
	statusHandler := handlers.NewStatusHandler(dbClient)
	captionsHandler := handlers.NewCaptionsHandler(dbClient)
	filesHandler := handlers.NewFilesHandler(dbClient)
	catalogHandler := handlers.NewCatalogHandler(catalog)
	segmentsHandler := handlers.NewSegmentsHandler(dbClient, editor, logger)

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Health check (no auth)
	router.GET("/health", healthHandler.Health)

	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/videos", generateHandler.CreateVideo)

	api.POST("/projects", projectsHandler.CreateProject)
	api.GET("/projects", projectsHandler.ListProjects)
	api.GET("/projects/:project_id", projectsHandler.GetProject)
	api.DELETE("/projects/:project_id", projectsHandler.DeleteProject)
	api.POST("/projects/:project_id/generate", generateHandler.Generate)

	api.GET("/projects/:project_id/status", statusHandler.GetStatus)
	api.GET("/projects/:project_id/captions", captionsHandler.GetCaption)
	api.GET("/projects/:project_id/files", filesHandler.GetFiles)

	api.POST("/projects/:project_id/segments/:segment_id/image", segmentsHandler.RegenerateImage)
	api.POST("/projects/:project_id/segments/:segment_id/audio", segmentsHandler.RegenerateAudio)

	api.GET("/catalog/styles", catalogHandler.GetStyles)
	api.GET("/catalog/voices", catalogHandler.GetVoices)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		srvLog.Info().Str("port", cfg.Port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srvLog.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	srvLog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		srvLog.Error().Err(err).Msg("server shutdown failed")
	}

	// In-flight generations finish before the database closes. Runs still
	// going at the deadline keep the pool until the process exits.
	waitCtx, cancelWait := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancelWait()
	if err := orchestrator.WaitContext(waitCtx); err != nil {
		abandoned := orchestrator.Running()
		ids := make([]string, len(abandoned))
		for i, id := range abandoned {
			ids[i] = id.String()
		}
		srvLog.Warn().
			Int("abandoned_runs", len(abandoned)).
			Strs("project_ids", ids).
			Msg("gave up waiting for in-flight generations, leaving database open")
		return
	}

	if err := dbClient.Close(); err != nil {
		srvLog.Error().Err(err).Msg("failed to close database")
	}
}
