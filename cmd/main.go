package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"rag-edu-backend/internal/ai"
	"rag-edu-backend/internal/config"
	"rag-edu-backend/internal/logger"
	"rag-edu-backend/internal/vector"
	"rag-edu-backend/middleware"
	"rag-edu-backend/routes"
	"rag-edu-backend/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	// Vector store: Redis when reachable, in-memory otherwise.
	var store vector.Store
	if rdb, err := config.NewRedisClient(cfg); err == nil {
		defer rdb.Close()
		store = vector.NewRedisStore(rdb)
		logger.Info("Using Redis vector store", "url", cfg.RedisURL)
	} else {
		store = vector.NewMemoryStore()
		logger.Warn("Redis unavailable, using in-memory vector store", "error", err)
	}

	gemini, err := ai.NewGeminiClient(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to create Gemini client:", err)
	}
	defer gemini.Close()

	// Services
	extractor := services.NewPDFExtractor()
	chunker := services.NewHybridChunker(cfg)
	ingestion := services.NewIngestionService(cfg, extractor, chunker, gemini, store)
	retrieval := services.NewRetrievalService(cfg, gemini, store)
	qa := services.NewQAService(cfg, retrieval, gemini)
	generator := services.NewContentGenerator(cfg, retrieval, gemini)
	competitive := services.NewCompetitiveQuizService(cfg, generator)

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With", "X-Request-ID"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	routes.SetupUploadRoutes(router, cfg, ingestion)
	routes.SetupDocumentRoutes(router, ingestion)
	routes.SetupChatRoutes(router, qa)
	routes.SetupQuizRoutes(router, generator)
	routes.SetupSummaryRoutes(router, generator)
	routes.SetupFlashcardRoutes(router, generator)
	routes.SetupCompetitiveQuizRoutes(router, competitive)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Info("Server exited")
}
