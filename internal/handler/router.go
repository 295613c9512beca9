package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/studyhub/rag/internal/config"
	"github.com/studyhub/rag/internal/middleware"
	"github.com/studyhub/rag/internal/model"
	"github.com/studyhub/rag/internal/pkg/jwt"
	"github.com/studyhub/rag/internal/pkg/redis"
	"github.com/studyhub/rag/internal/repository"
	"github.com/studyhub/rag/internal/service"
)

func SetupRouter(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*gin.Engine, error) {
	// The chunk embedding column is fixed-width; a provider configured with a
	// different dimensionality would poison stored vectors.
	if cfg.EmbeddingDimensions != model.EmbeddingDimensions {
		return nil, fmt.Errorf("EMBEDDING_DIMENSIONS is %d but the chunk embedding column is vector(%d)",
			cfg.EmbeddingDimensions, model.EmbeddingDimensions)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// Health check endpoints
	r.GET("/health", healthCheck)
	r.GET("/ready", readinessCheck)
	r.GET("/live", livenessCheck)

	// Root endpoint
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":      "StudyHub RAG Service",
			"version":      "1.0.0",
			"status":       "running",
			"health_check": "/health",
		})
	})

	// Initialize repositories
	workspaceRepo := repository.NewWorkspaceRepository(db)
	documentRepo := repository.NewDocumentRepository(db)
	chunkRepo := repository.NewChunkRepository(db)

	// Listing cache is optional: without redis, every listing hits the DB
	var docListCache *redis.DocListCache
	if redisClient != nil {
		docListCache = redis.NewDocListCache(redisClient, 0)
	}

	// Provider gateways, primary first
	embeddingSvc := service.NewEmbeddingService(
		cfg.EmbeddingDimensions,
		service.NewOpenAIEmbedder("openrouter", cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.EmbeddingModel),
		service.NewOpenAIEmbedder("huggingface", cfg.HuggingFaceAPIKey, cfg.HuggingFaceBaseURL, cfg.EmbeddingFallbackModel),
	)
	llmSvc := service.NewLLMService(
		service.NewOpenAIChatProvider("openrouter", cfg.OpenRouterAPIKey, cfg.OpenRouterBaseURL, cfg.LLMModel, cfg.AppURL),
		service.NewOpenAIChatProvider("groq", cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.LLMFallbackModel, ""),
	)
	searchSvc := service.NewFirecrawlService(cfg.FirecrawlAPIKey, cfg.FirecrawlBaseURL)

	// Pipeline services
	chunker, err := service.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap, cfg.ChunkMinLength)
	if err != nil {
		return nil, err
	}
	ingestSvc := service.NewIngestService(service.NewExtractor(), chunker, embeddingSvc, documentRepo, chunkRepo, docListCache)
	retrievalSvc := service.NewRetrievalService(chunkRepo)
	chatSvc := service.NewChatService(embeddingSvc, retrievalSvc, searchSvc, llmSvc)
	workspaceSvc := service.NewWorkspaceService(workspaceRepo, docListCache)
	docSvc := service.NewDocumentService(documentRepo, docListCache)

	// Handlers
	documentHandler := NewDocumentHandler(docSvc, ingestSvc, chatSvc, workspaceSvc, cfg.MaxUploadSize)
	workspaceHandler := NewWorkspaceHandler(workspaceSvc, docSvc, chatSvc)

	// Auth
	jwtManager := jwt.NewManager(cfg.JWTSecret, 60)
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)

	// API v1
	v1 := r.Group("/v1")
	v1.Use(authMiddleware.JWTAuth())
	{
		documents := v1.Group("/documents")
		{
			documents.POST("", documentHandler.Upload)
			documents.GET("", documentHandler.List)
			documents.GET("/:id", documentHandler.Get)
			documents.DELETE("/:id", documentHandler.Delete)
			documents.POST("/:id/chat", documentHandler.Chat)
		}

		workspaces := v1.Group("/workspaces")
		{
			workspaces.POST("", workspaceHandler.Create)
			workspaces.GET("", workspaceHandler.List)
			workspaces.GET("/:id", workspaceHandler.Get)
			workspaces.DELETE("/:id", workspaceHandler.Delete)
			workspaces.GET("/:id/documents", workspaceHandler.Documents)
			workspaces.POST("/:id/chat", workspaceHandler.Chat)
		}
	}

	return r, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "rag",
	})
}

func readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

func livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
