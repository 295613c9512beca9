package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/studyhub/rag/internal/config"
	"github.com/studyhub/rag/internal/database"
	"github.com/studyhub/rag/internal/handler"
	"github.com/studyhub/rag/internal/pkg/redis"
)

func main() {
	// Load .env file if exists
	godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional: without it, document listings are served uncached
	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Printf("Redis unavailable, document listing cache disabled: %v", err)
		redisClient = nil
	}

	// Setup router
	r, err := handler.SetupRouter(cfg, db, redisClient)
	if err != nil {
		log.Fatalf("Failed to set up router: %v", err)
	}

	// Start server
	addr := cfg.Host + ":" + cfg.Port
	log.Printf("RAG Service starting on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
