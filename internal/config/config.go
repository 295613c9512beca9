package config

import (
	"os"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Host        string `mapstructure:"HOST"`
	Port        string `mapstructure:"PORT"`
	GinMode     string `mapstructure:"GIN_MODE"`
	Environment string `mapstructure:"ENVIRONMENT"`
	AppURL      string `mapstructure:"APP_URL"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis
	RedisURL string `mapstructure:"REDIS_URL"`

	// Auth
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// Embedding providers (primary + fallback, OpenAI-compatible wire format)
	OpenRouterAPIKey       string `mapstructure:"OPENROUTER_API_KEY"`
	OpenRouterBaseURL      string `mapstructure:"OPENROUTER_BASE_URL"`
	HuggingFaceAPIKey      string `mapstructure:"HF_API_KEY"`
	HuggingFaceBaseURL     string `mapstructure:"HF_BASE_URL"`
	EmbeddingModel         string `mapstructure:"EMBEDDING_MODEL"`
	EmbeddingFallbackModel string `mapstructure:"EMBEDDING_FALLBACK_MODEL"`
	EmbeddingDimensions    int    `mapstructure:"EMBEDDING_DIMENSIONS"`

	// Chat completion providers
	GroqAPIKey       string `mapstructure:"GROQ_API_KEY"`
	GroqBaseURL      string `mapstructure:"GROQ_BASE_URL"`
	LLMModel         string `mapstructure:"LLM_MODEL"`
	LLMFallbackModel string `mapstructure:"LLM_FALLBACK_MODEL"`

	// Web search
	FirecrawlAPIKey  string `mapstructure:"FIRECRAWL_API_KEY"`
	FirecrawlBaseURL string `mapstructure:"FIRECRAWL_BASE_URL"`

	// Ingestion
	ChunkSize      int   `mapstructure:"CHUNK_SIZE"`
	ChunkOverlap   int   `mapstructure:"CHUNK_OVERLAP"`
	ChunkMinLength int   `mapstructure:"CHUNK_MIN_LENGTH"`
	MaxUploadSize  int64 `mapstructure:"MAX_UPLOAD_SIZE"`
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("HOST", "0.0.0.0")
	viper.SetDefault("PORT", "8090")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("APP_URL", "http://localhost:8090")
	viper.SetDefault("DATABASE_URL", "postgres://localhost:5432/studyhub?sslmode=disable")
	viper.SetDefault("REDIS_URL", "redis://localhost:6379")
	viper.SetDefault("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1")
	viper.SetDefault("HF_BASE_URL", "https://router.huggingface.co/v1")
	viper.SetDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1")
	viper.SetDefault("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev/v1")
	viper.SetDefault("EMBEDDING_MODEL", "google/gemini-embedding-001")
	viper.SetDefault("EMBEDDING_FALLBACK_MODEL", "sentence-transformers/all-mpnet-base-v2")
	viper.SetDefault("EMBEDDING_DIMENSIONS", 768)
	viper.SetDefault("LLM_MODEL", "google/gemini-2.0-flash-001")
	viper.SetDefault("LLM_FALLBACK_MODEL", "llama-3.3-70b-versatile")
	viper.SetDefault("CHUNK_SIZE", 800)
	viper.SetDefault("CHUNK_OVERLAP", 150)
	viper.SetDefault("CHUNK_MIN_LENGTH", 20)
	viper.SetDefault("MAX_UPLOAD_SIZE", 10*1024*1024) // 10MB

	// Try to read .env file (optional)
	_ = viper.ReadInConfig()

	// Environment variables take precedence over the .env file
	for _, key := range []string{
		"HOST", "PORT", "GIN_MODE", "ENVIRONMENT", "APP_URL",
		"DATABASE_URL", "REDIS_URL", "JWT_SECRET",
		"OPENROUTER_API_KEY", "OPENROUTER_BASE_URL", "HF_API_KEY", "HF_BASE_URL",
		"EMBEDDING_MODEL", "EMBEDDING_FALLBACK_MODEL", "EMBEDDING_DIMENSIONS",
		"GROQ_API_KEY", "GROQ_BASE_URL", "LLM_MODEL", "LLM_FALLBACK_MODEL",
		"FIRECRAWL_API_KEY", "FIRECRAWL_BASE_URL",
		"CHUNK_SIZE", "CHUNK_OVERLAP", "CHUNK_MIN_LENGTH", "MAX_UPLOAD_SIZE",
	} {
		if val := os.Getenv(key); val != "" {
			viper.Set(key, val)
		}
	}

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
