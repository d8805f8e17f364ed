package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	GinMode     string
	CORSOrigins []string
	MaxFileSize int64

	// Gemini provider
	GeminiAPIKey    string
	GeminiModel     string
	EmbeddingsModel string
	GeminiTier      string

	// Redis (vector index)
	RedisURL      string
	RedisPassword string
	RedisDB       int

	// Ingestion and retrieval
	EmbeddingDim     int
	MaxContextTokens int
	ResponseReserve  int
	ChunkSize        int
	ChunkOverlap     int
	MinChunkChars    int
	MaxPagesTotal    int
	EmbedBatchSize   int

	// Grounding fallback
	SimilarityFallbackThreshold float64

	// Adaptive quiz
	QLAlpha             float64
	QLGamma             float64
	QLEpsilon           float64
	BlendWeightQ        float64
	CompetitiveBankSize int

	// External call deadline
	UpstreamTimeoutMS int
}

func LoadConfig() (*Config, error) {
	// Load .env file if exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("error loading .env file: %v", err)
		}
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		GinMode:     getEnv("GIN_MODE", "debug"),
		CORSOrigins: strings.Split(getEnv("CORS_ORIGINS", "http://localhost:3000,http://localhost:8501"), ","),
		MaxFileSize: getEnvInt64("MAX_FILE_SIZE", 52428800), // 50MB per upload

		GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		EmbeddingsModel: getEnv("GOOGLE_EMBEDDINGS_MODEL", "text-embedding-004"),
		GeminiTier:      getEnv("GEMINI_TIER", "free"),

		RedisURL:      getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		EmbeddingDim:     getEnvInt("EMBEDDING_DIM", 1536),
		MaxContextTokens: getEnvInt("MAX_CONTEXT_TOKENS", 4000),
		ResponseReserve:  getEnvInt("RESPONSE_RESERVE", 1000),
		ChunkSize:        getEnvInt("CHUNK_SIZE", 1024),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 200),
		MinChunkChars:    getEnvInt("MIN_CHUNK_CHARS", 50),
		MaxPagesTotal:    getEnvInt("MAX_PAGES_TOTAL", 300),
		EmbedBatchSize:   getEnvInt("EMBED_BATCH_SIZE", 96),

		SimilarityFallbackThreshold: getEnvFloat64("SIMILARITY_FALLBACK_THRESHOLD", 0.3),

		QLAlpha:             getEnvFloat64("QL_ALPHA", 0.1),
		QLGamma:             getEnvFloat64("QL_GAMMA", 0.9),
		QLEpsilon:           getEnvFloat64("QL_EPSILON", 0.2),
		BlendWeightQ:        getEnvFloat64("BLEND_WEIGHT_Q", 0.7),
		CompetitiveBankSize: getEnvInt("COMPETITIVE_BANK_SIZE", 30),

		UpstreamTimeoutMS: getEnvInt("UPSTREAM_TIMEOUT_MS", 30000),
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required - set it in .env file")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}
