package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	DocrankAPIKey string

	// Embedding engine
	EmbedModel    string
	EmbedCacheDir string

	// Scoring
	ScoringMode      string // "chunk" (best-chunk) or "composite"
	WeightSemantic   float64
	WeightPersona    float64
	WeightTask       float64
	WeightStructural float64

	// Ranking
	MaxPerDocument int
	MaxTotal       int

	// Segmentation and chunking
	SectionMaxChars     int
	MinSectionWords     int
	MinChunkWords       int
	SimilarityThreshold float64

	// Sub-section analysis
	TopSections    int
	TopSubsections int

	// Worker pool
	WorkerCount       int
	MaxQueueSize      int
	MaxConcurrentDocs int

	// Per-document processing timeout; 0 disables it.
	DocTimeout time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		DocrankAPIKey: os.Getenv("DOCRANK_API_KEY"),

		EmbedModel:    envOr("EMBED_MODEL", "BAAI/bge-small-en-v1.5"),
		EmbedCacheDir: envOr("EMBED_CACHE_DIR", "local_cache"),

		ScoringMode:      envOr("SCORING_MODE", "chunk"),
		WeightSemantic:   envFloat("WEIGHT_SEMANTIC", 0.40),
		WeightPersona:    envFloat("WEIGHT_PERSONA", 0.25),
		WeightTask:       envFloat("WEIGHT_TASK", 0.25),
		WeightStructural: envFloat("WEIGHT_STRUCTURAL", 0.10),

		MaxPerDocument: envInt("MAX_PER_DOCUMENT", 3),
		MaxTotal:       envInt("MAX_TOTAL", 20),

		SectionMaxChars:     envInt("SECTION_MAX_CHARS", 5000),
		MinSectionWords:     envInt("MIN_SECTION_WORDS", 20),
		MinChunkWords:       envInt("MIN_CHUNK_WORDS", 50),
		SimilarityThreshold: envFloat("SIMILARITY_THRESHOLD", 0.3),

		TopSections:    envInt("TOP_SECTIONS", 5),
		TopSubsections: envInt("TOP_SUBSECTIONS", 10),

		WorkerCount:       envInt("WORKER_COUNT", 2),
		MaxQueueSize:      envInt("MAX_QUEUE_SIZE", 50),
		MaxConcurrentDocs: envInt("MAX_CONCURRENT_DOCS", 4),

		DocTimeout: envDuration("DOC_TIMEOUT", 0),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.MaxConcurrentDocs <= 0 {
		cfg.MaxConcurrentDocs = 4
	}
	if cfg.MaxPerDocument <= 0 {
		cfg.MaxPerDocument = 3
	}
	if cfg.MaxTotal <= 0 {
		cfg.MaxTotal = 20
	}
	if cfg.SectionMaxChars <= 0 {
		cfg.SectionMaxChars = 5000
	}
	if cfg.MinSectionWords <= 0 {
		cfg.MinSectionWords = 20
	}
	if cfg.MinChunkWords <= 0 {
		cfg.MinChunkWords = 50
	}
	if cfg.TopSections <= 0 {
		cfg.TopSections = 5
	}
	if cfg.TopSubsections <= 0 {
		cfg.TopSubsections = 10
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.DocrankAPIKey == "" {
		return fmt.Errorf("DOCRANK_API_KEY is required")
	}
	if c.ScoringMode != "chunk" && c.ScoringMode != "composite" {
		return fmt.Errorf("SCORING_MODE must be \"chunk\" or \"composite\", got %q", c.ScoringMode)
	}
	if c.WeightSemantic < 0 || c.WeightPersona < 0 || c.WeightTask < 0 || c.WeightStructural < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if c.SimilarityThreshold < 0 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("SIMILARITY_THRESHOLD must be in [0,1], got %v", c.SimilarityThreshold)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
