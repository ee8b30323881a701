package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// ClassifierMode selects the query classification implementation
const (
	ClassifierHeuristic = "heuristic"
	ClassifierInference = "inference"
)

// Config holds all application configuration
type Config struct {
	// App
	Port string
	Env  string

	// Neo4j
	Neo4jURI      string
	Neo4jUser     string
	Neo4jPassword string

	// Inference Service (OpenAI-compatible endpoint)
	InferenceURL    string
	InferenceAPIKey string
	ModelID         string

	// Query classification
	ClassifierMode string

	// Extraction
	ConfidenceThreshold float64

	// Retrieval
	WildcardResultCap int

	// Orchestrator
	MemoryLogSize      int
	MemoryLogSenders   int
	ChatHistoryWindow  int
	QueryHistoryWindow int

	// Inference call protection
	InferenceTimeoutSeconds int
	InferenceMaxFailures    int
	InferenceRatePerSecond  float64
	InferenceRateBurst      int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		Neo4jURI:                getEnv("NEO4J_URI", "bolt://localhost:7687"),
		Neo4jUser:               getEnv("NEO4J_USER", "neo4j"),
		Neo4jPassword:           getEnv("NEO4J_PASSWORD", "password"),
		InferenceURL:            getEnv("INFERENCE_URL", "http://localhost:4000"),
		InferenceAPIKey:         getEnv("INFERENCE_API_KEY", ""),
		ModelID:                 getEnv("MODEL_ID", "gpt-4o"),
		ClassifierMode:          getEnv("CLASSIFIER_MODE", ClassifierHeuristic),
		ConfidenceThreshold:     getEnvFloat("CONFIDENCE_THRESHOLD", 0.6),
		WildcardResultCap:       getEnvInt("WILDCARD_RESULT_CAP", 15),
		MemoryLogSize:           getEnvInt("MEMORY_LOG_SIZE", 50),
		MemoryLogSenders:        getEnvInt("MEMORY_LOG_SENDERS", 256),
		ChatHistoryWindow:       getEnvInt("CHAT_HISTORY_WINDOW", 10),
		QueryHistoryWindow:      getEnvInt("QUERY_HISTORY_WINDOW", 200),
		InferenceTimeoutSeconds: getEnvInt("INFERENCE_TIMEOUT_SECONDS", 30),
		InferenceMaxFailures:    getEnvInt("INFERENCE_MAX_FAILURES", 3),
		InferenceRatePerSecond:  getEnvFloat("INFERENCE_RATE_PER_SECOND", 5),
		InferenceRateBurst:      getEnvInt("INFERENCE_RATE_BURST", 10),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set
func (c *Config) Validate() error {
	if c.Neo4jURI == "" {
		return fmt.Errorf("NEO4J_URI is required")
	}
	if c.Neo4jUser == "" {
		return fmt.Errorf("NEO4J_USER is required")
	}
	if c.InferenceURL == "" {
		return fmt.Errorf("INFERENCE_URL is required")
	}
	if c.ModelID == "" {
		return fmt.Errorf("MODEL_ID is required")
	}
	if c.ClassifierMode != ClassifierHeuristic && c.ClassifierMode != ClassifierInference {
		return fmt.Errorf("CLASSIFIER_MODE must be %q or %q", ClassifierHeuristic, ClassifierInference)
	}
	if c.ConfidenceThreshold < 0 || c.ConfidenceThreshold >= 1 {
		return fmt.Errorf("CONFIDENCE_THRESHOLD must be in [0, 1)")
	}
	if c.MemoryLogSize < 1 {
		return fmt.Errorf("MEMORY_LOG_SIZE must be positive")
	}
	// Inference API key is optional; local gateways accept a dummy key
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var result float64
		if _, err := fmt.Sscanf(value, "%f", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
