package config

import (
	"os"
	"strconv"
	"time"

	"plaquerisk/domain/risk"
	"plaquerisk/domain/validation"
	"plaquerisk/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database   DatabaseConfig
	Gemini     GeminiConfig
	Server     ServerConfig
	Validation ValidationConfig
	Risk       RiskConfig
	Paths      PathConfig
}

// DatabaseConfig holds database connection settings. An empty URL means
// persistence falls back to the in-memory store.
type DatabaseConfig struct {
	URL string
}

// GeminiConfig holds narrative generator settings. An empty API key means
// summaries always come from the template fallback.
type GeminiConfig struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// ValidationConfig holds bootstrap validation settings
type ValidationConfig struct {
	Iterations   int
	Seed         int64
	OptimismMode string
	Workers      int
}

// RiskConfig holds the risk tier thresholds and display cutoff. TopK limits
// how many feature effects the API surfaces; zero means all of them.
type RiskConfig struct {
	LowThreshold  float64
	HighThreshold float64
	TopK          int
}

// PathConfig holds file system paths and cohort schema naming
type PathConfig struct {
	CohortFile  string
	LabelColumn string
	ModelName   string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Gemini: GeminiConfig{
			APIKey:      os.Getenv("GEMINI_API_KEY"),
			Model:       getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
			BaseURL:     getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Temperature: getEnvFloat("GEMINI_TEMPERATURE", 0.2),
			Timeout:     time.Duration(getEnvFloat("GEMINI_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			GinMode: getEnv("GIN_MODE", "release"),
		},
		Validation: ValidationConfig{
			Iterations:   getEnvInt("VALIDATION_ITERATIONS", 300),
			Seed:         int64(getEnvInt("VALIDATION_SEED", 42)),
			OptimismMode: getEnv("VALIDATION_OPTIMISM_MODE", string(validation.ModeFullData)),
			Workers:      getEnvInt("VALIDATION_WORKERS", 0),
		},
		Risk: RiskConfig{
			LowThreshold:  getEnvFloat("RISK_LOW_THRESHOLD", risk.DefaultLowThreshold),
			HighThreshold: getEnvFloat("RISK_HIGH_THRESHOLD", risk.DefaultHighThreshold),
			TopK:          getEnvInt("EXPLANATION_TOP_K", 0),
		},
		Paths: PathConfig{
			CohortFile:  getEnv("COHORT_FILE", "data/features.csv"),
			LabelColumn: getEnv("LABEL_COLUMN", "adverse_outcome"),
			ModelName:   getEnv("MODEL_NAME", "adverse_outcome"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Validation.Iterations < 1 {
		return errors.ConfigInvalid("VALIDATION_ITERATIONS must be positive")
	}
	switch validation.OptimismMode(cfg.Validation.OptimismMode) {
	case validation.ModeFullData, validation.ModePerFold:
	default:
		return errors.ConfigInvalid("VALIDATION_OPTIMISM_MODE must be 'full' or 'perfold'")
	}
	if _, err := risk.NewTierMapper(cfg.Risk.LowThreshold, cfg.Risk.HighThreshold); err != nil {
		return errors.ConfigInvalid(err.Error())
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
