// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config holds the runtime settings for the cmd tools.
type Config struct {
	// DiseasesPath points at the reference disease catalogue JSON.
	DiseasesPath string

	// GeminiAPIKey enables the Gemini metadata extractor; when empty,
	// the OCR fallback is used instead.
	GeminiAPIKey string
	GeminiModel  string
}

// Load reads configuration from a .env file (current or executable
// directory) and the process environment. Environment variables win
// over .env values.
func Load() *Config {
	envPaths := []string{".env"}
	if execPath, err := os.Executable(); err == nil {
		envPaths = append(envPaths, filepath.Join(filepath.Dir(execPath), ".env"))
	}
	for _, envPath := range envPaths {
		if _, err := os.Stat(envPath); err == nil {
			godotenv.Load(envPath)
			break
		}
	}

	return &Config{
		DiseasesPath: getEnvWithDefault("DISEASES_PATH", filepath.Join("data", "diseases.json")),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  os.Getenv("GEMINI_MODEL"),
	}
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
