package config

import (
	"errors"
	"os"
	"strings"
)

// app config: AI provider, token verification and HTTP settings
type Config struct {
	Provider       string
	JWTSecret      string
	Port           string
	AllowedOrigins []string
}

// loads configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		Provider:       getEnvOrDefault("AI_PROVIDER", "gemini"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		Port:           getEnvOrDefault("PORT", "8080"),
		AllowedOrigins: splitOrigins(getEnvOrDefault("ALLOWED_ORIGINS", "http://localhost:5173")),
	}
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Provider != "gemini" {
		return errors.New("unsupported AI provider: " + config.Provider + ". Currently supported: gemini")
	}
	// Gemini validation is handled by gemini.NewConfig()
	if config.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable is required")
	}
	return nil
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
