package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Config holds application configuration from ~/.memoryloom/config.json
type Config struct {
	DataDir string       `json:"data_dir,omitempty"`
	Gemini  GeminiConfig `json:"gemini,omitempty"`
}

// GeminiConfig holds Gemini model settings.
type GeminiConfig struct {
	APIKey         string `json:"api_key,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
	NarrativeModel string `json:"narrative_model,omitempty"`
}

// LoadConfig reads configuration from ~/.memoryloom/config.json.
// A missing file is not an error; defaults plus environment variables
// apply. A missing API key is also not an error: the app runs with the
// inference collaborator treated as unavailable.
func LoadConfig(logger *log.Logger) (*Config, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	cfg := &Config{}
	configPath := filepath.Join(homeDir, ".memoryloom", "config.json")
	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config.json: %w", err)
		}
		logger.Printf("Loaded config from %s", configPath)
	case os.IsNotExist(err):
		logger.Printf("Config file not found at %s, using defaults and environment variables", configPath)
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Override with environment variables if present
	if dir := os.Getenv("MEMORYLOOM_DATA_DIR"); dir != "" {
		cfg.DataDir = dir
	}
	if geminiKey := os.Getenv("GEMINI_API_KEY"); geminiKey != "" {
		cfg.Gemini.APIKey = geminiKey
	}
	if embModel := os.Getenv("GEMINI_EMBEDDING_MODEL"); embModel != "" {
		cfg.Gemini.EmbeddingModel = embModel
	}
	if narModel := os.Getenv("GEMINI_NARRATIVE_MODEL"); narModel != "" {
		cfg.Gemini.NarrativeModel = narModel
	}

	// Set defaults
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(homeDir, ".memoryloom")
	}
	if cfg.Gemini.EmbeddingModel == "" {
		cfg.Gemini.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.Gemini.NarrativeModel == "" {
		cfg.Gemini.NarrativeModel = DefaultNarrativeModel
	}

	return cfg, nil
}

// SaveConfig writes configuration to ~/.memoryloom/config.json
func SaveConfig(cfg *Config, logger *log.Logger) error {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	loomDir := filepath.Join(homeDir, ".memoryloom")
	if err := os.MkdirAll(loomDir, 0755); err != nil {
		return fmt.Errorf("failed to create .memoryloom directory: %w", err)
	}

	configPath := filepath.Join(loomDir, "config.json")
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config.json: %w", err)
	}

	logger.Printf("Saved config to %s", configPath)
	return nil
}
