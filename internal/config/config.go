// Package config loads habitcal configuration from an optional YAML file and
// the environment. Environment variables always win over file values.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider identifies the backing LLM provider for the assistant.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
	// ProviderNone disables the generative call entirely; the assistant runs
	// on calendar commands and fallback responses only.
	ProviderNone Provider = "none"
)

// Config holds all configuration values.
type Config struct {
	// HTTP server
	ListenAddr string `yaml:"listen_addr"`

	// SQLite database file
	DBPath string `yaml:"db_path"`

	// LLM provider selection
	LLMProvider     Provider `yaml:"llm_provider"`
	LLMModel        string   `yaml:"llm_model"`
	OllamaHost      string   `yaml:"ollama_host"`
	OpenAIAPIKey    string   `yaml:"openai_api_key"`
	AnthropicAPIKey string   `yaml:"anthropic_api_key"`

	// Conversation history window passed to the generative call.
	HistoryLimit int `yaml:"history_limit"`

	// Logging
	LogFile      string `yaml:"log_file"`
	LogLevelName string `yaml:"log_level"`

	// LogLevel is resolved from LogLevelName after loading.
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration, merging defaults, the optional config file at
// path (ignored when empty or missing), and environment overrides.
func Load(path string) (Config, error) {
	cfg := Config{
		ListenAddr:   ":8485",
		DBPath:       "habits.db",
		LLMProvider:  ProviderOllama,
		LLMModel:     "llama3.2",
		OllamaHost:   "http://localhost:11434",
		HistoryLimit: 10,
		LogFile:      "/tmp/habitcal.log",
		LogLevelName: "INFO",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing config file is fine; defaults + env apply.
		case err != nil:
			return Config{}, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	applyEnv(&cfg)
	cfg.LogLevel = parseLogLevel(cfg.LogLevelName)

	if !validProvider(cfg.LLMProvider) {
		return Config{}, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
	if cfg.HistoryLimit < 0 {
		cfg.HistoryLimit = 0
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	setEnv(&cfg.ListenAddr, "HABITCAL_LISTEN_ADDR")
	setEnv(&cfg.DBPath, "HABITCAL_DB_PATH")
	setEnv(&cfg.LLMModel, "HABITCAL_LLM_MODEL")
	setEnv(&cfg.OllamaHost, "OLLAMA_HOST")
	setEnv(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	setEnv(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setEnv(&cfg.LogFile, "HABITCAL_LOG_FILE")
	setEnv(&cfg.LogLevelName, "HABITCAL_LOG_LEVEL")

	if v := os.Getenv("HABITCAL_LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = Provider(strings.ToLower(v))
	}
}

func setEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func validProvider(p Provider) bool {
	switch p {
	case ProviderOllama, ProviderOpenAI, ProviderAnthropic, ProviderBedrock, ProviderNone:
		return true
	}
	return false
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
