package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	App       AppConfig       `toml:"app"`
	Auth      AuthConfig      `toml:"auth"`
	OAuth     OAuthConfig     `toml:"oauth"`
	Providers ProvidersConfig `toml:"providers"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	RabbitMQ  RabbitMQConfig  `toml:"rabbitmq"`
	Log       LogConfig       `toml:"log"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type AuthConfig struct {
	SessionTTLDays int `toml:"session_ttl_days"`
	// BypassAuth admits an implicit developer identity without any
	// credential check. Local development only.
	BypassAuth bool `toml:"bypass_auth"`
}

type OAuthConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	// RedirectURL must exactly match one of the authorized redirect URIs
	// registered in the Google Cloud console.
	RedirectURL     string   `toml:"redirect_url"`
	ApprovedDomains []string `toml:"approved_domains"`
	ApprovedEmails  []string `toml:"approved_emails"`
	AdminEmails     []string `toml:"admin_emails"`
	StateTTLSeconds int      `toml:"state_ttl_seconds"`
}

type ProvidersConfig struct {
	GeminiAPIKey     string `toml:"gemini_api_key"`
	OpenAIAPIKey     string `toml:"openai_api_key"`
	AnthropicAPIKey  string `toml:"anthropic_api_key"`
	PerplexityAPIKey string `toml:"perplexity_api_key"`
	ElevenLabsAPIKey string `toml:"elevenlabs_api_key"`
}

type DatabaseConfig struct {
	// URL is a PostgreSQL connection string. Empty selects the JSON file
	// backend.
	URL     string `toml:"url"`
	DataDir string `toml:"data_dir"`
}

type RedisConfig struct {
	Addr              string `toml:"addr"`
	Password          string `toml:"password"`
	DB                int    `toml:"db"`
	HistoryTTLSeconds int    `toml:"history_ttl_seconds"`
}

type RabbitMQConfig struct {
	URL          string `toml:"url"`
	ArchiveQueue string `toml:"archive_queue"`
}

type LogConfig struct {
	File string `toml:"file"`
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "ai-chat-studio",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Auth: AuthConfig{
			SessionTTLDays: 30,
		},
		OAuth: OAuthConfig{
			RedirectURL:     "http://localhost:8080/api/v1/oauth/callback",
			StateTTLSeconds: 600,
		},
		Database: DatabaseConfig{
			DataDir: "data",
		},
		Redis: RedisConfig{
			Addr:              "",
			HistoryTTLSeconds: 60,
		},
		RabbitMQ: RabbitMQConfig{
			URL:          "",
			ArchiveQueue: "chat.message.archive",
		},
		Log: LogConfig{
			File: "logs/app.log",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Auth.SessionTTLDays = getEnvAsInt("SESSION_TTL_DAYS", cfg.Auth.SessionTTLDays)
	cfg.Auth.BypassAuth = getEnvAsBool("BYPASS_AUTH", cfg.Auth.BypassAuth)

	cfg.OAuth.ClientID = getEnv("GOOGLE_CLIENT_ID", cfg.OAuth.ClientID)
	cfg.OAuth.ClientSecret = getEnv("GOOGLE_CLIENT_SECRET", cfg.OAuth.ClientSecret)
	cfg.OAuth.RedirectURL = getEnv("OAUTH_REDIRECT_URL", cfg.OAuth.RedirectURL)
	cfg.OAuth.ApprovedDomains = getEnvAsList("APPROVED_DOMAINS", cfg.OAuth.ApprovedDomains)
	cfg.OAuth.ApprovedEmails = getEnvAsList("APPROVED_EMAILS", cfg.OAuth.ApprovedEmails)
	cfg.OAuth.AdminEmails = getEnvAsList("ADMIN_EMAILS", cfg.OAuth.AdminEmails)

	cfg.Providers.GeminiAPIKey = getEnv("GEMINI_API_KEY", cfg.Providers.GeminiAPIKey)
	cfg.Providers.OpenAIAPIKey = getEnv("OPENAI_API_KEY", cfg.Providers.OpenAIAPIKey)
	cfg.Providers.AnthropicAPIKey = getEnv("ANTHROPIC_API_KEY", cfg.Providers.AnthropicAPIKey)
	cfg.Providers.PerplexityAPIKey = getEnv("PERPLEXITY_API_KEY", cfg.Providers.PerplexityAPIKey)
	cfg.Providers.ElevenLabsAPIKey = getEnv("ELEVENLABS_API_KEY", cfg.Providers.ElevenLabsAPIKey)

	// POSTGRESQL_URL takes precedence over DATABASE_URL when both are set.
	cfg.Database.URL = getEnv("DATABASE_URL", cfg.Database.URL)
	cfg.Database.URL = getEnv("POSTGRESQL_URL", cfg.Database.URL)
	cfg.Database.DataDir = getEnv("DATA_DIR", cfg.Database.DataDir)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.HistoryTTLSeconds = getEnvAsInt("REDIS_HISTORY_TTL_SECONDS", cfg.Redis.HistoryTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.ArchiveQueue = getEnv("RABBITMQ_ARCHIVE_QUEUE", cfg.RabbitMQ.ArchiveQueue)

	cfg.Log.File = getEnv("LOG_FILE", cfg.Log.File)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
