package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const defaultEnvFile = ".env"

type Config struct {
	Host             string
	Port             string
	LLMProvider      string
	LLMModel         string
	LLMBaseURL       string
	LLMTimeout       time.Duration
	OpenAIAPIKey     string
	OpenRouterAPIKey string
	ApifyAPIToken    string
	ApifyBaseURL     string
	ApifyWait        time.Duration
	StreamHeartbeat  time.Duration
	SystemPromptFile string
	LogLevel         string
	LogFormat        string
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

func Load() (Config, error) {
	return load(defaultEnvFile)
}

func load(envFile string) (Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("RELAY_HOST", "0.0.0.0")
	v.SetDefault("RELAY_PORT", "8000")
	v.SetDefault("LLM_PROVIDER", "openai")
	v.SetDefault("LLM_MODEL", "gpt-4o")
	v.SetDefault("APIFY_BASE_URL", "https://api.apify.com")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	return Config{
		Host:             strings.TrimSpace(v.GetString("RELAY_HOST")),
		Port:             strings.TrimSpace(v.GetString("RELAY_PORT")),
		LLMProvider:      strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER"))),
		LLMModel:         strings.TrimSpace(v.GetString("LLM_MODEL")),
		LLMBaseURL:       strings.TrimSpace(v.GetString("LLM_BASE_URL")),
		LLMTimeout:       getSeconds(v, "LLM_TIMEOUT_SECONDS", 120),
		OpenAIAPIKey:     strings.TrimSpace(v.GetString("OPENAI_API_KEY")),
		OpenRouterAPIKey: strings.TrimSpace(v.GetString("OPENROUTER_API_KEY")),
		ApifyAPIToken:    strings.TrimSpace(v.GetString("APIFY_API_TOKEN")),
		ApifyBaseURL:     strings.TrimRight(strings.TrimSpace(v.GetString("APIFY_BASE_URL")), "/"),
		ApifyWait:        getSeconds(v, "APIFY_WAIT_SECONDS", 60),
		StreamHeartbeat:  getSeconds(v, "STREAM_HEARTBEAT_SECONDS", 15),
		SystemPromptFile: strings.TrimSpace(v.GetString("SYSTEM_PROMPT_FILE")),
		LogLevel:         strings.ToLower(strings.TrimSpace(v.GetString("LOG_LEVEL"))),
		LogFormat:        strings.ToLower(strings.TrimSpace(v.GetString("LOG_FORMAT"))),
	}, nil
}

// loadEnvFile populates the process environment from a dotenv file when one
// exists. Variables already present in the environment win.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func getSeconds(v *viper.Viper, key string, fallback int) time.Duration {
	seconds := v.GetInt(key)
	if seconds <= 0 {
		seconds = fallback
	}
	return time.Duration(seconds) * time.Second
}
