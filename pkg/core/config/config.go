// Package config loads SECrawler settings from config/secrawler.yaml, the
// process environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DefaultModelID   = "googleai/gemini-2.0-flash"
	DefaultUserAgent = "SECrawler/1.0 (contact@example.com)"
	DefaultPath      = "config/secrawler.yaml"
)

// RequestConfig holds the fixed generation parameters sent with every
// summarization request. It is passed by value and never mutated after load.
type RequestConfig struct {
	ModelID         string  `yaml:"id" json:"model_id"`
	Temperature     float32 `yaml:"temperature" json:"temperature"`
	TopP            float32 `yaml:"top_p" json:"top_p"`
	TopK            int32   `yaml:"top_k" json:"top_k"`
	MaxOutputTokens int32   `yaml:"max_output_tokens" json:"max_output_tokens"`
}

// DefaultRequestConfig returns the most deterministic settings the model API allows.
func DefaultRequestConfig() RequestConfig {
	return RequestConfig{
		ModelID:         DefaultModelID,
		Temperature:     0.0,
		TopP:            0.1,
		TopK:            16,
		MaxOutputTokens: 8192,
	}
}

// ModelName returns the part of the model id after the provider prefix.
func (c RequestConfig) ModelName() string {
	if i := strings.Index(c.ModelID, "/"); i >= 0 {
		return c.ModelID[i+1:]
	}
	return c.ModelID
}

// Provider returns the provider prefix of the model id ("googleai" for
// "googleai/gemini-2.0-flash"). Ids without a prefix belong to googleai.
func (c RequestConfig) Provider() string {
	if i := strings.Index(c.ModelID, "/"); i >= 0 {
		return c.ModelID[:i]
	}
	return "googleai"
}

type ServerConfig struct {
	Addr string `yaml:"addr" env:"SECRAWLER_ADDR"`
}

type FetchConfig struct {
	UserAgent string        `yaml:"user_agent" env:"SECRAWLER_USER_AGENT"`
	Timeout   time.Duration `yaml:"timeout"`
}

type ModelConfig struct {
	ID         string        `yaml:"id"`
	GeminiSDK  string        `yaml:"gemini_sdk"` // "genai" or "generative-ai-go"
	Generation RequestConfig `yaml:"generation"`
}

type SummaryConfig struct {
	AttachContent   bool `yaml:"attach_content"`
	MaxContentChars int  `yaml:"max_content_chars"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"SECRAWLER_LOG_LEVEL"`
	File  string `yaml:"file" env:"SECRAWLER_LOG_FILE"`
}

// Secrets are only ever read from the environment.
type Secrets struct {
	GoogleAPIKey string `env:"GOOGLE_GENAI_API_KEY"`
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	OpenAIAPIKey string `env:"OPENAI_API_KEY"`
	DatabaseURL  string `env:"DATABASE_URL"`
}

// GeminiKey prefers GOOGLE_GENAI_API_KEY and falls back to GEMINI_API_KEY.
func (s Secrets) GeminiKey() string {
	if s.GoogleAPIKey != "" {
		return s.GoogleAPIKey
	}
	return s.GeminiAPIKey
}

type Config struct {
	Server       ServerConfig  `yaml:"server"`
	Fetch        FetchConfig   `yaml:"fetch"`
	Model        ModelConfig   `yaml:"model"`
	Summary      SummaryConfig `yaml:"summary"`
	Log          LogConfig     `yaml:"log"`
	ResourcesDir string        `yaml:"resources_dir"`
	Secrets      Secrets       `yaml:"-"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Server: ServerConfig{Addr: ":8080"},
		Fetch: FetchConfig{
			UserAgent: DefaultUserAgent,
			Timeout:   60 * time.Second,
		},
		Model: ModelConfig{
			ID:         DefaultModelID,
			GeminiSDK:  "genai",
			Generation: DefaultRequestConfig(),
		},
		Summary: SummaryConfig{
			AttachContent:   false,
			MaxContentChars: 200000,
		},
		Log:          LogConfig{Level: "info"},
		ResourcesDir: "resources",
	}
}

// Request returns the generation config with the configured model id applied.
func (c Config) Request() RequestConfig {
	rc := c.Model.Generation
	rc.ModelID = c.Model.ID
	return rc
}

// Load reads .env (if present), the YAML file at path (if present) and the
// environment, in that order of increasing precedence.
func Load(path string) (Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := env.Parse(&cfg.Server); err != nil {
		return Config{}, fmt.Errorf("failed to parse server env: %w", err)
	}
	if err := env.Parse(&cfg.Fetch); err != nil {
		return Config{}, fmt.Errorf("failed to parse fetch env: %w", err)
	}
	if err := env.Parse(&cfg.Log); err != nil {
		return Config{}, fmt.Errorf("failed to parse log env: %w", err)
	}
	if err := env.Parse(&cfg.Secrets); err != nil {
		return Config{}, fmt.Errorf("failed to parse secrets: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Model.ID == "" {
		return errors.New("model.id must not be empty")
	}
	switch c.Model.GeminiSDK {
	case "", "genai", "generative-ai-go":
	default:
		return fmt.Errorf("unknown model.gemini_sdk %q", c.Model.GeminiSDK)
	}
	g := c.Model.Generation
	if g.Temperature < 0 || g.TopP < 0 || g.TopP > 1 || g.TopK < 0 || g.MaxOutputTokens <= 0 {
		return fmt.Errorf("invalid generation config: %+v", g)
	}
	return nil
}
