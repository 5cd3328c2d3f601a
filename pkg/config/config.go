// Package config provides configuration loading, validation, and management
// for the copysmith service.
//
// A single global Config instance is loaded once at startup (YAML file plus
// environment overrides) and accessed BY VALUE through GetConfig() so callers
// cannot mutate shared state. Secrets (API keys, webhook secret, OAuth client
// secret) are never part of Config; they come from the encrypted secrets file
// or the environment via GetSecret.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"copysmith/pkg/logx"
)

// Provider name constants.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGoogle    = "google"
	ProviderOllama    = "ollama"
)

// Model name constants for commonly used models.
const (
	ModelClaudeSonnetLatest = "claude-sonnet-4-5"
	ModelGPT5               = "gpt-5"
	ModelGeminiFlash        = "gemini-2.5-flash"
)

// Defaults for tunables that are usually left alone.
const (
	DefaultTemperature     = 0.7
	DefaultMaxTokens       = 4096
	DefaultLinkTokenBudget = 2000
	DefaultMaxImageBytes   = 5 * 1024 * 1024
	DefaultFetchTimeoutSec = 5
	DefaultListenAddr      = ":8080"
	DefaultDBPath          = "copysmith.db"
)

// ModelInfo contains static information about a known LLM model.
type ModelInfo struct {
	Provider  string  // API provider (anthropic, openai, google, ollama)
	InputCPM  float64 // Cost per million input tokens (USD)
	OutputCPM float64 // Cost per million output tokens (USD)
}

// KnownModels registry contains pricing and provider information for common
// models. Unknown models are inferred via ProviderPatterns.
//
//nolint:gochecknoglobals // static model registry
var KnownModels = map[string]ModelInfo{
	"claude-sonnet-4-5": {Provider: ProviderAnthropic, InputCPM: 3.0, OutputCPM: 15.0},
	"claude-opus-4-1":   {Provider: ProviderAnthropic, InputCPM: 15.0, OutputCPM: 75.0},
	"claude-haiku-4-5":  {Provider: ProviderAnthropic, InputCPM: 1.0, OutputCPM: 5.0},
	"gpt-5":             {Provider: ProviderOpenAI, InputCPM: 1.25, OutputCPM: 10.0},
	"gpt-5-mini":        {Provider: ProviderOpenAI, InputCPM: 0.25, OutputCPM: 2.0},
	"gemini-2.5-flash":  {Provider: ProviderGoogle, InputCPM: 0.3, OutputCPM: 2.5},
	"gemini-2.5-pro":    {Provider: ProviderGoogle, InputCPM: 1.25, OutputCPM: 10.0},
}

// ProviderPatterns maps model-name prefixes to providers for models missing
// from KnownModels.
//
//nolint:gochecknoglobals // static inference table
var ProviderPatterns = map[string]string{
	"claude": ProviderAnthropic,
	"gpt":    ProviderOpenAI,
	"o3":     ProviderOpenAI,
	"gemini": ProviderGoogle,
	"llama":  ProviderOllama,
	"qwen":   ProviderOllama,
}

// InferProvider returns the provider for a model name, or an error when the
// name matches no known pattern.
func InferProvider(model string) (string, error) {
	if info, ok := KnownModels[model]; ok {
		return info.Provider, nil
	}
	lower := strings.ToLower(model)
	for prefix, provider := range ProviderPatterns {
		if strings.HasPrefix(lower, prefix) {
			return provider, nil
		}
	}
	return "", fmt.Errorf("cannot infer provider for model %q", model)
}

// ModelConfig holds LLM call parameters.
type ModelConfig struct {
	Name        string  `yaml:"name"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	OllamaHost  string  `yaml:"ollama_host,omitempty"` // only used for ollama-provider models
}

// CollectorConfig bounds external content gathering.
type CollectorConfig struct {
	LinkTokenBudget int `yaml:"link_token_budget"` // per-link budget in estimated tokens
	MaxImageBytes   int `yaml:"max_image_bytes"`
	FetchTimeoutSec int `yaml:"fetch_timeout_sec"` // per-URL timeout
}

// TrackerConfig points at the issue tracker's API and OAuth endpoints.
type TrackerConfig struct {
	APIURL       string   `yaml:"api_url"`
	TokenURL     string   `yaml:"token_url"`
	AuthorizeURL string   `yaml:"authorize_url"`
	ClientID     string   `yaml:"client_id"`
	RedirectURL  string   `yaml:"redirect_url"`
	OAuthScopes  []string `yaml:"oauth_scopes"`
	AgentName    string   `yaml:"agent_name"` // @mention handle for commands
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
	DBPath     string `yaml:"db_path"`
}

// Config is the root configuration document.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Collector CollectorConfig `yaml:"collector"`
	Tracker   TrackerConfig   `yaml:"tracker"`
	Server    ServerConfig    `yaml:"server"`
}

//nolint:gochecknoglobals // singleton config, mutex protected
var (
	config *Config
	mu     sync.RWMutex
	logger *logx.Logger
)

func getLogger() *logx.Logger {
	if logger == nil {
		logger = logx.NewLogger("config")
	}
	return logger
}

// defaultConfig returns a Config with all defaults applied.
func defaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Name:        ModelClaudeSonnetLatest,
			Temperature: DefaultTemperature,
			MaxTokens:   DefaultMaxTokens,
			OllamaHost:  "http://localhost:11434",
		},
		Collector: CollectorConfig{
			LinkTokenBudget: DefaultLinkTokenBudget,
			MaxImageBytes:   DefaultMaxImageBytes,
			FetchTimeoutSec: DefaultFetchTimeoutSec,
		},
		Tracker: TrackerConfig{
			APIURL:       "https://api.linear.app/graphql",
			TokenURL:     "https://api.linear.app/oauth/token",
			AuthorizeURL: "https://linear.app/oauth/authorize",
			OAuthScopes:  []string{"read", "write", "app:assignable", "app:mentionable"},
			AgentName:    "copysmith",
		},
		Server: ServerConfig{
			ListenAddr: DefaultListenAddr,
			DBPath:     DefaultDBPath,
		},
	}
}

// LoadConfig loads configuration from the given YAML file path (optional;
// empty path or missing file means defaults) and applies environment
// overrides. Must be called once at startup before GetConfig.
func LoadConfig(path string) error {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
			getLogger().Info("Loaded config from %s", path)
		case os.IsNotExist(err):
			getLogger().Info("Config file %s not found, using defaults", path)
		default:
			return fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	config = cfg
	return nil
}

// applyEnvOverrides lets individual scalar settings be overridden without a
// config file, which is how the hosted deployment is configured.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("COPYSMITH_MODEL"); v != "" {
		cfg.Model.Name = v
	}
	if v := os.Getenv("COPYSMITH_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.Model.Temperature = float32(f)
		}
	}
	if v := os.Getenv("COPYSMITH_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Model.MaxTokens = n
		}
	}
	if v := os.Getenv("COPYSMITH_LINK_TOKEN_BUDGET"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Collector.LinkTokenBudget = n
		}
	}
	if v := os.Getenv("COPYSMITH_MAX_IMAGE_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Collector.MaxImageBytes = n
		}
	}
	if v := os.Getenv("COPYSMITH_LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("COPYSMITH_DB_PATH"); v != "" {
		cfg.Server.DBPath = v
	}
	if v := os.Getenv("COPYSMITH_TRACKER_API_URL"); v != "" {
		cfg.Tracker.APIURL = v
	}
	if v := os.Getenv("COPYSMITH_OAUTH_CLIENT_ID"); v != "" {
		cfg.Tracker.ClientID = v
	}
	if v := os.Getenv("COPYSMITH_OAUTH_REDIRECT_URL"); v != "" {
		cfg.Tracker.RedirectURL = v
	}
}

// Validate checks config invariants.
func (c *Config) Validate() error {
	if c.Model.Name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if c.Model.Temperature < 0.0 || c.Model.Temperature > 2.0 {
		return fmt.Errorf("temperature must be between 0.0 and 2.0")
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive")
	}
	if c.Collector.LinkTokenBudget <= 0 {
		return fmt.Errorf("link token budget must be positive")
	}
	if c.Collector.MaxImageBytes <= 0 {
		return fmt.Errorf("max image bytes must be positive")
	}
	if c.Collector.FetchTimeoutSec <= 0 {
		return fmt.Errorf("fetch timeout must be positive")
	}
	if _, err := InferProvider(c.Model.Name); err != nil {
		return err
	}
	return nil
}

// GetConfig returns the current configuration by value.
func GetConfig() (Config, error) {
	mu.RLock()
	defer mu.RUnlock()
	if config == nil {
		return Config{}, fmt.Errorf("config not loaded - call LoadConfig first")
	}
	return *config, nil
}

// SetConfigForTest installs a config directly. Tests only.
func SetConfigForTest(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	config = cfg
}
