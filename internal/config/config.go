// Package config provides configuration loading and structs for the testgen server.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the system-wide config location.
const DefaultPath = "/usr/local/etc/testgen/config.yaml"

// LocalPath is the working-directory fallback when DefaultPath does not exist.
const LocalPath = "config.yaml"

// Provider names accepted in llm.provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ErrMissingAPIKey is returned by Validate when no credential was found in the environment.
var ErrMissingAPIKey = errors.New("llm API key not set")

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Session SessionConfig `yaml:"session"`
	Watch   WatchConfig   `yaml:"watch"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LLMConfig holds chat completion provider settings.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature *float64      `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
	Timeout     time.Duration `yaml:"timeout"`
	APIKeyEnv   string        `yaml:"api_key_env"`

	// APIKey is resolved from the environment and never read from or written to YAML.
	APIKey string `yaml:"-"`
}

// TemperatureOrDefault returns the sampling temperature; defaults to 0.3 when unset.
func (l *LLMConfig) TemperatureOrDefault() float64 {
	if l.Temperature != nil {
		return *l.Temperature
	}
	return DefaultTemperature
}

// APIKeyEnvNames returns the environment variables consulted for the API key, in order.
func (l *LLMConfig) APIKeyEnvNames() []string {
	names := []string{}
	if l.APIKeyEnv != "" {
		names = append(names, l.APIKeyEnv)
	}
	switch l.Provider {
	case ProviderOpenAI:
		names = append(names, "GROQ_API_KEY")
	case ProviderGemini:
		names = append(names, "GEMINI_API_KEY")
	}
	return names
}

// ResolveAPIKey sets APIKey from the first non-empty variable in APIKeyEnvNames.
func (l *LLMConfig) ResolveAPIKey(getenv func(string) string) {
	for _, name := range l.APIKeyEnvNames() {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			l.APIKey = v
			return
		}
	}
}

// SessionConfig holds in-memory session store settings.
type SessionConfig struct {
	Capacity int           `yaml:"capacity"`
	TTL      time.Duration `yaml:"ttl"`
}

// WatchConfig holds inbox directory watch settings.
type WatchConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
	Recursive   *bool    `yaml:"recursive"`
	Instruction string   `yaml:"instruction"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (w *WatchConfig) RecursiveOrDefault() bool {
	if w.Recursive != nil {
		return *w.Recursive
	}
	return true
}

// Load reads and parses the config file at path, expands paths, applies defaults and
// resolves the API key from the environment.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	for i := range cfg.Watch.Directories {
		cfg.Watch.Directories[i] = expandPath(cfg.Watch.Directories[i], configDir)
	}
	cfg.LLM.ResolveAPIKey(os.Getenv)

	return &cfg, nil
}

// Resolve loads the config at path. With an empty path it tries DefaultPath then
// LocalPath, and falls back to defaults when neither exists.
func Resolve(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	for _, candidate := range []string{DefaultPath, LocalPath} {
		if _, err := os.Stat(candidate); err == nil {
			return Load(candidate)
		}
	}
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.LLM.ResolveAPIKey(os.Getenv)
	return cfg, nil
}

// Validate reports the first configuration problem, if any.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderGemini:
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: set one of %s", ErrMissingAPIKey, strings.Join(c.LLM.APIKeyEnvNames(), ", "))
	}
	if t := c.LLM.TemperatureOrDefault(); t < 0 || t > 2 {
		return fmt.Errorf("llm temperature %.2f out of range [0, 2]", t)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm max_tokens must be positive, got %d", c.LLM.MaxTokens)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range", c.Server.Port)
	}
	if c.Session.Capacity <= 0 {
		return fmt.Errorf("session capacity must be positive, got %d", c.Session.Capacity)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
