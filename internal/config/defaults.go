package config

import "time"

// Defaults for the completion request.
const (
	DefaultProvider    = ProviderOpenAI
	DefaultBaseURL     = "https://api.groq.com/openai/v1"
	DefaultModel       = "llama3-70b-8192"
	DefaultGeminiModel = "gemini-1.5-flash"
	DefaultTemperature = 0.3
	DefaultMaxTokens   = 1500
	DefaultAPIKeyEnv   = "TESTGEN_API_KEY"
)

// DefaultInstruction is used by watch mode when no instruction is configured.
const DefaultInstruction = "Generate functional test cases covering every requirement in the document."

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 60 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 3 * time.Minute
	}
	if cfg.Server.RequestTimeout == 0 {
		cfg.Server.RequestTimeout = 150 * time.Second
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = DefaultProvider
	}
	if cfg.LLM.Model == "" {
		if cfg.LLM.Provider == ProviderGemini {
			cfg.LLM.Model = DefaultGeminiModel
		} else {
			cfg.LLM.Model = DefaultModel
		}
	}
	if cfg.LLM.BaseURL == "" && cfg.LLM.Provider == ProviderOpenAI {
		cfg.LLM.BaseURL = DefaultBaseURL
	}
	if cfg.LLM.Temperature == nil {
		t := DefaultTemperature
		cfg.LLM.Temperature = &t
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = DefaultMaxTokens
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 120 * time.Second
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = DefaultAPIKeyEnv
	}
	if cfg.Session.Capacity == 0 {
		cfg.Session.Capacity = 256
	}
	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = time.Hour
	}
	if cfg.Watch.Extensions == nil {
		cfg.Watch.Extensions = []string{".txt", ".log", ".csv", ".pdf", ".pptx", ".docx", ".pcap"}
	}
	if cfg.Watch.Instruction == "" {
		cfg.Watch.Instruction = DefaultInstruction
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
