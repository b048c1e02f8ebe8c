package config

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"

	"ai_app_generator/generator"
)

// EnvPrefix prefixes environment overrides: APPGEN_LLM__MODEL -> llm.model.
const EnvPrefix = "APPGEN_"

// Load reads configuration from the given YAML file, then overlays
// environment variable overrides. A .env file in the working directory is
// loaded into the environment first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] reading .env: %v", err)
	}

	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[Provider]bool{
	ProviderOpenAI:   true,
	ProviderDeepSeek: true,
	ProviderFoundry:  true,
	ProviderMock:     true,
}

// Validate checks that the configuration contains valid values.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if !validProviders[c.LLM.Provider] {
		return fmt.Errorf("invalid llm.provider %q: must be one of openai, deepseek, foundry, mock", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model is required")
	}
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.APIKey == "" {
			return fmt.Errorf("llm.api_key is required for provider openai")
		}
	case ProviderDeepSeek:
		if c.LLM.APIKey == "" || c.LLM.BaseURL == "" {
			return fmt.Errorf("llm provider deepseek requires api_key and base_url (OpenAI-compatible endpoint)")
		}
	case ProviderFoundry:
		if c.LLM.Endpoint == "" {
			return fmt.Errorf("llm.endpoint is required for provider foundry")
		}
	}
	if c.EndpointMap().Endpoint == "" {
		return fmt.Errorf("rewrite.endpoint or llm.endpoint is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.RectifyTemperature < 0 {
		return fmt.Errorf("llm temperatures must be non-negative")
	}
	if c.RateLimit.PerMinute < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate_limit values must be non-negative")
	}
	if c.LLM.Timeout < 0 {
		return fmt.Errorf("llm.timeout must be non-negative")
	}
	if c.SessionTTL < 0 {
		return fmt.Errorf("session_ttl must be non-negative")
	}
	switch generator.Policy(c.Concurrency) {
	case generator.PolicyLastWriteWins, generator.PolicySerialize:
	default:
		return fmt.Errorf("invalid concurrency %q: must be last-write-wins or serialize", c.Concurrency)
	}
	return nil
}

// Settings converts the LLM section for the generator clients.
func (c *Config) Settings() *generator.LLMSettings {
	return &generator.LLMSettings{
		Provider:      string(c.LLM.Provider),
		Model:         c.LLM.Model,
		APIKey:        c.LLM.APIKey,
		BaseURL:       c.LLM.BaseURL,
		Endpoint:      c.LLM.Endpoint,
		SessionCookie: c.LLM.SessionCookie,
		SessionToken:  c.LLM.SessionToken,
	}
}
