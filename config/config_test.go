package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai_app_generator/generator"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, ProviderFoundry, cfg.LLM.Provider)
	assert.Equal(t, generator.DefaultModel, cfg.LLM.Model)
	assert.Equal(t, generator.DefaultEndpoint, cfg.LLM.Endpoint)
	assert.Equal(t, string(generator.PolicyLastWriteWins), cfg.Concurrency)
	assert.Equal(t, 120*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.TrustProxy)
	assert.Equal(t, generator.DefaultEndpointPlaceholders, cfg.Rewrite.EndpointPlaceholders)
	require.NoError(t, cfg.Validate())
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appgen.yml")

	original := DefaultConfig()
	original.LLM.Provider = ProviderOpenAI
	original.LLM.APIKey = "sk-test"
	original.LLM.Model = "gpt-4o"
	original.Concurrency = string(generator.PolicySerialize)
	original.GitHub.Repo = "apps"
	original.Rewrite.EndpointPlaceholders = []string{"https://example.invalid/v1"}

	require.NoError(t, original.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, loaded.LLM.Provider)
	assert.Equal(t, "gpt-4o", loaded.LLM.Model)
	assert.Equal(t, "sk-test", loaded.LLM.APIKey)
	assert.Equal(t, string(generator.PolicySerialize), loaded.Concurrency)
	assert.Equal(t, "apps", loaded.GitHub.Repo)
	assert.Equal(t, []string{"https://example.invalid/v1"}, loaded.Rewrite.EndpointPlaceholders)
	assert.Equal(t, original.LLM.Timeout, loaded.LLM.Timeout)
}

func TestLoadYAMLAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "appgen.yml")
	yml := `
server_addr: ":9090"
trust_proxy: true
session_ttl: 2h
llm:
  provider: mock
  timeout: 30s
rewrite:
  endpoint: https://gw.example/v1/chat/completions
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0644))

	t.Setenv("APPGEN_LLM__MODEL", "gpt-4.1-mini")
	t.Setenv("APPGEN_GITHUB__BRANCH", "gh-pages")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddr)
	assert.True(t, cfg.TrustProxy)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, ProviderMock, cfg.LLM.Provider)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, "gpt-4.1-mini", cfg.LLM.Model)
	assert.Equal(t, "gh-pages", cfg.GitHub.Branch)
	// untouched keys keep their defaults
	assert.Equal(t, generator.DefaultEndpoint, cfg.LLM.Endpoint)
	assert.Equal(t, "https://gw.example/v1/chat/completions", cfg.EndpointMap().Endpoint)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ServerAddr, cfg.ServerAddr)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("llm: [unclosed"), 0644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(*Config) {}, true},
		{"mock", func(c *Config) { c.LLM.Provider = ProviderMock }, true},
		{"unknown provider", func(c *Config) { c.LLM.Provider = "acme" }, false},
		{"empty provider", func(c *Config) { c.LLM.Provider = "" }, false},
		{"empty model", func(c *Config) { c.LLM.Model = "" }, false},
		{"openai without key", func(c *Config) { c.LLM.Provider = ProviderOpenAI }, false},
		{"deepseek without base url", func(c *Config) {
			c.LLM.Provider = ProviderDeepSeek
			c.LLM.APIKey = "k"
		}, false},
		{"foundry without endpoint", func(c *Config) { c.LLM.Endpoint = "" }, false},
		{"mock without any endpoint", func(c *Config) {
			c.LLM.Provider = ProviderMock
			c.LLM.Endpoint = ""
		}, false},
		{"negative temperature", func(c *Config) { c.LLM.Temperature = -1 }, false},
		{"bad policy", func(c *Config) { c.Concurrency = "queue" }, false},
		{"rate limit disabled", func(c *Config) { c.RateLimit = RateLimit{} }, true},
		{"negative rate limit", func(c *Config) { c.RateLimit.PerMinute = -1 }, false},
		{"sessions kept forever", func(c *Config) { c.SessionTTL = 0 }, true},
		{"negative session ttl", func(c *Config) { c.SessionTTL = -time.Minute }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestGitHubConfig(t *testing.T) {
	g := GitHubConfig{Token: "t", Username: "octo", Repo: "apps"}
	assert.True(t, g.Enabled())
	assert.Equal(t, "https://octo.github.io/apps", g.PagesBase())

	g.PagesBaseURL = "https://apps.example"
	assert.Equal(t, "https://apps.example", g.PagesBase())
	assert.False(t, GitHubConfig{Repo: "apps"}.Enabled())
}
