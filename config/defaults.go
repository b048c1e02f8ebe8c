package config

import (
	"time"

	"ai_app_generator/generator"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		ServerAddr:  ":8080",
		Concurrency: string(generator.PolicyLastWriteWins),
		RateLimit:   RateLimit{PerMinute: 30, Burst: 5},
		SessionTTL:  24 * time.Hour,
		LLM: LLMConfig{
			Provider:           ProviderFoundry,
			Model:              generator.DefaultModel,
			Endpoint:           generator.DefaultEndpoint,
			Temperature:        generator.DefaultTemperature,
			RectifyTemperature: generator.DefaultRectifyTemperature,
			Timeout:            120 * time.Second,
		},
		Rewrite: RewriteConfig{
			EndpointPlaceholders:   append([]string(nil), generator.DefaultEndpointPlaceholders...),
			CredentialPlaceholders: append([]string(nil), generator.DefaultCredentialPlaceholders...),
		},
		GitHub: GitHubConfig{
			Branch:     "main",
			APIBaseURL: "https://api.github.com",
		},
		History: HistoryConfig{
			Path: "data/history.db",
		},
	}
}

// EndpointMap builds the rewriter map for generated code.
func (c *Config) EndpointMap() generator.EndpointMap {
	endpoint := c.Rewrite.Endpoint
	if endpoint == "" {
		endpoint = c.LLM.Endpoint
	}
	return generator.EndpointMap{
		Endpoint:               endpoint,
		Credential:             c.Rewrite.Credential,
		EndpointPlaceholders:   c.Rewrite.EndpointPlaceholders,
		CredentialPlaceholders: c.Rewrite.CredentialPlaceholders,
	}
}

// PagesBase returns the configured GitHub Pages base or the
// conventional <user>.github.io/<repo> address.
func (g GitHubConfig) PagesBase() string {
	if g.PagesBaseURL != "" {
		return g.PagesBaseURL
	}
	return "https://" + g.Username + ".github.io/" + g.Repo
}
