package config

import "time"

// Provider identifies the chat-completion backend.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderDeepSeek Provider = "deepseek"
	ProviderFoundry  Provider = "foundry"
	ProviderMock     Provider = "mock"
)

// Config is the top-level configuration, corresponding to appgen.yml.
//
// TrustProxy takes client addresses from X-Forwarded-For / X-Real-IP; enable
// it only behind a reverse proxy that overwrites those headers. SessionTTL
// drops server sessions idle for longer; zero keeps them forever.
type Config struct {
	ServerAddr      string        `yaml:"server_addr" koanf:"server_addr"`
	AllowAllOrigins bool          `yaml:"allow_all_origins" koanf:"allow_all_origins"`
	TrustProxy      bool          `yaml:"trust_proxy" koanf:"trust_proxy"`
	SessionTTL      time.Duration `yaml:"session_ttl" koanf:"session_ttl"`
	Verbose         bool          `yaml:"verbose" koanf:"verbose"`
	Concurrency     string        `yaml:"concurrency" koanf:"concurrency"`
	RateLimit       RateLimit     `yaml:"rate_limit" koanf:"rate_limit"`
	LLM             LLMConfig     `yaml:"llm" koanf:"llm"`
	Rewrite         RewriteConfig `yaml:"rewrite" koanf:"rewrite"`
	GitHub          GitHubConfig  `yaml:"github" koanf:"github"`
	History         HistoryConfig `yaml:"history" koanf:"history"`
}

// RateLimit throttles generate, rectify and deploy requests per client.
// PerMinute 0 disables it.
type RateLimit struct {
	PerMinute float64 `yaml:"per_minute" koanf:"per_minute"`
	Burst     int     `yaml:"burst" koanf:"burst"`
}

// LLMConfig configures the backend client.
type LLMConfig struct {
	Provider           Provider      `yaml:"provider" koanf:"provider"`
	Model              string        `yaml:"model" koanf:"model"`
	APIKey             string        `yaml:"api_key,omitempty" koanf:"api_key"`
	BaseURL            string        `yaml:"base_url,omitempty" koanf:"base_url"`
	Endpoint           string        `yaml:"endpoint" koanf:"endpoint"`
	SessionCookie      string        `yaml:"session_cookie,omitempty" koanf:"session_cookie"`
	SessionToken       string        `yaml:"session_token,omitempty" koanf:"session_token"`
	Temperature        float64       `yaml:"temperature" koanf:"temperature"`
	RectifyTemperature float64       `yaml:"rectify_temperature" koanf:"rectify_temperature"`
	Timeout            time.Duration `yaml:"timeout" koanf:"timeout"`
}

// RewriteConfig is the endpoint map applied to generated code. An empty
// Endpoint falls back to LLM.Endpoint.
type RewriteConfig struct {
	Endpoint               string   `yaml:"endpoint,omitempty" koanf:"endpoint"`
	Credential             string   `yaml:"credential,omitempty" koanf:"credential"`
	EndpointPlaceholders   []string `yaml:"endpoint_placeholders" koanf:"endpoint_placeholders"`
	CredentialPlaceholders []string `yaml:"credential_placeholders" koanf:"credential_placeholders"`
}

// GitHubConfig enables deployment of generated apps to a repository.
type GitHubConfig struct {
	Token        string `yaml:"token,omitempty" koanf:"token"`
	Username     string `yaml:"username,omitempty" koanf:"username"`
	Repo         string `yaml:"repo,omitempty" koanf:"repo"`
	Branch       string `yaml:"branch" koanf:"branch"`
	PagesBaseURL string `yaml:"pages_base_url,omitempty" koanf:"pages_base_url"`
	APIBaseURL   string `yaml:"api_base_url,omitempty" koanf:"api_base_url"`
}

// Enabled reports whether enough is configured to deploy.
func (g GitHubConfig) Enabled() bool {
	return g.Token != "" && g.Username != "" && g.Repo != ""
}

// HistoryConfig locates the version history database. Empty disables it.
type HistoryConfig struct {
	Path string `yaml:"path" koanf:"path"`
}
