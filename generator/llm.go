package generator

import (
	"context"
	"fmt"
	"strings"
)

// LLMClient 抽象大模型客户端，便于替换/Mock。
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	// Endpoint is the full chat-completion URL of an OpenAI-compatible gateway.
	Endpoint string
	// SessionCookie and SessionToken form the ambient credential sent to the
	// gateway in place of an API key.
	SessionCookie string
	SessionToken  string
}

// DefaultModel is used when no model is configured.
const DefaultModel = "gpt-4o-mini"

// backendErr wraps a transport or protocol failure as ErrBackend.
func backendErr(provider string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrBackend, provider, err)
}

// firstContent extracts choices[0].message.content, rejecting empty replies.
func firstContent(provider string, contents []string) (string, error) {
	if len(contents) == 0 {
		return "", fmt.Errorf("%w: %s: invalid response from API: empty choices", ErrBackend, provider)
	}
	if strings.TrimSpace(contents[0]) == "" {
		return "", fmt.Errorf("%w: %s: no code received", ErrBackend, provider)
	}
	return contents[0], nil
}
