package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/sqlflash/internal/config"
)

const defaultMaxTokens = 1024

// Settings selects and configures the provider.
type Settings struct {
	Provider string
	Model    string
	APIKey   string
	Retry    RetryConfig
	Timeout  time.Duration
}

// SettingsFrom derives provider settings from the process configuration.
func SettingsFrom(cfg config.Config) Settings {
	retry := DefaultRetryConfig()
	retry.MaxAttempts = cfg.LLMMaxRetries + 1
	return Settings{
		Provider: cfg.LLMProvider,
		Model:    cfg.LLMModel,
		APIKey:   cfg.LLMAPIKey(),
		Retry:    retry,
		Timeout:  cfg.LLMTimeout,
	}
}

// NewProvider builds the configured provider wrapped as
// caller → timeout → retry → logging → base. A missing API key or the
// "none" provider yields a provider that fails every call with
// ErrNotConfigured, so callers can degrade per their own rules.
func NewProvider(ctx context.Context, s Settings, events EventRecorder) (Provider, error) {
	base, err := newBase(ctx, s)
	if err != nil {
		return nil, err
	}
	if base == nil {
		return Unconfigured{Reason: s.Provider}, nil
	}

	var p Provider = WithLogging(base, s.Provider, events)
	p = WithRetry(p, s.Retry)
	if s.Timeout > 0 {
		p = WithTimeout(p, s.Timeout)
	}
	return p, nil
}

func newBase(ctx context.Context, s Settings) (Provider, error) {
	if s.Provider == "none" || s.Provider == "" || s.APIKey == "" {
		return nil, nil
	}

	switch s.Provider {
	case "anthropic":
		return NewAnthropicProvider(s.APIKey, s.Model)
	case "openai":
		return NewOpenAIProvider(s.APIKey, s.Model)
	case "openrouter":
		return NewOpenRouterProvider(s.APIKey, s.Model)
	case "gemini":
		return NewGeminiProvider(ctx, s.APIKey, s.Model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", s.Provider)
	}
}

// Unconfigured fails every request with ErrNotConfigured.
type Unconfigured struct {
	Reason string
}

func (u Unconfigured) Generate(context.Context, Request) (*Response, error) {
	if u.Reason == "" || u.Reason == "none" {
		return nil, fmt.Errorf("LLM_PROVIDER is none: %w", ErrNotConfigured)
	}
	return nil, fmt.Errorf("no API key set for LLM provider %q: %w", u.Reason, ErrNotConfigured)
}

func (u Unconfigured) ModelID() string { return "none" }

type timeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout bounds each Generate call, retries included.
func WithTimeout(p Provider, d time.Duration) Provider {
	return &timeoutProvider{inner: p, timeout: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.inner.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string { return t.inner.ModelID() }

// resolveModel maps a friendly name to a provider model ID. Unknown names are
// passed through so full model IDs work too.
func resolveModel(name, def string, models map[string]string) string {
	if name == "" {
		name = def
	}
	if id, ok := models[name]; ok {
		return id
	}
	return name
}

func maxTokensOr(n int) int {
	if n <= 0 {
		return defaultMaxTokens
	}
	return n
}
