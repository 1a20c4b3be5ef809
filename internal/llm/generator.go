// Package llm provides generative text providers behind a single Generator
// interface. Providers make exactly one call per Generate; retry policy
// belongs to callers.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Request is one text generation request.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Generator produces text for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Options selects and configures a provider.
type Options struct {
	Provider string // "cohere" | "openai" | "gemini" | "" (disabled)
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

const defaultTimeout = 10 * time.Second

// New creates a generator from options. It returns nil when generation is
// disabled or the provider has no credential, which callers treat as
// "extraction unavailable".
func New(opts Options) (Generator, error) {
	if opts.Provider == "" || opts.APIKey == "" {
		return nil, nil
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	switch opts.Provider {
	case "cohere":
		return NewCohereGenerator(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout), nil
	case "openai":
		return NewOpenAIGenerator(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout), nil
	case "gemini":
		return NewGeminiGenerator(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", opts.Provider)
	}
}
