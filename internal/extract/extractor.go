// Package extract turns free-form review text into menu items using a
// generative provider.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rcliao/menu-cache/internal/chunker"
	"github.com/rcliao/menu-cache/internal/llm"
	"github.com/rcliao/menu-cache/internal/model"
)

var (
	// ErrExtractionUnavailable means no generative provider is configured.
	ErrExtractionUnavailable = errors.New("extraction unavailable")
	// ErrMalformedResponse means the provider answered with something that
	// is not a menu object.
	ErrMalformedResponse = errors.New("malformed extraction response")
)

// Review text limits for the two prompt kinds.
const (
	maxBatchChars  = 8000
	maxSingleChars = 2000
)

// Extractor extracts menu items from reviews. A nil generator is allowed and
// makes every extraction fail with ErrExtractionUnavailable.
type Extractor struct {
	gen    llm.Generator
	logger *slog.Logger
}

// New creates an extractor.
func New(gen llm.Generator, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{gen: gen, logger: logger}
}

// Available reports whether a generative provider is configured.
func (e *Extractor) Available() bool {
	return e != nil && e.gen != nil
}

// ExtractItems extracts the items mentioned across reviewTexts. Empty input
// yields an empty menu without a provider call.
func (e *Extractor) ExtractItems(ctx context.Context, reviewTexts []string, name string, types []string) (model.Menu, error) {
	text := chunker.Pack(reviewTexts, chunker.Options{MaxChars: maxBatchChars})
	return e.run(ctx, batchPrompt, text, name, types, 800, 0.2)
}

// ExtractItemsFromSingle extracts the items mentioned in a single review.
func (e *Extractor) ExtractItemsFromSingle(ctx context.Context, reviewText, name string, types []string) (model.Menu, error) {
	text := chunker.Pack([]string{reviewText}, chunker.Options{MaxChars: maxSingleChars})
	return e.run(ctx, singlePrompt, text, name, types, 400, 0.1)
}

func (e *Extractor) run(ctx context.Context, prompt, text, name string, types []string, maxTokens int, temp float64) (model.Menu, error) {
	if text == "" {
		return model.Menu{}, nil
	}
	if !e.Available() {
		return nil, ErrExtractionUnavailable
	}

	content, err := e.gen.Generate(ctx, llm.Request{
		Prompt:      fmt.Sprintf(prompt, name, strings.Join(types, ", "), text),
		MaxTokens:   maxTokens,
		Temperature: temp,
	})
	if err != nil {
		return nil, fmt.Errorf("%s extraction: %w", e.gen.Name(), err)
	}

	menu, err := parseMenu(content)
	if err != nil {
		e.logger.Warn("Unparseable extraction response",
			"provider", e.gen.Name(), "restaurant", name, "error", err)
		return nil, err
	}

	e.logger.Debug("Extracted menu items",
		"provider", e.gen.Name(), "restaurant", name, "items", len(menu))
	return menu, nil
}

// parseMenu pulls the menu object out of a model response.
func parseMenu(content string) (model.Menu, error) {
	jsonStr := llm.ExtractJSON(content)
	if jsonStr == "" {
		return nil, fmt.Errorf("%w: no JSON object found", ErrMalformedResponse)
	}
	menu, err := model.Normalize([]byte(jsonStr))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return menu, nil
}
