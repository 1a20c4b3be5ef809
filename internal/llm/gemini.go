package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// GeminiGenerator calls the Gemini generateContent endpoint.
type GeminiGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

// NewGeminiGenerator creates a Gemini generator. Default model: gemini-2.0-flash.
func NewGeminiGenerator(baseURL, apiKey, model string, timeout time.Duration) *GeminiGenerator {
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiGenerator{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, r Request) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": r.Prompt}}},
		},
		"generationConfig": map[string]any{
			"temperature":      r.Temperature,
			"maxOutputTokens":  r.MaxTokens,
			"responseMimeType": "application/json",
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", classifyTransport(g.Name(), err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", classifyTransport(g.Name(), err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Provider: g.Name(), Status: resp.StatusCode, Body: truncate(string(raw), 512)}
	}

	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	if err := json.Unmarshal(raw, &result); err != nil {
		return "", err
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("empty gemini response")
	}
	return result.Candidates[0].Content.Parts[0].Text, nil
}
