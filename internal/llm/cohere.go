package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// CohereGenerator calls Cohere's v1 chat endpoint.
type CohereGenerator struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type cohereChatRequest struct {
	Model       string  `json:"model"`
	Message     string  `json:"message"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Temperature float64 `json:"temperature"`
}

type cohereChatResponse struct {
	Text string `json:"text"`
}

// NewCohereGenerator creates a Cohere generator. Default model: command-r.
func NewCohereGenerator(baseURL, apiKey, model string, timeout time.Duration) *CohereGenerator {
	if baseURL == "" {
		baseURL = "https://api.cohere.ai/v1"
	}
	if model == "" {
		model = "command-r"
	}
	return &CohereGenerator{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *CohereGenerator) Name() string { return "cohere" }

func (g *CohereGenerator) Generate(ctx context.Context, r Request) (string, error) {
	body, err := json.Marshal(cohereChatRequest{
		Model:       g.model,
		Message:     r.Prompt,
		MaxTokens:   r.MaxTokens,
		Temperature: r.Temperature,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

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

	var out cohereChatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", err
	}
	if out.Text == "" {
		return "", errors.New("empty cohere response")
	}
	return out.Text, nil
}

// maxResponseSize limits provider response bodies.
const maxResponseSize = 1 << 20

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
