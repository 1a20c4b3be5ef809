// Package embedding provides a pluggable interface for text embedding providers.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Vector is a float32 embedding vector.
type Vector = []float32

// Embedder generates embedding vectors for a batch of texts in one call.
// The result has one vector per input text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([]Vector, error)
}

// CosineSimilarity computes cosine similarity between two vectors.
// It returns 0 when either vector is empty, the lengths differ, or either
// has zero magnitude.
func CosineSimilarity(a, b Vector) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// rounding can push parallel vectors just past ±1
	return math.Max(-1, math.Min(1, sim))
}

const defaultTimeout = 10 * time.Second

func checkCount(got, want int) error {
	if got != want {
		return fmt.Errorf("embedding count mismatch: got %d, want %d", got, want)
	}
	return nil
}

// --- Cohere Provider ---

// CohereEmbedder uses Cohere's embed endpoint.
type CohereEmbedder struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

type cohereEmbedRequest struct {
	Texts     []string `json:"texts"`
	Model     string   `json:"model"`
	InputType string   `json:"input_type"`
}

type cohereEmbedResponse struct {
	Embeddings []Vector `json:"embeddings"`
}

// NewCohereEmbedder creates an embedder using Cohere's v1 embed API.
// Default model: embed-english-v3.0.
func NewCohereEmbedder(baseURL, apiKey, model string, timeout time.Duration) *CohereEmbedder {
	if baseURL == "" {
		baseURL = "https://api.cohere.ai/v1"
	}
	if model == "" {
		model = "embed-english-v3.0"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &CohereEmbedder{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *CohereEmbedder) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, _ := json.Marshal(cohereEmbedRequest{Texts: texts, Model: e.model, InputType: "search_document"})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cohere request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("cohere error %d: %s", resp.StatusCode, string(b))
	}

	var result cohereEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if err := checkCount(len(result.Embeddings), len(texts)); err != nil {
		return nil, err
	}
	return result.Embeddings, nil
}

// --- Ollama Provider ---

// OllamaEmbedder uses a local Ollama instance for embeddings.
type OllamaEmbedder struct {
	baseURL string
	model   string
	client  *http.Client
}

type ollamaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaResponse struct {
	Embeddings []Vector `json:"embeddings"`
}

// NewOllamaEmbedder creates an embedder using Ollama's batch embed API.
// Default model: nomic-embed-text.
func NewOllamaEmbedder(baseURL, model string, timeout time.Duration) *OllamaEmbedder {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "nomic-embed-text"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OllamaEmbedder{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	body, _ := json.Marshal(ollamaRequest{Model: e.model, Input: texts})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("ollama error %d: %s", resp.StatusCode, string(b))
	}

	var result ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	if err := checkCount(len(result.Embeddings), len(texts)); err != nil {
		return nil, err
	}
	return result.Embeddings, nil
}

// --- OpenAI-compatible Provider ---

// OpenAIEmbedder uses any OpenAI-compatible embedding API.
type OpenAIEmbedder struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIEmbedder creates an embedder using an OpenAI-compatible API.
func NewOpenAIEmbedder(baseURL, apiKey, model string, timeout time.Duration) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if err := checkCount(len(resp.Data), len(texts)); err != nil {
		return nil, err
	}

	out := make([]Vector, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai returned out-of-range index %d", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}

// --- Factory ---

// Options selects and configures a provider.
type Options struct {
	Provider string // "cohere" | "openai" | "ollama" | "" (disabled)
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// New creates an embedder from options. It returns nil when embeddings are
// disabled or the selected provider has no credential.
func New(opts Options) (Embedder, error) {
	switch opts.Provider {
	case "":
		return nil, nil
	case "cohere":
		if opts.APIKey == "" {
			return nil, nil
		}
		return NewCohereEmbedder(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout), nil
	case "openai":
		if opts.APIKey == "" {
			return nil, nil
		}
		return NewOpenAIEmbedder(opts.BaseURL, opts.APIKey, opts.Model, opts.Timeout), nil
	case "ollama":
		return NewOllamaEmbedder(opts.BaseURL, opts.Model, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", opts.Provider)
	}
}
