package embedding

import (
	"context"
	"encoding/json"
	"math"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
		delta    float64
	}{
		{"identical", Vector{1, 0, 0}, Vector{1, 0, 0}, 1.0, 0.001},
		{"orthogonal", Vector{1, 0, 0}, Vector{0, 1, 0}, 0.0, 0.001},
		{"opposite", Vector{1, 0, 0}, Vector{-1, 0, 0}, -1.0, 0.001},
		{"similar", Vector{1, 1, 0}, Vector{1, 0, 0}, 0.707, 0.01},
		{"empty", Vector{}, Vector{}, 0.0, 0},
		{"nil", nil, Vector{1}, 0.0, 0},
		{"different lengths", Vector{1, 0}, Vector{1, 0, 0}, 0.0, 0},
		{"zero vector", Vector{0, 0, 0}, Vector{1, 0, 0}, 0.0, 0},
		{"both zero", Vector{0, 0}, Vector{0, 0}, 0.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CosineSimilarity(tt.a, tt.b)
			if math.Abs(got-tt.expected) > tt.delta {
				t.Errorf("CosineSimilarity(%v, %v) = %f, want %f (±%f)", tt.a, tt.b, got, tt.expected, tt.delta)
			}
		})
	}
}

func TestCosineSimilarity_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		n := 1 + r.Intn(16)
		a, b := make(Vector, n), make(Vector, n)
		for j := range a {
			a[j] = float32(r.NormFloat64() * 100)
			b[j] = float32(r.NormFloat64() * 100)
		}

		ab, ba := CosineSimilarity(a, b), CosineSimilarity(b, a)
		if ab != ba {
			t.Fatalf("not symmetric: %f vs %f", ab, ba)
		}
		if ab < -1 || ab > 1 {
			t.Fatalf("out of range: %f", ab)
		}
		if self := CosineSimilarity(a, a); math.Abs(self-1) > 1e-9 {
			t.Fatalf("self similarity = %f, want 1", self)
		}
	}
}

func TestCohereEmbedder_Batch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer key" {
			t.Errorf("unexpected auth header %q", got)
		}
		var req cohereEmbedRequest
		json.NewDecoder(r.Body).Decode(&req)
		out := cohereEmbedResponse{}
		for i := range req.Texts {
			out.Embeddings = append(out.Embeddings, Vector{float32(i + 1), 0})
		}
		json.NewEncoder(w).Encode(out)
	}))
	defer srv.Close()

	e := NewCohereEmbedder(srv.URL, "key", "", 0)
	vecs, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if len(vecs) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vecs))
	}
	if vecs[2][0] != 3 {
		t.Errorf("vectors out of order: %v", vecs)
	}
}

func TestCohereEmbedder_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewCohereEmbedder(srv.URL, "key", "", 0).Embed(context.Background(), []string{"a"})
	if err == nil {
		t.Fatal("expected error on 429")
	}
}

func TestOllamaEmbedder_CountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Embeddings: []Vector{{1, 2}}})
	}))
	defer srv.Close()

	_, err := NewOllamaEmbedder(srv.URL, "", 0).Embed(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error when provider returns fewer vectors than texts")
	}
}

func TestOpenAIEmbedder_ReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"model":  "text-embedding-3-small",
			"data": []map[string]any{
				{"object": "embedding", "index": 1, "embedding": []float32{0, 1}},
				{"object": "embedding", "index": 0, "embedding": []float32{1, 0}},
			},
		})
	}))
	defer srv.Close()

	vecs, err := NewOpenAIEmbedder(srv.URL, "key", "", 0).Embed(context.Background(), []string{"x", "y"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	if vecs[0][0] != 1 || vecs[1][1] != 1 {
		t.Errorf("expected vectors ordered by index, got %v", vecs)
	}
}

func TestNew_Disabled(t *testing.T) {
	e, err := New(Options{})
	if err != nil || e != nil {
		t.Errorf("expected nil embedder when no provider configured, got %v, %v", e, err)
	}

	e, err = New(Options{Provider: "cohere"})
	if err != nil || e != nil {
		t.Errorf("expected nil embedder when credential missing, got %v, %v", e, err)
	}

	if _, err := New(Options{Provider: "bogus"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}
