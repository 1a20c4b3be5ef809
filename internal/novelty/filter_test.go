package novelty

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/menu-cache/internal/embedding"
	"github.com/rcliao/menu-cache/internal/model"
)

// unitAt returns a 2-d unit vector whose cosine with [1, 0] is sim.
func unitAt(sim float64) embedding.Vector {
	return embedding.Vector{float32(sim), float32(math.Sqrt(1 - sim*sim))}
}

type stubEmbedder struct {
	vectors map[string]embedding.Vector
	err     error
	short   bool
	calls   [][]string
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([]embedding.Vector, error) {
	s.calls = append(s.calls, texts)
	if s.err != nil {
		return nil, s.err
	}
	out := make([]embedding.Vector, 0, len(texts))
	for _, t := range texts {
		v, ok := s.vectors[t]
		if !ok {
			v = embedding.Vector{0, 1}
		}
		out = append(out, v)
	}
	if s.short {
		out = out[:len(out)-1]
	}
	return out, nil
}

func menuOf(names ...string) model.Menu {
	m := model.Menu{}
	for _, n := range names {
		m.Set(n, "desc of "+n)
	}
	return m
}

func TestFilterNovel_EmptyExistingMakesNoCalls(t *testing.T) {
	emb := &stubEmbedder{}
	got := New(emb, 0, nil).FilterNovel(context.Background(), menuOf("Latte", "Mocha"), nil)

	assert.Equal(t, []string{"Latte", "Mocha"}, got.Names())
	assert.Empty(t, emb.calls)
}

func TestFilterNovel_SimilarityThreshold(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string]embedding.Vector{
		"Cafe Latte": {1, 0},
		"Croissant":  {1, 0},
		"Latte":      unitAt(0.95),
	}}
	existing := []string{"Latte"}

	got := New(emb, 0, nil).FilterNovel(context.Background(), menuOf("Cafe Latte"), existing)
	assert.Empty(t, got, "0.95 similarity is a duplicate")

	emb.vectors["Latte"] = unitAt(0.3)
	got = New(emb, 0, nil).FilterNovel(context.Background(), menuOf("Croissant"), existing)
	assert.Equal(t, []string{"Croissant"}, got.Names(), "0.3 similarity is novel")
}

func TestFilterNovel_OneBatchedCallPerCandidate(t *testing.T) {
	emb := &stubEmbedder{}
	existing := []string{"Burger", "Fries", "Shake"}

	New(emb, 0, nil).FilterNovel(context.Background(), menuOf("Onion Rings", "Hot Dog"), existing)

	require.Len(t, emb.calls, 2)
	assert.Equal(t, []string{"Hot Dog", "Burger", "Fries", "Shake"}, emb.calls[0])
	assert.Equal(t, []string{"Onion Rings", "Burger", "Fries", "Shake"}, emb.calls[1])
}

func TestFilterNovel_ExactNameSkipsEmbedding(t *testing.T) {
	emb := &stubEmbedder{}
	got := New(emb, 0, nil).FilterNovel(context.Background(), menuOf("pad  THAI"), []string{"Pad Thai"})

	assert.Empty(t, got)
	assert.Empty(t, emb.calls)
}

func TestFilterNovel_FailOpen(t *testing.T) {
	t.Run("embedder error", func(t *testing.T) {
		emb := &stubEmbedder{err: errors.New("quota exceeded")}
		got := New(emb, 0, nil).FilterNovel(context.Background(), menuOf("Taco", "Burrito"), []string{"Quesadilla"})
		assert.Equal(t, []string{"Burrito", "Taco"}, got.Names())
	})

	t.Run("wrong vector count", func(t *testing.T) {
		emb := &stubEmbedder{short: true}
		got := New(emb, 0, nil).FilterNovel(context.Background(), menuOf("Taco"), []string{"Quesadilla"})
		assert.Equal(t, []string{"Taco"}, got.Names())
	})

	t.Run("nil embedder", func(t *testing.T) {
		got := New(nil, 0, nil).FilterNovel(context.Background(), menuOf("Taco"), []string{"Quesadilla"})
		assert.Equal(t, []string{"Taco"}, got.Names())
	})
}

func TestFilterNovel_CustomThreshold(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string]embedding.Vector{
		"Cold Brew":   {1, 0},
		"Iced Coffee": unitAt(0.85),
	}}
	got := New(emb, 0.9, nil).FilterNovel(context.Background(), menuOf("Cold Brew"), []string{"Iced Coffee"})
	assert.Equal(t, []string{"Cold Brew"}, got.Names())
}

func TestFilterNovel_KeepsItemAttributes(t *testing.T) {
	candidates := model.Menu{}
	candidates.Add(model.MenuItem{Name: "Dan Dan Noodles", Description: "Numbing",
		ItemAttributes: model.ItemAttributes{Spicy: true}})

	emb := &stubEmbedder{vectors: map[string]embedding.Vector{"Dan Dan Noodles": {1, 0}}}
	got := New(emb, 0, nil).FilterNovel(context.Background(), candidates, []string{"Fried Rice"})
	require.Contains(t, got, "Dan Dan Noodles")
	assert.True(t, got["Dan Dan Noodles"].Spicy)
}
