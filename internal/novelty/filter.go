// Package novelty decides which candidate menu items are not already on a
// menu under a different name.
package novelty

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rcliao/menu-cache/internal/embedding"
	"github.com/rcliao/menu-cache/internal/model"
)

// DefaultThreshold is the similarity above which a candidate is a duplicate.
const DefaultThreshold = 0.8

// Filter checks candidates against existing item names with embeddings.
type Filter struct {
	embedder  embedding.Embedder
	threshold float64
	logger    *slog.Logger
}

// New creates a filter. A nil embedder makes every candidate novel.
// A threshold <= 0 selects DefaultThreshold.
func New(embedder embedding.Embedder, threshold float64, logger *slog.Logger) *Filter {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{embedder: embedder, threshold: threshold, logger: logger}
}

// FilterNovel returns the subset of candidates whose names are not similar
// to any existing name. With no existing names every candidate is novel and
// no embeddings are computed. An embedding failure never drops a candidate.
func (f *Filter) FilterNovel(ctx context.Context, candidates model.Menu, existing []string) model.Menu {
	if len(existing) == 0 {
		return candidates.Clone()
	}

	exact := make(map[string]bool, len(existing))
	for _, name := range existing {
		exact[model.NormalizeName(name)] = true
	}

	novel := model.Menu{}
	for _, name := range candidates.Names() {
		if exact[model.NormalizeName(name)] {
			continue
		}
		dup, err := f.isDuplicate(ctx, name, existing)
		if err != nil {
			f.logger.Warn("Novelty check failed, keeping candidate", "item", name, "error", err)
		}
		if !dup {
			novel.Add(candidates[name])
		}
	}
	return novel
}

// isDuplicate embeds the candidate together with every existing name in one
// call and reports whether any similarity exceeds the threshold.
func (f *Filter) isDuplicate(ctx context.Context, candidate string, existing []string) (bool, error) {
	if f.embedder == nil {
		return false, fmt.Errorf("no embedder configured")
	}

	texts := make([]string, 0, len(existing)+1)
	texts = append(texts, candidate)
	texts = append(texts, existing...)

	vecs, err := f.embedder.Embed(ctx, texts)
	if err != nil {
		return false, err
	}
	if len(vecs) != len(texts) {
		return false, fmt.Errorf("embedding count mismatch: got %d, want %d", len(vecs), len(texts))
	}

	for i, vec := range vecs[1:] {
		sim := embedding.CosineSimilarity(vecs[0], vec)
		if sim > f.threshold {
			f.logger.Debug("Candidate matches existing item",
				"item", candidate, "existing", existing[i], "similarity", sim)
			return true, nil
		}
	}
	return false, nil
}
