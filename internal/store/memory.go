package store

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/rcliao/menu-cache/internal/model"
)

// MemoryStore is an in-process Store. Records are deep-copied on the way in
// and out so callers never share menus with the store.
type MemoryStore struct {
	mu        sync.RWMutex
	records   map[string]*model.CachedMenuRecord
	revisions map[string][]Revision
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:   make(map[string]*model.CachedMenuRecord),
		revisions: make(map[string][]Revision),
	}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*model.CachedMenuRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (s *MemoryStore) Put(_ context.Context, rec *model.CachedMenuRecord) error {
	if rec == nil || rec.RestaurantID == "" {
		return errors.New("record requires a restaurant id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rev := Revision{
		ID:              ulid.Make().String(),
		RestaurantID:    rec.RestaurantID,
		Version:         1,
		Source:          rec.Source,
		ReviewsAnalyzed: rec.ReviewsAnalyzed,
		ItemCount:       len(rec.Menu),
		CreatedAt:       time.Now().UTC(),
		Record:          rec.Clone(),
	}
	if prev := s.revisions[rec.RestaurantID]; len(prev) > 0 {
		last := prev[len(prev)-1]
		rev.Version = last.Version + 1
		rev.Supersedes = last.ID
	}
	s.revisions[rec.RestaurantID] = append(s.revisions[rec.RestaurantID], rev)
	s.records[rec.RestaurantID] = rec.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) List(_ context.Context, p ListParams) ([]*model.CachedMenuRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.CachedMenuRecord
	for _, rec := range s.records {
		if p.Source != "" && rec.Source != p.Source {
			continue
		}
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CachedAt.Equal(out[j].CachedAt) {
			return out[i].CachedAt.After(out[j].CachedAt)
		}
		return out[i].RestaurantID < out[j].RestaurantID
	})
	if limit := p.limit(); limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) History(_ context.Context, id string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 20
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	revs := s.revisions[id]
	var out []Revision
	for i := len(revs) - 1; i >= 0 && len(out) < limit; i-- {
		r := revs[i]
		r.Record = r.Record.Clone()
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) Stats(_ context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &Stats{Backend: "memory", Restaurants: len(s.records)}
	counts := map[model.Provenance]int{}
	for _, rec := range s.records {
		st.Items += len(rec.Menu)
		counts[rec.Source]++
	}
	for _, revs := range s.revisions {
		st.Revisions += len(revs)
	}
	for src, n := range counts {
		st.BySource = append(st.BySource, SourceStats{Source: src, Count: n})
	}
	sort.Slice(st.BySource, func(i, j int) bool {
		if st.BySource[i].Count != st.BySource[j].Count {
			return st.BySource[i].Count > st.BySource[j].Count
		}
		return st.BySource[i].Source < st.BySource[j].Source
	})
	return st, nil
}

// SearchItems implements ItemSearcher with case-insensitive substring match.
func (s *MemoryStore) SearchItems(_ context.Context, p SearchParams) ([]ItemMatch, error) {
	q := strings.ToLower(strings.TrimSpace(p.Query))
	if q == "" {
		return nil, errors.New("empty search query")
	}
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	recs, _ := s.List(context.Background(), ListParams{Source: p.Source, Limit: -1})
	var out []ItemMatch
	for _, rec := range recs {
		for _, item := range rec.Menu.Items() {
			if !strings.Contains(strings.ToLower(item.Name), q) && !strings.Contains(strings.ToLower(item.Description), q) {
				continue
			}
			out = append(out, ItemMatch{
				RestaurantID:   rec.RestaurantID,
				RestaurantName: rec.RestaurantName,
				Source:         rec.Source,
				Name:           item.Name,
				Description:    item.Description,
				Category:       item.Category,
			})
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

func (s *MemoryStore) Close() error { return nil }
