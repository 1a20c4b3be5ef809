package model

import (
	"encoding/json"
	"time"
)

// Provenance records which generation path produced a cached menu.
type Provenance string

const (
	ProvenanceAIInitial       Provenance = "ai-initial"
	ProvenanceAIIncremental   Provenance = "ai-incremental"
	ProvenanceTemplate        Provenance = "template"
	ProvenanceGenericFallback Provenance = "generic-fallback"
)

// ValidProvenances are the allowed provenance tags.
var ValidProvenances = map[Provenance]bool{
	ProvenanceAIInitial:       true,
	ProvenanceAIIncremental:   true,
	ProvenanceTemplate:        true,
	ProvenanceGenericFallback: true,
}

// IsAI reports whether the menu came from review extraction.
func (p Provenance) IsAI() bool {
	return p == ProvenanceAIInitial || p == ProvenanceAIIncremental
}

// CachedMenuRecord is the unit of persistence, one per restaurant.
type CachedMenuRecord struct {
	RestaurantID    string
	RestaurantName  string
	Menu            Menu
	Source          Provenance
	ReviewsAnalyzed int
	LastUpdated     time.Time
	CachedAt        time.Time
}

// IsStale reports whether the record's cached-at age has reached ttl.
func (r *CachedMenuRecord) IsStale(now time.Time, ttl time.Duration) bool {
	if r == nil {
		return true
	}
	return now.Sub(r.CachedAt) >= ttl
}

// Clone returns a deep copy.
func (r *CachedMenuRecord) Clone() *CachedMenuRecord {
	if r == nil {
		return nil
	}
	out := *r
	out.Menu = r.Menu.Clone()
	return &out
}

type recordJSON struct {
	RestaurantID    string                    `json:"restaurant_id"`
	RestaurantName  string                    `json:"restaurant_name"`
	Source          Provenance                `json:"source"`
	ReviewsAnalyzed int                       `json:"reviews_analyzed"`
	LastUpdated     time.Time                 `json:"last_updated"`
	CachedAt        time.Time                 `json:"cached_at"`
	Menu            map[string]string         `json:"menu"`
	Attributes      map[string]ItemAttributes `json:"attributes,omitempty"`
}

// MarshalJSON encodes the menu in its flat form with attributes alongside.
func (r CachedMenuRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		RestaurantID:    r.RestaurantID,
		RestaurantName:  r.RestaurantName,
		Source:          r.Source,
		ReviewsAnalyzed: r.ReviewsAnalyzed,
		LastUpdated:     r.LastUpdated,
		CachedAt:        r.CachedAt,
		Menu:            r.Menu.Descriptions(),
		Attributes:      r.Menu.Attributes(),
	})
}

func (r *CachedMenuRecord) UnmarshalJSON(b []byte) error {
	var rj recordJSON
	if err := json.Unmarshal(b, &rj); err != nil {
		return err
	}
	*r = CachedMenuRecord{
		RestaurantID:    rj.RestaurantID,
		RestaurantName:  rj.RestaurantName,
		Source:          rj.Source,
		ReviewsAnalyzed: rj.ReviewsAnalyzed,
		LastUpdated:     rj.LastUpdated,
		CachedAt:        rj.CachedAt,
		Menu:            MenuFromParts(rj.Menu, rj.Attributes),
	}
	return nil
}
