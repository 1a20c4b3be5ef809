// Package store provides the cached-menu storage interface and its SQLite,
// Firestore, in-memory and disabled implementations.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/menu-cache/internal/model"
)

var (
	// ErrNotFound means no record exists for the restaurant id.
	ErrNotFound = errors.New("cached menu not found")
	// ErrStoreUnavailable means the persistence layer could not be reached.
	ErrStoreUnavailable = errors.New("menu store unavailable")
)

// ListParams holds parameters for listing cached menus.
type ListParams struct {
	Source model.Provenance // empty means any
	Limit  int              // 0 means 20, negative means no limit
}

func (p ListParams) limit() int {
	if p.Limit == 0 {
		return 20
	}
	return p.Limit
}

// Revision is one historical write of a restaurant's record.
type Revision struct {
	ID              string                  `json:"id"`
	RestaurantID    string                  `json:"restaurant_id"`
	Version         int                     `json:"version"`
	Supersedes      string                  `json:"supersedes,omitempty"`
	Source          model.Provenance        `json:"source"`
	ReviewsAnalyzed int                     `json:"reviews_analyzed"`
	ItemCount       int                     `json:"item_count"`
	CreatedAt       time.Time               `json:"created_at"`
	Record          *model.CachedMenuRecord `json:"record,omitempty"`
}

// Stats holds store statistics.
type Stats struct {
	Backend     string        `json:"backend"`
	Path        string        `json:"path,omitempty"`
	SizeBytes   int64         `json:"size_bytes,omitempty"`
	Restaurants int           `json:"restaurants"`
	Items       int           `json:"items"`
	Revisions   int           `json:"revisions"`
	BySource    []SourceStats `json:"by_source"`
}

// SourceStats holds per-provenance counts.
type SourceStats struct {
	Source model.Provenance `json:"source"`
	Count  int              `json:"count"`
}

// Store defines the cached-menu storage interface. Put is a last-write-wins
// overwrite keyed by restaurant id; every Put also appends a Revision.
type Store interface {
	// Get returns the record for id, or ErrNotFound. Staleness is not
	// evaluated here.
	Get(ctx context.Context, id string) (*model.CachedMenuRecord, error)

	// Put stores rec, replacing any record with the same restaurant id.
	Put(ctx context.Context, rec *model.CachedMenuRecord) error

	// Delete removes the current record for id. History is kept.
	Delete(ctx context.Context, id string) error

	// List returns current records, most recently cached first.
	List(ctx context.Context, p ListParams) ([]*model.CachedMenuRecord, error)

	// History returns up to limit revisions for id, newest first.
	History(ctx context.Context, id string, limit int) ([]Revision, error)

	// Stats returns store statistics.
	Stats(ctx context.Context) (*Stats, error)

	// Close closes the store.
	Close() error
}
