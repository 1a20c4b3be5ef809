package store

import (
	"context"
	"fmt"

	"github.com/rcliao/menu-cache/internal/model"
)

// ExportAll returns every current record, optionally filtered by provenance.
func ExportAll(ctx context.Context, s Store, source model.Provenance) ([]*model.CachedMenuRecord, error) {
	return s.List(ctx, ListParams{Source: source, Limit: -1})
}

// Import stores records from an export. Each record is written as-is,
// including its cached-at time, so imported staleness is preserved.
// Records without a restaurant id or with an unknown provenance are rejected.
func Import(ctx context.Context, s Store, records []*model.CachedMenuRecord) (int, error) {
	imported := 0
	for _, rec := range records {
		if rec == nil || rec.RestaurantID == "" {
			return imported, fmt.Errorf("record %d: missing restaurant id", imported)
		}
		if !model.ValidProvenances[rec.Source] {
			return imported, fmt.Errorf("record %s: invalid source %q", rec.RestaurantID, rec.Source)
		}
		if err := s.Put(ctx, rec); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}
