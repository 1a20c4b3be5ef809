package store

import (
	"context"
	"os"

	"github.com/rcliao/menu-cache/internal/model"
)

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context) (*Stats, error) {
	st := &Stats{Backend: "sqlite", Path: s.path}

	// DB file size
	if info, err := os.Stat(s.path); err == nil {
		st.SizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(item_count), 0) FROM menu_cache`).Scan(&st.Restaurants, &st.Items)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM menu_revisions`).Scan(&st.Revisions)

	rows, err := s.db.QueryContext(ctx, `
		SELECT source, COUNT(*) as cnt
		FROM menu_cache
		GROUP BY source ORDER BY cnt DESC, source`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ss SourceStats
		var source string
		rows.Scan(&source, &ss.Count)
		ss.Source = model.Provenance(source)
		st.BySource = append(st.BySource, ss)
	}

	return st, nil
}
