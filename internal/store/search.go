package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/menu-cache/internal/model"
)

// SearchParams holds parameters for searching cached menu items.
type SearchParams struct {
	Query  string
	Source model.Provenance
	Limit  int
}

// ItemMatch is a cached menu item matching a search.
type ItemMatch struct {
	RestaurantID   string           `json:"restaurant_id"`
	RestaurantName string           `json:"restaurant_name"`
	Source         model.Provenance `json:"source"`
	Name           string           `json:"name"`
	Description    string           `json:"description"`
	Category       string           `json:"category,omitempty"`
}

// ItemSearcher is implemented by stores that can search items across
// restaurants.
type ItemSearcher interface {
	SearchItems(ctx context.Context, p SearchParams) ([]ItemMatch, error)
}

// SearchItems finds items whose name or description contains the query
// substring, across all cached restaurants.
func (s *SQLiteStore) SearchItems(ctx context.Context, p SearchParams) ([]ItemMatch, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	if strings.TrimSpace(p.Query) == "" {
		return nil, fmt.Errorf("empty search query")
	}

	query := "%" + strings.TrimSpace(p.Query) + "%"
	where := []string{"(i.name LIKE ? OR i.description LIKE ?)"}
	args := []interface{}{query, query}

	if p.Source != "" {
		where = append(where, "c.source = ?")
		args = append(args, string(p.Source))
	}

	sql := fmt.Sprintf(`
		SELECT i.restaurant_id, c.restaurant_name, c.source, i.name, i.description, i.category
		FROM menu_items i
		INNER JOIN menu_cache c ON c.restaurant_id = i.restaurant_id
		WHERE %s
		ORDER BY c.cached_at DESC, i.name
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []ItemMatch
	for rows.Next() {
		var m ItemMatch
		var source string
		if err := rows.Scan(&m.RestaurantID, &m.RestaurantName, &source, &m.Name, &m.Description, &m.Category); err != nil {
			return nil, err
		}
		m.Source = model.Provenance(source)
		results = append(results, m)
	}
	return results, rows.Err()
}
