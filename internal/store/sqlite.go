package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/menu-cache/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		path:    dbPath,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS menu_cache (
		restaurant_id    TEXT PRIMARY KEY,
		restaurant_name  TEXT NOT NULL DEFAULT '',
		source           TEXT NOT NULL,
		reviews_analyzed INTEGER NOT NULL DEFAULT 0,
		item_count       INTEGER NOT NULL DEFAULT 0,
		record           TEXT NOT NULL,
		version          INTEGER NOT NULL DEFAULT 1,
		revision_id      TEXT NOT NULL,
		last_updated     TEXT NOT NULL,
		cached_at        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_menu_cache_source ON menu_cache(source);
	CREATE INDEX IF NOT EXISTS idx_menu_cache_cached ON menu_cache(cached_at DESC);

	CREATE TABLE IF NOT EXISTS menu_revisions (
		id               TEXT PRIMARY KEY,
		restaurant_id    TEXT NOT NULL,
		version          INTEGER NOT NULL,
		supersedes       TEXT,
		source           TEXT NOT NULL,
		reviews_analyzed INTEGER NOT NULL DEFAULT 0,
		item_count       INTEGER NOT NULL DEFAULT 0,
		record           TEXT NOT NULL,
		created_at       TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_revisions_restaurant ON menu_revisions(restaurant_id, version DESC);

	CREATE TABLE IF NOT EXISTS menu_items (
		restaurant_id TEXT NOT NULL,
		name          TEXT NOT NULL,
		description   TEXT NOT NULL DEFAULT '',
		category      TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (restaurant_id, name)
	);
	CREATE INDEX IF NOT EXISTS idx_menu_items_name ON menu_items(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.CachedMenuRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT record FROM menu_cache WHERE restaurant_id = ?`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) Put(ctx context.Context, rec *model.CachedMenuRecord) error {
	if rec == nil || rec.RestaurantID == "" {
		return errors.New("record requires a restaurant id")
	}
	recJSON, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	now := time.Now().UTC()
	id := s.newID()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Previous revision, if any
	var prevID string
	var prevVersion int
	err = tx.QueryRowContext(ctx,
		`SELECT id, version FROM menu_revisions
		 WHERE restaurant_id = ?
		 ORDER BY version DESC LIMIT 1`, rec.RestaurantID).Scan(&prevID, &prevVersion)

	version := 1
	var supersedes *string
	if err == nil {
		version = prevVersion + 1
		supersedes = &prevID
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read previous revision: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO menu_revisions (id, restaurant_id, version, supersedes, source, reviews_analyzed, item_count, record, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.RestaurantID, version, supersedes, string(rec.Source), rec.ReviewsAnalyzed,
		len(rec.Menu), string(recJSON), formatTime(now))
	if err != nil {
		return fmt.Errorf("insert revision: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO menu_cache (restaurant_id, restaurant_name, source, reviews_analyzed, item_count, record, version, revision_id, last_updated, cached_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(restaurant_id) DO UPDATE SET
		   restaurant_name = excluded.restaurant_name,
		   source = excluded.source,
		   reviews_analyzed = excluded.reviews_analyzed,
		   item_count = excluded.item_count,
		   record = excluded.record,
		   version = excluded.version,
		   revision_id = excluded.revision_id,
		   last_updated = excluded.last_updated,
		   cached_at = excluded.cached_at`,
		rec.RestaurantID, rec.RestaurantName, string(rec.Source), rec.ReviewsAnalyzed, len(rec.Menu),
		string(recJSON), version, id, formatTime(rec.LastUpdated), formatTime(rec.CachedAt))
	if err != nil {
		return fmt.Errorf("upsert menu: %w", err)
	}

	// Item index for search
	if _, err := tx.ExecContext(ctx, `DELETE FROM menu_items WHERE restaurant_id = ?`, rec.RestaurantID); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for _, item := range rec.Menu.Items() {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO menu_items (restaurant_id, name, description, category) VALUES (?, ?, ?, ?)`,
			rec.RestaurantID, item.Name, item.Description, item.Category)
		if err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
	}

	return tx.Commit()
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM menu_cache WHERE restaurant_id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx, `DELETE FROM menu_items WHERE restaurant_id = ?`, id)
	return err
}

func (s *SQLiteStore) List(ctx context.Context, p ListParams) ([]*model.CachedMenuRecord, error) {
	var where []string
	var args []interface{}

	if p.Source != "" {
		where = append(where, "source = ?")
		args = append(args, string(p.Source))
	}

	query := `SELECT record FROM menu_cache`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY cached_at DESC, restaurant_id"
	if limit := p.limit(); limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*model.CachedMenuRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) History(ctx context.Context, id string, limit int) ([]Revision, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, restaurant_id, version, supersedes, source, reviews_analyzed, item_count, record, created_at
		 FROM menu_revisions WHERE restaurant_id = ?
		 ORDER BY version DESC LIMIT ?`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var revs []Revision
	for rows.Next() {
		var r Revision
		var supersedes sql.NullString
		var source, recJSON, createdAt string
		if err := rows.Scan(&r.ID, &r.RestaurantID, &r.Version, &supersedes, &source,
			&r.ReviewsAnalyzed, &r.ItemCount, &recJSON, &createdAt); err != nil {
			return nil, err
		}
		r.Source = model.Provenance(source)
		if supersedes.Valid {
			r.Supersedes = supersedes.String
		}
		r.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		var rec model.CachedMenuRecord
		if err := json.Unmarshal([]byte(recJSON), &rec); err == nil {
			r.Record = &rec
		}
		revs = append(revs, r)
	}
	return revs, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (*model.CachedMenuRecord, error) {
	var recJSON string
	if err := row.Scan(&recJSON); err != nil {
		return nil, err
	}
	var rec model.CachedMenuRecord
	if err := json.Unmarshal([]byte(recJSON), &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// timeLayout has a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
