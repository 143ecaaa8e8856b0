package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"confsched/internal/domain"
)

// favoritesKey is the fixed key the favorites set is stored under.
const favoritesKey = "favorites"

// Open opens (creating if needed) the sqlite database at path and ensures
// the kv table exists.
func Open(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create favorites dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return db, nil
}

type FavoritesRepository struct {
	DB *sql.DB
}

func NewFavoritesRepository(db *sql.DB) domain.FavoritesRepository {
	return &FavoritesRepository{
		DB: db,
	}
}

// Load reads the persisted favorite IDs. Returns domain.ErrNotFound when
// nothing has been saved yet.
func (r *FavoritesRepository) Load(ctx context.Context) ([]string, error) {
	query := `SELECT value FROM kv WHERE key = $1`
	var raw string
	err := r.DB.QueryRowContext(ctx, query, favoritesKey).Scan(&raw)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	return ids, nil
}

// Save writes the whole favorites set as a JSON array under the fixed key.
func (r *FavoritesRepository) Save(ctx context.Context, ids []string) error {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	query := `
		INSERT INTO kv (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value
	`
	_, err = r.DB.ExecContext(ctx, query, favoritesKey, string(raw))
	return err
}
