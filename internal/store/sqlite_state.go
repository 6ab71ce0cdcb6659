package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"wishlist-cli/internal/model"

	_ "modernc.org/sqlite"
)

func (s Store) openSQLite(ctx context.Context) (*sql.DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.sqlitePath())
	if err != nil {
		return nil, err
	}
	// WAL enables one writer + many readers; busy_timeout helps avoid "database is locked"
	// when the TUI and `wishlist serve` share a workspace.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS state_meta (
			k TEXT PRIMARY KEY,
			v TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS actors (
			id TEXT PRIMARY KEY,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS lists (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			owner_actor_id TEXT NOT NULL,
			archived INTEGER NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			list_id TEXT NOT NULL,
			sort_order INTEGER NOT NULL,
			title TEXT NOT NULL,
			archived INTEGER NOT NULL,
			owner_actor_id TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_list ON items(list_id, sort_order);`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			entity_id TEXT NOT NULL,
			type TEXT NOT NULL,
			actor_id TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			issued_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_entity ON events(entity_id, issued_at_unixms);`,
		`CREATE INDEX IF NOT EXISTS idx_events_issued ON events(issued_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return err
		}
	}
	return nil
}

// LoadSQLite loads the workspace state from <dir>/wishlist.sqlite.
func (s Store) LoadSQLite(ctx context.Context) (*DB, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return loadStateFromSQLite(ctx, db)
}

func (s Store) SaveSQLite(ctx context.Context, st *DB) error {
	if st == nil {
		return errors.New("nil db")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	meta := map[string]string{
		"version":          strconv.Itoa(st.Version),
		"current_actor_id": strings.TrimSpace(st.CurrentActorID),
		"current_list_id":  strings.TrimSpace(st.CurrentListID),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO state_meta(k, v) VALUES(?, ?)`, k, v); err != nil {
			return err
		}
	}

	// Replace-all: the state is small and every write goes through one transaction.
	for _, t := range []string{"actors", "lists", "items"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+t); err != nil {
			return err
		}
	}

	nowMs := time.Now().UTC().UnixMilli()
	for _, a := range st.Actors {
		raw, _ := json.Marshal(a)
		if _, err := tx.ExecContext(ctx, `INSERT INTO actors(id, json, updated_at_unixms) VALUES(?, ?, ?)`, a.ID, string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, l := range st.Lists {
		raw, _ := json.Marshal(l)
		if _, err := tx.ExecContext(ctx, `INSERT INTO lists(id, name, owner_actor_id, archived, json, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?)`,
			l.ID, l.Name, l.OwnerActorID, boolToInt(l.Archived), string(raw), nowMs); err != nil {
			return err
		}
	}
	for _, it := range st.Items {
		if err := insertItem(ctx, tx, it, nowMs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertItem(ctx context.Context, tx *sql.Tx, it model.Item, nowMs int64) error {
	raw, err := json.Marshal(it)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO items(
		id, list_id, sort_order, title, archived, owner_actor_id, json, updated_at_unixms
	) VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		it.ID, it.ListID, it.SortOrder, it.Title, boolToInt(it.Archived), strings.TrimSpace(it.OwnerActorID), string(raw), nowMs,
	)
	return err
}

// WriteRanks durably stores a rank assignment for items of one list in a single
// transaction. Every id must belong to listID; callers validate permissions and the
// permutation beforehand (see mutate.ApplyOrder).
func (s Store) WriteRanks(ctx context.Context, listID string, ranks []model.RankUpdate) error {
	listID = strings.TrimSpace(listID)
	if listID == "" {
		return errors.New("missing list id")
	}
	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, r := range ranks {
		var js string
		err := tx.QueryRowContext(ctx, `SELECT json FROM items WHERE id = ? AND list_id = ?`, r.ID, listID).Scan(&js)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("item %s not in list %s", r.ID, listID)
		}
		if err != nil {
			return err
		}
		var it model.Item
		if err := json.Unmarshal([]byte(js), &it); err != nil {
			return err
		}
		it.SortOrder = r.Rank
		it.UpdatedAt = now
		raw, err := json.Marshal(it)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE items SET sort_order = ?, json = ?, updated_at_unixms = ? WHERE id = ?`,
			r.Rank, string(raw), now.UnixMilli(), r.ID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func loadStateFromSQLite(ctx context.Context, db *sql.DB) (*DB, error) {
	out := &DB{Version: 1}

	readMeta := func(k string) string {
		var v string
		_ = db.QueryRowContext(ctx, `SELECT v FROM state_meta WHERE k = ?`, k).Scan(&v)
		return strings.TrimSpace(v)
	}
	if v := readMeta("version"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			out.Version = n
		}
	}
	out.CurrentActorID = readMeta("current_actor_id")
	out.CurrentListID = readMeta("current_list_id")

	var err error
	if out.Actors, err = readJSONRows[model.Actor](ctx, db, `SELECT json FROM actors`); err != nil {
		return nil, err
	}
	if out.Lists, err = readJSONRows[model.List](ctx, db, `SELECT json FROM lists`); err != nil {
		return nil, err
	}
	if out.Items, err = readJSONRows[model.Item](ctx, db, `SELECT json FROM items ORDER BY list_id, sort_order`); err != nil {
		return nil, err
	}

	// Ensure nil slices are empty for stable callers.
	if out.Actors == nil {
		out.Actors = []model.Actor{}
	}
	if out.Lists == nil {
		out.Lists = []model.List{}
	}
	if out.Items == nil {
		out.Items = []model.Item{}
	}
	return out, nil
}

func readJSONRows[T any](ctx context.Context, db *sql.DB, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		var js string
		if err := rows.Scan(&js); err != nil {
			return nil, err
		}
		var v T
		if err := json.Unmarshal([]byte(js), &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
