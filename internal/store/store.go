package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wishlist-cli/internal/model"
)

const (
	dirName        = ".wishlist"
	sqliteFileName = "wishlist.sqlite"
)

type DB struct {
	Version        int           `json:"version"`
	CurrentActorID string        `json:"currentActorId,omitempty"`
	CurrentListID  string        `json:"currentListId,omitempty"`
	Actors         []model.Actor `json:"actors"`
	Lists          []model.List  `json:"lists"`
	Items          []model.Item  `json:"items"`
}

type Store struct {
	Dir string
}

func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, dirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the nearest .wishlist directory walking up from the working
// directory, or ./.wishlist when none exists yet.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, dirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(filepath.Clean(s.Dir), sqliteFileName)
}

// DBPath is the path of the workspace database file (watched by the TUI).
func (s Store) DBPath() string { return s.sqlitePath() }

func (s Store) Load() (*DB, error) {
	return s.LoadContext(context.Background())
}

func (s Store) LoadContext(ctx context.Context) (*DB, error) {
	if err := s.Ensure(); err != nil {
		return nil, err
	}
	return s.LoadSQLite(ctx)
}

func (s Store) Save(db *DB) error {
	if err := s.Ensure(); err != nil {
		return err
	}
	return s.SaveSQLite(context.Background(), db)
}

// NextID returns a fresh random id with the given prefix (item-xxxxxx, list-xxxxxxxx, ...).
func (s Store) NextID(db *DB, prefix string) string {
	for i := 0; i < 200; i++ {
		id, err := newRandomID(prefix)
		if err != nil {
			break
		}
		if !idExists(db, id) {
			return id
		}
	}
	// Entropy failed or we kept colliding: fall back to a sequential suffix.
	n := len(db.Actors) + len(db.Lists) + len(db.Items) + 1
	for idExists(db, fmt.Sprintf("%s-%d", prefix, n)) {
		n++
	}
	return fmt.Sprintf("%s-%d", prefix, n)
}

func (db *DB) FindActor(id string) (*model.Actor, bool) {
	for i := range db.Actors {
		if db.Actors[i].ID == id {
			return &db.Actors[i], true
		}
	}
	return nil, false
}

// HumanUserIDForActor returns the owning human user id for an actor.
// - human actor => itself
// - agent actor => actor.UserID (required)
func (db *DB) HumanUserIDForActor(actorID string) (string, bool) {
	a, ok := db.FindActor(actorID)
	if !ok {
		return "", false
	}
	switch a.Kind {
	case model.ActorKindHuman:
		return a.ID, true
	case model.ActorKindAgent:
		if a.UserID == nil || *a.UserID == "" {
			return "", false
		}
		return *a.UserID, true
	default:
		return "", false
	}
}

func (db *DB) FindList(id string) (*model.List, bool) {
	for i := range db.Lists {
		if db.Lists[i].ID == id {
			return &db.Lists[i], true
		}
	}
	return nil, false
}

func (db *DB) FindItem(id string) (*model.Item, bool) {
	for i := range db.Items {
		if db.Items[i].ID == id {
			return &db.Items[i], true
		}
	}
	return nil, false
}

// ListItems returns copies of the live (non-archived) items of a list in display order.
func (db *DB) ListItems(listID string) []model.Item {
	if db == nil {
		return nil
	}
	listID = strings.TrimSpace(listID)
	out := []model.Item{}
	for _, it := range db.Items {
		if it.ListID != listID || it.Archived {
			continue
		}
		out = append(out, it)
	}
	SortItems(out)
	return out
}

func NormalizeActorKind(s string) (model.ActorKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "human":
		return model.ActorKindHuman, nil
	case "agent":
		return model.ActorKindAgent, nil
	default:
		return "", fmt.Errorf("invalid actor kind: %q (expected human|agent)", s)
	}
}
