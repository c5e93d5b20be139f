// Package prefstore persists the small set of durable user preferences:
// favorited vendors, the auto-favorite-vendor filter flag, the remembered
// before/after gallery side per portfolio, and the session token.
//
// Each preference is a single scalar or list with no cross-field
// invariant, so every setter writes through immediately and there is no
// batching or transaction spanning fields.
package prefstore

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/false0brian/hometypemap/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS favorite_vendors (
	vendor_id INTEGER PRIMARY KEY,
	position  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS gallery_sides (
	portfolio_id INTEGER PRIMARY KEY,
	side         TEXT NOT NULL
);
`

const (
	keyAutoFilter = "auto_favorite_vendor_filter"
	keyAuthToken  = "auth_token"
)

// Store is the SQLite-backed preference store.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and if needed creates) the preferences database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening preferences database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// OpenDefault opens the store under the given state directory.
func OpenDefault(stateDir string) (*Store, error) {
	return Open(filepath.Join(stateDir, "prefs.db"))
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// FavoriteVendors returns the favorited vendor ids in saved order.
func (s *Store) FavoriteVendors() ([]int64, error) {
	rows, err := s.db.Query(`SELECT vendor_id FROM favorite_vendors ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("reading favorite vendors: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetFavoriteVendors replaces the favorite vendor list.
func (s *Store) SetFavoriteVendors(ids []int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM favorite_vendors`); err != nil {
		return err
	}
	for i, id := range ids {
		if _, err := tx.Exec(`INSERT INTO favorite_vendors (vendor_id, position) VALUES (?, ?)`, id, i); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// AddFavoriteVendor appends a vendor unless already present.
func (s *Store) AddFavoriteVendor(id int64) error {
	ids, err := s.FavoriteVendors()
	if err != nil {
		return err
	}
	for _, existing := range ids {
		if existing == id {
			return nil
		}
	}
	return s.SetFavoriteVendors(append(ids, id))
}

// AutoFilter reports whether the favorite-vendor auto filter is enabled.
// Missing value defaults to false.
func (s *Store) AutoFilter() (bool, error) {
	v, err := s.getSetting(keyAutoFilter)
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

// SetAutoFilter stores the auto filter flag.
func (s *Store) SetAutoFilter(on bool) error {
	v := "0"
	if on {
		v = "1"
	}
	return s.setSetting(keyAutoFilter, v)
}

// FavoritePrefs loads the two fields filter resolution needs.
func (s *Store) FavoritePrefs() (model.FavoritePrefs, error) {
	ids, err := s.FavoriteVendors()
	if err != nil {
		return model.FavoritePrefs{}, err
	}
	auto, err := s.AutoFilter()
	if err != nil {
		return model.FavoritePrefs{}, err
	}
	return model.FavoritePrefs{VendorIDs: ids, AutoFilter: auto}, nil
}

// GallerySide returns the remembered side for a portfolio, or ok=false if
// none was stored.
func (s *Store) GallerySide(portfolioID int64) (model.GallerySide, bool, error) {
	var side string
	err := s.db.QueryRow(`SELECT side FROM gallery_sides WHERE portfolio_id = ?`, portfolioID).Scan(&side)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SideAfter, false, nil
	}
	if err != nil {
		return model.SideAfter, false, err
	}
	if side == "before" {
		return model.SideBefore, true, nil
	}
	return model.SideAfter, true, nil
}

// SetGallerySide remembers the last chosen side for a portfolio.
func (s *Store) SetGallerySide(portfolioID int64, side model.GallerySide) error {
	_, err := s.db.Exec(
		`INSERT INTO gallery_sides (portfolio_id, side) VALUES (?, ?)
		 ON CONFLICT(portfolio_id) DO UPDATE SET side = excluded.side`,
		portfolioID, side.String())
	return err
}

// AuthToken returns the persisted session token ("" when signed out).
func (s *Store) AuthToken() (string, error) {
	return s.getSetting(keyAuthToken)
}

// SetAuthToken persists the session token; empty clears it.
func (s *Store) SetAuthToken(token string) error {
	if token == "" {
		_, err := s.db.Exec(`DELETE FROM settings WHERE key = ?`, keyAuthToken)
		return err
	}
	return s.setSetting(keyAuthToken, token)
}

func (s *Store) getSetting(key string) (string, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return v, err
}

func (s *Store) setSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	return err
}
