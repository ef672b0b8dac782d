// Package sites keeps a small catalog of named observation sites in a
// SQLite database so batch inputs can reference locations by name instead
// of repeating coordinates.
package sites

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// ErrNotFound reports a lookup for a name the catalog does not contain.
var ErrNotFound = errors.New("sites: no such site")

// Site is one catalog entry. Latitude and longitude are geodetic degrees,
// height is kilometers above the surface.
type Site struct {
	Name     string  `plist:"name" json:"name"`
	Lat      float64 `plist:"lat" json:"lat"`
	Lon      float64 `plist:"lon" json:"lon"`
	HeightKm float64 `plist:"height_km" json:"height_km"`
}

const schema = `CREATE TABLE IF NOT EXISTS sites (
	name TEXT PRIMARY KEY COLLATE NOCASE,
	lat REAL NOT NULL,
	lon REAL NOT NULL,
	height_km REAL NOT NULL
);`

// DB wraps the catalog database.
type DB struct {
	db *sql.DB
}

// Open opens (or creates) the catalog at path.
func Open(path string) (*DB, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sites: empty database path")
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sites: ensure directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)")
	if err != nil {
		return nil, fmt.Errorf("sites: open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sites: create schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the catalog.
func (d *DB) Close() error { return d.db.Close() }

// Upsert inserts or replaces a site by name.
func (d *DB) Upsert(s Site) error {
	name := strings.TrimSpace(s.Name)
	if name == "" {
		return errors.New("sites: site name is empty")
	}
	_, err := d.db.Exec(
		`INSERT INTO sites (name, lat, lon, height_km) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET lat=excluded.lat, lon=excluded.lon, height_km=excluded.height_km`,
		name, s.Lat, s.Lon, s.HeightKm)
	if err != nil {
		return fmt.Errorf("sites: upsert %s: %w", name, err)
	}
	return nil
}

// Lookup returns the site with the given name, matched case-insensitively.
func (d *DB) Lookup(name string) (Site, error) {
	var s Site
	row := d.db.QueryRow(
		`SELECT name, lat, lon, height_km FROM sites WHERE name = ?`,
		strings.TrimSpace(name))
	err := row.Scan(&s.Name, &s.Lat, &s.Lon, &s.HeightKm)
	if errors.Is(err, sql.ErrNoRows) {
		return Site{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	if err != nil {
		return Site{}, fmt.Errorf("sites: lookup %s: %w", name, err)
	}
	return s, nil
}

// List returns all sites ordered by name.
func (d *DB) List() ([]Site, error) {
	rows, err := d.db.Query(`SELECT name, lat, lon, height_km FROM sites ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sites: list: %w", err)
	}
	defer rows.Close()
	var out []Site
	for rows.Next() {
		var s Site
		if err := rows.Scan(&s.Name, &s.Lat, &s.Lon, &s.HeightKm); err != nil {
			return nil, fmt.Errorf("sites: scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Count returns the number of sites in the catalog.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM sites`).Scan(&n); err != nil {
		return 0, fmt.Errorf("sites: count: %w", err)
	}
	return n, nil
}
