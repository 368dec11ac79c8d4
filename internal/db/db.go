package db

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps a database connection.
type DB struct {
	*sql.DB
}

// Place is one gazetteer row used for location autocomplete.
type Place struct {
	Name      string  `json:"name"`
	State     string  `json:"state"`
	Zip       string  `json:"zip,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CachedWeather is one cached upstream payload keyed by rounded coordinates.
type CachedWeather struct {
	Data      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewDB opens (and if needed creates) the sqlite database.
func NewDB() (*DB, error) {
	path := os.Getenv("DB_PATH")
	if path == "" {
		path = "hahaweather.db"
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := initSchema(sqlDB); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &DB{sqlDB}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS places (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		state TEXT NOT NULL,
		zip TEXT,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_places_name ON places(name);
	CREATE INDEX IF NOT EXISTS idx_places_zip ON places(zip);

	CREATE TABLE IF NOT EXISTS weather_cache (
		lat REAL NOT NULL,
		lon REAL NOT NULL,
		data TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL,
		PRIMARY KEY (lat, lon)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		token TEXT NOT NULL,
		slot_index INTEGER NOT NULL,
		label TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (token, slot_index)
	);
	`
	_, err := db.Exec(schema)
	return err
}

// SearchPlaces finds up to 10 places matching a name prefix or exact ZIP,
// for autocomplete.
func (db *DB) SearchPlaces(query string) ([]Place, error) {
	if db == nil || db.DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := db.Query(
		`SELECT name, state, COALESCE(zip, ''), latitude, longitude
		 FROM places
		 WHERE name LIKE ? || '%' OR zip = ?
		 ORDER BY name
		 LIMIT 10`,
		query, query,
	)
	if err != nil {
		return nil, fmt.Errorf("search failed for %q: %w", query, err)
	}
	defer rows.Close()

	var places []Place
	for rows.Next() {
		var p Place
		if err := rows.Scan(&p.Name, &p.State, &p.Zip, &p.Latitude, &p.Longitude); err != nil {
			return nil, err
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// GetCachedWeather returns the cached payload for rounded coordinates, or
// nil when absent or expired.
func (db *DB) GetCachedWeather(lat, lon float64) (*CachedWeather, error) {
	if db == nil || db.DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	var cw CachedWeather
	err := db.QueryRow(
		"SELECT data, created_at, expires_at FROM weather_cache WHERE lat = ? AND lon = ?",
		lat, lon,
	).Scan(&cw.Data, &cw.CreatedAt, &cw.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if time.Now().After(cw.ExpiresAt) {
		return nil, nil
	}
	return &cw, nil
}

// SetCachedWeather upserts the cached payload for rounded coordinates.
func (db *DB) SetCachedWeather(lat, lon float64, data string, ttl time.Duration) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	now := time.Now()
	_, err := db.Exec(
		`INSERT INTO weather_cache (lat, lon, data, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(lat, lon) DO UPDATE SET
			data = excluded.data,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		lat, lon, data, now, now.Add(ttl),
	)
	return err
}

// SaveSessionSlot records the label a session has in a slot so a returning
// visitor's comparison columns repopulate. An empty label clears the slot.
func (db *DB) SaveSessionSlot(token string, slotIndex int, label string) error {
	if db == nil || db.DB == nil {
		return fmt.Errorf("database not initialized")
	}

	if label == "" {
		_, err := db.Exec(
			"DELETE FROM sessions WHERE token = ? AND slot_index = ?",
			token, slotIndex,
		)
		return err
	}

	_, err := db.Exec(
		`INSERT INTO sessions (token, slot_index, label, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(token, slot_index) DO UPDATE SET
			label = excluded.label,
			updated_at = excluded.updated_at`,
		token, slotIndex, label, time.Now(),
	)
	return err
}

// SessionSlots returns the saved slot labels for a session token, keyed by
// slot index.
func (db *DB) SessionSlots(token string) (map[int]string, error) {
	if db == nil || db.DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	rows, err := db.Query(
		"SELECT slot_index, label FROM sessions WHERE token = ? ORDER BY slot_index",
		token,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make(map[int]string)
	for rows.Next() {
		var idx int
		var label string
		if err := rows.Scan(&idx, &label); err != nil {
			return nil, err
		}
		slots[idx] = label
	}
	return slots, rows.Err()
}
