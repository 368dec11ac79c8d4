package db

import (
	"database/sql"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Use in-memory database for testing
	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := initSchema(sqlDB); err != nil {
		t.Fatalf("Failed to initialize schema: %v", err)
	}

	testData := []struct {
		name      string
		state     string
		zip       string
		latitude  float64
		longitude float64
	}{
		{"San Francisco", "CA", "94102", 37.7749, -122.4194},
		{"San Diego", "CA", "92101", 32.7157, -117.1611},
		{"Los Angeles", "CA", "90001", 34.0522, -118.2437},
		{"10001", "", "10001", 40.7506, -73.9971},
		{"New York", "NY", "", 40.7128, -74.0060},
	}

	for _, place := range testData {
		_, err := sqlDB.Exec(
			"INSERT INTO places (name, state, zip, latitude, longitude) VALUES (?, ?, ?, ?, ?)",
			place.name, place.state, place.zip, place.latitude, place.longitude,
		)
		if err != nil {
			t.Fatalf("Failed to insert test data: %v", err)
		}
	}

	return &DB{sqlDB}
}

func TestSearchPlaces(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	tests := []struct {
		name       string
		query      string
		minResults int
		maxResults int
	}{
		{
			name:       "prefix search",
			query:      "San",
			minResults: 2,
			maxResults: 2,
		},
		{
			name:       "full name",
			query:      "San Francisco",
			minResults: 1,
			maxResults: 1,
		},
		{
			name:       "zip lookup",
			query:      "10001",
			minResults: 1,
			maxResults: 2,
		},
		{
			name:       "no results",
			query:      "xyz123notfound",
			minResults: 0,
			maxResults: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			places, err := testDB.SearchPlaces(tt.query)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			resultCount := len(places)
			if resultCount < tt.minResults || resultCount > tt.maxResults {
				t.Errorf("Expected between %d and %d results, got %d",
					tt.minResults, tt.maxResults, resultCount)
			}
		})
	}
}

func TestSearchPlacesNilDB(t *testing.T) {
	var testDB *DB
	if _, err := testDB.SearchPlaces("San"); err == nil {
		t.Error("Expected error for nil database, got nil")
	}
}

func TestWeatherCacheRoundTrip(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	if err := testDB.SetCachedWeather(42.36, -71.06, `{"periods": []}`, time.Hour); err != nil {
		t.Fatalf("SetCachedWeather failed: %v", err)
	}

	cached, err := testDB.GetCachedWeather(42.36, -71.06)
	if err != nil {
		t.Fatalf("GetCachedWeather failed: %v", err)
	}
	if cached == nil {
		t.Fatal("Expected cached entry, got nil")
	}
	if cached.Data != `{"periods": []}` {
		t.Errorf("Data = %q, want original payload", cached.Data)
	}
}

func TestWeatherCacheMiss(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	cached, err := testDB.GetCachedWeather(0.0, 0.0)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cached != nil {
		t.Errorf("Expected nil for cache miss, got %+v", cached)
	}
}

func TestWeatherCacheExpiry(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	// Negative TTL makes the entry already expired.
	if err := testDB.SetCachedWeather(42.36, -71.06, "stale", -time.Minute); err != nil {
		t.Fatalf("SetCachedWeather failed: %v", err)
	}

	cached, err := testDB.GetCachedWeather(42.36, -71.06)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cached != nil {
		t.Errorf("Expected expired entry to read as nil, got %+v", cached)
	}
}

func TestWeatherCacheUpsert(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	if err := testDB.SetCachedWeather(42.36, -71.06, "old", time.Hour); err != nil {
		t.Fatalf("First set failed: %v", err)
	}
	if err := testDB.SetCachedWeather(42.36, -71.06, "new", time.Hour); err != nil {
		t.Fatalf("Second set failed: %v", err)
	}

	cached, err := testDB.GetCachedWeather(42.36, -71.06)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cached == nil || cached.Data != "new" {
		t.Errorf("Expected upserted payload, got %+v", cached)
	}
}

func TestSessionSlots(t *testing.T) {
	testDB := setupTestDB(t)
	defer testDB.Close()

	const token = "abc123"

	if err := testDB.SaveSessionSlot(token, 0, "Boston, MA"); err != nil {
		t.Fatalf("SaveSessionSlot failed: %v", err)
	}
	if err := testDB.SaveSessionSlot(token, 2, "Phoenix, AZ"); err != nil {
		t.Fatalf("SaveSessionSlot failed: %v", err)
	}

	slots, err := testDB.SessionSlots(token)
	if err != nil {
		t.Fatalf("SessionSlots failed: %v", err)
	}
	if len(slots) != 2 {
		t.Fatalf("Expected 2 slots, got %d", len(slots))
	}
	if slots[0] != "Boston, MA" || slots[2] != "Phoenix, AZ" {
		t.Errorf("Unexpected slots: %v", slots)
	}

	// Updating a slot replaces its label.
	if err := testDB.SaveSessionSlot(token, 0, "Chicago, IL"); err != nil {
		t.Fatalf("SaveSessionSlot update failed: %v", err)
	}
	slots, _ = testDB.SessionSlots(token)
	if slots[0] != "Chicago, IL" {
		t.Errorf("Expected updated label, got %q", slots[0])
	}

	// Empty label clears the slot.
	if err := testDB.SaveSessionSlot(token, 0, ""); err != nil {
		t.Fatalf("SaveSessionSlot clear failed: %v", err)
	}
	slots, _ = testDB.SessionSlots(token)
	if _, ok := slots[0]; ok {
		t.Error("Expected slot 0 cleared")
	}
	if slots[2] != "Phoenix, AZ" {
		t.Error("Clearing one slot should not touch others")
	}

	// Other tokens see nothing.
	other, err := testDB.SessionSlots("different-token")
	if err != nil {
		t.Fatalf("SessionSlots failed: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("Expected no slots for unknown token, got %v", other)
	}
}

func TestSessionSlotsNilDB(t *testing.T) {
	var testDB *DB
	if err := testDB.SaveSessionSlot("tok", 0, "x"); err == nil {
		t.Error("Expected error for nil database, got nil")
	}
	if _, err := testDB.SessionSlots("tok"); err == nil {
		t.Error("Expected error for nil database, got nil")
	}
}

func TestNewDB(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := tmpDir + "/test_haha.db"

	t.Setenv("DB_PATH", tmpFile)

	db, err := NewDB()
	if err != nil {
		t.Fatalf("Failed to create new DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("Failed to ping DB: %v", err)
	}

	// Schema should be in place.
	if _, err := db.Exec("INSERT INTO places (name, state, latitude, longitude) VALUES ('X', 'XX', 1, 1)"); err != nil {
		t.Errorf("Schema missing places table: %v", err)
	}
}
