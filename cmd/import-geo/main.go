package main

import (
	"archive/zip"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Elfbjorn/HaHaWeather/internal/db"
)

// Census gazetteer datasets backing the local place/ZIP autocomplete.
const (
	placesURL = "https://www2.census.gov/geo/docs/maps-data/data/gazetteer/2023_Gazetteer/2023_Gaz_place_national.zip"
	zctasURL  = "https://www2.census.gov/geo/docs/maps-data/data/gazetteer/2023_Gazetteer/2023_Gaz_zcta_national.zip"
	dataDir   = "data"
)

// dataset describes one tab-separated gazetteer file: which columns carry
// which fields, and whether the place name is actually a ZIP code.
type dataset struct {
	name     string
	url      string
	nameCol  int
	stateCol int
	latCol   int
	lonCol   int
	minCols  int
	isZCTA   bool
}

var datasets = []dataset{
	{name: "places", url: placesURL, nameCol: 3, stateCol: 0, latCol: 10, lonCol: 11, minCols: 12},
	{name: "zctas", url: zctasURL, nameCol: 0, stateCol: -1, latCol: 5, lonCol: 6, minCols: 7, isZCTA: true},
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	database, err := db.NewDB()
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer database.Close()

	for _, ds := range datasets {
		if err := processDataset(database.DB, ds); err != nil {
			return fmt.Errorf("failed to process %s: %w", ds.name, err)
		}
	}
	return nil
}

func processDataset(db *sql.DB, ds dataset) error {
	zipPath := filepath.Join(dataDir, ds.name+".zip")

	if _, err := os.Stat(zipPath); os.IsNotExist(err) {
		log.Printf("Downloading %s...", ds.name)
		if err := downloadFile(ds.url, zipPath); err != nil {
			return err
		}
	} else {
		log.Printf("Using existing %s.zip", ds.name)
	}

	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if strings.HasSuffix(f.Name, ".txt") {
			rc, err := f.Open()
			if err != nil {
				return err
			}
			defer rc.Close()
			return importRows(db, ds, rc)
		}
	}
	return fmt.Errorf("no txt file found in %s", zipPath)
}

func downloadFile(url, filepath string) error {
	out, err := os.Create(filepath)
	if err != nil {
		return err
	}
	defer out.Close()

	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status: %s", resp.Status)
	}

	_, err = io.Copy(out, resp.Body)
	return err
}

func importRows(db *sql.DB, ds dataset, r io.Reader) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT INTO places (name, state, zip, latitude, longitude) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.LazyQuotes = true

	// Skip header
	if _, err := reader.Read(); err != nil {
		return err
	}

	count := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(record) < ds.minCols {
			continue // Skip malformed lines
		}

		name := strings.TrimSpace(record[ds.nameCol])
		state := ""
		zipCode := ""
		if ds.isZCTA {
			zipCode = name
		} else {
			name = cleanPlaceName(name)
			state = strings.TrimSpace(record[ds.stateCol])
		}

		lat, lon, err := parseCoordinates(
			strings.TrimSpace(record[ds.latCol]),
			strings.TrimSpace(record[ds.lonCol]),
		)
		if err != nil {
			log.Printf("Error parsing coordinates for %s: %v", name, err)
			continue
		}

		if _, err := stmt.Exec(name, state, zipCode, lat, lon); err != nil {
			log.Printf("Error inserting %s: %v", name, err)
			continue
		}
		count++
	}
	log.Printf("Finished importing %d %s.", count, ds.name)

	return tx.Commit()
}

func cleanPlaceName(name string) string {
	suffixes := []string{" city", " town", " village", " CDP", " borough"}
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return name[:len(name)-len(s)]
		}
	}
	return name
}

func parseCoordinates(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid latitude: %w", err)
	}
	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude out of range: %f", lat)
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid longitude: %w", err)
	}
	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude out of range: %f", lon)
	}

	return lat, lon, nil
}
