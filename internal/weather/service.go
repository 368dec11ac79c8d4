package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/Elfbjorn/HaHaWeather/internal/db"
)

// MaxSlots is the number of locations that can be compared at once.
const MaxSlots = 3

// cacheTTL bounds how long a fetched payload is reused.
const cacheTTL = 1 * time.Hour

// Service owns the comparison state: up to three location slots, the
// upstream client, and the payload cache. Slots are independent; a slot is
// replaced wholesale when its fetch completes, never mutated field by
// field, and a per-slot generation counter makes publication
// last-write-wins so a stale in-flight fetch can never clobber newer data.
type Service struct {
	client *Client
	db     *db.DB

	mu    sync.Mutex
	slots [MaxSlots]*LocationSlot
	gens  [MaxSlots]uint64
}

// NewService creates a new comparison service. database may be nil, in
// which case caching is skipped.
func NewService(database *db.DB) *Service {
	return &Service{
		client: NewClient(),
		db:     database,
	}
}

// slotPayload is the cacheable upstream result for one coordinate pair.
type slotPayload struct {
	City    string           `json:"city"`
	State   string           `json:"state"`
	Periods []ForecastPeriod `json:"periods"`
	Alerts  []Alert          `json:"alerts"`
}

// SetLocation resolves a city/ZIP query and populates the slot at index
// with its forecast, alerts, and daily summaries. The slot only changes
// once everything has been fetched and computed; if the same slot is set
// again before this call finishes, the older result is discarded.
func (s *Service) SetLocation(ctx context.Context, index int, query string) (*LocationSlot, error) {
	if index < 0 || index >= MaxSlots {
		return nil, fmt.Errorf("slot index %d out of range", index)
	}

	s.mu.Lock()
	s.gens[index]++
	gen := s.gens[index]
	s.mu.Unlock()

	slot, err := s.buildSlot(ctx, query)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[index] != gen {
		// A newer update for this slot won the race.
		return nil, fmt.Errorf("slot %d superseded by a newer update", index)
	}
	s.slots[index] = slot
	return slot, nil
}

// ClearSlot empties the slot at index. Any in-flight fetch for the slot is
// invalidated.
func (s *Service) ClearSlot(index int) {
	if index < 0 || index >= MaxSlots {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gens[index]++
	s.slots[index] = nil
}

// Slots returns a snapshot of the current slots. Unpopulated slots are
// returned as empty, not nil, so callers can index by position.
func (s *Service) Slots() []*LocationSlot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*LocationSlot, MaxSlots)
	for i, slot := range s.slots {
		if slot == nil {
			out[i] = &LocationSlot{}
			continue
		}
		cp := *slot
		out[i] = &cp
	}
	return out
}

// Grid assembles the date × location comparison grid from the current
// slots, with rows for today and later.
func (s *Service) Grid() Grid {
	return BuildGrid(s.Slots(), DayKey(time.Now()), time.Local)
}

func (s *Service) buildSlot(ctx context.Context, query string) (*LocationSlot, error) {
	lat, lon, label, err := s.client.Geocode(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to geocode %q: %w", query, err)
	}

	// Round to ~1.1km so nearby queries share a cache entry.
	const precision = 100.0
	rLat := math.Round(lat*precision) / precision
	rLon := math.Round(lon*precision) / precision

	payload, err := s.fetchPayload(ctx, rLat, rLon)
	if err != nil {
		return nil, err
	}

	if payload.City != "" {
		label = payload.City
		if payload.State != "" {
			label = fmt.Sprintf("%s, %s", payload.City, payload.State)
		}
	}

	return &LocationSlot{
		Label:     label,
		Lat:       rLat,
		Lon:       rLon,
		Periods:   payload.Periods,
		Alerts:    payload.Alerts,
		Summaries: BuildDailySummaries(payload.Periods),
	}, nil
}

func (s *Service) fetchPayload(ctx context.Context, lat, lon float64) (*slotPayload, error) {
	if s.db != nil {
		cached, err := s.db.GetCachedWeather(lat, lon)
		if err != nil {
			log.Printf("Cache error: %v", err)
		}
		if cached != nil {
			var payload slotPayload
			if err := json.Unmarshal([]byte(cached.Data), &payload); err == nil {
				return &payload, nil
			} else {
				log.Printf("Cache unmarshal error: %v", err)
			}
		}
	}

	payload, err := s.fetchFresh(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if s.db != nil {
		if data, err := json.Marshal(payload); err == nil {
			if err := s.db.SetCachedWeather(lat, lon, string(data), cacheTTL); err != nil {
				log.Printf("Failed to update cache: %v", err)
			}
		}
	}
	return payload, nil
}

func (s *Service) fetchFresh(ctx context.Context, lat, lon float64) (*slotPayload, error) {
	pt, err := s.client.GetPointMetadata(ctx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("failed to get point metadata: %w", err)
	}

	periods, err := s.client.GetForecast(ctx, pt.Properties.Forecast)
	if err != nil {
		return nil, fmt.Errorf("failed to get forecast: %w", err)
	}

	alerts, err := s.client.GetAlerts(ctx, lat, lon)
	if err != nil {
		// Alerts are best effort: a comparison without alert badges beats
		// no comparison at all.
		log.Printf("Failed to get alerts: %v", err)
		alerts = []Alert{}
	}

	return &slotPayload{
		City:    pt.Properties.RelativeLocation.Properties.City,
		State:   pt.Properties.RelativeLocation.Properties.State,
		Periods: periods,
		Alerts:  alerts,
	}, nil
}
