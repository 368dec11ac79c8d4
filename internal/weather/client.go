package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// Client handles NWS and Nominatim API interactions.
type Client struct {
	UserAgent  string
	HTTPClient *http.Client

	// NWS asks clients to stay under a few requests per second; comparing
	// three locations fans out to nine upstream calls, so the client
	// throttles itself rather than relying on callers.
	limiter *rate.Limiter
}

// NewClient creates a new API client.
func NewClient() *Client {
	userAgent := os.Getenv("NWS_USER_AGENT")
	if userAgent == "" {
		userAgent = "HaHaWeather/1.0 (github.com/Elfbjorn/HaHaWeather)"
	}

	return &Client{
		UserAgent: userAgent,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Limit(4), 4),
	}
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.UserAgent)
	req.Header.Set("Accept", "application/geo+json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upstream API error: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(resp.Body)
}

// PointResponse represents the NWS /points/ response.
type PointResponse struct {
	Properties struct {
		GridId           string `json:"gridId"`
		GridX            int    `json:"gridX"`
		GridY            int    `json:"gridY"`
		Forecast         string `json:"forecast"`
		ForecastHourly   string `json:"forecastHourly"`
		County           string `json:"county"` // URL to county zone
		ForecastZone     string `json:"forecastZone"`
		RelativeLocation struct {
			Properties struct {
				City  string `json:"city"`
				State string `json:"state"`
			} `json:"properties"`
		} `json:"relativeLocation"`
	} `json:"properties"`
}

// GetPointMetadata fetches metadata for a lat/lon.
func (c *Client) GetPointMetadata(ctx context.Context, lat, lon float64) (*PointResponse, error) {
	url := fmt.Sprintf("https://api.weather.gov/points/%.4f,%.4f", lat, lon)
	data, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var pt PointResponse
	if err := json.Unmarshal(data, &pt); err != nil {
		return nil, err
	}
	return &pt, nil
}

// GetForecast fetches forecast periods from a gridpoint forecast URL and
// normalizes them into canonical ForecastPeriods.
func (c *Client) GetForecast(ctx context.Context, url string) ([]ForecastPeriod, error) {
	data, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var fc rawForecastResponse
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, err
	}
	return normalizePeriods(fc.Properties.Periods), nil
}

// GetAlerts fetches active alerts for a lat/lon and normalizes them.
func (c *Client) GetAlerts(ctx context.Context, lat, lon float64) ([]Alert, error) {
	url := fmt.Sprintf("https://api.weather.gov/alerts/active?point=%.4f,%.4f", lat, lon)
	data, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var al rawAlertsResponse
	if err := json.Unmarshal(data, &al); err != nil {
		return nil, err
	}
	return normalizeAlerts(al.Features), nil
}

// GeocodeResponse represents a Nominatim search response.
type GeocodeResponse []struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode fetches coordinates and a label for a city/ZIP query using
// OpenStreetMap, limited to the US since NWS only covers US locations.
func (c *Client) Geocode(ctx context.Context, query string) (float64, float64, string, error) {
	baseURL := "https://nominatim.openstreetmap.org/search"
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("countrycodes", "us")
	requestURL := baseURL + "?" + params.Encode()

	data, err := c.get(ctx, requestURL)
	if err != nil {
		return 0, 0, "", err
	}

	var resp GeocodeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return 0, 0, "", err
	}

	if len(resp) == 0 {
		return 0, 0, "", fmt.Errorf("location not found")
	}

	var lat, lon float64
	fmt.Sscanf(resp[0].Lat, "%f", &lat)
	fmt.Sscanf(resp[0].Lon, "%f", &lon)

	return lat, lon, resp[0].DisplayName, nil
}
