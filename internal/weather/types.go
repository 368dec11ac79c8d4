package weather

import "time"

// ForecastPeriod is one normalized forecast interval for a location. All
// upstream shapes are mapped into this type at the client boundary; the
// aggregation code never touches raw NWS JSON.
type ForecastPeriod struct {
	Name             string    `json:"name"`
	StartTime        time.Time `json:"start_time"`
	IsDaytime        bool      `json:"is_daytime"`
	Temperature      float64   `json:"temperature"`
	TemperatureUnit  string    `json:"temperature_unit"`
	WindSpeed        string    `json:"wind_speed"`
	RelativeHumidity *float64  `json:"relative_humidity,omitempty"`
	// ApparentTemperature, when present, is already normalized to Fahrenheit
	// and overrides the computed RealFeel for this period.
	ApparentTemperature *float64 `json:"apparent_temperature,omitempty"`
	Icon                string   `json:"icon"`
	ShortForecast       string   `json:"short_forecast"`
}

// DailySummary holds one calendar day's aggregated temperatures for one
// location. Nil fields mean "no data for this day", not zero degrees.
// RealFeel extremes are aggregated from the apparent-temperature series
// independently of High/Low; they need not line up.
type DailySummary struct {
	High         *int `json:"high"`
	Low          *int `json:"low"`
	RealFeelHigh *int `json:"real_feel_high"`
	RealFeelLow  *int `json:"real_feel_low"`
}

// Alert is one normalized active advisory for a location. Starts is the
// first present of effective/onset/sent; Ends the first present of
// expires/ends. Nil bounds default to the day window being tested against.
type Alert struct {
	Event    string     `json:"event"`
	Headline string     `json:"headline"`
	Severity string     `json:"severity"`
	AreaDesc string     `json:"area_desc"`
	Starts   *time.Time `json:"starts,omitempty"`
	Ends     *time.Time `json:"ends,omitempty"`
	// Link hints for the issuing agency's detail page.
	ZoneIDs []string `json:"zone_ids,omitempty"`
	URL     string   `json:"url,omitempty"`
}

// LocationSlot is one of up to three comparison columns. A slot is built
// completely (coordinates, periods, alerts, summaries) before it is
// published, so a render never sees a half-populated slot.
type LocationSlot struct {
	Label     string                  `json:"label"`
	Lat       float64                 `json:"lat"`
	Lon       float64                 `json:"lon"`
	Periods   []ForecastPeriod        `json:"periods"`
	Summaries map[string]DailySummary `json:"summaries"`
	Alerts    []Alert                 `json:"alerts"`
}

// Empty reports whether the slot holds no location.
func (s *LocationSlot) Empty() bool {
	return s == nil || (s.Label == "" && len(s.Periods) == 0)
}

// DayKey returns the calendar-day key for t in t's own zone, in fixed-width
// YYYY-MM-DD form so keys compare correctly as strings. The local date is
// what matters: converting to UTC first would shift periods near local
// midnight into the wrong day.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
