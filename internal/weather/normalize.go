package weather

import (
	"encoding/json"
	"math"
	"strings"
	"time"
)

// This file is the single place where raw upstream JSON shapes become the
// canonical ForecastPeriod and Alert types. The NWS API has drifted over
// the years: apparentTemperature arrives as a bare number or as a
// {value, unitCode} object, humidity is an object, and alerts spread their
// time bounds over effective/onset/sent and expires/ends. None of that
// leaks past this boundary.

type rawForecastResponse struct {
	Properties struct {
		Periods []rawPeriod `json:"periods"`
	} `json:"properties"`
}

type rawPeriod struct {
	Name                string          `json:"name"`
	StartTime           string          `json:"startTime"`
	IsDaytime           bool            `json:"isDaytime"`
	Temperature         *float64        `json:"temperature"`
	TemperatureUnit     string          `json:"temperatureUnit"`
	WindSpeed           string          `json:"windSpeed"`
	RelativeHumidity    rawQuantity     `json:"relativeHumidity"`
	ApparentTemperature json.RawMessage `json:"apparentTemperature"`
	Icon                string          `json:"icon"`
	ShortForecast       string          `json:"shortForecast"`
}

// rawQuantity is the NWS {value, unitCode} measurement wrapper.
type rawQuantity struct {
	Value    *float64 `json:"value"`
	UnitCode string   `json:"unitCode"`
}

type rawAlertsResponse struct {
	Features []rawAlertFeature `json:"features"`
}

type rawAlertFeature struct {
	ID         string `json:"id"`
	Properties struct {
		Event     string `json:"event"`
		Headline  string `json:"headline"`
		Severity  string `json:"severity"`
		AreaDesc  string `json:"areaDesc"`
		Effective string `json:"effective"`
		Onset     string `json:"onset"`
		Sent      string `json:"sent"`
		Expires   string `json:"expires"`
		Ends      string `json:"ends"`
		Geocode   struct {
			UGC []string `json:"UGC"`
		} `json:"geocode"`
	} `json:"properties"`
}

// normalizePeriods maps raw NWS periods into canonical ForecastPeriods.
// Periods whose startTime does not parse are dropped; there is no day to
// bucket them into. A missing temperature becomes NaN so downstream
// aggregation can exclude the period without special cases.
func normalizePeriods(raw []rawPeriod) []ForecastPeriod {
	periods := make([]ForecastPeriod, 0, len(raw))
	for _, rp := range raw {
		// RFC3339 keeps the offset, which is what defines the local day.
		start, err := time.Parse(time.RFC3339, rp.StartTime)
		if err != nil {
			continue
		}

		temp := math.NaN()
		if rp.Temperature != nil {
			temp = *rp.Temperature
		}
		if strings.EqualFold(rp.TemperatureUnit, "C") {
			temp = celsiusToFahrenheit(temp)
		}

		p := ForecastPeriod{
			Name:            rp.Name,
			StartTime:       start,
			IsDaytime:       rp.IsDaytime,
			Temperature:     temp,
			TemperatureUnit: "F",
			WindSpeed:       rp.WindSpeed,
			Icon:            rp.Icon,
			ShortForecast:   rp.ShortForecast,
		}
		if rp.RelativeHumidity.Value != nil {
			rh := *rp.RelativeHumidity.Value
			p.RelativeHumidity = &rh
		}
		if at, ok := normalizeApparent(rp.ApparentTemperature); ok {
			p.ApparentTemperature = &at
		}
		periods = append(periods, p)
	}
	return periods
}

// normalizeApparent decodes an apparentTemperature field that may be a bare
// number or a {value, unitCode} object, converting Celsius readings to
// Fahrenheit. An unrecognized unit code is assumed to already be Fahrenheit
// rather than rejected.
func normalizeApparent(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}

	var bare float64
	if err := json.Unmarshal(raw, &bare); err == nil {
		if math.IsNaN(bare) || math.IsInf(bare, 0) {
			return 0, false
		}
		return bare, true
	}

	var q rawQuantity
	if err := json.Unmarshal(raw, &q); err != nil || q.Value == nil {
		return 0, false
	}
	v := *q.Value
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if strings.HasSuffix(q.UnitCode, "degC") {
		v = celsiusToFahrenheit(v)
	}
	return v, true
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9.0/5.0 + 32.0
}

// normalizeAlerts maps raw NWS alert features into canonical Alerts.
// The start bound is the first present of effective/onset/sent and the end
// bound the first present of expires/ends; absent bounds stay nil so the
// overlap test defaults them to the day being examined.
func normalizeAlerts(features []rawAlertFeature) []Alert {
	alerts := make([]Alert, 0, len(features))
	for _, f := range features {
		alerts = append(alerts, Alert{
			Event:    f.Properties.Event,
			Headline: f.Properties.Headline,
			Severity: f.Properties.Severity,
			AreaDesc: f.Properties.AreaDesc,
			Starts:   firstTime(f.Properties.Effective, f.Properties.Onset, f.Properties.Sent),
			Ends:     firstTime(f.Properties.Expires, f.Properties.Ends),
			ZoneIDs:  f.Properties.Geocode.UGC,
			URL:      f.ID,
		})
	}
	return alerts
}

// firstTime parses the first non-empty candidate as RFC3339, or nil when
// none parse.
func firstTime(candidates ...string) *time.Time {
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, c); err == nil {
			return &t
		}
	}
	return nil
}
