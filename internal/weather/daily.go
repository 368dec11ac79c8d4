package weather

import "math"

// defaultHumidity stands in when a period carries no humidity reading.
const defaultHumidity = 50.0

// BuildDailySummaries buckets forecast periods into per-day temperature
// summaries keyed by local calendar day.
//
// Each period contributes its raw temperature to the day's high/low set and
// its RealFeel to the day's RealFeel set. An upstream apparentTemperature,
// when finite, wins over the computed value. Periods with a non-finite
// temperature are skipped without disturbing the rest of the day, and
// max/min run on unrounded values with a single rounding step at the end.
func BuildDailySummaries(periods []ForecastPeriod) map[string]DailySummary {
	type bucket struct {
		temps    []float64
		realFeel []float64
	}
	buckets := make(map[string]*bucket)

	for _, p := range periods {
		if math.IsNaN(p.Temperature) || math.IsInf(p.Temperature, 0) {
			continue
		}
		key := DayKey(p.StartTime)
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.temps = append(b.temps, p.Temperature)
		b.realFeel = append(b.realFeel, periodRealFeel(p))
	}

	summaries := make(map[string]DailySummary, len(buckets))
	for key, b := range buckets {
		summaries[key] = DailySummary{
			High:         roundedMax(b.temps),
			Low:          roundedMin(b.temps),
			RealFeelHigh: roundedMax(b.realFeel),
			RealFeelLow:  roundedMin(b.realFeel),
		}
	}
	return summaries
}

// periodRealFeel resolves one period's apparent temperature, preferring a
// finite upstream value over the computed one.
func periodRealFeel(p ForecastPeriod) float64 {
	if p.ApparentTemperature != nil {
		if v := *p.ApparentTemperature; !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v
		}
	}
	humidity := defaultHumidity
	if p.RelativeHumidity != nil {
		humidity = *p.RelativeHumidity
	}
	return ApparentTemperature(p.Temperature, ParseWindSpeed(p.WindSpeed), humidity)
}

func roundedMax(vals []float64) *int {
	var max float64
	found := false
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if !found || v > max {
			max = v
			found = true
		}
	}
	if !found {
		return nil
	}
	r := int(math.Round(max))
	return &r
}

func roundedMin(vals []float64) *int {
	var min float64
	found := false
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		if !found || v < min {
			min = v
			found = true
		}
	}
	if !found {
		return nil
	}
	r := int(math.Round(min))
	return &r
}
