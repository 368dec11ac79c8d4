package weather

import (
	"math"
	"regexp"
	"strconv"
)

// Thresholds below which wind chill applies and above which heat index
// applies. Between the two bands the apparent temperature is the raw
// temperature; the formulas are only empirically valid inside their bands.
const (
	windChillMaxTemp = 50.0
	windChillMinWind = 3.0
	heatIndexMinTemp = 80.0
	heatIndexMinRH   = 40.0
)

var windNumberRe = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ApparentTemperature computes the RealFeel temperature in °F from a raw
// temperature, wind speed in mph, and relative humidity percent.
//
// A non-finite tempF yields NaN so callers can exclude the period from
// aggregation. Wind is clamped to zero or above; a non-finite humidity
// defaults to 50 and is clamped to [0, 100].
func ApparentTemperature(tempF, windMph, humidityPct float64) float64 {
	if math.IsNaN(tempF) || math.IsInf(tempF, 0) {
		return math.NaN()
	}
	if windMph < 0 || math.IsNaN(windMph) {
		windMph = 0
	}
	if math.IsNaN(humidityPct) || math.IsInf(humidityPct, 0) {
		humidityPct = 50
	}
	if humidityPct < 0 {
		humidityPct = 0
	} else if humidityPct > 100 {
		humidityPct = 100
	}

	switch {
	case tempF <= windChillMaxTemp && windMph >= windChillMinWind:
		return windChill(tempF, windMph)
	case tempF >= heatIndexMinTemp && humidityPct >= heatIndexMinRH:
		return heatIndex(tempF, humidityPct)
	default:
		return tempF
	}
}

// windChill implements the NWS wind chill formula. Callers gate on
// T <= 50 and W >= 3.
func windChill(t, w float64) float64 {
	wp := math.Pow(w, 0.16)
	return 35.74 + 0.6215*t - 35.75*wp + 0.4275*t*wp
}

// heatIndex implements the Rothfusz regression with the NWS low-humidity
// and high-humidity adjustments. Callers gate on T >= 80 and RH >= 40.
func heatIndex(t, rh float64) float64 {
	hi := -42.379 +
		2.04901523*t +
		10.14333127*rh -
		0.22475541*t*rh -
		0.00683783*t*t -
		0.05481717*rh*rh +
		0.00122874*t*t*rh +
		0.00085282*t*rh*rh -
		0.00000199*t*t*rh*rh

	if rh < 13 && t >= 80 && t <= 112 {
		hi -= ((13 - rh) / 4) * math.Sqrt((17-math.Abs(t-95))/17)
	}
	if rh > 85 && t >= 80 && t <= 87 {
		hi += ((rh - 85) / 10) * ((87 - t) / 5)
	}
	return hi
}

// ParseWindSpeed extracts a single mph figure from NWS free-text wind
// descriptions such as "12 mph", "5 to 10 mph", or "15 mph, gusting to 25".
// Ranges average to their midpoint; text with no numbers parses as calm.
// Averaging is a documented approximation, not a parse failure.
func ParseWindSpeed(text string) float64 {
	matches := windNumberRe.FindAllString(text, -1)
	if len(matches) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			continue
		}
		sum += v
	}
	return sum / float64(len(matches))
}
