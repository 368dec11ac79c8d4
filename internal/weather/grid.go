package weather

import "time"

// Grid is the date × location comparison table handed to the rendering
// layer: one row per display day, one column per slot.
type Grid struct {
	Days    []string  `json:"days"`
	Columns []Column  `json:"columns"`
	Rows    []GridRow `json:"rows"`
}

// Column describes one location column's header.
type Column struct {
	Index int    `json:"index"`
	Label string `json:"label"`
	Empty bool   `json:"empty"`
}

// GridRow is one calendar day across all slots.
type GridRow struct {
	Day   string `json:"day"`
	Cells []Cell `json:"cells"`
}

// Cell is one (day, location) intersection. A slot with no data for the
// day yields a cell with nil temperatures, rendered as empty.
type Cell struct {
	High          *int   `json:"high"`
	Low           *int   `json:"low"`
	RealFeelHigh  *int   `json:"real_feel_high"`
	RealFeelLow   *int   `json:"real_feel_low"`
	Icon          string `json:"icon,omitempty"`
	ShortForecast string `json:"short_forecast,omitempty"`
	Alert         *Alert `json:"alert,omitempty"`
}

// BuildGrid assembles the comparison grid for the given slots. today is the
// viewer's local day key and loc the zone used for alert day windows.
func BuildGrid(slots []*LocationSlot, today string, loc *time.Location) Grid {
	days := DisplayDays(slots, today)

	grid := Grid{
		Days:    days,
		Columns: make([]Column, len(slots)),
		Rows:    make([]GridRow, 0, len(days)),
	}
	for i, slot := range slots {
		col := Column{Index: i, Empty: slot.Empty()}
		if !col.Empty {
			col.Label = slot.Label
		}
		grid.Columns[i] = col
	}

	for _, day := range days {
		row := GridRow{Day: day, Cells: make([]Cell, len(slots))}
		for i, slot := range slots {
			if slot.Empty() {
				continue
			}
			cell := Cell{}
			if summary, ok := slot.Summaries[day]; ok {
				cell.High = summary.High
				cell.Low = summary.Low
				cell.RealFeelHigh = summary.RealFeelHigh
				cell.RealFeelLow = summary.RealFeelLow
			}
			if p := firstPeriodOnDay(slot.Periods, day); p != nil {
				cell.Icon = p.Icon
				cell.ShortForecast = p.ShortForecast
			}
			cell.Alert = AlertForDay(slot.Alerts, day, loc)
			row.Cells[i] = cell
		}
		grid.Rows = append(grid.Rows, row)
	}
	return grid
}

// firstPeriodOnDay returns the earliest period whose local date matches the
// day key, for icon and text pass-through.
func firstPeriodOnDay(periods []ForecastPeriod, day string) *ForecastPeriod {
	for i := range periods {
		if DayKey(periods[i].StartTime) == day {
			return &periods[i]
		}
	}
	return nil
}
