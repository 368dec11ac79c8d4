package weather

import (
	"testing"
)

// TestBuildGrid tests row/column assembly, empty cells, and alert badges.
func TestBuildGrid(t *testing.T) {
	high1, low1 := 72, 58
	high2, low2 := 85, 66
	slots := []*LocationSlot{
		{
			Label: "Boston, MA",
			Periods: []ForecastPeriod{
				{
					StartTime:     mustTime(t, "2024-06-01T08:00:00-04:00"),
					Temperature:   72,
					Icon:          "https://api.weather.gov/icons/land/day/sct",
					ShortForecast: "Mostly Sunny",
				},
			},
			Summaries: map[string]DailySummary{
				"2024-06-01": {High: &high1, Low: &low1, RealFeelHigh: &high1, RealFeelLow: &low1},
			},
			Alerts: []Alert{
				{
					Event:  "Heat Advisory",
					Starts: timePtr(mustTime(t, "2024-06-01T12:00:00-04:00")),
					Ends:   timePtr(mustTime(t, "2024-06-01T20:00:00-04:00")),
				},
			},
		},
		{
			Label: "Phoenix, AZ",
			Summaries: map[string]DailySummary{
				"2024-06-02": {High: &high2, Low: &low2, RealFeelHigh: &high2, RealFeelLow: &low2},
			},
		},
		{},
	}

	grid := BuildGrid(slots, "2024-06-01", edt)

	if len(grid.Days) != 2 || grid.Days[0] != "2024-06-01" || grid.Days[1] != "2024-06-02" {
		t.Fatalf("Days = %v, want [2024-06-01 2024-06-02]", grid.Days)
	}
	if len(grid.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(grid.Columns))
	}
	if grid.Columns[0].Label != "Boston, MA" || grid.Columns[0].Empty {
		t.Errorf("column 0 = %+v, want populated Boston", grid.Columns[0])
	}
	if !grid.Columns[2].Empty {
		t.Error("column 2 should be empty")
	}

	// Day one: Boston has data and an alert; Phoenix cell is blank.
	row := grid.Rows[0]
	boston := row.Cells[0]
	if boston.High == nil || *boston.High != 72 {
		t.Errorf("Boston High = %v, want 72", boston.High)
	}
	if boston.Icon == "" || boston.ShortForecast != "Mostly Sunny" {
		t.Errorf("presentation fields missing: %+v", boston)
	}
	if boston.Alert == nil || boston.Alert.Event != "Heat Advisory" {
		t.Errorf("Boston alert = %+v, want Heat Advisory", boston.Alert)
	}
	phoenix := row.Cells[1]
	if phoenix.High != nil || phoenix.Alert != nil {
		t.Errorf("Phoenix cell on 2024-06-01 should be blank, got %+v", phoenix)
	}

	// Day two: the alert lapsed, Boston cell blank, Phoenix has data.
	row = grid.Rows[1]
	if row.Cells[0].High != nil || row.Cells[0].Alert != nil {
		t.Errorf("Boston cell on 2024-06-02 should be blank, got %+v", row.Cells[0])
	}
	if row.Cells[1].High == nil || *row.Cells[1].High != 85 {
		t.Errorf("Phoenix High = %v, want 85", row.Cells[1].High)
	}
}

// TestBuildGrid_NoSlots tests the degenerate empty grid.
func TestBuildGrid_NoSlots(t *testing.T) {
	grid := BuildGrid([]*LocationSlot{{}, {}, {}}, "2024-06-01", edt)
	if len(grid.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(grid.Rows))
	}
	if len(grid.Columns) != 3 {
		t.Errorf("expected 3 columns, got %d", len(grid.Columns))
	}
}

// TestBuildGrid_NilSlots tests that nil slot entries render as empty
// columns, matching how DisplayDays treats them.
func TestBuildGrid_NilSlots(t *testing.T) {
	high := 72
	slots := []*LocationSlot{
		nil,
		{
			Label: "Boston, MA",
			Summaries: map[string]DailySummary{
				"2024-06-01": {High: &high, Low: &high},
			},
		},
		nil,
	}

	grid := BuildGrid(slots, "2024-06-01", edt)

	if len(grid.Columns) != 3 {
		t.Fatalf("expected 3 columns, got %d", len(grid.Columns))
	}
	if !grid.Columns[0].Empty || grid.Columns[0].Label != "" {
		t.Errorf("nil slot column = %+v, want empty with no label", grid.Columns[0])
	}
	if grid.Columns[1].Empty || grid.Columns[1].Label != "Boston, MA" {
		t.Errorf("column 1 = %+v, want populated Boston", grid.Columns[1])
	}

	if len(grid.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(grid.Rows))
	}
	row := grid.Rows[0]
	if row.Cells[0].High != nil || row.Cells[2].High != nil {
		t.Error("nil slot cells should be blank")
	}
	if row.Cells[1].High == nil || *row.Cells[1].High != 72 {
		t.Errorf("Boston High = %v, want 72", row.Cells[1].High)
	}
}

// TestBuildGrid_PastDaysDropped tests that rows before today never appear
// even when a slot has data for them.
func TestBuildGrid_PastDaysDropped(t *testing.T) {
	high := 60
	slots := []*LocationSlot{
		{
			Label: "Boston, MA",
			Summaries: map[string]DailySummary{
				"2024-05-28": {High: &high, Low: &high},
				"2024-06-01": {High: &high, Low: &high},
			},
		},
	}

	grid := BuildGrid(slots, "2024-06-01", edt)
	if len(grid.Rows) != 1 || grid.Rows[0].Day != "2024-06-01" {
		t.Errorf("expected only 2024-06-01 row, got %+v", grid.Rows)
	}
}
