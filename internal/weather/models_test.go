package weather

import "testing"

func testSnapshot() *Snapshot {
	return &Snapshot{
		Current: Current{Time: "2024-05-01T14:15", WeatherCode: 2},
		Daily: Daily{
			Time:           []string{"2024-05-01", "2024-05-02"},
			TemperatureMax: []float64{18.4, 21.0},
			TemperatureMin: []float64{9.1, 11.6},
			WeatherCode:    []int{2, 61},
		},
		Hourly: Hourly{
			Time:        []string{"2024-05-01T00:00", "2024-05-01T01:00", "2024-05-02T00:00"},
			Temperature: []float64{11.2, 10.9, 12.3},
			WeatherCode: []int{1, 1, 3},
		},
	}
}

func TestSnapshotValidate(t *testing.T) {
	s := testSnapshot()
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Hourly.WeatherCode = s.Hourly.WeatherCode[:2]
	if err := s.Validate(); err == nil {
		t.Fatalf("expected misaligned hourly series to fail")
	}

	s = testSnapshot()
	s.Daily.TemperatureMin = append(s.Daily.TemperatureMin, 1)
	if err := s.Validate(); err == nil {
		t.Fatalf("expected misaligned daily series to fail")
	}
}

func TestHourlyForDay(t *testing.T) {
	h := testSnapshot().Hourly

	got := h.ForDay("2024-05-02")
	if len(got) != 1 || got[0].Time != "2024-05-02T00:00" || got[0].Temperature != 12.3 {
		t.Fatalf("unexpected entries for 2024-05-02: %+v", got)
	}
	if got := h.ForDay("2024-05-01"); len(got) != 2 {
		t.Fatalf("expected 2 entries for 2024-05-01, got %d", len(got))
	}
	if got := h.ForDay("2024-05-09"); len(got) != 0 {
		t.Fatalf("expected no entries for unknown day, got %d", len(got))
	}
	if h.FirstDay() != "2024-05-01" {
		t.Fatalf("unexpected first day %q", h.FirstDay())
	}
	if (Hourly{}).FirstDay() != "" {
		t.Fatalf("expected empty first day for empty series")
	}
}

func TestDailyEntries(t *testing.T) {
	entries := testSnapshot().Daily.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1] != (DailyEntry{Date: "2024-05-02", TemperatureMax: 21.0, TemperatureMin: 11.6, WeatherCode: 61}) {
		t.Fatalf("unexpected entry: %+v", entries[1])
	}
}

func TestCurrentDate(t *testing.T) {
	if d := testSnapshot().Current.Date(); d != "2024-05-01" {
		t.Fatalf("unexpected date %q", d)
	}
}

func TestCityCandidateNames(t *testing.T) {
	withState := CityCandidate{Name: "Springfield", State: "Illinois", Country: "US"}
	if withState.DisplayName() != "Springfield, Illinois" || withState.Label() != "Springfield, Illinois, US" {
		t.Fatalf("unexpected names: %q / %q", withState.DisplayName(), withState.Label())
	}

	noState := CityCandidate{Name: "Paris", Country: "FR"}
	if noState.DisplayName() != "Paris, FR" || noState.Label() != "Paris, FR" {
		t.Fatalf("unexpected names: %q / %q", noState.DisplayName(), noState.Label())
	}
}
