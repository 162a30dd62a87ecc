package calendar

import (
	"fmt"
	"sort"
	"strings"
	"testing"
)

func buildYear(t *testing.T, year int) map[string][]Observance {
	t.Helper()
	byDate, err := BuildObservancesForYear(year)
	if err != nil {
		t.Fatalf("BuildObservancesForYear(%d) error: %v", year, err)
	}
	return byDate
}

// ordinarySundays extracts the numbered Ordinary Time Sundays in date order.
func ordinarySundays(byDate map[string][]Observance) []struct {
	date   string
	number int
} {
	var out []struct {
		date   string
		number int
	}
	for date, entries := range byDate {
		for _, e := range entries {
			var n int
			if _, err := fmt.Sscanf(e.ID, "ot_sunday_%d", &n); err == nil {
				out = append(out, struct {
					date   string
					number int
				}{date, n})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].date < out[j].date })
	return out
}

func TestBuildObservancesForYear_NamedFeasts(t *testing.T) {
	byDate := buildYear(t, 2025)

	tests := []struct {
		date string
		id   string
		rank Rank
	}{
		{"2025-04-20", "easter", RankSolemnity},
		{"2025-04-18", "good_friday", RankTriduum},
		{"2025-03-05", "ash_wednesday", RankSolemnity},
		{"2025-06-08", "pentecost", RankSolemnity},
		{"2025-12-25", "christmas", RankSolemnity},
		{"2025-11-30", "advent_1", RankSunday},
		{"2025-06-29", "sts_peter_and_paul", RankSolemnity},
		{"2025-01-12", "baptism_of_the_lord", RankFeast},
	}

	for _, tt := range tests {
		entries, ok := byDate[tt.date]
		if !ok {
			t.Errorf("no entries for %s", tt.date)
			continue
		}
		found := false
		for _, e := range entries {
			if e.ID == tt.id {
				found = true
				if e.Rank != tt.rank {
					t.Errorf("%s rank = %s, want %s", tt.id, e.Rank, tt.rank)
				}
			}
		}
		if !found {
			t.Errorf("%s missing from %s", tt.id, tt.date)
		}
	}
}

func TestBuildObservancesForYear_SeasonMarkers(t *testing.T) {
	byDate := buildYear(t, 2025)

	markers := map[string]string{
		"advent_begins":           "2025-11-30",
		"christmas_season_begins": "2025-12-25",
		"lent_begins":             "2025-03-05",
		"easter_season_begins":    "2025-04-20",
		"ordinary_time_begins":    "2025-01-13", // day after Baptism of the Lord
		"ordinary_time_resumes":   "2025-06-09", // day after Pentecost
	}

	for id, date := range markers {
		found := false
		for _, e := range byDate[date] {
			if e.ID == id {
				found = true
				if !e.SeasonMarker {
					t.Errorf("%s not flagged as season marker", id)
				}
			}
		}
		if !found {
			t.Errorf("marker %s missing from %s", id, date)
		}
	}
}

func TestBuildObservancesForYear_OrdinarySundayNumbering(t *testing.T) {
	for _, year := range []int{2024, 2025, 2026, 2038} {
		byDate := buildYear(t, year)
		sundays := ordinarySundays(byDate)

		if len(sundays) == 0 {
			t.Fatalf("year %d: no Ordinary Time Sundays", year)
		}

		// First numbered Sunday is the 2nd: the Baptism Sunday closes week 1.
		if sundays[0].number != 2 {
			t.Errorf("year %d: first numbered Sunday = %d, want 2", year, sundays[0].number)
		}

		seen := make(map[int]bool)
		for i, s := range sundays {
			if seen[s.number] {
				t.Errorf("year %d: Sunday number %d repeats", year, s.number)
			}
			seen[s.number] = true
			if s.number > maxOrdinarySunday {
				t.Errorf("year %d: Sunday number %d exceeds cap %d", year, s.number, maxOrdinarySunday)
			}
			// Monotonically increasing by exactly one in date order: the
			// count resumes after the Lent/Easter gap instead of resetting.
			if i > 0 && s.number != sundays[i-1].number+1 {
				t.Errorf("year %d: numbering jumps from %d to %d at %s",
					year, sundays[i-1].number, s.number, s.date)
			}
		}
	}
}

func TestBuildObservancesForYear_ContinuationAcrossGap(t *testing.T) {
	byDate := buildYear(t, 2025)
	sundays := ordinarySundays(byDate)

	// 2025: Baptism Jan 12, Ash Wednesday Mar 5. Pre-Lent Sundays are
	// Jan 19 .. Mar 2, numbered 2..8. The Sunday after Pentecost (June 15)
	// must continue with 9.
	var lastPreLent, firstPostPentecost int
	for _, s := range sundays {
		if s.date < "2025-03-05" {
			lastPreLent = s.number
		}
		if s.date > "2025-06-08" && firstPostPentecost == 0 {
			firstPostPentecost = s.number
		}
	}

	if lastPreLent != 8 {
		t.Errorf("last pre-Lent Sunday number = %d, want 8", lastPreLent)
	}
	if firstPostPentecost != lastPreLent+1 {
		t.Errorf("first post-Pentecost Sunday number = %d, want %d", firstPostPentecost, lastPreLent+1)
	}

	for _, s := range sundays {
		if s.date == "2025-06-15" && s.number != 9 {
			t.Errorf("June 15 numbered %d, want 9", s.number)
		}
	}
}

func TestBuildObservancesForYear_SortAndDedup(t *testing.T) {
	byDate := buildYear(t, 2025)

	// Easter Sunday carries both the solemnity and the season marker;
	// the solemnity must sort first.
	easter := byDate["2025-04-20"]
	if len(easter) < 2 {
		t.Fatalf("expected at least 2 entries on Easter, got %d", len(easter))
	}
	if easter[0].ID != "easter" {
		t.Errorf("first Easter entry = %s, want the solemnity", easter[0].ID)
	}

	for date, entries := range byDate {
		seen := make(map[string]bool)
		for i, e := range entries {
			if seen[e.ID] {
				t.Errorf("%s: duplicate id %s", date, e.ID)
			}
			seen[e.ID] = true
			if i > 0 {
				prev := entries[i-1]
				if prev.Rank.Weight() < e.Rank.Weight() {
					t.Errorf("%s: %s (weight %d) sorted before %s (weight %d)",
						date, prev.ID, prev.Rank.Weight(), e.ID, e.Rank.Weight())
				}
				if prev.Rank.Weight() == e.Rank.Weight() && prev.Title > e.Title {
					t.Errorf("%s: titles out of order within rank: %q before %q", date, prev.Title, e.Title)
				}
			}
		}
	}
}

func TestBuildObservancesForYear_Deterministic(t *testing.T) {
	first := buildYear(t, 2025)
	second := buildYear(t, 2025)

	if len(first) != len(second) {
		t.Fatalf("date counts differ: %d vs %d", len(first), len(second))
	}
	for date, entries := range first {
		other := second[date]
		if len(entries) != len(other) {
			t.Fatalf("%s: entry counts differ", date)
		}
		for i := range entries {
			if entries[i] != other[i] {
				t.Errorf("%s[%d]: %+v != %+v", date, i, entries[i], other[i])
			}
		}
	}
}

func TestBuildObservancesForYear_YearRange(t *testing.T) {
	if _, err := BuildObservancesForYear(1500); err == nil {
		t.Error("accepted a pre-Gregorian year")
	}
}

func TestOrdinal(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "1st"}, {2, "2nd"}, {3, "3rd"}, {4, "4th"},
		{11, "11th"}, {12, "12th"}, {13, "13th"},
		{21, "21st"}, {22, "22nd"}, {23, "23rd"}, {24, "24th"},
		{33, "33rd"}, {34, "34th"},
	}
	for _, tt := range tests {
		if got := Ordinal(tt.n); got != tt.want {
			t.Errorf("Ordinal(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestBuildObservancesForYear_TitlesUseOrdinals(t *testing.T) {
	byDate := buildYear(t, 2025)

	for _, e := range byDate["2025-06-15"] {
		if e.ID == "ot_sunday_9" && !strings.HasPrefix(e.Title, "9th Sunday") {
			t.Errorf("title = %q, want 9th Sunday prefix", e.Title)
		}
	}
}
