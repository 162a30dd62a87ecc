package calendar

import (
	"fmt"
	"sort"
	"time"
)

// easterOffsets defines the movable anchors as signed day offsets from
// Easter Sunday.
var easterOffsets = map[string]int{
	"easter":                0,
	"shrove_tuesday":        -47,
	"ash_wednesday":         -46,
	"palm_sunday":           -7,
	"holy_thursday":         -3,
	"good_friday":           -2,
	"holy_saturday":         -1,
	"divine_mercy_sunday":   7,
	"ascension_thursday":    39,
	"ascension_sunday":      42,
	"pentecost":             49,
	"trinity_sunday":        56,
	"corpus_christi":        60,
	"corpus_christi_sunday": 63,
	"sacred_heart":          68,
	"immaculate_heart":      69,
}

// fixedAnchors defines the anchors that fall on the same month/day every year.
var fixedAnchors = map[string]struct{ month, day int }{
	"mary_mother_of_god":     {1, 1},
	"epiphany":               {1, 6},
	"st_joseph":              {3, 19},
	"annunciation":           {3, 25},
	"sts_peter_and_paul":     {6, 29},
	"assumption":             {8, 15},
	"our_lady_of_sorrows":    {9, 15},
	"our_lady_of_the_rosary": {10, 7},
	"all_saints":             {11, 1},
	"all_souls":              {11, 2},
	"immaculate_conception":  {12, 8},
	"our_lady_of_guadalupe":  {12, 12},
	"christmas_eve":          {12, 24},
	"christmas":              {12, 25},
}

// AnchorTable maps anchor keys to concrete dates for a single year.
// Build it once per year and pass it into every resolution call; missing
// keys always fail loudly via Lookup.
type AnchorTable struct {
	Year  int
	dates map[string]time.Time
}

// BuildAnchorTable computes every anchor date for the given year.
// Years outside [MinYear, MaxYear] are rejected rather than risk an
// in-range-looking wrong date.
func BuildAnchorTable(year int) (*AnchorTable, error) {
	if year < MinYear || year > MaxYear {
		return nil, fmt.Errorf("year %d outside supported range [%d, %d]", year, MinYear, MaxYear)
	}

	easter := CalculateEaster(year)
	dates := make(map[string]time.Time, len(easterOffsets)+len(fixedAnchors)+4)

	for key, offset := range easterOffsets {
		dates[key] = easter.AddDate(0, 0, offset)
	}
	for key, md := range fixedAnchors {
		dates[key] = Date(year, time.Month(md.month), md.day)
	}

	// Weekday-searched anchors.
	dates["advent_1"] = CalculateAdvent(year)
	dates["christ_king"] = dates["advent_1"].AddDate(0, 0, -7)
	dates["holy_family"] = calculateHolyFamily(year)
	dates["baptism_of_the_lord"] = calculateBaptism(year)

	return &AnchorTable{Year: year, dates: dates}, nil
}

// Lookup returns the date for an anchor key, or an UnknownAnchorError.
// There is deliberately no defaulting: an absent key is an upstream bug.
func (t *AnchorTable) Lookup(key string) (time.Time, error) {
	date, ok := t.dates[key]
	if !ok {
		return time.Time{}, &UnknownAnchorError{Key: key, Year: t.Year}
	}
	return date, nil
}

// Has reports whether the table contains the given anchor key.
func (t *AnchorTable) Has(key string) bool {
	_, ok := t.dates[key]
	return ok
}

// Keys returns all anchor keys in sorted order.
func (t *AnchorTable) Keys() []string {
	keys := make([]string, 0, len(t.dates))
	for k := range t.dates {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns a copy of the full key-to-date mapping.
func (t *AnchorTable) All() map[string]time.Time {
	out := make(map[string]time.Time, len(t.dates))
	for k, v := range t.dates {
		out[k] = v
	}
	return out
}

// CalculateAdvent calculates the first Sunday of Advent: the Sunday on or
// after November 27, which makes it the 4th Sunday before Christmas.
func CalculateAdvent(year int) time.Time {
	return snapWeekday(Date(year, time.November, 27), time.Sunday, SnapOnOrAfter)
}

// calculateHolyFamily finds the first Sunday in December 26-31. If no
// Sunday falls in that window (Christmas itself is a Sunday), the feast
// is kept on December 30.
func calculateHolyFamily(year int) time.Time {
	if sunday := FindWeekdayBetween(year, time.Sunday, 12, 26, 12, 31); sunday != nil {
		return *sunday
	}
	return Date(year, time.December, 30)
}

// calculateBaptism finds the Sunday strictly after Epiphany (January 6).
func calculateBaptism(year int) time.Time {
	return snapWeekday(Date(year, time.January, 7), time.Sunday, SnapOnOrAfter)
}

// FindWeekdayBetween finds the first occurrence of a weekday within an
// inclusive month/day range in the given year. Returns nil if the range
// contains no such weekday.
func FindWeekdayBetween(year int, weekday time.Weekday, startMonth, startDay, endMonth, endDay int) *time.Time {
	start := Date(year, time.Month(startMonth), startDay)
	end := Date(year, time.Month(endMonth), endDay)

	current := start
	for !current.After(end) {
		if current.Weekday() == weekday {
			return &current
		}
		current = current.AddDate(0, 0, 1)
	}

	return nil
}

// snapWeekday moves date to the nearest requested weekday in the policy's
// direction. A date already on that weekday does not move.
func snapWeekday(date time.Time, weekday time.Weekday, policy SnapPolicy) time.Time {
	diff := (int(weekday) - int(date.Weekday()) + 7) % 7
	if policy == SnapOnOrBefore {
		diff = -((int(date.Weekday()) - int(weekday) + 7) % 7)
	}
	return date.AddDate(0, 0, diff)
}
