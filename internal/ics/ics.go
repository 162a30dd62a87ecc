// Package ics renders resolved calendar years as iCalendar documents.
package ics

import (
	"fmt"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/zapponejosh/novena-api/internal/calendar"
)

const prodID = "-//novena-api//calendar//EN"

// minExportRank filters the observance list down to days worth a calendar
// entry of their own. Memorials and plain weekdays stay out of the export.
var minExportRank = calendar.RankFeast.Weight()

// RenderYear serializes one year's observances and resolved novenas as a
// VCALENDAR. Observances at feast rank or above become single all-day
// VEVENTs; each novena becomes one VEVENT spanning start through feast day.
func RenderYear(year int, observances map[string][]calendar.Observance, novenas []calendar.NovenaInstance) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(prodID)

	stamp := time.Now().UTC()

	// Deterministic event order: by date, then by the per-date sort the
	// builder already applied.
	dates := make([]string, 0, len(observances))
	for date := range observances {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	for _, date := range dates {
		day, err := calendar.ParseDateString(date)
		if err != nil {
			return "", fmt.Errorf("observance date %q: %w", date, err)
		}

		for _, obs := range observances[date] {
			if obs.Rank.Weight() < minExportRank && !obs.SeasonMarker {
				continue
			}

			ev := cal.AddEvent(fmt.Sprintf("%s-%d@novena-api", obs.ID, year))
			ev.SetDtStampTime(stamp)
			ev.SetAllDayStartAt(day)
			// DTEND is exclusive for all-day events
			ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
			ev.SetSummary(obs.Title)
			ev.SetDescription(describeObservance(obs))
		}
	}

	for _, n := range novenas {
		ev := cal.AddEvent(fmt.Sprintf("novena-%s-%d@novena-api", n.ID, year))
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(n.StartDate)
		ev.SetAllDayEndAt(n.FeastDate.AddDate(0, 0, 1))
		ev.SetSummary(n.Title)
		ev.SetDescription(fmt.Sprintf("%d-day novena ending on the feast (%s)",
			n.DurationDays, calendar.FormatDate(n.FeastDate)))
	}

	return cal.Serialize(), nil
}

func describeObservance(obs calendar.Observance) string {
	var parts []string
	if obs.Rank != "" {
		parts = append(parts, string(obs.Rank))
	}
	if obs.Season != "" {
		parts = append(parts, fmt.Sprintf("season: %s", obs.Season))
	}
	if obs.Color != "" {
		parts = append(parts, fmt.Sprintf("color: %s", obs.Color))
	}
	return strings.Join(parts, "; ")
}
