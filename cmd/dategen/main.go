// Command dategen prints the computed liturgical dates for a year: the
// anchor table, the observance calendar, and optionally every stored
// novena resolved against that year. Useful for eyeballing a year before
// publishing it.
//
// Usage:
//
//	go run ./cmd/dategen -year 2026
//	go run ./cmd/dategen -year 2026 -db data/novenas.db
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/zapponejosh/novena-api/internal/calendar"
	"github.com/zapponejosh/novena-api/internal/database"
)

func main() {
	year := flag.Int("year", 2025, "Year to generate dates for")
	dbPath := flag.String("db", "", "Optional SQLite database; when set, stored novenas are resolved too")
	flag.Parse()

	if err := run(*year, *dbPath); err != nil {
		fmt.Fprintf(os.Stderr, "dategen: %v\n", err)
		os.Exit(1)
	}
}

func run(year int, dbPath string) error {
	anchors, err := calendar.BuildAnchorTable(year)
	if err != nil {
		return err
	}

	fmt.Printf("=== Liturgical Date Generator for %d ===\n\n", year)

	// ==========================================================================
	// ANCHOR TABLE
	// ==========================================================================
	fmt.Println("Anchors:")
	for _, key := range anchors.Keys() {
		date, _ := anchors.Lookup(key)
		fmt.Printf("  %-28s %s (%s)\n", key, calendar.FormatDate(date), date.Weekday())
	}
	fmt.Println()

	// ==========================================================================
	// OBSERVANCE CALENDAR
	// ==========================================================================
	byDate, err := calendar.BuildObservancesForYear(year)
	if err != nil {
		return err
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	fmt.Printf("Calendar (%d dates with observances):\n", len(dates))
	for _, date := range dates {
		for i, obs := range byDate[date] {
			marker := ""
			if obs.SeasonMarker {
				marker = " [season]"
			}
			if i == 0 {
				fmt.Printf("  %s  %-10s %s%s\n", date, obs.Rank, obs.Title, marker)
			} else {
				fmt.Printf("              %-10s %s%s\n", obs.Rank, obs.Title, marker)
			}
		}
	}
	fmt.Println()

	// ==========================================================================
	// STORED NOVENAS (optional)
	// ==========================================================================
	if dbPath == "" {
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	records, err := db.ListDefinitions(ctx)
	if err != nil {
		return err
	}

	defs := make([]calendar.NovenaDefinition, 0, len(records))
	for i := range records {
		def, err := records[i].Definition()
		if err != nil {
			fmt.Printf("  SKIP %-26s %v\n", records[i].ID, err)
			continue
		}
		defs = append(defs, def)
	}

	instances, failures := calendar.ResolveNovenas(defs, year, anchors)

	fmt.Printf("Novenas (%d stored):\n", len(records))
	for _, n := range instances {
		fmt.Printf("  %-28s %s -> %s (%d days)\n",
			n.ID, calendar.FormatDate(n.StartDate), calendar.FormatDate(n.FeastDate), n.DurationDays)
	}
	for _, f := range failures {
		fmt.Printf("  FAIL %-26s %v\n", f.ID, f.Err)
	}

	return nil
}
