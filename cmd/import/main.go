// Command import loads novena definitions from a YAML or JSON file into
// the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -file data/novenas.yaml -db data/novenas.db
//
// This tool:
// 1. Creates/opens the SQLite database
// 2. Runs migrations to ensure schema is current
// 3. Parses the definition file (.yaml/.yml or .json, by extension)
// 4. Validates every definition and upserts in a single transaction
//
// The import is idempotent: definitions are keyed by id, and re-running
// with the same file updates in place.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/zapponejosh/novena-api/internal/calendar"
	"github.com/zapponejosh/novena-api/internal/database"
)

func main() {
	// Parse command line flags
	filePath := flag.String("file", "data/novenas.yaml", "Path to definitions file (YAML or JSON)")
	dbPath := flag.String("db", "data/novenas.db", "Path to SQLite database")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	// Setup logger
	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	// Run import
	if err := run(*filePath, *dbPath, logger); err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("import complete")
}

// importFile is the top-level shape of a definition file. Rules inside
// use the same type-discriminated form as the JSON API.
type importFile struct {
	Novenas []importDefinition `json:"novenas" yaml:"novenas"`
}

type importDefinition struct {
	ID           string             `json:"id" yaml:"id"`
	Title        string             `json:"title" yaml:"title"`
	FeastRule    calendar.RuleSpec  `json:"feast_rule" yaml:"feast_rule"`
	StartRule    *calendar.RuleSpec `json:"start_rule,omitempty" yaml:"start_rule,omitempty"`
	DurationDays int                `json:"duration_days,omitempty" yaml:"duration_days,omitempty"`
	Category     string             `json:"category,omitempty" yaml:"category,omitempty"`
	Tags         []string           `json:"tags,omitempty" yaml:"tags,omitempty"`
	Patronage    string             `json:"patronage,omitempty" yaml:"patronage,omitempty"`
}

func run(filePath, dbPath string, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and parse the definition file
	// =========================================================================
	logger.Info("reading definitions file", slog.String("path", filePath))

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read definitions file: %w", err)
	}

	var file importFile
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("parse JSON: %w", err)
		}
	default:
		return fmt.Errorf("unsupported file extension %q (want .yaml, .yml, or .json)", ext)
	}

	if len(file.Novenas) == 0 {
		return fmt.Errorf("no novena definitions in %s", filePath)
	}

	logger.Info("parsed definitions", slog.Int("count", len(file.Novenas)))

	// =========================================================================
	// Step 2: Validate before touching the database
	// =========================================================================
	records := make([]*database.NovenaRecord, 0, len(file.Novenas))
	for i, def := range file.Novenas {
		rec, err := buildRecord(def)
		if err != nil {
			return fmt.Errorf("definition %d (%s): %w", i+1, def.ID, err)
		}
		records = append(records, rec)
	}

	// =========================================================================
	// Step 3: Open database and run migrations
	// =========================================================================
	logger.Info("opening database", slog.String("path", dbPath))

	db, err := database.Open(database.DefaultConfig(dbPath), logger)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	migrated, err := db.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("migrations complete", slog.Int("applied", migrated))

	// =========================================================================
	// Step 4: Upsert everything in one transaction
	// =========================================================================
	err = db.WithTx(ctx, func(tx *database.Tx) error {
		for _, rec := range records {
			if err := tx.UpsertDefinition(ctx, rec); err != nil {
				return err
			}
			logger.Debug("upserted definition", slog.String("id", rec.ID))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("import definitions: %w", err)
	}

	// =========================================================================
	// Step 5: Verify
	// =========================================================================
	stats, err := db.GetDefinitionStats(ctx)
	if err != nil {
		return fmt.Errorf("read back stats: %w", err)
	}

	elapsed := time.Since(startTime)

	logger.Info("import verified",
		slog.Int("stored_definitions", stats.TotalDefinitions),
		slog.Int("with_start_hint", stats.WithStartHint),
		slog.Duration("elapsed", elapsed),
	)

	// Print summary
	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Definitions imported: %d\n", len(records))
	fmt.Printf("Total in store:       %d\n", stats.TotalDefinitions)
	fmt.Printf("With start hints:     %d\n", stats.WithStartHint)
	fmt.Printf("Time elapsed:         %v\n", elapsed.Round(time.Millisecond))

	return nil
}

// buildRecord validates one file entry and converts it to its stored form.
func buildRecord(def importDefinition) (*database.NovenaRecord, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	if def.Title == "" {
		return nil, fmt.Errorf("missing title")
	}

	duration := def.DurationDays
	if duration == 0 {
		duration = calendar.DefaultDurationDays
	}
	if duration < 1 || duration > calendar.MaxDurationDays {
		return nil, fmt.Errorf("duration_days %d outside [1, %d]", duration, calendar.MaxDurationDays)
	}

	// Decode both rules so bad definitions fail before the transaction
	feast, err := def.FeastRule.Rule()
	if err != nil {
		return nil, fmt.Errorf("feast_rule: %w", err)
	}
	feastJSON, err := database.EncodeRule(feast)
	if err != nil {
		return nil, fmt.Errorf("feast_rule: %w", err)
	}

	rec := &database.NovenaRecord{
		ID:           def.ID,
		Title:        def.Title,
		FeastRule:    feastJSON,
		DurationDays: duration,
		Category:     def.Category,
		Tags:         def.Tags,
		Patronage:    def.Patronage,
	}

	if def.StartRule != nil {
		start, err := def.StartRule.Rule()
		if err != nil {
			return nil, fmt.Errorf("start_rule: %w", err)
		}
		startJSON, err := database.EncodeRule(start)
		if err != nil {
			return nil, fmt.Errorf("start_rule: %w", err)
		}
		rec.StartRule = &startJSON
	}

	return rec, nil
}
