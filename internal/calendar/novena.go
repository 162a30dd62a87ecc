package calendar

import (
	"encoding/json"
	"fmt"
	"time"
)

// Duration bounds for a novena span, inclusive of both start and feast day.
const (
	DefaultDurationDays = 9
	MaxDurationDays     = 4000
)

// NovenaDefinition is the declarative description of a novena. The feast
// rule and duration are authoritative; the start rule is an untrusted hint
// scraped from upstream text.
type NovenaDefinition struct {
	ID           string
	Title        string
	FeastRule    Rule
	StartRule    Rule // optional hint, may be nil
	DurationDays int  // 0 means DefaultDurationDays
	Category     string
	Tags         []string
	Patronage    string
}

// Duration returns the definition's duration with the default applied.
func (d NovenaDefinition) Duration() int {
	if d.DurationDays == 0 {
		return DefaultDurationDays
	}
	return d.DurationDays
}

// NovenaInstance is a fully resolved novena occurrence for one year.
// Invariant: feast − start + 1 == duration, exactly.
type NovenaInstance struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	StartDate    time.Time `json:"-"`
	FeastDate    time.Time `json:"-"`
	DurationDays int       `json:"duration_days"`
}

// MarshalJSON emits dates as plain ISO-8601 calendar dates. The internal
// midnight-UTC normalization must never leak to a consumer as an
// off-by-one day, so dates never cross the wire with a time component.
func (n NovenaInstance) MarshalJSON() ([]byte, error) {
	type alias NovenaInstance
	return json.Marshal(struct {
		alias
		StartDate string `json:"start_date"`
		FeastDate string `json:"feast_date"`
	}{
		alias:     alias(n),
		StartDate: FormatDate(n.StartDate),
		FeastDate: FormatDate(n.FeastDate),
	})
}

// ResolveNovenaForYear resolves one definition against one year.
//
// The start date is always computed from the feast date and duration.
// A start-rule hint, when present, is resolved and compared; it is kept
// only when it lands exactly on the computed start. Any mismatch silently
// prefers the computed date: scraped start dates are routinely off by one,
// and the feast+duration contract is the one we trust. Do not "improve"
// this into merging the two dates.
func ResolveNovenaForYear(def NovenaDefinition, year int, anchors *AnchorTable) (*NovenaInstance, error) {
	duration := def.Duration()
	if duration < 1 || duration > MaxDurationDays {
		return nil, &InvalidRuleParameterError{
			Field:  "duration_days",
			Reason: fmt.Sprintf("must be in [1, %d], got %d", MaxDurationDays, duration),
		}
	}
	if def.FeastRule == nil {
		return nil, &InvalidRuleParameterError{Field: "feast_rule", Reason: "must not be nil"}
	}

	feastDate, err := Resolve(def.FeastRule, year, anchors, nil)
	if err != nil {
		return nil, fmt.Errorf("resolve feast rule for %s: %w", def.ID, err)
	}

	canonicalStart := feastDate.AddDate(0, 0, -(duration - 1))
	startDate := canonicalStart

	if def.StartRule != nil {
		rctx := &ResolveContext{FeastRule: def.FeastRule}
		hinted, err := Resolve(def.StartRule, year, anchors, rctx)
		if err != nil {
			return nil, fmt.Errorf("resolve start rule for %s: %w", def.ID, err)
		}

		// A fixed start that lands after the feast is a December start for
		// a January feast; re-resolve it in the previous year.
		if _, isFixed := def.StartRule.(FixedRule); isFixed && hinted.After(feastDate) {
			hinted, err = Resolve(def.StartRule, year-1, anchors, rctx)
			if err != nil {
				return nil, fmt.Errorf("resolve start rule for %s in previous year: %w", def.ID, err)
			}
		}

		if hinted.Equal(canonicalStart) {
			startDate = hinted
		}
		// Otherwise the hint is discarded; canonicalStart stands.
	}

	if startDate.After(feastDate) {
		return nil, &InvariantViolationError{
			ID:     def.ID,
			Reason: fmt.Sprintf("start %s after feast %s", FormatDate(startDate), FormatDate(feastDate)),
		}
	}
	if span := DaysBetween(startDate, feastDate) + 1; span != duration {
		return nil, &InvariantViolationError{
			ID:     def.ID,
			Reason: fmt.Sprintf("span %d days, duration says %d", span, duration),
		}
	}

	return &NovenaInstance{
		ID:           def.ID,
		Title:        def.Title,
		StartDate:    startDate,
		FeastDate:    feastDate,
		DurationDays: duration,
	}, nil
}

// NovenaFailure records one definition that could not be resolved in a
// batch run.
type NovenaFailure struct {
	ID    string
	Title string
	Err   error
}

// ResolveNovenas resolves every definition for a year, isolating per-entry
// failures rather than aborting the batch. The core never swallows an
// error; each one comes back in the failure list with its entry identity.
func ResolveNovenas(defs []NovenaDefinition, year int, anchors *AnchorTable) ([]NovenaInstance, []NovenaFailure) {
	instances := make([]NovenaInstance, 0, len(defs))
	var failures []NovenaFailure

	for _, def := range defs {
		inst, err := ResolveNovenaForYear(def, year, anchors)
		if err != nil {
			failures = append(failures, NovenaFailure{ID: def.ID, Title: def.Title, Err: err})
			continue
		}
		instances = append(instances, *inst)
	}

	return instances, failures
}
