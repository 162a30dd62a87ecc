package database

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/zapponejosh/novena-api/internal/calendar"
)

// NovenaRecord is the stored form of a novena definition. Rules are kept
// in their JSON wire form and decoded on demand.
type NovenaRecord struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	FeastRule    RuleJSON  `json:"feast_rule"`
	StartRule    *RuleJSON `json:"start_rule,omitempty"`
	DurationDays int       `json:"duration_days"`
	Category     string    `json:"category,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	Patronage    string    `json:"patronage,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// RuleJSON is a rule in wire form, held as raw JSON so records round-trip
// byte-for-byte through the store.
type RuleJSON json.RawMessage

// MarshalJSON returns the raw JSON unchanged.
func (r RuleJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON stores the raw JSON unchanged.
func (r *RuleJSON) UnmarshalJSON(data []byte) error {
	*r = append((*r)[:0], data...)
	return nil
}

// Rule decodes the wire form into a typed engine rule.
func (r RuleJSON) Rule() (calendar.Rule, error) {
	var spec calendar.RuleSpec
	if err := json.Unmarshal(r, &spec); err != nil {
		return nil, fmt.Errorf("decode rule: %w", err)
	}
	return spec.Rule()
}

// EncodeRule converts a typed rule into its stored wire form.
func EncodeRule(rule calendar.Rule) (RuleJSON, error) {
	data, err := json.Marshal(calendar.Spec(rule))
	if err != nil {
		return nil, fmt.Errorf("encode rule: %w", err)
	}
	return RuleJSON(data), nil
}

// Definition converts a stored record into an engine definition,
// decoding and validating both rules.
func (r *NovenaRecord) Definition() (calendar.NovenaDefinition, error) {
	feastRule, err := r.FeastRule.Rule()
	if err != nil {
		return calendar.NovenaDefinition{}, fmt.Errorf("definition %s feast rule: %w", r.ID, err)
	}

	def := calendar.NovenaDefinition{
		ID:           r.ID,
		Title:        r.Title,
		FeastRule:    feastRule,
		DurationDays: r.DurationDays,
		Category:     r.Category,
		Tags:         r.Tags,
		Patronage:    r.Patronage,
	}

	if r.StartRule != nil {
		startRule, err := r.StartRule.Rule()
		if err != nil {
			return calendar.NovenaDefinition{}, fmt.Errorf("definition %s start rule: %w", r.ID, err)
		}
		def.StartRule = startRule
	}

	return def, nil
}

// RecordFromDefinition converts an engine definition into its stored form.
func RecordFromDefinition(def calendar.NovenaDefinition) (*NovenaRecord, error) {
	if def.ID == "" {
		return nil, fmt.Errorf("definition has no id")
	}
	if def.FeastRule == nil {
		return nil, fmt.Errorf("definition %s has no feast rule", def.ID)
	}

	feastJSON, err := EncodeRule(def.FeastRule)
	if err != nil {
		return nil, fmt.Errorf("definition %s: %w", def.ID, err)
	}

	rec := &NovenaRecord{
		ID:           def.ID,
		Title:        def.Title,
		FeastRule:    feastJSON,
		DurationDays: def.Duration(),
		Category:     def.Category,
		Tags:         def.Tags,
		Patronage:    def.Patronage,
	}

	if def.StartRule != nil {
		startJSON, err := EncodeRule(def.StartRule)
		if err != nil {
			return nil, fmt.Errorf("definition %s: %w", def.ID, err)
		}
		rec.StartRule = &startJSON
	}

	return rec, nil
}
