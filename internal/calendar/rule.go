package calendar

import (
	"fmt"
	"time"
)

// SnapPolicy controls which direction a weekday snap moves when the
// computed date is not already on the requested weekday.
type SnapPolicy string

const (
	// SnapOnOrAfter moves forward to the requested weekday, staying put
	// if the date already matches. This is the default policy.
	SnapOnOrAfter SnapPolicy = "on_or_after"

	// SnapOnOrBefore moves backward to the requested weekday, staying put
	// if the date already matches. Produced by phrasings like
	// "the Sunday before X".
	SnapOnOrBefore SnapPolicy = "on_or_before"
)

// Rule is a closed sum over the six rule kinds the engine understands.
// New kinds are a compile-time addition: every switch over Rule in this
// package handles all concrete types and fails loudly on anything else.
type Rule interface {
	// Kind returns the wire discriminator for this rule.
	Kind() string

	// Validate checks the rule's own parameters, independent of any year.
	Validate() error

	isRule()
}

// FixedRule is a fixed month/day recurring every year.
// Day is not validated against month length; that is the caller's problem.
type FixedRule struct {
	Month int
	Day   int
}

// AnchorRule resolves to a named anchor's date for the year.
type AnchorRule struct {
	Key string
}

// RelativeRule is a signed day offset from an anchor, optionally snapped
// to a weekday under an explicit policy.
type RelativeRule struct {
	Anchor     string
	OffsetDays int
	Weekday    *time.Weekday // nil means no snap
	Snap       SnapPolicy    // empty means SnapOnOrAfter
}

// NthWeekdayAfterRule is the Nth occurrence of a weekday strictly after
// an anchor date. N=1 is the first occurrence; the anchor date itself
// never matches.
type NthWeekdayAfterRule struct {
	Anchor  string
	Weekday time.Weekday
	N       int
}

// BeforeFeastRule is an inclusive span of DaysBefore days ending on a
// feast day: the result is feast − (DaysBefore − 1). Anchor may be empty,
// in which case the feast rule's own anchor key is borrowed at resolution.
type BeforeFeastRule struct {
	DaysBefore int
	Anchor     string
}

// RawRule carries text the upstream parser could not interpret. It is
// never resolvable; reaching the engine with one is a hard error.
type RawRule struct {
	Text string
}

func (FixedRule) Kind() string           { return "fixed" }
func (AnchorRule) Kind() string          { return "anchor" }
func (RelativeRule) Kind() string        { return "relative" }
func (NthWeekdayAfterRule) Kind() string { return "nth_weekday_after" }
func (BeforeFeastRule) Kind() string     { return "before_feast" }
func (RawRule) Kind() string             { return "raw" }

func (FixedRule) isRule()           {}
func (AnchorRule) isRule()          {}
func (RelativeRule) isRule()        {}
func (NthWeekdayAfterRule) isRule() {}
func (BeforeFeastRule) isRule()     {}
func (RawRule) isRule()             {}

func (r FixedRule) Validate() error {
	if r.Month < 1 || r.Month > 12 {
		return &InvalidRuleParameterError{Field: "month", Reason: fmt.Sprintf("must be 1-12, got %d", r.Month)}
	}
	if r.Day < 1 || r.Day > 31 {
		return &InvalidRuleParameterError{Field: "day", Reason: fmt.Sprintf("must be 1-31, got %d", r.Day)}
	}
	return nil
}

func (r AnchorRule) Validate() error {
	if r.Key == "" {
		return &InvalidRuleParameterError{Field: "key", Reason: "must not be empty"}
	}
	return nil
}

func (r RelativeRule) Validate() error {
	if r.Anchor == "" {
		return &InvalidRuleParameterError{Field: "anchor", Reason: "must not be empty"}
	}
	if r.Weekday != nil && (*r.Weekday < time.Sunday || *r.Weekday > time.Saturday) {
		return &InvalidRuleParameterError{Field: "weekday", Reason: fmt.Sprintf("must be 0-6, got %d", int(*r.Weekday))}
	}
	switch r.Snap {
	case "", SnapOnOrAfter, SnapOnOrBefore:
	default:
		return &InvalidRuleParameterError{Field: "snap", Reason: fmt.Sprintf("unknown policy %q", r.Snap)}
	}
	return nil
}

func (r NthWeekdayAfterRule) Validate() error {
	if r.Anchor == "" {
		return &InvalidRuleParameterError{Field: "anchor", Reason: "must not be empty"}
	}
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return &InvalidRuleParameterError{Field: "weekday", Reason: fmt.Sprintf("must be 0-6, got %d", int(r.Weekday))}
	}
	if r.N < 1 {
		return &InvalidRuleParameterError{Field: "n", Reason: fmt.Sprintf("must be >= 1, got %d", r.N)}
	}
	return nil
}

func (r BeforeFeastRule) Validate() error {
	if r.DaysBefore < 1 {
		return &InvalidRuleParameterError{Field: "days_before", Reason: fmt.Sprintf("must be >= 1, got %d", r.DaysBefore)}
	}
	return nil
}

func (r RawRule) Validate() error {
	// A raw rule is well-formed as data; it only fails at resolution.
	return nil
}

// =============================================================================
// Wire form
// =============================================================================

// RuleSpec is the flat wire representation of a Rule, shared by the JSON
// API, the SQLite store, and the YAML definition files. The Type field
// discriminates; only the fields for that type are meaningful.
type RuleSpec struct {
	Type       string `json:"type" yaml:"type"`
	Month      int    `json:"month,omitempty" yaml:"month,omitempty"`
	Day        int    `json:"day,omitempty" yaml:"day,omitempty"`
	Key        string `json:"key,omitempty" yaml:"key,omitempty"`
	Anchor     string `json:"anchor,omitempty" yaml:"anchor,omitempty"`
	OffsetDays int    `json:"offset_days,omitempty" yaml:"offset_days,omitempty"`
	Weekday    *int   `json:"weekday,omitempty" yaml:"weekday,omitempty"`
	Snap       string `json:"snap,omitempty" yaml:"snap,omitempty"`
	N          int    `json:"n,omitempty" yaml:"n,omitempty"`
	DaysBefore int    `json:"days_before,omitempty" yaml:"days_before,omitempty"`
	Text       string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Rule converts the wire form into a typed Rule, validating parameters.
func (s RuleSpec) Rule() (Rule, error) {
	var rule Rule
	switch s.Type {
	case "fixed":
		rule = FixedRule{Month: s.Month, Day: s.Day}
	case "anchor":
		rule = AnchorRule{Key: s.Key}
	case "relative":
		var wd *time.Weekday
		if s.Weekday != nil {
			w := time.Weekday(*s.Weekday)
			wd = &w
		}
		rule = RelativeRule{Anchor: s.Anchor, OffsetDays: s.OffsetDays, Weekday: wd, Snap: SnapPolicy(s.Snap)}
	case "nth_weekday_after":
		wd := time.Weekday(0)
		if s.Weekday != nil {
			wd = time.Weekday(*s.Weekday)
		}
		rule = NthWeekdayAfterRule{Anchor: s.Anchor, Weekday: wd, N: s.N}
	case "before_feast":
		rule = BeforeFeastRule{DaysBefore: s.DaysBefore, Anchor: s.Anchor}
	case "raw":
		rule = RawRule{Text: s.Text}
	default:
		return nil, &InvalidRuleParameterError{Field: "type", Reason: fmt.Sprintf("unknown rule type %q", s.Type)}
	}

	if err := rule.Validate(); err != nil {
		return nil, err
	}
	return rule, nil
}

// Spec converts a typed Rule back into its wire form.
func Spec(rule Rule) RuleSpec {
	switch r := rule.(type) {
	case FixedRule:
		return RuleSpec{Type: r.Kind(), Month: r.Month, Day: r.Day}
	case AnchorRule:
		return RuleSpec{Type: r.Kind(), Key: r.Key}
	case RelativeRule:
		s := RuleSpec{Type: r.Kind(), Anchor: r.Anchor, OffsetDays: r.OffsetDays, Snap: string(r.Snap)}
		if r.Weekday != nil {
			w := int(*r.Weekday)
			s.Weekday = &w
		}
		return s
	case NthWeekdayAfterRule:
		w := int(r.Weekday)
		return RuleSpec{Type: r.Kind(), Anchor: r.Anchor, Weekday: &w, N: r.N}
	case BeforeFeastRule:
		return RuleSpec{Type: r.Kind(), DaysBefore: r.DaysBefore, Anchor: r.Anchor}
	case RawRule:
		return RuleSpec{Type: r.Kind(), Text: r.Text}
	}
	// Unreachable while Rule stays closed.
	return RuleSpec{}
}
