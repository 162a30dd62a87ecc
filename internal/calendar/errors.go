package calendar

import "fmt"

// UnknownAnchorError reports a rule referencing an anchor key that is not
// in the year's anchor table. Resolution never falls back to a default date.
type UnknownAnchorError struct {
	Key  string
	Year int
}

func (e *UnknownAnchorError) Error() string {
	return fmt.Sprintf("unknown anchor %q for year %d", e.Key, e.Year)
}

// UnresolvableRuleError reports a raw (unparsed) rule reaching the engine.
// This signals an upstream parsing gap and is always fatal for the entry.
type UnresolvableRuleError struct {
	Text string
}

func (e *UnresolvableRuleError) Error() string {
	return fmt.Sprintf("unresolvable raw rule: %q", e.Text)
}

// InvalidRuleParameterError reports malformed rule data, e.g. a weekday
// outside [0,6] or an occurrence count below 1.
type InvalidRuleParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidRuleParameterError) Error() string {
	return fmt.Sprintf("invalid rule parameter %s: %s", e.Field, e.Reason)
}

// InvariantViolationError reports a resolved novena failing its
// start/feast/duration post-conditions. Fatal for that entry; batch callers
// isolate and report it, never swallow it.
type InvariantViolationError struct {
	ID     string
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("novena %s violates invariant: %s", e.ID, e.Reason)
}
