package calendar

import (
	"fmt"
	"time"
)

// ResolveContext carries per-call context into Resolve. Today that is only
// the feast rule of the novena being resolved, which a before_feast rule
// without an explicit anchor borrows its anchor key from.
type ResolveContext struct {
	FeastRule Rule
}

// Resolve interprets a rule against a year's anchor table and produces a
// concrete date.
//
// The function is pure: same rule, year, and anchors always yield the same
// date. Errors are hard stops for this one resolution; nothing is ever
// defaulted or guessed.
func Resolve(rule Rule, year int, anchors *AnchorTable, rctx *ResolveContext) (time.Time, error) {
	if rule == nil {
		return time.Time{}, &InvalidRuleParameterError{Field: "rule", Reason: "must not be nil"}
	}
	if err := rule.Validate(); err != nil {
		return time.Time{}, err
	}

	switch r := rule.(type) {
	case FixedRule:
		return Date(year, time.Month(r.Month), r.Day), nil

	case AnchorRule:
		return anchors.Lookup(r.Key)

	case RelativeRule:
		base, err := anchors.Lookup(r.Anchor)
		if err != nil {
			return time.Time{}, err
		}
		result := base.AddDate(0, 0, r.OffsetDays)
		if r.Weekday != nil {
			policy := r.Snap
			if policy == "" {
				policy = SnapOnOrAfter
			}
			result = snapWeekday(result, *r.Weekday, policy)
		}
		return result, nil

	case NthWeekdayAfterRule:
		base, err := anchors.Lookup(r.Anchor)
		if err != nil {
			return time.Time{}, err
		}
		// Start strictly after the anchor: the anchor date never counts,
		// even when it falls on the target weekday.
		current := base.AddDate(0, 0, 1)
		remaining := r.N
		for {
			if current.Weekday() == r.Weekday {
				remaining--
				if remaining == 0 {
					return current, nil
				}
			}
			current = current.AddDate(0, 0, 1)
		}

	case BeforeFeastRule:
		key := r.Anchor
		if key == "" {
			// Borrow the feast rule's anchor key and re-resolve it for
			// this year. Only an anchor-kind feast rule can lend a key;
			// anything else is an explicit error, not further indirection.
			if rctx == nil || rctx.FeastRule == nil {
				return time.Time{}, &InvalidRuleParameterError{Field: "anchor", Reason: "before_feast rule has no anchor and no feast rule in context"}
			}
			feastAnchor, ok := rctx.FeastRule.(AnchorRule)
			if !ok {
				return time.Time{}, &InvalidRuleParameterError{
					Field:  "anchor",
					Reason: fmt.Sprintf("before_feast rule has no anchor and feast rule is %q, not anchor", rctx.FeastRule.Kind()),
				}
			}
			key = feastAnchor.Key
		}
		feast, err := anchors.Lookup(key)
		if err != nil {
			return time.Time{}, err
		}
		// Inclusive span: DaysBefore counts the feast day itself.
		return feast.AddDate(0, 0, -(r.DaysBefore - 1)), nil

	case RawRule:
		return time.Time{}, &UnresolvableRuleError{Text: r.Text}
	}

	return time.Time{}, &InvalidRuleParameterError{Field: "type", Reason: fmt.Sprintf("unhandled rule type %T", rule)}
}
