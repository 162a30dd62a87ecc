package calendar

import (
	"errors"
	"testing"
	"time"
)

func weekdayPtr(w time.Weekday) *time.Weekday {
	return &w
}

func TestResolve_Fixed(t *testing.T) {
	anchors := mustAnchors(t, 2025)

	got, err := Resolve(FixedRule{Month: 6, Day: 29}, 2025, anchors, nil)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if FormatDate(got) != "2025-06-29" {
		t.Errorf("Resolve = %s, want 2025-06-29", FormatDate(got))
	}
}

func TestResolve_Anchor(t *testing.T) {
	anchors := mustAnchors(t, 2025)

	got, err := Resolve(AnchorRule{Key: "pentecost"}, 2025, anchors, nil)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if FormatDate(got) != "2025-06-08" {
		t.Errorf("Resolve = %s, want 2025-06-08", FormatDate(got))
	}
}

func TestResolve_UnknownAnchor(t *testing.T) {
	anchors := mustAnchors(t, 2025)

	rules := []Rule{
		AnchorRule{Key: "nonexistent_key"},
		RelativeRule{Anchor: "nonexistent_key", OffsetDays: 3},
		NthWeekdayAfterRule{Anchor: "nonexistent_key", Weekday: time.Friday, N: 1},
		BeforeFeastRule{DaysBefore: 9, Anchor: "nonexistent_key"},
	}

	for _, rule := range rules {
		_, err := Resolve(rule, 2025, anchors, nil)
		var unknownErr *UnknownAnchorError
		if !errors.As(err, &unknownErr) {
			t.Errorf("rule %s: error = %v, want *UnknownAnchorError", rule.Kind(), err)
		}
	}
}

func TestResolve_Relative(t *testing.T) {
	anchors := mustAnchors(t, 2025)

	tests := []struct {
		name string
		rule RelativeRule
		want string
	}{
		{
			name: "plain offset",
			rule: RelativeRule{Anchor: "easter", OffsetDays: 50},
			want: "2025-06-09", // day after Pentecost
		},
		{
			name: "negative offset",
			rule: RelativeRule{Anchor: "christmas", OffsetDays: -1},
			want: "2025-12-24",
		},
		{
			name: "snap forward from non-matching weekday",
			rule: RelativeRule{Anchor: "ascension_thursday", OffsetDays: 0, Weekday: weekdayPtr(time.Sunday)},
			want: "2025-06-01", // Thursday May 29 snaps forward to Sunday
		},
		{
			name: "snap is idempotent when already on weekday",
			rule: RelativeRule{Anchor: "pentecost", OffsetDays: 0, Weekday: weekdayPtr(time.Sunday)},
			want: "2025-06-08", // Pentecost is a Sunday; must not advance a week
		},
		{
			name: "snap backward policy",
			rule: RelativeRule{Anchor: "pentecost", OffsetDays: -1, Weekday: weekdayPtr(time.Sunday), Snap: SnapOnOrBefore},
			want: "2025-06-01", // Saturday June 7 snaps back to the prior Sunday
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.rule, 2025, anchors, nil)
			if err != nil {
				t.Fatalf("Resolve error: %v", err)
			}
			if FormatDate(got) != tt.want {
				t.Errorf("Resolve = %s, want %s", FormatDate(got), tt.want)
			}
		})
	}
}

func TestResolve_NthWeekdayAfter(t *testing.T) {
	anchors := mustAnchors(t, 2025)

	// "Saturday after Ascension Thursday": Ascension 2025 is May 29.
	got, err := Resolve(NthWeekdayAfterRule{Anchor: "ascension_thursday", Weekday: time.Saturday, N: 1}, 2025, anchors, nil)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if FormatDate(got) != "2025-05-31" {
		t.Errorf("Resolve = %s, want 2025-05-31", FormatDate(got))
	}

	// N=2 lands a week later.
	got, err = Resolve(NthWeekdayAfterRule{Anchor: "ascension_thursday", Weekday: time.Saturday, N: 2}, 2025, anchors, nil)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if FormatDate(got) != "2025-06-07" {
		t.Errorf("Resolve n=2 = %s, want 2025-06-07", FormatDate(got))
	}
}

func TestResolve_NthWeekdayAfter_NeverMatchesAnchor(t *testing.T) {
	// Easter is a Sunday; the first Sunday after it must be a full week out.
	for _, year := range []int{2024, 2025, 2026, 2038} {
		anchors := mustAnchors(t, year)
		easter, _ := anchors.Lookup("easter")

		got, err := Resolve(NthWeekdayAfterRule{Anchor: "easter", Weekday: time.Sunday, N: 1}, year, anchors, nil)
		if err != nil {
			t.Fatalf("Resolve year %d: %v", year, err)
		}
		if got.Equal(easter) {
			t.Fatalf("year %d: result equals the anchor date", year)
		}
		if diff := DaysBetween(easter, got); diff < 1 || diff > 7 {
			t.Errorf("year %d: first match %d days after anchor, want 1-7", year, diff)
		}
	}
}

func TestResolve_BeforeFeast(t *testing.T) {
	anchors := mustAnchors(t, 2025)

	// Nine-day inclusive span ending June 29: days 21,22,...,29.
	got, err := Resolve(BeforeFeastRule{DaysBefore: 9, Anchor: "sts_peter_and_paul"}, 2025, anchors, nil)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if FormatDate(got) != "2025-06-21" {
		t.Errorf("Resolve = %s, want 2025-06-21", FormatDate(got))
	}

	// DaysBefore=1 is the feast day itself.
	got, err = Resolve(BeforeFeastRule{DaysBefore: 1, Anchor: "sts_peter_and_paul"}, 2025, anchors, nil)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if FormatDate(got) != "2025-06-29" {
		t.Errorf("Resolve daysBefore=1 = %s, want 2025-06-29", FormatDate(got))
	}
}

func TestResolve_BeforeFeast_BorrowsAnchor(t *testing.T) {
	anchors := mustAnchors(t, 2025)
	rctx := &ResolveContext{FeastRule: AnchorRule{Key: "pentecost"}}

	got, err := Resolve(BeforeFeastRule{DaysBefore: 9}, 2025, anchors, rctx)
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if FormatDate(got) != "2025-05-31" { // June 8 minus 8 days
		t.Errorf("Resolve = %s, want 2025-05-31", FormatDate(got))
	}
}

func TestResolve_BeforeFeast_NoAnchorNoBorrow(t *testing.T) {
	anchors := mustAnchors(t, 2025)

	// No explicit anchor and no context at all.
	_, err := Resolve(BeforeFeastRule{DaysBefore: 9}, 2025, anchors, nil)
	var paramErr *InvalidRuleParameterError
	if !errors.As(err, &paramErr) {
		t.Errorf("no context: error = %v, want *InvalidRuleParameterError", err)
	}

	// A fixed feast rule cannot lend an anchor key; this must error, not
	// silently reuse the fixed date.
	rctx := &ResolveContext{FeastRule: FixedRule{Month: 6, Day: 29}}
	_, err = Resolve(BeforeFeastRule{DaysBefore: 9}, 2025, anchors, rctx)
	if !errors.As(err, &paramErr) {
		t.Errorf("fixed feast rule: error = %v, want *InvalidRuleParameterError", err)
	}
}

func TestResolve_Raw(t *testing.T) {
	anchors := mustAnchors(t, 2025)

	_, err := Resolve(RawRule{Text: "the Saturday nearest the feast"}, 2025, anchors, nil)
	var rawErr *UnresolvableRuleError
	if !errors.As(err, &rawErr) {
		t.Fatalf("error = %v, want *UnresolvableRuleError", err)
	}
	if rawErr.Text != "the Saturday nearest the feast" {
		t.Errorf("error text = %q, want original text preserved", rawErr.Text)
	}
}

func TestResolve_InvalidParameters(t *testing.T) {
	anchors := mustAnchors(t, 2025)

	rules := []Rule{
		FixedRule{Month: 13, Day: 1},
		FixedRule{Month: 6, Day: 0},
		AnchorRule{},
		RelativeRule{Anchor: "easter", Weekday: weekdayPtr(time.Weekday(9))},
		RelativeRule{Anchor: "easter", Snap: "nearest"},
		NthWeekdayAfterRule{Anchor: "easter", Weekday: time.Friday, N: 0},
		NthWeekdayAfterRule{Anchor: "easter", Weekday: time.Weekday(-1), N: 1},
		BeforeFeastRule{DaysBefore: 0, Anchor: "easter"},
		nil,
	}

	for _, rule := range rules {
		_, err := Resolve(rule, 2025, anchors, nil)
		var paramErr *InvalidRuleParameterError
		if !errors.As(err, &paramErr) {
			t.Errorf("rule %+v: error = %v, want *InvalidRuleParameterError", rule, err)
		}
	}
}

func TestResolve_Deterministic(t *testing.T) {
	anchors := mustAnchors(t, 2025)
	rules := []Rule{
		FixedRule{Month: 8, Day: 15},
		AnchorRule{Key: "sacred_heart"},
		RelativeRule{Anchor: "easter", OffsetDays: 13, Weekday: weekdayPtr(time.Friday)},
		NthWeekdayAfterRule{Anchor: "pentecost", Weekday: time.Wednesday, N: 3},
		BeforeFeastRule{DaysBefore: 33, Anchor: "christmas"},
	}

	for _, rule := range rules {
		first, err := Resolve(rule, 2025, anchors, nil)
		if err != nil {
			t.Fatalf("rule %s: %v", rule.Kind(), err)
		}
		second, err := Resolve(rule, 2025, anchors, nil)
		if err != nil {
			t.Fatalf("rule %s second call: %v", rule.Kind(), err)
		}
		if !first.Equal(second) {
			t.Errorf("rule %s: %s != %s across identical calls", rule.Kind(), FormatDate(first), FormatDate(second))
		}
	}
}
