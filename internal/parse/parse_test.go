package parse

import (
	"reflect"
	"testing"
	"time"

	"github.com/zapponejosh/novena-api/internal/calendar"
)

func weekdayPtr(w time.Weekday) *time.Weekday {
	return &w
}

func TestParseRule(t *testing.T) {
	tests := []struct {
		text string
		want calendar.Rule
	}{
		// Fixed dates.
		{"June 29", calendar.FixedRule{Month: 6, Day: 29}},
		{"june 29th", calendar.FixedRule{Month: 6, Day: 29}},
		{"29 June", calendar.FixedRule{Month: 6, Day: 29}},
		{"8th of December", calendar.FixedRule{Month: 12, Day: 8}},
		{"Dec. 12", calendar.FixedRule{Month: 12, Day: 12}},

		// Anchor phrases.
		{"Pentecost", calendar.AnchorRule{Key: "pentecost"}},
		{"Ash Wednesday", calendar.AnchorRule{Key: "ash_wednesday"}},
		{"the Ascension", calendar.AnchorRule{Key: "ascension_thursday"}},
		{"Christ the King", calendar.AnchorRule{Key: "christ_king"}},
		{"Divine Mercy Sunday", calendar.AnchorRule{Key: "divine_mercy_sunday"}},
		{"the feast of the Immaculate Conception", calendar.AnchorRule{Key: "immaculate_conception"}},

		// Nth weekday after an anchor.
		{"Saturday after Ascension Thursday", calendar.NthWeekdayAfterRule{Anchor: "ascension_thursday", Weekday: time.Saturday, N: 1}},
		{"the Friday after Easter", calendar.NthWeekdayAfterRule{Anchor: "easter", Weekday: time.Friday, N: 1}},
		{"second Friday after Easter", calendar.NthWeekdayAfterRule{Anchor: "easter", Weekday: time.Friday, N: 2}},

		// Weekday before an anchor: snap backward from the prior day.
		{"the Sunday before Pentecost", calendar.RelativeRule{Anchor: "pentecost", OffsetDays: -1, Weekday: weekdayPtr(time.Sunday), Snap: calendar.SnapOnOrBefore}},

		// Day offsets.
		{"3 days after Christmas", calendar.RelativeRule{Anchor: "christmas", OffsetDays: 3}},
		{"40 days before Easter", calendar.RelativeRule{Anchor: "easter", OffsetDays: -40}},
		{"nine days after Pentecost", calendar.RelativeRule{Anchor: "pentecost", OffsetDays: 9}},

		// Countdown to the owning feast.
		{"nine days before the feast", calendar.BeforeFeastRule{DaysBefore: 9}},
		{"9 days before the feast", calendar.BeforeFeastRule{DaysBefore: 9}},
		{"30 days before the feast day", calendar.BeforeFeastRule{DaysBefore: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := ParseRule(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRule(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseRule_FallsBackToRaw(t *testing.T) {
	texts := []string{
		"",
		"the Saturday nearest the feast",
		"whenever the bishop announces it",
		"Smarch 32",
		"eleventy days before the feast",
	}

	for _, text := range texts {
		got := ParseRule(text)
		raw, ok := got.(calendar.RawRule)
		if !ok {
			t.Errorf("ParseRule(%q) = %+v, want RawRule", text, got)
			continue
		}
		// The original text survives for diagnostics, never a guess.
		if raw.Text != text {
			t.Errorf("RawRule text = %q, want %q", raw.Text, text)
		}
	}
}

func TestParseRule_NormalizesWhitespaceAndCase(t *testing.T) {
	got := ParseRule("  PENTECOST   Sunday  ")
	want := calendar.AnchorRule{Key: "pentecost"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseRule = %+v, want %+v", got, want)
	}
}

func TestParseRule_ParsedRulesResolve(t *testing.T) {
	// Every non-raw parse result must actually resolve against a real
	// anchor table; a parser emitting unknown anchor keys is broken.
	anchors, err := calendar.BuildAnchorTable(2025)
	if err != nil {
		t.Fatalf("build anchors: %v", err)
	}

	phrases := []string{
		"June 29",
		"Pentecost",
		"Saturday after Ascension Thursday",
		"the Sunday before Pentecost",
		"3 days after Christmas",
	}

	for _, text := range phrases {
		rule := ParseRule(text)
		if _, ok := rule.(calendar.RawRule); ok {
			t.Fatalf("ParseRule(%q) unexpectedly raw", text)
		}
		if _, err := calendar.Resolve(rule, 2025, anchors, nil); err != nil {
			t.Errorf("resolve %q: %v", text, err)
		}
	}
}
