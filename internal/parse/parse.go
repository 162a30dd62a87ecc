// Package parse turns scraped natural-language date phrases into rule
// values for the resolution engine.
//
// Everything here is heuristic string matching. A phrase that matches no
// pattern comes back as a raw rule carrying the original text; the engine
// refuses raw rules, so parser gaps surface instead of producing guessed
// dates.
package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/zapponejosh/novena-api/internal/calendar"
)

var monthNames = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

var numberWords = map[string]int{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "thirty": 30, "forty": 40,
}

var ordinalWords = map[string]int{
	"first": 1, "second": 2, "third": 3, "fourth": 4, "fifth": 5,
}

// anchorPhrases maps normalized feast phrasings to anchor keys. Longer
// phrases are tried first so "ascension thursday" wins over "ascension".
var anchorPhrases = []struct {
	phrase string
	key    string
}{
	{"divine mercy sunday", "divine_mercy_sunday"},
	{"sunday of divine mercy", "divine_mercy_sunday"},
	{"ascension thursday", "ascension_thursday"},
	{"ascension sunday", "ascension_sunday"},
	{"ascension of the lord", "ascension_thursday"},
	{"ascension", "ascension_thursday"},
	{"pentecost sunday", "pentecost"},
	{"pentecost", "pentecost"},
	{"trinity sunday", "trinity_sunday"},
	{"holy trinity", "trinity_sunday"},
	{"corpus christi sunday", "corpus_christi_sunday"},
	{"corpus christi", "corpus_christi"},
	{"sacred heart of jesus", "sacred_heart"},
	{"sacred heart", "sacred_heart"},
	{"immaculate heart of mary", "immaculate_heart"},
	{"immaculate heart", "immaculate_heart"},
	{"shrove tuesday", "shrove_tuesday"},
	{"ash wednesday", "ash_wednesday"},
	{"palm sunday", "palm_sunday"},
	{"maundy thursday", "holy_thursday"},
	{"holy thursday", "holy_thursday"},
	{"good friday", "good_friday"},
	{"holy saturday", "holy_saturday"},
	{"easter sunday", "easter"},
	{"easter", "easter"},
	{"christmas eve", "christmas_eve"},
	{"christmas day", "christmas"},
	{"christmas", "christmas"},
	{"mary mother of god", "mary_mother_of_god"},
	{"epiphany of the lord", "epiphany"},
	{"epiphany", "epiphany"},
	{"baptism of the lord", "baptism_of_the_lord"},
	{"holy family", "holy_family"},
	{"first sunday of advent", "advent_1"},
	{"christ the king", "christ_king"},
	{"immaculate conception", "immaculate_conception"},
	{"our lady of guadalupe", "our_lady_of_guadalupe"},
	{"our lady of sorrows", "our_lady_of_sorrows"},
	{"our lady of the rosary", "our_lady_of_the_rosary"},
	{"all souls day", "all_souls"},
	{"all souls", "all_souls"},
	{"all saints day", "all_saints"},
	{"all saints", "all_saints"},
	{"assumption of mary", "assumption"},
	{"assumption", "assumption"},
	{"annunciation", "annunciation"},
	{"saint joseph", "st_joseph"},
	{"st joseph", "st_joseph"},
	{"saints peter and paul", "sts_peter_and_paul"},
	{"sts peter and paul", "sts_peter_and_paul"},
}

var (
	fixedMonthDayRe = regexp.MustCompile(`^(\w+)\.? (\d{1,2})(?:st|nd|rd|th)?$`)
	fixedDayMonthRe = regexp.MustCompile(`^(\d{1,2})(?:st|nd|rd|th)? (?:of )?(\w+)\.?$`)
	beforeFeastRe   = regexp.MustCompile(`^(\w+) days? before the feast(?: day)?$`)
	nthAfterRe      = regexp.MustCompile(`^(?:the )?(?:(\w+) )?(sunday|monday|tuesday|wednesday|thursday|friday|saturday) after (.+)$`)
	weekdayBeforeRe = regexp.MustCompile(`^(?:the )?(sunday|monday|tuesday|wednesday|thursday|friday|saturday) before (.+)$`)
	daysAfterRe     = regexp.MustCompile(`^(\w+) days? after (.+)$`)
	daysBeforeRe    = regexp.MustCompile(`^(\w+) days? before (.+)$`)
)

// ParseRule converts a scraped phrase into a Rule. It never fails: text it
// cannot interpret becomes a RawRule preserving the original input.
func ParseRule(text string) calendar.Rule {
	normalized := normalize(text)
	if normalized == "" {
		return calendar.RawRule{Text: text}
	}

	// Exact anchor phrase ("Pentecost", "Ash Wednesday").
	if key, ok := anchorKey(normalized); ok {
		return calendar.AnchorRule{Key: key}
	}

	// Fixed dates: "June 29", "29 June", "29th of June".
	if m := fixedMonthDayRe.FindStringSubmatch(normalized); m != nil {
		if month, ok := monthNames[m[1]]; ok {
			if day, err := strconv.Atoi(m[2]); err == nil {
				return calendar.FixedRule{Month: month, Day: day}
			}
		}
	}
	if m := fixedDayMonthRe.FindStringSubmatch(normalized); m != nil {
		if month, ok := monthNames[m[2]]; ok {
			if day, err := strconv.Atoi(m[1]); err == nil {
				return calendar.FixedRule{Month: month, Day: day}
			}
		}
	}

	// "nine days before the feast": an inclusive countdown to the feast
	// this rule belongs to.
	if m := beforeFeastRe.FindStringSubmatch(normalized); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			return calendar.BeforeFeastRule{DaysBefore: n}
		}
	}

	// "Saturday after Ascension Thursday", "second Friday after Easter".
	if m := nthAfterRe.FindStringSubmatch(normalized); m != nil {
		weekday := weekdayNames[m[2]]
		if key, ok := anchorKey(m[3]); ok {
			n := 1
			if m[1] != "" {
				ord, ok := ordinalWords[m[1]]
				if !ok {
					return calendar.RawRule{Text: text}
				}
				n = ord
			}
			return calendar.NthWeekdayAfterRule{Anchor: key, Weekday: weekday, N: n}
		}
	}

	// "the Sunday before Pentecost": back up one day, then snap backward.
	if m := weekdayBeforeRe.FindStringSubmatch(normalized); m != nil {
		weekday := weekdayNames[m[1]]
		if key, ok := anchorKey(m[2]); ok {
			return calendar.RelativeRule{
				Anchor:     key,
				OffsetDays: -1,
				Weekday:    &weekday,
				Snap:       calendar.SnapOnOrBefore,
			}
		}
	}

	// "3 days after Christmas" / "40 days before Easter".
	if m := daysAfterRe.FindStringSubmatch(normalized); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			if key, ok := anchorKey(m[2]); ok {
				return calendar.RelativeRule{Anchor: key, OffsetDays: n}
			}
		}
	}
	if m := daysBeforeRe.FindStringSubmatch(normalized); m != nil {
		if n, ok := parseNumber(m[1]); ok {
			if key, ok := anchorKey(m[2]); ok {
				return calendar.RelativeRule{Anchor: key, OffsetDays: -n}
			}
		}
	}

	return calendar.RawRule{Text: text}
}

// anchorKey matches a normalized phrase against the known feast phrasings.
func anchorKey(phrase string) (string, bool) {
	phrase = strings.TrimPrefix(phrase, "the feast of ")
	phrase = strings.TrimPrefix(phrase, "the ")
	for _, entry := range anchorPhrases {
		if phrase == entry.phrase {
			return entry.key, true
		}
	}
	return "", false
}

// parseNumber accepts digits or a small set of number words.
func parseNumber(word string) (int, bool) {
	if n, err := strconv.Atoi(word); err == nil {
		return n, n > 0
	}
	n, ok := numberWords[word]
	return n, ok
}

// normalize lowercases, trims punctuation noise, and collapses whitespace.
func normalize(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.Trim(s, ".,;: ")
	s = strings.Join(strings.Fields(s), " ")
	return s
}
