package calendar

import (
	"fmt"
	"sort"
	"time"
)

// Rank is the liturgical importance of an observance, used to order
// same-day entries.
type Rank string

const (
	RankTriduum          Rank = "triduum"
	RankSolemnity        Rank = "solemnity"
	RankSunday           Rank = "sunday"
	RankFeast            Rank = "feast"
	RankMemorial         Rank = "memorial"
	RankOptionalMemorial Rank = "optional_memorial"
	RankWeekday          Rank = "weekday"
)

var rankWeight = map[Rank]int{
	RankTriduum:          7,
	RankSolemnity:        6,
	RankSunday:           5,
	RankFeast:            4,
	RankMemorial:         3,
	RankOptionalMemorial: 2,
	RankWeekday:          1,
}

// Weight returns the numeric ordering weight for a rank; higher sorts first.
func (r Rank) Weight() int {
	return rankWeight[r]
}

// Color is a liturgical vestment color used for calendar rendering.
type Color string

const (
	ColorWhite  Color = "white"
	ColorRed    Color = "red"
	ColorGreen  Color = "green"
	ColorViolet Color = "violet"
	ColorRose   Color = "rose"
)

// Season tags an observance with the liturgical season it falls in.
type Season string

const (
	SeasonAdvent    Season = "advent"
	SeasonChristmas Season = "christmas"
	SeasonOrdinary  Season = "ordinary"
	SeasonLent      Season = "lent"
	SeasonEaster    Season = "easter"
)

// Observance is one calendar entry: a feast, memorial, numbered Sunday,
// or season-boundary marker.
type Observance struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Rank         Rank   `json:"rank"`
	Color        Color  `json:"color,omitempty"`
	Season       Season `json:"season,omitempty"`
	SeasonMarker bool   `json:"season_marker,omitempty"`
}

// anchorObservance binds an anchor key to its calendar presentation.
type anchorObservance struct {
	anchor string
	title  string
	rank   Rank
	color  Color
	season Season
}

// The named fixed and movable observances emitted every year. The id of
// each entry is its anchor key.
var namedObservances = []anchorObservance{
	{"mary_mother_of_god", "Mary, Mother of God", RankSolemnity, ColorWhite, SeasonChristmas},
	{"epiphany", "Epiphany of the Lord", RankSolemnity, ColorWhite, SeasonChristmas},
	{"baptism_of_the_lord", "Baptism of the Lord", RankFeast, ColorWhite, SeasonChristmas},
	{"holy_family", "The Holy Family", RankFeast, ColorWhite, SeasonChristmas},
	{"st_joseph", "Saint Joseph, Spouse of the Blessed Virgin Mary", RankSolemnity, ColorWhite, SeasonLent},
	{"annunciation", "Annunciation of the Lord", RankSolemnity, ColorWhite, SeasonLent},
	{"shrove_tuesday", "Shrove Tuesday", RankWeekday, ColorGreen, SeasonOrdinary},
	{"ash_wednesday", "Ash Wednesday", RankSolemnity, ColorViolet, SeasonLent},
	{"palm_sunday", "Palm Sunday of the Passion of the Lord", RankSunday, ColorRed, SeasonLent},
	{"holy_thursday", "Holy Thursday", RankTriduum, ColorWhite, SeasonLent},
	{"good_friday", "Good Friday of the Passion of the Lord", RankTriduum, ColorRed, SeasonLent},
	{"holy_saturday", "Holy Saturday", RankTriduum, ColorWhite, SeasonLent},
	{"easter", "Easter Sunday of the Resurrection of the Lord", RankSolemnity, ColorWhite, SeasonEaster},
	{"divine_mercy_sunday", "Sunday of Divine Mercy", RankSunday, ColorWhite, SeasonEaster},
	{"ascension_thursday", "Ascension of the Lord", RankSolemnity, ColorWhite, SeasonEaster},
	{"ascension_sunday", "Ascension of the Lord (Sunday observance)", RankSolemnity, ColorWhite, SeasonEaster},
	{"pentecost", "Pentecost Sunday", RankSolemnity, ColorRed, SeasonEaster},
	{"trinity_sunday", "The Most Holy Trinity", RankSolemnity, ColorWhite, SeasonOrdinary},
	{"corpus_christi", "The Most Holy Body and Blood of Christ", RankSolemnity, ColorWhite, SeasonOrdinary},
	{"corpus_christi_sunday", "The Most Holy Body and Blood of Christ (Sunday observance)", RankSolemnity, ColorWhite, SeasonOrdinary},
	{"sacred_heart", "The Most Sacred Heart of Jesus", RankSolemnity, ColorWhite, SeasonOrdinary},
	{"immaculate_heart", "The Immaculate Heart of Mary", RankMemorial, ColorWhite, SeasonOrdinary},
	{"sts_peter_and_paul", "Saints Peter and Paul, Apostles", RankSolemnity, ColorRed, SeasonOrdinary},
	{"assumption", "Assumption of the Blessed Virgin Mary", RankSolemnity, ColorWhite, SeasonOrdinary},
	{"our_lady_of_sorrows", "Our Lady of Sorrows", RankMemorial, ColorWhite, SeasonOrdinary},
	{"our_lady_of_the_rosary", "Our Lady of the Rosary", RankMemorial, ColorWhite, SeasonOrdinary},
	{"all_saints", "All Saints", RankSolemnity, ColorWhite, SeasonOrdinary},
	{"all_souls", "Commemoration of All the Faithful Departed", RankMemorial, ColorViolet, SeasonOrdinary},
	{"christ_king", "Our Lord Jesus Christ, King of the Universe", RankSolemnity, ColorWhite, SeasonOrdinary},
	{"advent_1", "First Sunday of Advent", RankSunday, ColorViolet, SeasonAdvent},
	{"immaculate_conception", "Immaculate Conception of the Blessed Virgin Mary", RankSolemnity, ColorWhite, SeasonAdvent},
	{"our_lady_of_guadalupe", "Our Lady of Guadalupe", RankFeast, ColorWhite, SeasonAdvent},
	{"christmas_eve", "Christmas Eve", RankWeekday, ColorViolet, SeasonAdvent},
	{"christmas", "The Nativity of the Lord", RankSolemnity, ColorWhite, SeasonChristmas},
}

// Numbered Ordinary Time Sundays never exceed this; a malformed edge year
// must not produce runaway numbering.
const maxOrdinarySunday = 34

// BuildObservancesForYear walks one calendar year and produces every
// observance, season marker, and numbered Ordinary Time Sunday, grouped by
// date key (YYYY-MM-DD).
//
// The builder is pure relative to its year input and must be re-invoked
// per year; callers cache the returned map themselves if they want to.
func BuildObservancesForYear(year int) (map[string][]Observance, error) {
	anchors, err := BuildAnchorTable(year)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]Observance)
	add := func(date time.Time, obs Observance) {
		key := FormatDate(date)
		byDate[key] = append(byDate[key], obs)
	}

	for _, def := range namedObservances {
		date, err := anchors.Lookup(def.anchor)
		if err != nil {
			return nil, fmt.Errorf("observance table references %s: %w", def.anchor, err)
		}
		add(date, Observance{
			ID:     def.anchor,
			Title:  def.title,
			Rank:   def.rank,
			Color:  def.color,
			Season: def.season,
		})
	}

	addSeasonMarkers(add, anchors)

	if err := addOrdinarySundays(add, anchors); err != nil {
		return nil, err
	}

	for key, entries := range byDate {
		byDate[key] = dedupAndSort(entries)
	}

	return byDate, nil
}

// addSeasonMarkers emits one boundary entry at the start of each season.
// The anchors used here are all built by BuildAnchorTable, so lookups
// cannot miss.
func addSeasonMarkers(add func(time.Time, Observance), anchors *AnchorTable) {
	marker := func(key string, id, title string, season Season) {
		date, _ := anchors.Lookup(key)
		add(date, Observance{
			ID:           id,
			Title:        title,
			Rank:         RankWeekday,
			Season:       season,
			SeasonMarker: true,
		})
	}

	marker("advent_1", "advent_begins", "Advent Begins", SeasonAdvent)
	marker("christmas", "christmas_season_begins", "Christmas Season Begins", SeasonChristmas)
	marker("ash_wednesday", "lent_begins", "Lent Begins", SeasonLent)
	marker("easter", "easter_season_begins", "Easter Season Begins", SeasonEaster)

	// Ordinary Time resumes the day after the Baptism of the Lord and the
	// day after Pentecost.
	baptism, _ := anchors.Lookup("baptism_of_the_lord")
	add(baptism.AddDate(0, 0, 1), Observance{
		ID:           "ordinary_time_begins",
		Title:        "Ordinary Time Begins",
		Rank:         RankWeekday,
		Season:       SeasonOrdinary,
		SeasonMarker: true,
	})
	pentecost, _ := anchors.Lookup("pentecost")
	add(pentecost.AddDate(0, 0, 1), Observance{
		ID:           "ordinary_time_resumes",
		Title:        "Ordinary Time Resumes",
		Rank:         RankWeekday,
		Season:       SeasonOrdinary,
		SeasonMarker: true,
	})
}

// addOrdinarySundays numbers the Sundays of both Ordinary Time spans.
//
// The Sunday of the Baptism closes the first week, so the first numbered
// Sunday is the 2nd. Numbering continues across the Lent/Easter gap: the
// Sunday after Pentecost picks up where the pre-Lent count stopped.
func addOrdinarySundays(add func(time.Time, Observance), anchors *AnchorTable) error {
	baptism, err := anchors.Lookup("baptism_of_the_lord")
	if err != nil {
		return err
	}
	ashWednesday, err := anchors.Lookup("ash_wednesday")
	if err != nil {
		return err
	}
	pentecost, err := anchors.Lookup("pentecost")
	if err != nil {
		return err
	}
	advent, err := anchors.Lookup("advent_1")
	if err != nil {
		return err
	}

	number := 2
	emit := func(date time.Time) {
		if number > maxOrdinarySunday {
			return
		}
		add(date, Observance{
			ID:     fmt.Sprintf("ot_sunday_%d", number),
			Title:  fmt.Sprintf("%s Sunday in Ordinary Time", Ordinal(number)),
			Rank:   RankSunday,
			Color:  ColorGreen,
			Season: SeasonOrdinary,
		})
		number++
	}

	// First span: Sundays strictly after the Baptism, before Ash Wednesday.
	for d := baptism.AddDate(0, 0, 7); d.Before(ashWednesday); d = d.AddDate(0, 0, 7) {
		emit(d)
	}

	// Second span: Sundays strictly after Pentecost, before Advent.
	for d := pentecost.AddDate(0, 0, 7); d.Before(advent); d = d.AddDate(0, 0, 7) {
		emit(d)
	}

	return nil
}

// dedupAndSort removes duplicate ids within one date and orders entries by
// descending rank weight, then title, for deterministic output.
func dedupAndSort(entries []Observance) []Observance {
	seen := make(map[string]bool, len(entries))
	out := entries[:0]
	for _, e := range entries {
		if seen[e.ID] {
			continue
		}
		seen[e.ID] = true
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank.Weight() != out[j].Rank.Weight() {
			return out[i].Rank.Weight() > out[j].Rank.Weight()
		}
		return out[i].Title < out[j].Title
	})

	return out
}

// Ordinal returns the ordinal form of a number (1st, 2nd, 3rd, 4th, ...).
func Ordinal(n int) string {
	switch {
	case n%100 >= 11 && n%100 <= 13:
		return fmt.Sprintf("%dth", n)
	case n%10 == 1:
		return fmt.Sprintf("%dst", n)
	case n%10 == 2:
		return fmt.Sprintf("%dnd", n)
	case n%10 == 3:
		return fmt.Sprintf("%drd", n)
	default:
		return fmt.Sprintf("%dth", n)
	}
}
