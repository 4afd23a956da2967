// Package enrichment looks movies up in OMDb by title and year. Lookups are
// optional: every failure collapses to a nil record.
package enrichment

import (
	"strconv"
	"strings"
	"time"
)

// Text is a descriptive value from OMDb. Unknown values ("N/A" or blank) are
// stored as the empty string.
type Text string

func (t Text) Known() bool {
	return t != ""
}

func (t Text) Value() string {
	return string(t)
}

func (t Text) Or(fallback string) string {
	if t.Known() {
		return string(t)
	}
	return fallback
}

// Record is a decoded OMDb match.
type Record struct {
	Title    Text `json:"title"`
	Year     Text `json:"year"`
	Runtime  Text `json:"runtime"`
	Released Text `json:"released"`
	Genre    Text `json:"genre"`
	Director Text `json:"director"`
	Actors   Text `json:"actors"`
	Rating   Text `json:"rating"`
	Poster   Text `json:"poster"`
	Plot     Text `json:"plot"`
}

// YearInt reads the leading year; series report ranges like "2008–2013".
func (r *Record) YearInt() (int, bool) {
	return leadingInt(r.Year.Value())
}

func (r *Record) RuntimeMin() (int, bool) {
	return ParseRuntimeMin(r.Runtime.Value())
}

func (r *Record) ReleasedISO() (string, bool) {
	return ReleasedToISO(r.Released.Value())
}

func (r *Record) RatingValue() (float64, bool) {
	if !r.Rating.Known() {
		return 0, false
	}
	f, err := strconv.ParseFloat(r.Rating.Value(), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// omdbResponse is the wire shape of a title lookup.
type omdbResponse struct {
	Response   string `json:"Response"`
	Error      string `json:"Error"`
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Runtime    string `json:"Runtime"`
	Released   string `json:"Released"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Actors     string `json:"Actors"`
	ImdbRating string `json:"imdbRating"`
	Poster     string `json:"Poster"`
	Plot       string `json:"Plot"`
}

func (w omdbResponse) record() *Record {
	return &Record{
		Title:    text(w.Title),
		Year:     text(w.Year),
		Runtime:  text(w.Runtime),
		Released: text(w.Released),
		Genre:    text(w.Genre),
		Director: text(w.Director),
		Actors:   text(w.Actors),
		Rating:   text(w.ImdbRating),
		Poster:   text(w.Poster),
		Plot:     text(w.Plot),
	}
}

func text(s string) Text {
	if IsUnknown(s) {
		return ""
	}
	return Text(strings.TrimSpace(s))
}

// IsUnknown reports whether an OMDb field carries no information.
func IsUnknown(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "N/A"
}

// ParseRuntimeMin reads the leading integer of values like "148 min".
func ParseRuntimeMin(s string) (int, bool) {
	if IsUnknown(s) {
		return 0, false
	}
	return leadingInt(s)
}

// ReleasedToISO converts "16 Jul 2010" to "2010-07-16". ISO input passes through.
func ReleasedToISO(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if IsUnknown(s) {
		return "", false
	}
	for _, layout := range []string{"2 Jan 2006", "02 Jan 2006", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), true
		}
	}
	return "", false
}

func leadingInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
