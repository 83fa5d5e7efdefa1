package parser

import "unicode"

// Verdict is the language filter's decision for one title.
type Verdict int

const (
	Keep Verdict = iota
	Drop
)

func (v Verdict) String() string {
	if v == Drop {
		return "drop"
	}
	return "keep"
}

// Filter gates titles on Latin-script content before any service calls are
// spent on them. A zero threshold keeps everything.
type Filter struct {
	Enabled   bool
	Threshold float64
}

// LatinRatio reports the share of letters in s drawn from the Latin script.
// Digits, punctuation and whitespace are ignored, so "AC/DC - T.N.T." still
// scores 1.0. A title with no letters at all scores 0.
func LatinRatio(s string) float64 {
	var letters, latin int
	for _, r := range s {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Latin, r) {
			latin++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(latin) / float64(letters)
}

// Classify decides whether a title passes the Latin-content gate. Titles
// with no letters (timestamps, emoji walls) are kept: the parser and
// resolver are the authority on whether anything usable remains.
func (f Filter) Classify(title string) Verdict {
	if !f.Enabled {
		return Keep
	}
	var letters int
	for _, r := range title {
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if letters == 0 {
		return Keep
	}
	if LatinRatio(title) >= f.Threshold {
		return Keep
	}
	return Drop
}
