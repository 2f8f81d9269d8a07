// Package plate canonicalizes raw OCR output into license plate numbers.
package plate

import (
	"regexp"
	"strings"
)

// Unknown is the sentinel returned when OCR output cannot plausibly be a
// plate. Normalization never fails; callers decide what to do with it.
const Unknown = "UNKNOWN"

// Plate grammar: state code, district number, series, registration number
// (e.g. MH01AB1234).
var platePattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z]{1,2}[0-9]{4}$`)

var nonAlnum = regexp.MustCompile(`[^A-Z0-9]`)

// Candidate is one OCR line result for a plate region.
type Candidate struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Normalize canonicalizes raw OCR text. Text matching the plate grammar is
// returned verbatim after cleaning; a cleaned string of plausible plate
// length (8-10) is returned best-effort; anything shorter than 5 characters
// becomes Unknown. Longer malformed strings are still returned as-is.
func Normalize(raw string) string {
	clean := nonAlnum.ReplaceAllString(strings.ToUpper(raw), "")

	if platePattern.MatchString(clean) {
		return clean
	}
	if len(clean) >= 8 && len(clean) <= 10 {
		return clean
	}
	if len(clean) < 5 {
		return Unknown
	}
	return clean
}

// IsCanonical reports whether s already matches the plate grammar.
func IsCanonical(s string) bool {
	return platePattern.MatchString(s)
}

// Best selects the candidate with the strictly highest confidence. Ties keep
// the first-seen candidate. ok is false when the list is empty.
func Best(candidates []Candidate) (best Candidate, ok bool) {
	for i, c := range candidates {
		if i == 0 || c.Confidence > best.Confidence {
			best = c
			ok = true
		}
	}
	return best, ok
}

// NormalizeBest normalizes the highest-confidence candidate, or returns
// Unknown when there are none.
func NormalizeBest(candidates []Candidate) string {
	best, ok := Best(candidates)
	if !ok {
		return Unknown
	}
	return Normalize(best.Text)
}
