// Package scores defines the assessed areas and the per-area score set shared
// by evaluation and diagnosis.
package scores

import (
	"fmt"
	"slices"

	"github.com/tidwall/gjson"
)

// Area is an assessed skill area.
type Area string

const (
	AreaReadingComprehension Area = "reading_comprehension"
	AreaGrammar              Area = "grammar"
	AreaVocabulary           Area = "vocabulary"
)

// Areas lists the assessed areas in priority order. The order decides which
// area wins when several share the lowest score.
var Areas = []Area{AreaReadingComprehension, AreaGrammar, AreaVocabulary}

// Neutral is the score substituted for a missing or failed evaluation.
const Neutral = 50

// Set maps an area to its 0–100 score.
type Set map[Area]float64

// Ordered returns the areas present in s in priority order: known areas as
// listed in Areas, then any other keys sorted lexicographically.
func (s Set) Ordered() []Area {
	out := make([]Area, 0, len(s))
	for _, a := range Areas {
		if _, ok := s[a]; ok {
			out = append(out, a)
		}
	}
	var extra []Area
	for a := range s {
		if !slices.Contains(Areas, a) {
			extra = append(extra, a)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}

// Parse extracts a Set from a JSON object. Each value may be a bare number or
// an object with a numeric "score" field; any other value is skipped.
func Parse(raw []byte) (Set, error) {
	doc := gjson.ParseBytes(raw)
	if !gjson.ValidBytes(raw) || !doc.IsObject() {
		return nil, fmt.Errorf("scores must be a JSON object")
	}

	set := Set{}
	doc.ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.Type == gjson.Number:
			set[Area(key.String())] = value.Num
		case value.IsObject():
			if sc := value.Get("score"); sc.Type == gjson.Number {
				set[Area(key.String())] = sc.Num
			}
		}
		return true
	})
	return set, nil
}
