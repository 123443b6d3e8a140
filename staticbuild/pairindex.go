package staticbuild

import (
	"fmt"
	"sort"
)

// buildPairIndex implements §4.3 step 8: for every pattern, for every
// ordered pair (i, j) with i < j, every trip using that pattern is
// appended to the entry keyed by "stations[i]→stations[j]".
//
// Patterns are visited in sorted-id order so that when two patterns
// share a station pair, the trip ids appended to that pair's entry
// land in a deterministic order instead of whatever order Go's map
// iteration happens to produce.
func buildPairIndex(patterns map[string][]string, trips []tripPatternRef) map[string][]string {
	tripsByPattern := map[string][]string{}
	for _, t := range trips {
		tripsByPattern[t.PatternID] = append(tripsByPattern[t.PatternID], t.TripID)
	}

	patternIDs := make([]string, 0, len(patterns))
	for patternID := range patterns {
		patternIDs = append(patternIDs, patternID)
	}
	sort.Strings(patternIDs)

	index := map[string][]string{}
	for _, patternID := range patternIDs {
		stations := patterns[patternID]
		tripIDs := tripsByPattern[patternID]
		if len(tripIDs) == 0 {
			continue
		}
		for i := 0; i < len(stations); i++ {
			for j := i + 1; j < len(stations); j++ {
				key := fmt.Sprintf("%s→%s", stations[i], stations[j])
				index[key] = append(index[key], tripIDs...)
			}
		}
	}

	return index
}

// tripPatternRef is the minimal projection of a trip the pair index
// needs: its emitted id and the pattern it runs.
type tripPatternRef struct {
	TripID    string
	PatternID string
}
