// Package validate runs structural and referential-integrity checks
// over a built StaticSchedule. The daily schedule job aborts rather
// than publishing a schedule that fails validation.
package validate

import (
	"fmt"

	"caltrain.dev/transit/model"
)

// MinEndDate is the configured lower bound a schedule's latest
// calendar end-date must meet, expressed as a YYYYMMDD integer. A
// schedule whose calendar horizon doesn't reach at least this far out
// is considered stale data, not a fresh daily build.
const MinEndDate = 20200101

const (
	minStations = 10
	minTrips    = 10
	minPatterns = 2
)

// Violations runs every check in §4.4 and returns the full list of
// failed expectations. An empty result means the schedule is safe to
// publish.
func Violations(s *model.StaticSchedule) []string {
	var v []string

	if s.Meta.Version == "" {
		v = append(v, "metadata: empty version")
	}
	if s.Meta.MaxEndDate < MinEndDate {
		v = append(v, fmt.Sprintf("metadata: end date %d below minimum %d", s.Meta.MaxEndDate, MinEndDate))
	}

	if len(s.Stations) < minStations {
		v = append(v, fmt.Sprintf("station count %d below minimum %d", len(s.Stations), minStations))
	}
	if len(s.Trips) < minTrips {
		v = append(v, fmt.Sprintf("trip count %d below minimum %d", len(s.Trips), minTrips))
	}
	if len(s.Patterns) < minPatterns {
		v = append(v, fmt.Sprintf("pattern count %d below minimum %d", len(s.Patterns), minPatterns))
	}

	for patternID, stations := range s.Patterns {
		for _, stationID := range stations {
			if _, ok := s.Stations[stationID]; !ok {
				v = append(v, fmt.Sprintf("pattern '%s' references unknown station '%s'", patternID, stationID))
			}
		}
	}

	for _, trip := range s.Trips {
		pattern, ok := s.Patterns[trip.PatternID]
		if !ok {
			v = append(v, fmt.Sprintf("trip '%s' references unknown pattern '%s'", trip.ID, trip.PatternID))
			continue
		}

		if len(trip.StopTimes) != 2*len(pattern) {
			v = append(v, fmt.Sprintf("trip '%s' has %d stop times, want %d for pattern '%s'", trip.ID, len(trip.StopTimes), 2*len(pattern), trip.PatternID))
		}

		_, hasCalendar := s.Rules.Calendars[trip.ServiceID]
		_, hasExceptions := s.Rules.Exceptions[trip.ServiceID]
		if !hasCalendar && !hasExceptions {
			v = append(v, fmt.Sprintf("trip '%s' references unknown service '%s'", trip.ID, trip.ServiceID))
		}
	}

	if len(s.Ordered) == 0 {
		v = append(v, "ordered station list is empty")
	}
	for _, stationID := range s.Ordered {
		if _, ok := s.Stations[stationID]; !ok {
			v = append(v, fmt.Sprintf("ordered station list references unknown station '%s'", stationID))
		}
	}

	v = append(v, PairIndexSoundness(s)...)

	return v
}

// knownTripIDs collects the set of trip ids present in the trip list,
// used to check the station-pair index's soundness.
func knownTripIDs(s *model.StaticSchedule) map[string]bool {
	out := make(map[string]bool, len(s.Trips))
	for _, t := range s.Trips {
		out[t.ID] = true
	}
	return out
}

// PairIndexSoundness checks that every trip id appearing anywhere in
// the station-pair index exists in the trip list. Violations always
// runs this check; it is also exported so it can be run on its own.
func PairIndexSoundness(s *model.StaticSchedule) []string {
	var v []string
	known := knownTripIDs(s)
	for pair, tripIDs := range s.PairIndex {
		for _, tripID := range tripIDs {
			if !known[tripID] {
				v = append(v, fmt.Sprintf("pair index '%s' references unknown trip '%s'", pair, tripID))
			}
		}
	}
	return v
}
