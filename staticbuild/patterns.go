package staticbuild

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"caltrain.dev/transit/model"
)

// tripSeq is one trip's ordered station sequence and interleaved
// arrival/departure minutes, before pattern assignment.
type tripSeq struct {
	tripID    string
	stations  []string
	stopTimes []int
}

// buildTripSequences implements §4.3 step 3: group stop_times by
// trip, sort by stop_sequence, map each stop to its canonical
// station, and drop stops whose station is unknown.
func buildTripSequences(rows []*StopTimeRow, stations *stationSet, knownTrips map[string]bool) (map[string]*tripSeq, error) {
	byTrip := map[string][]*StopTimeRow{}
	for _, r := range rows {
		if !knownTrips[r.TripID] {
			return nil, errors.Errorf("stop_time references unknown trip_id '%s'", r.TripID)
		}
		byTrip[r.TripID] = append(byTrip[r.TripID], r)
	}

	out := map[string]*tripSeq{}
	for tripID, trs := range byTrip {
		sort.Slice(trs, func(i, j int) bool {
			return trs[i].StopSequence < trs[j].StopSequence
		})

		seq := &tripSeq{tripID: tripID}
		for _, r := range trs {
			stationID, ok := stations.StopToID[r.StopID]
			if !ok {
				continue
			}
			arr, err := ParseGTFSTime(r.Arrival)
			if err != nil {
				return nil, errors.Wrapf(err, "trip '%s' stop '%s' arrival_time", tripID, r.StopID)
			}
			dep, err := ParseGTFSTime(r.Departure)
			if err != nil {
				return nil, errors.Wrapf(err, "trip '%s' stop '%s' departure_time", tripID, r.StopID)
			}
			seq.stations = append(seq.stations, stationID)
			seq.stopTimes = append(seq.stopTimes, arr, dep)
		}
		out[tripID] = seq
	}

	return out, nil
}

// patternBuilder assigns pattern ids to distinct station sequences,
// first-trip-wins, in deterministic p0, p1, ... order.
type patternBuilder struct {
	byHash map[string]string
	order  []string
	stops  map[string][]string
}

func newPatternBuilder() *patternBuilder {
	return &patternBuilder{byHash: map[string]string{}, stops: map[string][]string{}}
}

func patternHash(stations []string) string {
	return strings.Join(stations, ",")
}

// assign returns the pattern id for the given station sequence,
// allocating a new one (p0, p1, ...) the first time a sequence is
// seen.
func (b *patternBuilder) assign(stations []string) string {
	hash := patternHash(stations)
	if id, ok := b.byHash[hash]; ok {
		return id
	}
	id := "p" + strconv.Itoa(len(b.order))
	b.byHash[hash] = id
	b.order = append(b.order, id)
	b.stops[id] = append([]string{}, stations...)
	return id
}

func (b *patternBuilder) patterns() map[string][]string {
	out := make(map[string][]string, len(b.stops))
	for id, stops := range b.stops {
		out[id] = stops
	}
	return out
}

// buildTripsAndPatterns implements §4.3 steps 4-5: pattern
// deduplication and trip record assembly.
func buildTripsAndPatterns(
	sequences map[string]*tripSeq,
	tripMeta map[string]*TripRow,
	routeShortName map[string]string,
) (map[string][]string, []model.Trip, error) {
	pb := newPatternBuilder()

	// Deterministic trip order for reproducible pattern id
	// allocation: same input always yields the same pattern ids.
	tripIDs := make([]string, 0, len(sequences))
	for id := range sequences {
		tripIDs = append(tripIDs, id)
	}
	sort.Strings(tripIDs)

	trips := make([]model.Trip, 0, len(tripIDs))
	for _, tripID := range tripIDs {
		seq := sequences[tripID]
		meta := tripMeta[tripID]
		if meta == nil {
			return nil, nil, errors.Errorf("trip '%s' has stop_times but no trips.txt row", tripID)
		}

		if len(seq.stopTimes) != 2*len(seq.stations) {
			return nil, nil, errors.Errorf("trip '%s' stop time count mismatch", tripID)
		}

		patternID := pb.assign(seq.stations)

		emittedID := meta.ShortName
		if emittedID == "" {
			emittedID = meta.ID
		}

		routeType := routeShortName[meta.RouteID]

		trips = append(trips, model.Trip{
			ID:        emittedID,
			ServiceID: meta.ServiceID,
			PatternID: patternID,
			Direction: meta.DirectionID,
			StopTimes: seq.stopTimes,
			RouteType: routeType,
		})
	}

	return pb.patterns(), trips, nil
}
