package validate_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"caltrain.dev/transit/model"
	"caltrain.dev/transit/staticbuild"
	"caltrain.dev/transit/testutil"
	"caltrain.dev/transit/validate"
)

// buildBigEnoughArchive builds a schedule with enough stations, trips,
// and patterns to clear the §4.4 minimums, so TestValidSchedulePasses
// exercises the real builder output rather than a hand-built fixture.
func buildBigEnoughArchive(t *testing.T) []byte {
	stops := []string{"stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station,zone_id"}
	trips := []string{"trip_id,route_id,service_id,trip_short_name,direction_id"}
	stopTimes := []string{"trip_id,stop_id,stop_sequence,arrival_time,departure_time"}

	const numStations = 12
	for i := 0; i < numStations; i++ {
		stops = append(stops, fmt.Sprintf("station_%d,Station %d,37.0,-122.0,1,,Z1", i, i))
		stops = append(stops, fmt.Sprintf("stop_%d,Platform %d,37.0,-122.0,0,station_%d,", i, i, i))
	}

	// Two distinct station-sequence shapes, so pattern count clears
	// the minimum: six trips running the full line, six running a
	// truncated subset.
	const numFullTrips = 6
	for i := 0; i < numFullTrips; i++ {
		tripID := fmt.Sprintf("t%d", i)
		trips = append(trips, fmt.Sprintf("%s,r1,svc1,%s,0", tripID, tripID))
		for seq := 0; seq < numStations; seq++ {
			stopTimes = append(stopTimes, fmt.Sprintf("%s,stop_%d,%d,08:%02d:00,08:%02d:00", tripID, seq, seq+1, seq, seq))
		}
	}

	const numShortTrips = 6
	for i := 0; i < numShortTrips; i++ {
		tripID := fmt.Sprintf("s%d", i)
		trips = append(trips, fmt.Sprintf("%s,r1,svc1,%s,1", tripID, tripID))
		for seq := 0; seq < numStations/2; seq++ {
			stopTimes = append(stopTimes, fmt.Sprintf("%s,stop_%d,%d,09:%02d:00,09:%02d:00", tripID, seq, seq+1, seq, seq))
		}
	}

	return testutil.MinimalArchive(t, map[string][]string{
		"stops.txt":      stops,
		"trips.txt":      trips,
		"stop_times.txt": stopTimes,
		"calendar.txt": {
			"service_id,monday,tuesday,wednesday,thursday,friday,saturday,sunday,start_date,end_date",
			"svc1,1,1,1,1,1,0,0,20260101,20271231",
		},
	})
}

func TestValidSchedulePasses(t *testing.T) {
	archive := buildBigEnoughArchive(t)
	sched, err := staticbuild.Build(archive)
	require.NoError(t, err)
	require.Empty(t, validate.Violations(sched))
}

func TestTooFewStationsFails(t *testing.T) {
	sched := &model.StaticSchedule{
		Meta:     model.ScheduleMeta{Version: "abc", MaxEndDate: 20271231},
		Stations: map[string]model.Station{"a": {}},
		Ordered:  []string{"a"},
	}

	v := validate.Violations(sched)
	require.Contains(t, v, "station count 1 below minimum 10")
}

func TestUnknownPatternStationFails(t *testing.T) {
	sched := &model.StaticSchedule{
		Meta:     model.ScheduleMeta{Version: "abc", MaxEndDate: 20271231},
		Stations: map[string]model.Station{},
		Patterns: map[string][]string{"p0": {"ghost"}},
	}

	v := validate.Violations(sched)
	require.Contains(t, v, "pattern 'p0' references unknown station 'ghost'")
}

func TestTripUnknownPatternFails(t *testing.T) {
	sched := &model.StaticSchedule{
		Meta:     model.ScheduleMeta{Version: "abc", MaxEndDate: 20271231},
		Patterns: map[string][]string{},
		Trips:    []model.Trip{{ID: "t1", PatternID: "ghost"}},
	}

	v := validate.Violations(sched)
	require.Contains(t, v, "trip 't1' references unknown pattern 'ghost'")
}

func TestTripStopTimeLengthMismatchFails(t *testing.T) {
	sched := &model.StaticSchedule{
		Meta:     model.ScheduleMeta{Version: "abc", MaxEndDate: 20271231},
		Patterns: map[string][]string{"p0": {"a", "b"}},
		Trips:    []model.Trip{{ID: "t1", PatternID: "p0", ServiceID: "svc1", StopTimes: []int{1, 2}}},
		Rules:    model.Rules{Calendars: map[string]model.CalendarEntry{"svc1": {}}},
	}

	v := validate.Violations(sched)
	require.Contains(t, v, "trip 't1' has 2 stop times, want 4 for pattern 'p0'")
}

func TestTripUnknownServiceFails(t *testing.T) {
	sched := &model.StaticSchedule{
		Meta:     model.ScheduleMeta{Version: "abc", MaxEndDate: 20271231},
		Patterns: map[string][]string{"p0": {"a", "b"}},
		Trips:    []model.Trip{{ID: "t1", PatternID: "p0", ServiceID: "ghost", StopTimes: []int{1, 2, 3, 4}}},
	}

	v := validate.Violations(sched)
	require.Contains(t, v, "trip 't1' references unknown service 'ghost'")
}

func TestEmptyOrderedListFails(t *testing.T) {
	sched := &model.StaticSchedule{
		Meta: model.ScheduleMeta{Version: "abc", MaxEndDate: 20271231},
	}

	v := validate.Violations(sched)
	require.Contains(t, v, "ordered station list is empty")
}

func TestOrderedListUnknownStationFails(t *testing.T) {
	sched := &model.StaticSchedule{
		Meta:     model.ScheduleMeta{Version: "abc", MaxEndDate: 20271231},
		Stations: map[string]model.Station{},
		Ordered:  []string{"ghost"},
	}

	v := validate.Violations(sched)
	require.Contains(t, v, "ordered station list references unknown station 'ghost'")
}

func TestMissingVersionFails(t *testing.T) {
	sched := &model.StaticSchedule{
		Meta: model.ScheduleMeta{MaxEndDate: 20271231},
	}
	v := validate.Violations(sched)
	require.Contains(t, v, "metadata: empty version")
}

func TestEndDateBelowMinimumFails(t *testing.T) {
	sched := &model.StaticSchedule{
		Meta: model.ScheduleMeta{Version: "abc", MaxEndDate: 20190101},
	}
	v := validate.Violations(sched)
	require.Contains(t, v, fmt.Sprintf("metadata: end date %d below minimum %d", 20190101, validate.MinEndDate))
}

func TestPairIndexSoundnessCatchesGhostTrip(t *testing.T) {
	sched := &model.StaticSchedule{
		PairIndex: map[string][]string{"a→b": {"ghost"}},
	}

	v := validate.PairIndexSoundness(sched)
	require.Contains(t, v, "pair index 'a→b' references unknown trip 'ghost'")
}
