package worker_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"caltrain.dev/transit/kvstore"
	"caltrain.dev/transit/testutil"
	"caltrain.dev/transit/worker"
)

func bigEnoughArchive(t *testing.T) []byte {
	stops := []string{"stop_id,stop_name,stop_lat,stop_lon,location_type,parent_station,zone_id"}
	trips := []string{"trip_id,route_id,service_id,trip_short_name,direction_id"}
	stopTimes := []string{"trip_id,stop_id,stop_sequence,arrival_time,departure_time"}

	for i := 0; i < 12; i++ {
		stops = append(stops, fmt.Sprintf("station_%d,Station %d,37.0,-122.0,1,,Z1", i, i))
		stops = append(stops, fmt.Sprintf("stop_%d,Platform %d,37.0,-122.0,0,station_%d,", i, i, i))
	}
	for i := 0; i < 11; i++ {
		tripID := fmt.Sprintf("t%d", i)
		trips = append(trips, fmt.Sprintf("%s,r1,svc1,%s,0", tripID, tripID))
		stopTimes = append(stopTimes, fmt.Sprintf("%s,stop_%d,1,08:00:00,08:01:00", tripID, i))
		stopTimes = append(stopTimes, fmt.Sprintf("%s,stop_%d,2,08:30:00,08:30:00", tripID, i+1))
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

func TestScheduleWorkerSkipsWithoutAPIKey(t *testing.T) {
	store := kvstore.NewMemoryStore()
	w := &worker.ScheduleWorker{Store: store, APIKey: "", Logger: zap.NewNop()}

	w.Run(context.Background())

	_, ok, _ := store.Get(context.Background(), kvstore.KeyScheduleData)
	require.False(t, ok)
}

func TestScheduleWorkerPublishesNewVersion(t *testing.T) {
	archive := bigEnoughArchive(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	store := kvstore.NewMemoryStore()
	w := &worker.ScheduleWorker{
		Store:     store,
		APIKey:    "sekrit",
		StaticURL: srv.URL,
		Logger:    zap.NewNop(),
	}

	w.Run(context.Background())

	data, ok, err := store.Get(context.Background(), kvstore.KeyScheduleData)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, data.Value)

	meta, ok, err := store.Get(context.Background(), kvstore.KeyScheduleMeta)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, meta.Value)
}

func TestScheduleWorkerSkipsUnchangedVersion(t *testing.T) {
	archive := bigEnoughArchive(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	store := kvstore.NewMemoryStore()
	w := &worker.ScheduleWorker{Store: store, APIKey: "sekrit", StaticURL: srv.URL, Logger: zap.NewNop()}

	w.Run(context.Background())
	first, _, _ := store.Get(context.Background(), kvstore.KeyScheduleData)

	w.Run(context.Background())
	second, _, _ := store.Get(context.Background(), kvstore.KeyScheduleData)

	require.Equal(t, first.Value, second.Value)
}
