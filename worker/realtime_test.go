package worker_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gtfsproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"caltrain.dev/transit/kvstore"
	"caltrain.dev/transit/testutil"
	"caltrain.dev/transit/worker"
)

func feedServer(t *testing.T, entities []*gtfsproto.FeedEntity, timestamp uint64) *httptest.Server {
	body := testutil.FeedMessage(t, entities, timestamp)
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))
}

func TestRealtimeWorkerSkipsWithoutAPIKey(t *testing.T) {
	store := kvstore.NewMemoryStore()
	w := &worker.RealtimeWorker{
		Store:  store,
		APIKey: "",
		Logger: zap.NewNop(),
	}

	w.Run(context.Background())

	_, ok, err := store.Get(context.Background(), kvstore.KeyRealtimeStatus)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRealtimeWorkerPublishesMergedStatus(t *testing.T) {
	tripID := "T1"
	delay := int32(600)
	tu := feedServer(t, []*gtfsproto.FeedEntity{
		{
			Id: strPtr("e1"),
			TripUpdate: &gtfsproto.TripUpdate{
				Trip: &gtfsproto.TripDescriptor{TripId: &tripID},
				StopTimeUpdate: []*gtfsproto.TripUpdate_StopTimeUpdate{
					{StopId: strPtr("S2"), Departure: &gtfsproto.TripUpdate_StopTimeEvent{Delay: &delay}},
				},
			},
		},
	}, 1000)
	defer tu.Close()

	vp := feedServer(t, nil, 1000)
	defer vp.Close()
	al := feedServer(t, nil, 1000)
	defer al.Close()

	store := kvstore.NewMemoryStore()
	w := &worker.RealtimeWorker{
		Store:          store,
		APIKey:         "sekrit",
		TripUpdatesURL: tu.URL,
		VehiclePosURL:  vp.URL,
		AlertsURL:      al.URL,
		Timeout:        5 * time.Second,
		TTL:            180 * time.Second,
		Logger:         zap.NewNop(),
	}

	w.Run(context.Background())

	entry, ok, err := store.Get(context.Background(), kvstore.KeyRealtimeStatus)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, string(entry.Value), `"T1"`)
	require.Equal(t, "1000", entry.Metadata["t"])
}

func strPtr(s string) *string { return &s }
