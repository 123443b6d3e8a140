// Package worker runs the two scheduled background jobs: the
// realtime aggregator (short cadence, merges three live feeds) and
// the schedule builder (daily, rebuilds the static bundle).
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"caltrain.dev/transit/downloader"
	"caltrain.dev/transit/gtfsrt"
	"caltrain.dev/transit/kvstore"
	"caltrain.dev/transit/merge"
	"caltrain.dev/transit/secretredact"
)

// RealtimeWorker fetches the three GTFS-RT feeds, merges them, and
// publishes the result. At most one run is ever in flight; a run that
// overlaps a slow predecessor is skipped rather than queued.
type RealtimeWorker struct {
	Store          kvstore.Store
	APIKey         string
	TripUpdatesURL string
	VehiclePosURL  string
	AlertsURL      string
	Timeout        time.Duration
	TTL            time.Duration
	Logger         *zap.Logger

	mu sync.Mutex
}

// Run executes a single pass. It never returns an error to the
// caller: every failure is logged (key-redacted) and swallowed, since
// a scheduled job has nowhere else to report to.
func (w *RealtimeWorker) Run(ctx context.Context) {
	if !w.mu.TryLock() {
		w.Logger.Warn("realtime run already in progress, skipping")
		return
	}
	defer w.mu.Unlock()

	if w.APIKey == "" {
		w.Logger.Info("upstream API key not configured, skipping realtime refresh")
		return
	}

	if err := w.run(ctx); err != nil {
		w.Logger.Error("realtime refresh failed", zap.String("error", secretredact.Scrub(err.Error(), w.APIKey)))
	}
}

func (w *RealtimeWorker) run(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, w.Timeout)
	defer cancel()

	type fetchResult struct {
		name string
		body []byte
		err  error
	}

	fetches := []struct {
		name string
		url  string
	}{
		{"trip updates", w.TripUpdatesURL},
		{"vehicle positions", w.VehiclePosURL},
		{"alerts", w.AlertsURL},
	}

	results := make(chan fetchResult, len(fetches))
	for _, f := range fetches {
		go func(name, url string) {
			body, err := downloader.HTTPGet(ctx, url, w.APIKey, downloader.GetOptions{})
			results <- fetchResult{name: name, body: body, err: err}
		}(f.name, f.url)
	}

	bodies := map[string][]byte{}
	for range fetches {
		r := <-results
		if r.err != nil {
			return fmt.Errorf("fetching %s: %w", r.name, r.err)
		}
		bodies[r.name] = r.body
	}

	tripUpdates, err := gtfsrt.Decode(bodies["trip updates"])
	if err != nil {
		return fmt.Errorf("decoding trip updates: %w", err)
	}
	vehiclePositions, err := gtfsrt.Decode(bodies["vehicle positions"])
	if err != nil {
		return fmt.Errorf("decoding vehicle positions: %w", err)
	}
	alerts, err := gtfsrt.Decode(bodies["alerts"])
	if err != nil {
		return fmt.Errorf("decoding alerts: %w", err)
	}

	status := merge.Merge(tripUpdates, vehiclePositions, alerts)

	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("encoding realtime status: %w", err)
	}

	err = w.Store.Put(ctx, kvstore.KeyRealtimeStatus, payload, w.TTL, map[string]string{
		"t": fmt.Sprintf("%d", status.Timestamp),
	})
	if err != nil {
		return fmt.Errorf("writing realtime:status: %w", err)
	}

	w.Logger.Info("realtime refresh published",
		zap.Int64("feed_timestamp", status.Timestamp),
		zap.Int("trip_count", len(status.ByTrip)),
		zap.Int("alert_count", len(status.Alerts)),
	)
	return nil
}
