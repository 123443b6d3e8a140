package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"caltrain.dev/transit/downloader"
	"caltrain.dev/transit/kvstore"
	"caltrain.dev/transit/model"
	"caltrain.dev/transit/secretredact"
	"caltrain.dev/transit/staticbuild"
	"caltrain.dev/transit/validate"
)

// ScheduleWorker fetches the static GTFS archive, builds and
// validates a schedule, and publishes it if its content hash changed.
type ScheduleWorker struct {
	Store     kvstore.Store
	APIKey    string
	StaticURL string
	Logger    *zap.Logger

	mu sync.Mutex
}

// Run executes a single daily pass. Like RealtimeWorker.Run, failures
// are logged and swallowed rather than propagated.
func (w *ScheduleWorker) Run(ctx context.Context) {
	if !w.mu.TryLock() {
		w.Logger.Warn("schedule run already in progress, skipping")
		return
	}
	defer w.mu.Unlock()

	if w.APIKey == "" {
		w.Logger.Info("upstream API key not configured, skipping schedule refresh")
		return
	}

	if err := w.run(ctx); err != nil {
		w.Logger.Error("schedule refresh failed", zap.String("error", secretredact.Scrub(err.Error(), w.APIKey)))
	}
}

func (w *ScheduleWorker) run(ctx context.Context) error {
	archive, err := downloader.HTTPGet(ctx, w.StaticURL, w.APIKey, downloader.GetOptions{})
	if err != nil {
		return fmt.Errorf("fetching archive: %w", err)
	}

	schedule, err := staticbuild.Build(archive)
	if err != nil {
		return fmt.Errorf("building schedule: %w", err)
	}

	if violations := validate.Violations(schedule); len(violations) > 0 {
		for _, v := range violations {
			w.Logger.Error("schedule validation violation", zap.String("violation", v))
		}
		return fmt.Errorf("schedule failed validation with %d violation(s)", len(violations))
	}

	current, ok, err := w.Store.Get(ctx, kvstore.KeyScheduleMeta)
	if err != nil {
		return fmt.Errorf("reading current schedule:meta: %w", err)
	}
	if ok {
		var currentMeta model.ScheduleMeta
		if err := json.Unmarshal(current.Value, &currentMeta); err != nil {
			return fmt.Errorf("decoding current schedule:meta: %w", err)
		}
		if currentMeta.Version == schedule.Meta.Version {
			w.Logger.Info("schedule version unchanged, skipping publish", zap.String("version", schedule.Meta.Version))
			return nil
		}
	}

	data, err := json.Marshal(schedule)
	if err != nil {
		return fmt.Errorf("encoding schedule:data: %w", err)
	}
	meta, err := json.Marshal(schedule.Meta)
	if err != nil {
		return fmt.Errorf("encoding schedule:meta: %w", err)
	}

	if err := w.Store.Put(ctx, kvstore.KeyScheduleData, data, 0, nil); err != nil {
		return fmt.Errorf("writing schedule:data: %w", err)
	}
	if err := w.Store.Put(ctx, kvstore.KeyScheduleMeta, meta, 0, nil); err != nil {
		return fmt.Errorf("writing schedule:meta: %w", err)
	}

	w.Logger.Info("schedule published", zap.String("version", schedule.Meta.Version), zap.Int("end_date", schedule.Meta.MaxEndDate))
	return nil
}
