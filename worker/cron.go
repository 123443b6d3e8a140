package worker

import (
	"context"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler wires the realtime and schedule workers to their cron
// cadences. Both workers also get kicked once immediately so a fresh
// process doesn't serve stale-or-empty data until their first
// scheduled tick.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler registers both workers. realtimeCadence is a cron
// expression (e.g. "@every 120s"); scheduleCron is a standard 5-field
// cron expression (e.g. "0 3 * * *").
func NewScheduler(ctx context.Context, realtime *RealtimeWorker, realtimeCadence string, schedule *ScheduleWorker, scheduleCron string, logger *zap.Logger) (*Scheduler, error) {
	c := cron.New()

	if _, err := c.AddFunc(realtimeCadence, func() { realtime.Run(ctx) }); err != nil {
		return nil, err
	}
	if _, err := c.AddFunc(scheduleCron, func() { schedule.Run(ctx) }); err != nil {
		return nil, err
	}

	return &Scheduler{cron: c}, nil
}

// Start runs both workers once immediately, then starts the cron
// scheduler for subsequent ticks.
func (s *Scheduler) Start(ctx context.Context, realtime *RealtimeWorker, schedule *ScheduleWorker) {
	go realtime.Run(ctx)
	go schedule.Run(ctx)
	s.cron.Start()
}

// Stop halts the scheduler, waiting for any in-flight job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
