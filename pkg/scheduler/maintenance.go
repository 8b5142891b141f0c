package scheduler

import (
	"context"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/mfreeman451/routeradar/pkg/telemetry"
)

func (s *Scheduler) sweep(_ context.Context) {
	ttl := time.Duration(s.cfg.StaleCounterTTL)

	counters := s.alerts.SweepStale(ttl)
	readings := s.rates.Prune(s.now().Add(-ttl))

	telemetry.RealtimeSeries.Set(float64(s.store.Len()))

	if counters > 0 || readings > 0 {
		s.log.Debug().
			Int("violation_counters", counters).
			Int("counter_readings", readings).
			Msg("Swept stale state")
	}
}

// compact persists a thinned copy of the realtime samples written since
// the previous run.
func (s *Scheduler) compact(ctx context.Context) {
	s.compactMu.Lock()
	defer s.compactMu.Unlock()

	now := s.now()

	cutoff := now.Add(-time.Duration(s.cfg.CompactionWindow))
	if s.lastCompacted.After(cutoff) {
		cutoff = s.lastCompacted
	}

	var batch []models.TrafficSample

	for _, key := range s.store.Series() {
		recent := s.store.Since(key.DeviceID, key.Interface, cutoff)
		batch = append(batch, pickEvenly(recent, s.cfg.CompactionSamples)...)
	}

	if len(batch) == 0 {
		s.lastCompacted = now

		return
	}

	if err := s.db.InsertSamples(ctx, batch); err != nil {
		s.log.Error().Err(err).Int("samples", len(batch)).Msg("Failed to persist compacted samples")

		return
	}

	s.lastCompacted = now

	s.log.Debug().Int("samples", len(batch)).Msg("Compacted realtime samples")
}

// pickEvenly returns up to n samples spread across samples, always
// including the first and the last.
func pickEvenly(samples []models.TrafficSample, n int) []models.TrafficSample {
	if n <= 0 || len(samples) == 0 {
		return nil
	}

	if len(samples) <= n {
		return samples
	}

	if n == 1 {
		return []models.TrafficSample{samples[len(samples)-1]}
	}

	out := make([]models.TrafficSample, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, samples[i*(len(samples)-1)/(n-1)])
	}

	return out
}

func (s *Scheduler) retention(ctx context.Context) {
	cutoff := s.now().Add(-time.Duration(s.cfg.SampleRetention))

	deleted, err := s.db.DeleteSamplesBefore(ctx, cutoff)
	if err != nil {
		s.log.Error().Err(err).Time("cutoff", cutoff).Msg("Failed to delete expired samples")

		return
	}

	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Deleted expired samples")
	}
}
