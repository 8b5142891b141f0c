package scheduler

import (
	"context"
	"time"

	"github.com/mfreeman451/routeradar/pkg/alerts"
	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/mfreeman451/routeradar/pkg/telemetry"
)

func (s *Scheduler) evaluate(ctx context.Context) {
	devices, err := s.db.ListDevices(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list devices for evaluation")

		return
	}

	s.fanOut(ctx, devices, s.evaluateDevice)
}

func (s *Scheduler) evaluateDevice(ctx context.Context, dev *models.Device) {
	// Never checked: there is nothing to judge yet.
	if dev.LastChecked.IsZero() {
		return
	}

	s.observe(ctx, &alerts.Condition{Kind: models.KindDeviceUnreachable, Device: dev}, dev.Reachable)

	if !dev.Reachable {
		return
	}

	ifaces, err := s.db.ListMonitoredInterfaces(ctx, dev.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("device_id", dev.ID).Msg("Failed to list monitored interfaces")

		return
	}

	maxAge := 2 * time.Duration(s.cfg.CollectInterval)
	now := s.now()

	for i := range ifaces {
		iface := &ifaces[i]
		if !iface.Enabled {
			continue
		}

		sample, ok := s.store.Latest(dev.ID, iface.Name)
		if !ok || now.Sub(sample.Timestamp) > maxAge {
			continue
		}

		down := &alerts.Condition{Kind: models.KindInterfaceDown, Device: dev, Interface: iface}
		s.observe(ctx, down, iface.Running)

		low := &alerts.Condition{
			Kind:         models.KindTrafficLow,
			Device:       dev,
			Interface:    iface,
			CurrentBps:   sample.TotalBps,
			ThresholdBps: iface.MinTotalBps,
		}

		if !iface.Running {
			s.alerts.Reset(low.Key())

			continue
		}

		if iface.MinTotalBps > 0 {
			s.observe(ctx, low, sample.TotalBps >= iface.MinTotalBps)
		}
	}
}

func (s *Scheduler) observe(ctx context.Context, cond *alerts.Condition, favorable bool) {
	outcome, err := s.alerts.Observe(ctx, cond, favorable)
	if err != nil {
		s.log.Error().Err(err).Str("condition", cond.Key()).Msg("Failed to evaluate condition")

		return
	}

	switch outcome {
	case alerts.OutcomeOpened, alerts.OutcomeCleared:
		telemetry.Alerts.WithLabelValues(string(cond.Kind), outcome.String()).Inc()
		s.log.Info().
			Str("condition", cond.Key()).
			Str("transition", outcome.String()).
			Msg("Alert state changed")
	case alerts.OutcomeNone, alerts.OutcomePending:
	}
}
