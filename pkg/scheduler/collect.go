package scheduler

import (
	"context"

	"github.com/mfreeman451/routeradar/pkg/device"
	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/mfreeman451/routeradar/pkg/telemetry"
)

func (s *Scheduler) collect(ctx context.Context) {
	devices, err := s.db.ListDevices(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list devices for collection")

		return
	}

	s.fanOut(ctx, devices, s.collectDevice)
}

func enabledInterfaces(ifaces []models.MonitoredInterface) []models.MonitoredInterface {
	out := make([]models.MonitoredInterface, 0, len(ifaces))

	for i := range ifaces {
		if ifaces[i].Enabled {
			out = append(out, ifaces[i])
		}
	}

	return out
}

func (s *Scheduler) collectDevice(ctx context.Context, dev *models.Device) {
	ifaces, err := s.db.ListMonitoredInterfaces(ctx, dev.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("device_id", dev.ID).Msg("Failed to list monitored interfaces")

		return
	}

	monitored := enabledInterfaces(ifaces)
	if len(monitored) == 0 {
		s.probeDevice(ctx, dev)

		return
	}

	if dev.Method == models.MethodUnset {
		s.log.Debug().Int64("device_id", dev.ID).Msg("No connection method yet, skipping collection")

		return
	}

	creds, err := s.credentials(ctx, dev, dev.Method)
	if err != nil {
		s.log.Warn().Err(err).Int64("device_id", dev.ID).Msg("Skipping collection, credentials unavailable")

		return
	}

	unlock := s.locks.lock(dev.ID)
	defer unlock()

	res, err := s.newClient(dev, creds).FetchStats(ctx, dev.Method)
	telemetry.FetchResult(string(dev.Method), err)

	if err != nil {
		s.log.Warn().Err(err).Int64("device_id", dev.ID).Str("method", string(dev.Method)).Msg("Stats fetch failed")

		if uerr := s.db.UpdateReachability(ctx, dev.ID, false, s.now()); uerr != nil {
			s.log.Error().Err(uerr).Int64("device_id", dev.ID).Msg("Failed to record unreachable device")
		}

		return
	}

	s.apply(ctx, dev, monitored, res)
}

// apply writes one successful fetch: reachability, hostname, interface
// metadata and one durable sample per monitored interface in the response.
func (s *Scheduler) apply(ctx context.Context, dev *models.Device, monitored []models.MonitoredInterface, res *device.FetchResult) {
	if err := s.db.UpdateReachability(ctx, dev.ID, true, res.At); err != nil {
		s.log.Error().Err(err).Int64("device_id", dev.ID).Msg("Failed to record reachable device")
	}

	if res.DiscoveredHostname != "" && res.DiscoveredHostname != dev.REST.DiscoveredHostname {
		if err := s.db.UpdateDiscoveredHostname(ctx, dev.ID, res.DiscoveredHostname); err != nil {
			s.log.Error().Err(err).Int64("device_id", dev.ID).Msg("Failed to persist discovered hostname")
		}
	}

	reported := make(map[string]*device.InterfaceStats, len(res.Interfaces))
	for i := range res.Interfaces {
		reported[res.Interfaces[i].Info.Name] = &res.Interfaces[i]
	}

	metas := make([]models.InterfaceMeta, 0, len(monitored))
	samples := make([]models.TrafficSample, 0, len(monitored))

	for i := range monitored {
		stats, ok := reported[monitored[i].Name]
		if !ok {
			continue
		}

		metas = append(metas, models.InterfaceMeta{
			Name:     stats.Info.Name,
			Comment:  stats.Info.Comment,
			MAC:      stats.Info.MAC,
			Running:  stats.Info.Running,
			LastSeen: res.At,
		})
		samples = append(samples, stats.Sample)
	}

	if len(samples) == 0 {
		s.log.Debug().Int64("device_id", dev.ID).Msg("No monitored interface in response")

		return
	}

	if err := s.db.UpsertInterfaceMeta(ctx, dev.ID, metas); err != nil {
		s.log.Error().Err(err).Int64("device_id", dev.ID).Msg("Failed to update interface metadata")
	}

	insertErr := s.db.InsertSamples(ctx, samples)
	if insertErr != nil {
		s.log.Error().Err(insertErr).Int64("device_id", dev.ID).Msg("Failed to store traffic samples")
	}

	for _, sample := range samples {
		s.store.Append(sample, insertErr == nil)
	}
}

// probeDevice handles a device with nothing to collect: only its
// reachability is tracked.
func (s *Scheduler) probeDevice(ctx context.Context, dev *models.Device) {
	port, err := s.newClient(dev, models.Credentials{}).CheckReachability(ctx)
	reachable := err == nil

	if reachable {
		s.log.Debug().Int64("device_id", dev.ID).Int("port", port).Msg("Device reachable")
	} else {
		s.log.Debug().Err(err).Int64("device_id", dev.ID).Msg("Device unreachable")
	}

	if err := s.db.UpdateReachability(ctx, dev.ID, reachable, s.now()); err != nil {
		s.log.Error().Err(err).Int64("device_id", dev.ID).Msg("Failed to record reachability")
	}
}
