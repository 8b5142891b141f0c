package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/mfreeman451/routeradar/pkg/db"
	"github.com/mfreeman451/routeradar/pkg/device"
)

// TestConnection re-runs protocol discovery for a device. A successful
// discovery replaces the stored connection method; a failed one leaves it
// unchanged. A failed discovery is not an error.
func (s *Scheduler) TestConnection(ctx context.Context, deviceID int64) (*device.Discovery, error) {
	dev, err := s.db.GetDevice(ctx, deviceID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDeviceAccess, err)
	}

	creds, err := s.db.GetCredentials(ctx, deviceID)
	if err != nil && !errors.Is(err, db.ErrNoCredentials) {
		return nil, fmt.Errorf("%w: %w", ErrDeviceAccess, err)
	}

	unlock := s.locks.lock(deviceID)
	disc := s.newClient(dev, creds).Discover(ctx)
	unlock()

	if !disc.OK() {
		s.log.Info().Int64("device_id", deviceID).Int("attempts", len(disc.Attempts)).Msg("Connection test found no working method")

		return &disc, nil
	}

	if disc.Method != dev.Method {
		if err := s.db.UpdateConnectionMethod(ctx, deviceID, disc.Method); err != nil {
			return &disc, err
		}
	}

	s.log.Info().
		Int64("device_id", deviceID).
		Str("method", string(disc.Method)).
		Str("identity", disc.Identity).
		Msg("Connection test succeeded")

	return &disc, nil
}
