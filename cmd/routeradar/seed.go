package main

import (
	"context"
	"fmt"

	"github.com/mfreeman451/routeradar/pkg/config"
	"github.com/mfreeman451/routeradar/pkg/db"
	"github.com/mfreeman451/routeradar/pkg/models"
)

// deviceSeed is one entry of the -seed file.
type deviceSeed struct {
	Device     models.Device               `json:"device"`
	Username   string                      `json:"username"`
	Password   string                      `json:"password"`
	Users      []int64                     `json:"users,omitempty"`
	Interfaces []models.MonitoredInterface `json:"interfaces,omitempty"`
}

func seedDevices(ctx context.Context, database *db.DB, path string) (int, error) {
	var seeds []deviceSeed
	if err := config.LoadFile(path, &seeds); err != nil {
		return 0, err
	}

	for i := range seeds {
		seed := &seeds[i]

		id, err := database.CreateDevice(ctx, &seed.Device,
			models.Credentials{Username: seed.Username, Password: seed.Password})
		if err != nil {
			return i, fmt.Errorf("device %s: %w", seed.Device.Name, err)
		}

		for _, userID := range seed.Users {
			if err := database.AssignUser(ctx, id, userID); err != nil {
				return i, fmt.Errorf("device %s: %w", seed.Device.Name, err)
			}
		}

		for j := range seed.Interfaces {
			iface := seed.Interfaces[j]
			iface.DeviceID = id

			if _, err := database.AddMonitoredInterface(ctx, &iface); err != nil {
				return i, fmt.Errorf("device %s interface %s: %w", seed.Device.Name, iface.Name, err)
			}
		}
	}

	return len(seeds), nil
}
