package device

//go:generate mockgen -destination=mock_device.go -package=device github.com/mfreeman451/routeradar/pkg/device Protocol,Factory

import (
	"context"

	"github.com/mfreeman451/routeradar/pkg/models"
)

// Protocol is one way of talking to a device. Every implementation answers
// the same capabilities so discovery can treat them alike.
type Protocol interface {
	Method() models.ConnectionMethod
	// Identity returns the device's self-reported name.
	Identity(ctx context.Context) (string, error)
	// ListInterfaces returns the interface inventory together with the
	// cumulative rx/tx byte counters, in a single round trip.
	ListInterfaces(ctx context.Context) ([]models.InterfaceInfo, error)
	Close() error
}

// HostnameReporter is implemented by protocols that can learn a better
// hostname for the device while talking to it.
type HostnameReporter interface {
	DiscoveredHostname() string
}

// Factory opens protocol sessions.
type Factory interface {
	Open(ctx context.Context, method models.ConnectionMethod, dev *models.Device, creds models.Credentials) (Protocol, error)
}
