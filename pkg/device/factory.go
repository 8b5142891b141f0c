package device

import (
	"context"
	"fmt"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
)

type protocolFactory struct {
	timeout time.Duration
}

// NewFactory returns a Factory that opens real network sessions, each
// bounded by timeout per connect or request.
func NewFactory(timeout time.Duration) Factory {
	return &protocolFactory{timeout: timeout}
}

func (f *protocolFactory) Open(
	ctx context.Context, method models.ConnectionMethod, dev *models.Device, creds models.Credentials) (Protocol, error) {
	switch method {
	case models.MethodNative:
		return openNative(dev, creds, f.timeout)
	case models.MethodREST:
		if !dev.REST.Enabled {
			return nil, fmt.Errorf("%w: %s", ErrProtocolDisabled, method)
		}

		return newREST(dev, creds, f.timeout), nil
	case models.MethodSNMP:
		if !dev.SNMP.Enabled {
			return nil, fmt.Errorf("%w: %s", ErrProtocolDisabled, method)
		}

		return openSNMP(ctx, dev, f.timeout)
	case models.MethodUnset:
		return nil, ErrNoMethod
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMethod, method)
	}
}
