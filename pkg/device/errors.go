package device

import (
	"errors"
	"fmt"

	"github.com/mfreeman451/routeradar/pkg/models"
)

var (
	ErrFetchFailed        = errors.New("fetch failed")
	ErrNoMethod           = errors.New("no connection method discovered")
	ErrUnsupportedMethod  = errors.New("unsupported connection method")
	ErrProtocolDisabled   = errors.New("protocol disabled for device")
	ErrUnreachable        = errors.New("device unreachable")
	ErrMalformedResponse  = errors.New("malformed protocol response")
	ErrUnsupportedVersion = errors.New("unsupported SNMP version")
	ErrUnexpectedStatus   = errors.New("unexpected HTTP status")
)

// ProtocolError wraps a protocol failure with the operation and target.
type ProtocolError struct {
	Method  models.ConnectionMethod
	Op      string
	Target  string
	Wrapped error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%s %s failed for target %s: %v", e.Method, e.Op, e.Target, e.Wrapped)
}

func (e *ProtocolError) Unwrap() error {
	return e.Wrapped
}
