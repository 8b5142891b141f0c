package scheduler

import "errors"

var (
	errAlreadyStarted = errors.New("scheduler already started")
	// ErrDeviceAccess is returned when a device cannot be loaded for a
	// realtime session or a connection test.
	ErrDeviceAccess = errors.New("device unavailable")
	// ErrNoRealtimeMethod is returned when a realtime session cannot find
	// any working protocol for its device.
	ErrNoRealtimeMethod = errors.New("no working connection method")
)
