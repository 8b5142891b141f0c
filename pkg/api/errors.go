package api

import "errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("access to device denied")

	errInvalidDeviceID = errors.New("invalid device id")
	errInvalidTime     = errors.New("invalid time format")
	errInvalidLimit    = errors.New("invalid limit")
)
