package config

import "errors"

var (
	errInvalidConfig        = errors.New("invalid config")
	errInvalidDuration      = errors.New("invalid duration")
	errDBPathRequired       = errors.New("db_path is required")
	errListenAddrRequired   = errors.New("listen_addr is required")
	errInvalidCredentialKey = errors.New("credential_key must be 32 hex-encoded bytes")
	errInvalidThreshold     = errors.New("confirmation_threshold must be positive")
)
