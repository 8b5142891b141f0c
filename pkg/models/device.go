// Package models pkg/models/device.go
package models

import "time"

// ConnectionMethod identifies the protocol used to talk to a device.
type ConnectionMethod string

const (
	MethodUnset  ConnectionMethod = ""
	MethodNative ConnectionMethod = "native"
	MethodREST   ConnectionMethod = "rest"
	MethodSNMP   ConnectionMethod = "snmp"
)

// InterfacePolicy controls which interfaces of a device are reported.
type InterfacePolicy string

const (
	PolicyNone       InterfacePolicy = "none"
	PolicyStaticOnly InterfacePolicy = "static-only"
	PolicyAll        InterfacePolicy = "all"
)

const (
	DefaultNativePort = 8728
	DefaultRESTPort   = 443
	DefaultSNMPPort   = 161
)

// NativeConfig configures the RouterOS binary API.
type NativeConfig struct {
	Port int `json:"port"`
}

// RESTConfig configures the HTTPS management API.
type RESTConfig struct {
	Enabled            bool   `json:"enabled"`
	Port               int    `json:"port"`
	AltHostname        string `json:"alt_hostname,omitempty"`
	DiscoveredHostname string `json:"discovered_hostname,omitempty"`
}

// SNMPConfig configures SNMP polling.
type SNMPConfig struct {
	Enabled   bool   `json:"enabled"`
	Community string `json:"community"`
	Version   string `json:"version"` // v1 or v2c
	Port      int    `json:"port"`
}

// Device is a monitored router.
type Device struct {
	ID              int64            `json:"id"`
	Name            string           `json:"name"`
	Address         string           `json:"address"`
	OwnerID         int64            `json:"owner_id"`
	Native          NativeConfig     `json:"native"`
	REST            RESTConfig       `json:"rest"`
	SNMP            SNMPConfig       `json:"snmp"`
	InterfacePolicy InterfacePolicy  `json:"interface_policy"`
	Method          ConnectionMethod `json:"method"`
	Reachable       bool             `json:"reachable"`
	LastChecked     time.Time        `json:"last_checked"`
}

// NativePort returns the configured binary API port or the default.
func (d *Device) NativePort() int {
	if d.Native.Port == 0 {
		return DefaultNativePort
	}

	return d.Native.Port
}

// RESTPort returns the configured HTTPS port or the default.
func (d *Device) RESTPort() int {
	if d.REST.Port == 0 {
		return DefaultRESTPort
	}

	return d.REST.Port
}

// SNMPPort returns the configured SNMP port or the default.
func (d *Device) SNMPPort() int {
	if d.SNMP.Port == 0 {
		return DefaultSNMPPort
	}

	return d.SNMP.Port
}

// Credentials are the login used by the native and REST protocols.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"-"`
}

// MonitoredInterface is a (device, interface) pair under watch.
type MonitoredInterface struct {
	ID          int64     `json:"id"`
	DeviceID    int64     `json:"device_id"`
	Name        string    `json:"name"`
	Enabled     bool      `json:"enabled"`
	MinTotalBps float64   `json:"min_total_bps"`
	Comment     string    `json:"comment,omitempty"`
	MAC         string    `json:"mac,omitempty"`
	Running     bool      `json:"running"`
	LastSeen    time.Time `json:"last_seen"`
}

// InterfaceInfo is one interface row as reported by a device.
type InterfaceInfo struct {
	Name    string `json:"name"`
	Comment string `json:"comment,omitempty"`
	MAC     string `json:"mac,omitempty"`
	Running bool   `json:"running"`
	RxBytes uint64 `json:"rx_bytes"`
	TxBytes uint64 `json:"tx_bytes"`
}

// InterfaceMeta is the cached metadata written back on every poll.
type InterfaceMeta struct {
	Name     string
	Comment  string
	MAC      string
	Running  bool
	LastSeen time.Time
}
