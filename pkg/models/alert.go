package models

import (
	"fmt"
	"time"
)

// SystemActor acknowledges alerts that clear on their own.
const SystemActor = "system"

// AlertKind is the condition an alert was raised for.
type AlertKind string

const (
	KindDeviceUnreachable AlertKind = "device_unreachable"
	KindInterfaceDown     AlertKind = "interface_down"
	KindTrafficLow        AlertKind = "traffic_low"
)

// Severity of an alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a confirmed, durable condition.
type Alert struct {
	ID                int64     `json:"id"`
	ConditionKey      string    `json:"condition_key"`
	Kind              AlertKind `json:"kind"`
	DeviceID          int64     `json:"device_id"`
	InterfaceID       int64     `json:"interface_id,omitempty"`
	InterfaceName     string    `json:"interface_name,omitempty"`
	Severity          Severity  `json:"severity"`
	Message           string    `json:"message"`
	CurrentTrafficBps float64   `json:"current_traffic_bps,omitempty"`
	ThresholdBps      float64   `json:"threshold_bps,omitempty"`
	Acknowledged      bool      `json:"acknowledged"`
	AcknowledgedBy    string    `json:"acknowledged_by,omitempty"`
	AcknowledgedAt    time.Time `json:"acknowledged_at,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// ConditionKey builds the key shared by a violation counter and its alert.
func ConditionKey(kind AlertKind, entityID int64) string {
	return fmt.Sprintf("%s:%d", kind, entityID)
}
