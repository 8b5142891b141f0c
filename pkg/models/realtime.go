package models

// Message types on the realtime push channel.
const (
	MessageAuth            = "auth"
	MessageAuthOK          = "auth_ok"
	MessageError           = "error"
	MessageStatus          = "status"
	MessageStartRealtime   = "start_realtime_polling"
	MessageStopRealtime    = "stop_realtime_polling"
	MessageRealtimeTraffic = "realtime_traffic"
)

// RealtimeMessage is pushed to subscribers of a device.
type RealtimeMessage struct {
	Type     string          `json:"type"`
	DeviceID int64           `json:"deviceId"`
	Data     []TrafficSample `json:"data"`
}

// Session status values carried by status messages.
const (
	StatusStarted = "started"
	StatusStopped = "stopped"
	StatusError   = "error"
)

// ClientMessage is anything a client sends on the push channel.
type ClientMessage struct {
	Type     string `json:"type"`
	Token    string `json:"token,omitempty"`
	DeviceID int64  `json:"deviceId,omitempty"`
}

// StatusMessage acknowledges a control message, or reports an
// authentication or session failure.
type StatusMessage struct {
	Type     string `json:"type"`
	Status   string `json:"status,omitempty"`
	DeviceID int64  `json:"deviceId,omitempty"`
	Message  string `json:"message,omitempty"`
}
