package models

import "time"

// TrafficSample is one rate observation for an interface.
type TrafficSample struct {
	DeviceID  int64     `json:"deviceId"`
	Interface string    `json:"interface"`
	Timestamp time.Time `json:"timestamp"`
	RxBps     float64   `json:"rxBps"`
	TxBps     float64   `json:"txBps"`
	TotalBps  float64   `json:"totalBps"`
}

// TrafficQuery selects durable samples. A zero Bucket returns raw rows.
type TrafficQuery struct {
	DeviceID  int64
	Interface string
	Start     time.Time
	End       time.Time
	Bucket    time.Duration
}
