package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mfreeman451/routeradar/pkg/logger"
)

// Duration is a time.Duration that unmarshals from "30s" or nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))

		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%w: %w", errInvalidDuration, err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Header is a custom HTTP header sent with webhook notifications.
type Header struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// WebhookConfig configures one webhook notifier.
type WebhookConfig struct {
	Enabled   bool     `json:"enabled"`
	URL       string   `json:"url"`
	Template  string   `json:"template,omitempty"`
	Headers   []Header `json:"headers,omitempty"`
	RateLimit float64  `json:"rate_limit,omitempty"` // alerts per second
	Burst     int      `json:"burst,omitempty"`
}

// CORSConfig controls which browser origins may call the HTTP API.
type CORSConfig struct {
	AllowedOrigins   []string `json:"allowed_origins,omitempty"`
	AllowCredentials bool     `json:"allow_credentials,omitempty"`
}

// Config is the routeradar service configuration.
type Config struct {
	ListenAddr    string        `json:"listen_addr"`
	GRPCAddr      string        `json:"grpc_addr,omitempty"`
	DBPath        string        `json:"db_path"`
	CredentialKey string        `json:"credential_key,omitempty"`
	Logging       logger.Config `json:"logging"`

	CollectInterval    Duration `json:"collect_interval"`
	EvaluateInterval   Duration `json:"evaluate_interval"`
	RealtimeInterval   Duration `json:"realtime_interval"`
	CompactionInterval Duration `json:"compaction_interval"`
	CompactionWindow   Duration `json:"compaction_window"`
	CompactionSamples  int      `json:"compaction_samples"`
	RetentionInterval  Duration `json:"retention_interval"`
	SampleRetention    Duration `json:"sample_retention"`
	StaleSweepInterval Duration `json:"stale_sweep_interval"`
	StaleCounterTTL    Duration `json:"stale_counter_timeout"`

	ConfirmationThreshold int      `json:"confirmation_threshold"`
	ProtocolTimeout       Duration `json:"protocol_timeout"`
	ReachabilityTimeout   Duration `json:"reachability_timeout"`
	MaxConcurrency        int      `json:"max_concurrency"`

	RealtimeCapacity    int      `json:"realtime_capacity"`
	RealtimeMaxSeries   int      `json:"realtime_max_series"`
	RealtimePushSamples int      `json:"realtime_push_samples"`
	QueryCacheTTL       Duration `json:"query_cache_ttl"`

	AuthTokens map[string]int64 `json:"auth_tokens,omitempty"`
	CORS       CORSConfig       `json:"cors"`
	Webhooks   []WebhookConfig  `json:"webhooks,omitempty"`
}

const (
	defaultCollectInterval    = 60 * time.Second
	defaultRealtimeInterval   = time.Second
	defaultCompactionInterval = 5 * time.Minute
	defaultCompactionSamples  = 5
	defaultRetentionInterval  = 24 * time.Hour
	defaultSampleRetention    = 2 * 365 * 24 * time.Hour
	defaultStaleSweepInterval = 5 * time.Minute
	defaultStaleCounterTTL    = 10 * time.Minute
	defaultConfirmations      = 5
	defaultProtocolTimeout    = 10 * time.Second
	defaultReachTimeout       = 2 * time.Second
	defaultMaxConcurrency     = 32
	defaultRealtimeCapacity   = 300
	defaultRealtimeMaxSeries  = 10000
	defaultPushSamples        = 100
	defaultQueryCacheTTL      = 2 * time.Minute
)

func setDefault(d *Duration, def time.Duration) {
	if *d <= 0 {
		*d = Duration(def)
	}
}

func setDefaultInt(v *int, def int) {
	if *v <= 0 {
		*v = def
	}
}

// Validate checks required settings and fills in defaults.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return errListenAddrRequired
	}

	if c.DBPath == "" {
		return errDBPathRequired
	}

	if c.ConfirmationThreshold < 0 {
		return errInvalidThreshold
	}

	if c.CredentialKey != "" {
		if _, err := c.SecretKey(); err != nil {
			return err
		}
	}

	setDefault(&c.CollectInterval, defaultCollectInterval)
	setDefault(&c.EvaluateInterval, time.Duration(c.CollectInterval))
	setDefault(&c.RealtimeInterval, defaultRealtimeInterval)
	setDefault(&c.CompactionInterval, defaultCompactionInterval)
	setDefault(&c.CompactionWindow, time.Duration(c.CompactionInterval))
	setDefault(&c.RetentionInterval, defaultRetentionInterval)
	setDefault(&c.SampleRetention, defaultSampleRetention)
	setDefault(&c.StaleSweepInterval, defaultStaleSweepInterval)
	setDefault(&c.StaleCounterTTL, defaultStaleCounterTTL)
	setDefault(&c.ProtocolTimeout, defaultProtocolTimeout)
	setDefault(&c.ReachabilityTimeout, defaultReachTimeout)
	setDefault(&c.QueryCacheTTL, defaultQueryCacheTTL)

	setDefaultInt(&c.CompactionSamples, defaultCompactionSamples)
	setDefaultInt(&c.ConfirmationThreshold, defaultConfirmations)
	setDefaultInt(&c.MaxConcurrency, defaultMaxConcurrency)
	setDefaultInt(&c.RealtimeCapacity, defaultRealtimeCapacity)
	setDefaultInt(&c.RealtimeMaxSeries, defaultRealtimeMaxSeries)
	setDefaultInt(&c.RealtimePushSamples, defaultPushSamples)

	return nil
}

// SecretKey decodes CredentialKey. It returns nil when sealing is disabled.
func (c *Config) SecretKey() (*[32]byte, error) {
	if c.CredentialKey == "" {
		return nil, nil
	}

	raw, err := hex.DecodeString(c.CredentialKey)
	if err != nil || len(raw) != 32 {
		return nil, errInvalidCredentialKey
	}

	var key [32]byte

	copy(key[:], raw)

	return &key, nil
}
