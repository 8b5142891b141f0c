package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "routeradar.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func noEnv(string) (string, bool) { return "", false }

func envOf(vars map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := vars[k]
		return v, ok
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `{"listen_addr": ":8090", "db_path": "/tmp/rr.db"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 60*time.Second, time.Duration(cfg.CollectInterval))
	assert.Equal(t, 60*time.Second, time.Duration(cfg.EvaluateInterval))
	assert.Equal(t, time.Second, time.Duration(cfg.RealtimeInterval))
	assert.Equal(t, 5, cfg.ConfirmationThreshold)
	assert.Equal(t, 10*time.Minute, time.Duration(cfg.StaleCounterTTL))
	assert.Equal(t, 2*time.Minute, time.Duration(cfg.QueryCacheTTL))
	assert.Equal(t, 100, cfg.RealtimePushSamples)
}

func TestParseDurations(t *testing.T) {
	cfg, err := parse([]byte(`{
		"listen_addr": ":8090",
		"db_path": "/tmp/rr.db",
		"collect_interval": "30s",
		"realtime_interval": 500000000,
		"confirmation_threshold": 3
	}`), noEnv)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, time.Duration(cfg.CollectInterval))
	assert.Equal(t, 30*time.Second, time.Duration(cfg.EvaluateInterval))
	assert.Equal(t, 500*time.Millisecond, time.Duration(cfg.RealtimeInterval))
	assert.Equal(t, 3, cfg.ConfirmationThreshold)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{"missing listen addr", Config{DBPath: "x"}, errListenAddrRequired},
		{"missing db path", Config{ListenAddr: ":1"}, errDBPathRequired},
		{"negative threshold", Config{ListenAddr: ":1", DBPath: "x", ConfirmationThreshold: -1}, errInvalidThreshold},
		{"bad key", Config{ListenAddr: ":1", DBPath: "x", CredentialKey: "abcd"}, errInvalidCredentialKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.cfg.Validate(), tt.want)
		})
	}
}

func TestInvalidDuration(t *testing.T) {
	_, err := parse([]byte(`{"listen_addr": ":8090", "db_path": "x", "collect_interval": "soon"}`), noEnv)
	assert.ErrorIs(t, err, errInvalidDuration)

	_, err = parse([]byte(`{"listen_addr": ":8090", "db_path": "x"}`),
		envOf(map[string]string{"ROUTERADAR_COLLECT_INTERVAL": "often"}))
	assert.ErrorIs(t, err, errInvalidDuration)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := parse([]byte(`{"listen_addr": ":8090", "db_path": "x", "colect_interval": "30s"}`), noEnv)
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestEnvOverrides(t *testing.T) {
	key := "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

	cfg, err := parse([]byte(`{"listen_addr": ":8090", "collect_interval": "30s"}`), envOf(map[string]string{
		"ROUTERADAR_DB_PATH":           "/var/lib/routeradar/rr.db",
		"ROUTERADAR_CREDENTIAL_KEY":    key,
		"ROUTERADAR_DEBUG":             "true",
		"ROUTERADAR_REALTIME_INTERVAL": "2s",
		"ROUTERADAR_LISTEN_ADDR":       "",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":8090", cfg.ListenAddr)
	assert.Equal(t, "/var/lib/routeradar/rr.db", cfg.DBPath)
	assert.Equal(t, key, cfg.CredentialKey)
	assert.True(t, cfg.Logging.Debug)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.CollectInterval))
	assert.Equal(t, 2*time.Second, time.Duration(cfg.RealtimeInterval))

	// Overrides are validated like the file.
	_, err = parse([]byte(`{"listen_addr": ":8090", "db_path": "x"}`),
		envOf(map[string]string{"ROUTERADAR_CREDENTIAL_KEY": "abcd"}))
	assert.ErrorIs(t, err, errInvalidCredentialKey)

	_, err = parse([]byte(`{"listen_addr": ":8090", "db_path": "x"}`),
		envOf(map[string]string{"ROUTERADAR_DEBUG": "maybe"}))
	assert.ErrorIs(t, err, errInvalidConfig)
}

func TestSecretKey(t *testing.T) {
	cfg := Config{CredentialKey: "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"}

	key, err := cfg.SecretKey()
	require.NoError(t, err)
	require.NotNil(t, key)
	assert.Equal(t, byte(0x1f), key[31])

	empty := Config{}
	key, err = empty.SecretKey()
	require.NoError(t, err)
	assert.Nil(t, key)
}
