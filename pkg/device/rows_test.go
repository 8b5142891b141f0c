package device

import (
	"testing"

	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRouterOSRows(t *testing.T) {
	rows := []map[string]string{
		{
			"name":        "ether1",
			"comment":     "uplink",
			"mac-address": "AA:BB:CC:DD:EE:01",
			"running":     "true",
			"rx-byte":     "123456",
			"tx-byte":     "654321",
		},
		{"name": "lo", "running": "false"},
	}

	got, err := parseRouterOSRows(rows)
	require.NoError(t, err)

	assert.Equal(t, []models.InterfaceInfo{
		{Name: "ether1", Comment: "uplink", MAC: "AA:BB:CC:DD:EE:01", Running: true, RxBytes: 123456, TxBytes: 654321},
		{Name: "lo"},
	}, got)
}

func TestParseRouterOSRowsMalformed(t *testing.T) {
	_, err := parseRouterOSRows([]map[string]string{{"name": "ether1", "rx-byte": "lots"}})
	require.ErrorIs(t, err, ErrMalformedResponse)

	_, err = parseRouterOSRows([]map[string]string{{"rx-byte": "1"}})
	require.ErrorIs(t, err, ErrMalformedResponse)
}
