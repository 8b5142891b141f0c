package device

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listen(t *testing.T) (net.Listener, int) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	t.Cleanup(func() { _ = ln.Close() })

	return ln, ln.Addr().(*net.TCPAddr).Port
}

// closedPort returns a port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	return port
}

func TestCandidatePorts(t *testing.T) {
	dev := &models.Device{REST: models.RESTConfig{Enabled: true}}

	ports := CandidatePorts(dev)

	assert.Equal(t, 8728, ports[0])
	assert.Equal(t, 443, ports[1])
	assert.Equal(t, []int{8728, 443, 22, 23, 80, 8291, 8729}, ports)

	dev = &models.Device{Native: models.NativeConfig{Port: 18728}}
	assert.Equal(t, []int{18728, 22, 23, 80, 443, 8291, 8728, 8729}, CandidatePorts(dev))
}

func TestProbeFindsOpenPort(t *testing.T) {
	_, open := listen(t)
	closed := closedPort(t)

	p := NewProber(time.Second)

	port, err := p.Probe(context.Background(), "127.0.0.1", []int{closed, open})
	require.NoError(t, err)
	assert.Equal(t, open, port)
}

func TestProbeUnreachable(t *testing.T) {
	p := NewProber(500 * time.Millisecond)

	_, err := p.Probe(context.Background(), "127.0.0.1", []int{closedPort(t), closedPort(t)})
	require.ErrorIs(t, err, ErrUnreachable)

	_, err = p.Probe(context.Background(), "127.0.0.1", nil)
	require.ErrorIs(t, err, ErrUnreachable)
}

func TestClientCheckReachability(t *testing.T) {
	_, open := listen(t)

	dev := &models.Device{Address: "127.0.0.1", Native: models.NativeConfig{Port: open}}
	c := NewClient(dev, models.Credentials{}, NewCounterCache(), WithProber(NewProber(time.Second)))

	// Other management ports may be open on the test host.
	port, err := c.CheckReachability(context.Background())
	require.NoError(t, err)
	assert.Contains(t, CandidatePorts(dev), port)
}
