package device

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
)

// managementPorts are probed on every device besides its configured ports:
// ssh, telnet, http, https, winbox and the RouterOS API (plain and TLS).
var managementPorts = []int{22, 23, 80, 443, 8291, 8728, 8729}

// Prober checks whether anything on a host accepts TCP connections.
type Prober struct {
	timeout time.Duration
	dialer  net.Dialer
}

func NewProber(timeout time.Duration) *Prober {
	return &Prober{timeout: timeout}
}

// CandidatePorts returns the device's configured ports followed by the
// common management ports, without duplicates.
func CandidatePorts(dev *models.Device) []int {
	ports := []int{dev.NativePort()}

	if dev.REST.Enabled {
		ports = append(ports, dev.RESTPort())
	}

	ports = append(ports, managementPorts...)

	seen := make(map[int]struct{}, len(ports))
	out := make([]int, 0, len(ports))

	for _, port := range ports {
		if _, ok := seen[port]; ok {
			continue
		}

		seen[port] = struct{}{}
		out = append(out, port)
	}

	return out
}

// Probe dials every port concurrently and returns the first one that
// accepts a connection. The remaining dials are cancelled.
func (p *Prober) Probe(ctx context.Context, host string, ports []int) (int, error) {
	if len(ports) == 0 {
		return 0, ErrUnreachable
	}

	probeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	found := make(chan int, len(ports))

	var wg sync.WaitGroup

	for _, port := range ports {
		wg.Add(1)

		go func(port int) {
			defer wg.Done()

			if p.dial(probeCtx, host, port) {
				found <- port
			}
		}(port)
	}

	go func() {
		wg.Wait()
		close(found)
	}()

	port, ok := <-found
	if !ok {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		return 0, ErrUnreachable
	}

	return port, nil
}

func (p *Prober) dial(ctx context.Context, host string, port int) bool {
	connCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.dialer.DialContext(connCtx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}

	_ = conn.Close()

	return true
}
