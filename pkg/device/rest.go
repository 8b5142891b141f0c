package device

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
)

// restProtocol speaks the RouterOS HTTPS REST API.
//
// Hosts are tried in order: the alternate (dynamic DNS) hostname first, then
// the numeric address. The first host that answers is kept for the rest of
// the session.
type restProtocol struct {
	dev        *models.Device
	creds      models.Credentials
	client     *http.Client
	base       string
	discovered string
}

func newREST(dev *models.Device, creds models.Credentials, timeout time.Duration) *restProtocol {
	transport := &http.Transport{
		// Routers ship self-signed certificates; the peer certificate is
		// still inspected for its subject name.
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec // self-signed router certificates
			MinVersion:         tls.VersionTLS12,
		},
		DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
		TLSHandshakeTimeout: timeout,
		MaxIdleConns:        2,
		IdleConnTimeout:     30 * time.Second,
	}

	return &restProtocol{
		dev:    dev,
		creds:  creds,
		client: &http.Client{Timeout: timeout, Transport: transport},
	}
}

func (*restProtocol) Method() models.ConnectionMethod {
	return models.MethodREST
}

func (p *restProtocol) hosts() []string {
	alt := p.dev.REST.AltHostname
	if alt == "" {
		alt = p.dev.REST.DiscoveredHostname
	}

	if alt != "" && !strings.EqualFold(alt, p.dev.Address) {
		return []string{alt, p.dev.Address}
	}

	return []string{p.dev.Address}
}

func (p *restProtocol) Identity(ctx context.Context) (string, error) {
	var identity struct {
		Name string `json:"name"`
	}

	if err := p.get(ctx, "/rest/system/identity", &identity); err != nil {
		return "", err
	}

	if identity.Name == "" {
		return "", &ProtocolError{Method: models.MethodREST, Op: "identity", Target: p.base, Wrapped: ErrMalformedResponse}
	}

	return identity.Name, nil
}

func (p *restProtocol) ListInterfaces(ctx context.Context) ([]models.InterfaceInfo, error) {
	var raw []map[string]interface{}

	if err := p.get(ctx, "/rest/interface", &raw); err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, len(raw))

	for _, obj := range raw {
		row := make(map[string]string, len(obj))

		for k, v := range obj {
			switch value := v.(type) {
			case string:
				row[k] = value
			case nil:
			default:
				row[k] = fmt.Sprint(value)
			}
		}

		rows = append(rows, row)
	}

	infos, err := parseRouterOSRows(rows)
	if err != nil {
		return nil, &ProtocolError{Method: models.MethodREST, Op: "interfaces", Target: p.base, Wrapped: err}
	}

	return infos, nil
}

// DiscoveredHostname implements HostnameReporter.
func (p *restProtocol) DiscoveredHostname() string {
	return p.discovered
}

func (p *restProtocol) get(ctx context.Context, path string, out interface{}) error {
	if p.base != "" {
		_, err := p.do(ctx, p.base, path, out)

		return err
	}

	var lastErr error

	for _, host := range p.hosts() {
		base := "https://" + net.JoinHostPort(host, strconv.Itoa(p.dev.RESTPort()))

		state, err := p.do(ctx, base, path, out)
		if err != nil {
			lastErr = err

			continue
		}

		p.base = base

		if host == p.dev.Address {
			p.learnHostname(state)
		}

		return nil
	}

	return lastErr
}

func (p *restProtocol) do(ctx context.Context, base, path string, out interface{}) (*tls.ConnectionState, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+path, http.NoBody)
	if err != nil {
		return nil, &ProtocolError{Method: models.MethodREST, Op: "request", Target: base, Wrapped: err}
	}

	req.SetBasicAuth(p.creds.Username, p.creds.Password)
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &ProtocolError{Method: models.MethodREST, Op: "get " + path, Target: base, Wrapped: err}
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, &ProtocolError{
			Method:  models.MethodREST,
			Op:      "get " + path,
			Target:  base,
			Wrapped: fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return nil, &ProtocolError{
			Method:  models.MethodREST,
			Op:      "decode " + path,
			Target:  base,
			Wrapped: fmt.Errorf("%w: %w", ErrMalformedResponse, err),
		}
	}

	return resp.TLS, nil
}

// learnHostname remembers the certificate subject name presented on the
// numeric address, when it names a host other than the ones already known.
func (p *restProtocol) learnHostname(state *tls.ConnectionState) {
	if state == nil || len(state.PeerCertificates) == 0 {
		return
	}

	cn := strings.TrimSpace(state.PeerCertificates[0].Subject.CommonName)

	switch {
	case cn == "", strings.HasPrefix(cn, "*"), net.ParseIP(cn) != nil:
		return
	case strings.EqualFold(cn, p.dev.Address),
		strings.EqualFold(cn, p.dev.REST.AltHostname),
		strings.EqualFold(cn, p.dev.REST.DiscoveredHostname):
		return
	}

	p.discovered = cn
}

func (p *restProtocol) Close() error {
	p.client.CloseIdleConnections()

	return nil
}
