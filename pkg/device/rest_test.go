package device

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"math/big"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mfreeman451/routeradar/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func selfSignedCert(t *testing.T, cn string) tls.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

func routerServer(t *testing.T, cn string) (*httptest.Server, int) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/rest/system/identity", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]string{"name": "edge-1"})
	})
	mux.HandleFunc("/rest/interface", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{".id": "*1", "name": "ether1", "comment": "uplink", "running": "true", "rx-byte": "1000", "tx-byte": "2000"},
			{".id": "*2", "name": "ether2", "running": "false", "rx-byte": "0", "tx-byte": "0", "disabled": false},
		})
	})

	srv := httptest.NewUnstartedServer(mux)
	srv.TLS = &tls.Config{Certificates: []tls.Certificate{selfSignedCert(t, cn)}, MinVersion: tls.VersionTLS12}
	srv.StartTLS()
	t.Cleanup(srv.Close)

	return srv, srv.Listener.Addr().(*net.TCPAddr).Port
}

func TestRESTIdentityLearnsHostname(t *testing.T) {
	_, port := routerServer(t, "router.example.net")

	dev := &models.Device{Address: "127.0.0.1", REST: models.RESTConfig{Enabled: true, Port: port}}
	p := newREST(dev, models.Credentials{Username: "admin", Password: "secret"}, 2*time.Second)

	defer func() { _ = p.Close() }()

	name, err := p.Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "edge-1", name)
	assert.Equal(t, "router.example.net", p.DiscoveredHostname())
}

func TestRESTFallsBackToAddress(t *testing.T) {
	_, port := routerServer(t, "router.example.net")

	dev := &models.Device{
		Address: "127.0.0.1",
		REST:    models.RESTConfig{Enabled: true, Port: port, AltHostname: "127.0.0.2"},
	}
	p := newREST(dev, models.Credentials{Username: "admin", Password: "secret"}, 2*time.Second)

	assert.Equal(t, []string{"127.0.0.2", "127.0.0.1"}, p.hosts())

	rows, err := p.ListInterfaces(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.InterfaceInfo{Name: "ether1", Comment: "uplink", Running: true, RxBytes: 1000, TxBytes: 2000}, rows[0])
	assert.False(t, rows[1].Running)
	assert.Equal(t, "router.example.net", p.DiscoveredHostname())
}

func TestRESTIgnoresUnusableNames(t *testing.T) {
	tests := []struct {
		name       string
		cn         string
		discovered string
	}{
		{name: "wildcard", cn: "*.example.net"},
		{name: "ip address", cn: "127.0.0.1"},
		{name: "already known", cn: "LOCALHOST", discovered: "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, port := routerServer(t, tt.cn)

			dev := &models.Device{
				Address: "127.0.0.1",
				REST:    models.RESTConfig{Enabled: true, Port: port, DiscoveredHostname: tt.discovered},
			}
			p := newREST(dev, models.Credentials{Username: "admin", Password: "secret"}, time.Second)

			_, err := p.Identity(context.Background())
			require.NoError(t, err)
			assert.Empty(t, p.DiscoveredHostname())
		})
	}
}

func TestRESTUnauthorized(t *testing.T) {
	_, port := routerServer(t, "router.example.net")

	dev := &models.Device{Address: "127.0.0.1", REST: models.RESTConfig{Enabled: true, Port: port}}
	p := newREST(dev, models.Credentials{Username: "admin", Password: "wrong"}, time.Second)

	_, err := p.Identity(context.Background())
	require.ErrorIs(t, err, ErrUnexpectedStatus)

	var perr *ProtocolError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, models.MethodREST, perr.Method)
}

func TestFactoryRejectsDisabledProtocols(t *testing.T) {
	f := NewFactory(time.Second)
	dev := &models.Device{Address: "127.0.0.1"}

	_, err := f.Open(context.Background(), models.MethodREST, dev, models.Credentials{})
	require.ErrorIs(t, err, ErrProtocolDisabled)

	_, err = f.Open(context.Background(), models.MethodSNMP, dev, models.Credentials{})
	require.ErrorIs(t, err, ErrProtocolDisabled)

	_, err = f.Open(context.Background(), models.MethodUnset, dev, models.Credentials{})
	require.ErrorIs(t, err, ErrNoMethod)

	_, err = f.Open(context.Background(), "telnet", dev, models.Credentials{})
	require.ErrorIs(t, err, ErrUnsupportedMethod)
}
