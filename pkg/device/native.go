package device

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/go-routeros/routeros/v3"
	"github.com/mfreeman451/routeradar/pkg/models"
)

const interfaceProplist = "=.proplist=name,comment,mac-address,running,rx-byte,tx-byte"

// nativeProtocol speaks the RouterOS binary API.
type nativeProtocol struct {
	client    *routeros.Client
	target    string
	timeout   time.Duration
	closeOnce sync.Once
}

func openNative(dev *models.Device, creds models.Credentials, timeout time.Duration) (Protocol, error) {
	target := net.JoinHostPort(dev.Address, strconv.Itoa(dev.NativePort()))

	client, err := routeros.DialTimeout(target, creds.Username, creds.Password, timeout)
	if err != nil {
		return nil, &ProtocolError{Method: models.MethodNative, Op: "connect", Target: target, Wrapped: err}
	}

	return &nativeProtocol{client: client, target: target, timeout: timeout}, nil
}

func (*nativeProtocol) Method() models.ConnectionMethod {
	return models.MethodNative
}

func (p *nativeProtocol) Identity(ctx context.Context) (string, error) {
	reply, err := p.run(ctx, "identity", "/system/identity/print")
	if err != nil {
		return "", err
	}

	for _, re := range reply.Re {
		if name := re.Map["name"]; name != "" {
			return name, nil
		}
	}

	return "", &ProtocolError{Method: models.MethodNative, Op: "identity", Target: p.target, Wrapped: ErrMalformedResponse}
}

func (p *nativeProtocol) ListInterfaces(ctx context.Context) ([]models.InterfaceInfo, error) {
	reply, err := p.run(ctx, "interfaces", "/interface/print", interfaceProplist)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]string, 0, len(reply.Re))
	for _, re := range reply.Re {
		rows = append(rows, re.Map)
	}

	infos, err := parseRouterOSRows(rows)
	if err != nil {
		return nil, &ProtocolError{Method: models.MethodNative, Op: "interfaces", Target: p.target, Wrapped: err}
	}

	return infos, nil
}

// run executes a command, giving up when ctx or the protocol timeout ends.
// The client has no context support, so an abandoned call is unblocked by
// closing the connection.
func (p *nativeProtocol) run(ctx context.Context, op string, sentence ...string) (*routeros.Reply, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		reply *routeros.Reply
		err   error
	}

	done := make(chan result, 1)

	go func() {
		reply, err := p.client.Run(sentence...)
		done <- result{reply: reply, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			return nil, &ProtocolError{Method: models.MethodNative, Op: op, Target: p.target, Wrapped: res.err}
		}

		return res.reply, nil
	case <-ctx.Done():
		_ = p.Close()

		return nil, &ProtocolError{Method: models.MethodNative, Op: op, Target: p.target, Wrapped: ctx.Err()}
	}
}

func (p *nativeProtocol) Close() error {
	p.closeOnce.Do(func() {
		p.client.Close()
	})

	return nil
}
