package lifecycle

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeService struct {
	startErr error
	started  atomic.Bool
	stopped  atomic.Bool
}

func (f *fakeService) Start(context.Context) error {
	f.started.Store(true)

	return f.startErr
}

func (f *fakeService) Stop(context.Context) error {
	f.stopped.Store(true)

	return nil
}

func freeAddr(t *testing.T) string {
	t.Helper()

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := lis.Addr().String()
	require.NoError(t, lis.Close())

	return addr
}

func TestRunServerCancel(t *testing.T) {
	svc := &fakeService{}
	grpcAddr := freeAddr(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- RunServer(ctx, &ServerOptions{
			ServiceName: "routeradar",
			Service:     svc,
			HTTPServer:  &http.Server{Addr: "127.0.0.1:0", ReadHeaderTimeout: time.Second},
			GRPCAddr:    grpcAddr,
			Logger:      logger.NewTestLogger(),
		})
	}()

	conn, err := grpc.NewClient(grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)

	defer func() { _ = conn.Close() }()

	client := healthpb.NewHealthClient(conn)

	require.Eventually(t, func() bool {
		rpcCtx, rpcCancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer rpcCancel()

		resp, err := client.Check(rpcCtx, &healthpb.HealthCheckRequest{Service: "routeradar"})

		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 3*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "RunServer did not return")
	}

	assert.True(t, svc.started.Load())
	assert.True(t, svc.stopped.Load())
}

func TestRunServerStartFailure(t *testing.T) {
	svc := &fakeService{startErr: errors.New("boom")}

	err := RunServer(context.Background(), &ServerOptions{
		ServiceName: "routeradar",
		Service:     svc,
		Logger:      logger.NewTestLogger(),
	})
	require.Error(t, err)
	assert.False(t, svc.stopped.Load())
}

func TestRunServerComponentFailure(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	defer func() { _ = busy.Close() }()

	svc := &fakeService{}

	err = RunServer(context.Background(), &ServerOptions{
		ServiceName:     "routeradar",
		Service:         svc,
		HTTPServer:      &http.Server{Addr: busy.Addr().String(), ReadHeaderTimeout: time.Second},
		ShutdownTimeout: time.Second,
		Logger:          logger.NewTestLogger(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP server")
	assert.True(t, svc.stopped.Load())
}
