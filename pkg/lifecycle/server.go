// Package lifecycle runs a service next to its HTTP and gRPC health
// servers and shuts everything down on a signal or a component failure.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mfreeman451/routeradar/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	MaxRecvSize     = 4 * 1024 * 1024 // 4MB
	MaxSendSize     = 4 * 1024 * 1024 // 4MB
	ShutdownTimeout = 10 * time.Second
)

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for running a service.
type ServerOptions struct {
	ServiceName string
	Service     Service
	// HTTPServer is optional.
	HTTPServer *http.Server
	// GRPCAddr enables the gRPC health server when set.
	GRPCAddr        string
	ShutdownTimeout time.Duration
	Logger          logger.Logger
}

type healthServer struct {
	server *grpc.Server
	health *health.Server
	lis    net.Listener
}

// RunServer starts the service and its servers, then blocks until a
// signal, a component error or ctx cancellation. Cancellation shuts down
// cleanly and returns nil; a component error is returned after shutdown.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := opts.Logger
	if log == nil {
		log = logger.GetLogger()
	}

	log.Info().Str("service", opts.ServiceName).Msg("Starting service")

	hs, err := setupHealthServer(opts.GRPCAddr, opts.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to setup gRPC server: %w", err)
	}

	errChan := make(chan error, 3)

	report := func(err error) {
		select {
		case errChan <- err:
		default:
			log.Error().Err(err).Msg("Component error")
		}
	}

	if err := opts.Service.Start(ctx); err != nil {
		if hs != nil {
			_ = hs.lis.Close()
		}

		return fmt.Errorf("failed to start service: %w", err)
	}

	if hs != nil {
		go func() {
			log.Info().Str("addr", hs.lis.Addr().String()).Msg("Starting gRPC health server")

			if err := hs.server.Serve(hs.lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				report(fmt.Errorf("gRPC server: %w", err))
			}
		}()
	}

	if opts.HTTPServer != nil {
		go func() {
			log.Info().Str("addr", opts.HTTPServer.Addr).Msg("Starting HTTP server")

			if err := opts.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				report(fmt.Errorf("HTTP server: %w", err))
			}
		}()
	}

	return handleShutdown(ctx, cancel, opts, hs, errChan, log)
}

func setupHealthServer(addr, serviceName string) (*healthServer, error) {
	if addr == "" {
		return nil, nil
	}

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	server := grpc.NewServer(
		grpc.MaxRecvMsgSize(MaxRecvSize),
		grpc.MaxSendMsgSize(MaxSendSize),
	)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, hs)

	return &healthServer{server: server, health: hs, lis: lis}, nil
}

func handleShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	opts *ServerOptions,
	hs *healthServer,
	errChan chan error,
	log logger.Logger,
) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	defer signal.Stop(sigChan)

	var cause error

	select {
	case sig := <-sigChan:
		log.Info().Str("signal", sig.String()).Msg("Received signal, initiating shutdown")
	case err := <-errChan:
		log.Error().Err(err).Msg("Component failed, initiating shutdown")

		cause = fmt.Errorf("service error: %w", err)
	case <-ctx.Done():
		log.Info().Msg("Context canceled, initiating shutdown")
	}

	timeout := opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = ShutdownTimeout
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	cancel()

	if hs != nil {
		hs.health.Shutdown()
		stopGRPC(shutdownCtx, hs.server)
	}

	if opts.HTTPServer != nil {
		if err := opts.HTTPServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("HTTP server shutdown incomplete")
		}
	}

	if err := opts.Service.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during service shutdown")

		if cause == nil {
			cause = fmt.Errorf("shutdown error: %w", err)
		}
	}

	log.Info().Str("service", opts.ServiceName).Msg("Service stopped")

	return cause
}

// stopGRPC drains in-flight RPCs until ctx expires, then forces the stop.
func stopGRPC(ctx context.Context, server *grpc.Server) {
	done := make(chan struct{})

	go func() {
		server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		server.Stop()
	}
}
