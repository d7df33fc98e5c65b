package grpcx

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
)

type DialOptions struct {
	// Timeout bounds the wait for the connection to become ready. Zero skips the wait.
	Timeout time.Duration
	// If nil, defaults to insecure credentials (suitable for local dev / inside a cluster with mTLS at mesh layer).
	TransportCredentials grpc.DialOption
}

// Dial opens a client connection with tracing and request id propagation.
func Dial(ctx context.Context, target string, opts DialOptions, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
		grpc.WithChainUnaryInterceptor(UnaryClientRequestIDInterceptor()),
	}
	if opts.TransportCredentials != nil {
		dialOpts = append(dialOpts, opts.TransportCredentials)
	} else {
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}
	dialOpts = append(dialOpts, extra...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	if opts.Timeout <= 0 {
		return conn, nil
	}
	if err := waitReady(ctx, conn, opts.Timeout); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func waitReady(ctx context.Context, conn *grpc.ClientConn, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn.Connect()
	for {
		state := conn.GetState()
		if state == connectivity.Ready {
			return nil
		}
		if !conn.WaitForStateChange(ctx, state) {
			return fmt.Errorf("grpc connect %s: %w (last state %s)", conn.Target(), ctx.Err(), state)
		}
	}
}

// ServerOptions are the options every service's gRPC server is built with.
func ServerOptions(extra ...grpc.UnaryServerInterceptor) []grpc.ServerOption {
	unary := append([]grpc.UnaryServerInterceptor{UnaryServerRequestIDInterceptor()}, extra...)
	return []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unary...),
	}
}
