package grpcserver

import (
	"context"
	"log/slog"
	"net"

	"github.com/md-rashed-zaman/staybook/libs/grpcx"
	"google.golang.org/grpc"
)

// New builds the service's gRPC server with the shared interceptors.
func New(logger *slog.Logger, checker Checker) *grpc.Server {
	srv := grpc.NewServer(grpcx.ServerOptions(grpcx.UnaryServerLoggingInterceptor(logger))...)
	Register(srv, checker)
	return srv
}

// Serve runs srv on addr until ctx is cancelled.
func Serve(ctx context.Context, logger *slog.Logger, srv *grpc.Server, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	go func() {
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := srv.Serve(lis); err != nil {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		<-ctx.Done()
		srv.GracefulStop()
	}()
	return nil
}
