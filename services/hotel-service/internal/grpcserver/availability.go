package grpcserver

import (
	"context"
	"errors"

	"github.com/md-rashed-zaman/staybook/libs/hotelrpc"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/booking"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Checker is implemented by *booking.Service.
type Checker interface {
	CheckAvailability(ctx context.Context, roomID string, stay availability.DateInterval) (booking.Availability, error)
}

type server struct {
	checker Checker
}

// Register installs the availability service and a health service reporting
// it SERVING.
func Register(s *grpc.Server, checker Checker) *health.Server {
	hotelrpc.RegisterAvailabilityServer(s, &server{checker: checker})
	hs := health.NewServer()
	hs.SetServingStatus(hotelrpc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return hs
}

func (s *server) CheckAvailability(ctx context.Context, req hotelrpc.AvailabilityRequest) (hotelrpc.AvailabilityResponse, error) {
	stay, err := availability.ParseInterval(req.StartDate, req.EndDate)
	if err != nil {
		return hotelrpc.AvailabilityResponse{}, status.Error(codes.InvalidArgument, err.Error())
	}
	res, err := s.checker.CheckAvailability(ctx, req.RoomID, stay)
	if err != nil {
		return hotelrpc.AvailabilityResponse{}, toStatus(err)
	}
	return hotelrpc.AvailabilityResponse{Available: res.Available, Nights: res.Nights}, nil
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, booking.ErrValidation):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, booking.ErrConflict):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, booking.ErrUpstream):
		return status.Error(codes.Unavailable, "availability temporarily unavailable")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
