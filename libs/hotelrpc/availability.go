// Package hotelrpc is the wire contract of hotel.v1.AvailabilityService.
// Messages travel as google.protobuf.Struct so no generated code is needed.
package hotelrpc

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName             = "hotel.v1.AvailabilityService"
	CheckAvailabilityMethod = "/" + ServiceName + "/CheckAvailability"
)

var ErrMalformedResponse = errors.New("malformed availability response")

// AvailabilityRequest asks whether a room is free for an inclusive
// YYYY-MM-DD date range.
type AvailabilityRequest struct {
	RoomID    string
	StartDate string
	EndDate   string
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
	Nights    int  `json:"nights"`
}

func (r AvailabilityRequest) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"room_id":    r.RoomID,
		"start_date": r.StartDate,
		"end_date":   r.EndDate,
	})
}

func RequestFromStruct(s *structpb.Struct) AvailabilityRequest {
	fields := s.GetFields()
	return AvailabilityRequest{
		RoomID:    fields["room_id"].GetStringValue(),
		StartDate: fields["start_date"].GetStringValue(),
		EndDate:   fields["end_date"].GetStringValue(),
	}
}

func (r AvailabilityResponse) Struct() (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"available": r.Available,
		"nights":    r.Nights,
	})
}

func ResponseFromStruct(s *structpb.Struct) (AvailabilityResponse, error) {
	fields := s.GetFields()
	available, ok := fields["available"]
	if !ok {
		return AvailabilityResponse{}, ErrMalformedResponse
	}
	return AvailabilityResponse{
		Available: available.GetBoolValue(),
		Nights:    int(fields["nights"].GetNumberValue()),
	}, nil
}

// AvailabilityServer is implemented by the hotel service.
type AvailabilityServer interface {
	CheckAvailability(ctx context.Context, req AvailabilityRequest) (AvailabilityResponse, error)
}

func RegisterAvailabilityServer(s grpc.ServiceRegistrar, srv AvailabilityServer) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AvailabilityServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CheckAvailability", Handler: checkAvailabilityHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "hotel/v1/availability.proto",
}

func checkAvailabilityHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	handler := func(ctx context.Context, req any) (any, error) {
		res, err := srv.(AvailabilityServer).CheckAvailability(ctx, RequestFromStruct(req.(*structpb.Struct)))
		if err != nil {
			return nil, err
		}
		return res.Struct()
	}
	if interceptor == nil {
		return handler(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: CheckAvailabilityMethod}
	return interceptor(ctx, in, info, handler)
}

// Client calls the availability service over an existing connection.
type Client struct {
	conn grpc.ClientConnInterface
}

func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) CheckAvailability(ctx context.Context, req AvailabilityRequest) (AvailabilityResponse, error) {
	in, err := req.Struct()
	if err != nil {
		return AvailabilityResponse{}, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, CheckAvailabilityMethod, in, out); err != nil {
		return AvailabilityResponse{}, err
	}
	return ResponseFromStruct(out)
}
