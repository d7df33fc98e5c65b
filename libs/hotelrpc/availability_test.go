package hotelrpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/structpb"
)

func TestRequestStructRoundTrip(t *testing.T) {
	req := AvailabilityRequest{RoomID: "r1", StartDate: "2026-06-01", EndDate: "2026-06-03"}
	s, err := req.Struct()
	require.NoError(t, err)
	assert.Equal(t, req, RequestFromStruct(s))
}

func TestResponseFromStruct(t *testing.T) {
	s, err := AvailabilityResponse{Available: true, Nights: 2}.Struct()
	require.NoError(t, err)
	res, err := ResponseFromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, AvailabilityResponse{Available: true, Nights: 2}, res)

	_, err = ResponseFromStruct(&structpb.Struct{})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}
