package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/md-rashed-zaman/staybook/libs/httpx"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/booking"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/pricing"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hotelID = "0b9e7d3c-1111-4c2a-8e5f-123456789abc"
	roomID  = "6f1c2a4e-8a43-4a53-9a8e-0d3f1b2c3d4e"
	owner   = "user_owner"
	guest   = "user_guest"
)

type fakeHotels struct {
	hotels  map[string]model.Hotel
	err     error
	created []model.Hotel
	deleted []string
}

func (f *fakeHotels) Create(_ context.Context, h model.Hotel) (model.Hotel, error) {
	h.ID = "11111111-2222-3333-4444-555555555555"
	f.created = append(f.created, h)
	return h, nil
}

func (f *fakeHotels) Get(_ context.Context, id string) (model.Hotel, error) {
	h, ok := f.hotels[id]
	if !ok {
		return model.Hotel{}, storage.ErrNotFound
	}
	return h, nil
}

func (f *fakeHotels) Search(_ context.Context, filter model.HotelFilter) ([]model.Hotel, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []model.Hotel
	for _, h := range f.hotels {
		if filter.Country == "" || h.Country == filter.Country {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHotels) ListByOwner(_ context.Context, ownerID string) ([]model.Hotel, error) {
	var out []model.Hotel
	for _, h := range f.hotels {
		if h.OwnerID == ownerID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (f *fakeHotels) Update(_ context.Context, h model.Hotel) (model.Hotel, error) {
	f.hotels[h.ID] = h
	return h, nil
}

func (f *fakeHotels) Delete(_ context.Context, id, _ string) error {
	f.deleted = append(f.deleted, id)
	delete(f.hotels, id)
	return nil
}

type fakeRooms struct {
	rooms   map[string]model.Room
	hotels  *fakeHotels
	created []model.Room
}

func (f *fakeRooms) Create(_ context.Context, room model.Room) (model.Room, error) {
	room.ID = "99999999-2222-3333-4444-555555555555"
	f.created = append(f.created, room)
	return room, nil
}

func (f *fakeRooms) GetWithHotel(ctx context.Context, id string) (model.Room, model.Hotel, error) {
	room, ok := f.rooms[id]
	if !ok {
		return model.Room{}, model.Hotel{}, storage.ErrNotFound
	}
	h, err := f.hotels.Get(ctx, room.HotelID)
	return room, h, err
}

func (f *fakeRooms) Update(_ context.Context, room model.Room) (model.Room, error) {
	f.rooms[room.ID] = room
	return room, nil
}

func (f *fakeRooms) Delete(_ context.Context, id string) error {
	delete(f.rooms, id)
	return nil
}

type fakeBookings struct {
	reserveReq booking.ReserveRequest
	err        error
	available  bool
	days       []time.Time
}

func (f *fakeBookings) Reserve(_ context.Context, req booking.ReserveRequest) (booking.ReserveResult, error) {
	f.reserveReq = req
	if f.err != nil {
		return booking.ReserveResult{}, f.err
	}
	return booking.ReserveResult{
		Booking:      model.Booking{ID: "b1", PaymentIntentID: "pi_1"},
		ClientSecret: "pi_1_secret",
		Quote:        pricing.Quote{Nights: 2, Total: 20000, RoomTotal: 20000},
	}, nil
}

func (f *fakeBookings) Confirm(_ context.Context, userID, intentID string) (model.Booking, error) {
	if f.err != nil {
		return model.Booking{}, f.err
	}
	return model.Booking{ID: "b1", UserID: userID, PaymentIntentID: intentID, PaymentStatus: true}, nil
}

func (f *fakeBookings) CheckAvailability(_ context.Context, _ string, stay availability.DateInterval) (booking.Availability, error) {
	if f.err != nil {
		return booking.Availability{}, f.err
	}
	return booking.Availability{Available: f.available, Nights: availability.Nights(stay.Start, stay.End)}, nil
}

func (f *fakeBookings) BookedDays(context.Context, string) ([]time.Time, error) {
	return f.days, f.err
}

func (f *fakeBookings) ListMine(_ context.Context, userID string) ([]model.BookingDetail, error) {
	return []model.BookingDetail{{Booking: model.Booking{ID: "b1", UserID: userID}}}, f.err
}

func (f *fakeBookings) ListForOwner(_ context.Context, ownerID string) ([]model.BookingDetail, error) {
	return []model.BookingDetail{{Booking: model.Booking{ID: "b2", HotelOwnerID: ownerID}}}, f.err
}

func (f *fakeBookings) Cancel(context.Context, string, string) error {
	return f.err
}

type env struct {
	hotels   *fakeHotels
	rooms    *fakeRooms
	bookings *fakeBookings
	mux      *http.ServeMux
}

func newEnv() *env {
	hotels := &fakeHotels{hotels: map[string]model.Hotel{
		hotelID: {ID: hotelID, OwnerID: owner, Title: "Sea Breeze", Country: "BD"},
	}}
	rooms := &fakeRooms{hotels: hotels, rooms: map[string]model.Room{
		roomID: {ID: roomID, HotelID: hotelID, Title: "Deluxe", RoomPrice: 10000},
	}}
	bookings := &fakeBookings{available: true}
	mux := http.NewServeMux()
	NewAPI(hotels, rooms, bookings, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(mux)
	return &env{hotels: hotels, rooms: rooms, bookings: bookings, mux: mux}
}

func (e *env) do(method, path, user, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if user != "" {
		req.Header.Set(httpx.UserIDHeader, user)
	}
	rw := httptest.NewRecorder()
	e.mux.ServeHTTP(rw, req)
	return rw
}

const validHotel = `{
	"title": "Sea Breeze",
	"description": "Quiet rooms right on the beach.",
	"image_url": "https://img.example/sea.jpg",
	"country": "BD",
	"city": "Cox's Bazar",
	"location_description": "Five minutes from the laboni point.",
	"amenities": ["spa", "free_wifi", "spa"]
}`

const validRoom = `{
	"title": "Deluxe King",
	"description": "King bed with an ocean view balcony.",
	"bed_count": 1,
	"guest_count": 2,
	"bathroom_count": 1,
	"king_bed": 1,
	"image_url": "https://img.example/room.jpg",
	"breakfast_price": 1500,
	"room_price": 12000,
	"amenities": ["ocean_view", "balcony"]
}`

func TestPublicHotelRoutes(t *testing.T) {
	e := newEnv()

	rw := e.do(http.MethodGet, "/api/v1/hotels?country=BD", "", "")
	require.Equal(t, http.StatusOK, rw.Code)
	var list struct {
		Hotels []model.Hotel `json:"hotels"`
	}
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&list))
	assert.Len(t, list.Hotels, 1)

	assert.Equal(t, http.StatusOK, e.do(http.MethodGet, "/api/v1/hotels/"+hotelID, "", "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/v1/hotels/not-a-uuid", "", "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/api/v1/hotels/"+roomID, "", "").Code)
}

func TestProtectedRoutesRequireUser(t *testing.T) {
	e := newEnv()
	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/v1/hotels"},
		{http.MethodGet, "/api/v1/my/hotels"},
		{http.MethodPost, "/api/v1/bookings/payment-intent"},
		{http.MethodPost, "/api/v1/bookings/pi_1/confirm"},
		{http.MethodGet, "/api/v1/my/bookings"},
		{http.MethodGet, "/api/v1/my/guest-bookings"},
		{http.MethodDelete, "/api/v1/rooms/" + roomID},
	} {
		rw := e.do(tc.method, tc.path, "", "")
		assert.Equal(t, http.StatusUnauthorized, rw.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCreateHotel(t *testing.T) {
	e := newEnv()
	rw := e.do(http.MethodPost, "/api/v1/hotels", owner, validHotel)
	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
	require.Len(t, e.hotels.created, 1)
	created := e.hotels.created[0]
	assert.Equal(t, owner, created.OwnerID)
	assert.Equal(t, []string{"spa", "free_wifi"}, created.Amenities)
}

func TestCreateHotelValidation(t *testing.T) {
	e := newEnv()
	rw := e.do(http.MethodPost, "/api/v1/hotels", owner, `{"title":"ab","description":"short","image_url":"x","country":"","location_description":"tiny","amenities":["casino"]}`)
	require.Equal(t, http.StatusBadRequest, rw.Code)
	body := rw.Body.String()
	for _, want := range []string{"title must be at least 3", "description must be at least 10", "image_url must be at least 2", "country is required", "has unsupported value \"casino\""} {
		assert.Contains(t, body, want)
	}
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/v1/hotels", owner, `{`).Code)
}

func TestHotelOwnership(t *testing.T) {
	e := newEnv()
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPatch, "/api/v1/hotels/"+hotelID, guest, validHotel).Code)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodDelete, "/api/v1/hotels/"+hotelID, guest, "").Code)
	assert.Empty(t, e.hotels.deleted)

	rw := e.do(http.MethodPatch, "/api/v1/hotels/"+hotelID, owner, validHotel)
	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())
	assert.Equal(t, "Cox's Bazar", e.hotels.hotels[hotelID].City)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/v1/hotels/"+hotelID, owner, "").Code)
	assert.Equal(t, []string{hotelID}, e.hotels.deleted)
}

func TestMyHotels(t *testing.T) {
	e := newEnv()
	rw := e.do(http.MethodGet, "/api/v1/my/hotels", owner, "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), hotelID)

	rw = e.do(http.MethodGet, "/api/v1/my/hotels", guest, "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.NotContains(t, rw.Body.String(), hotelID)
}

func TestRoomRoutes(t *testing.T) {
	e := newEnv()
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPost, "/api/v1/hotels/"+hotelID+"/rooms", guest, validRoom).Code)

	rw := e.do(http.MethodPost, "/api/v1/hotels/"+hotelID+"/rooms", owner, validRoom)
	require.Equal(t, http.StatusCreated, rw.Code, rw.Body.String())
	require.Len(t, e.rooms.created, 1)
	assert.Equal(t, hotelID, e.rooms.created[0].HotelID)
	assert.Equal(t, int64(12000), e.rooms.created[0].RoomPrice)

	bad := strings.Replace(validRoom, `"room_price": 12000`, `"room_price": 0`, 1)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/v1/hotels/"+hotelID+"/rooms", owner, bad).Code)

	assert.Equal(t, http.StatusForbidden, e.do(http.MethodPatch, "/api/v1/rooms/"+roomID, guest, validRoom).Code)
	assert.Equal(t, http.StatusOK, e.do(http.MethodPatch, "/api/v1/rooms/"+roomID, owner, validRoom).Code)
	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/v1/rooms/"+roomID, owner, "").Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/v1/rooms/"+roomID, owner, "").Code)
}

func TestAvailabilityRoute(t *testing.T) {
	e := newEnv()
	rw := e.do(http.MethodGet, "/api/v1/rooms/"+roomID+"/availability?start_date=2026-06-06&end_date=2026-06-09", "", "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"available":true,"nights":3}`, rw.Body.String())

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/v1/rooms/"+roomID+"/availability?start_date=2026-06-09&end_date=2026-06-01", "", "").Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/api/v1/rooms/"+roomID+"/availability?start_date=june", "", "").Code)

	e.bookings.err = booking.ErrUpstream
	assert.Equal(t, http.StatusServiceUnavailable, e.do(http.MethodGet, "/api/v1/rooms/"+roomID+"/availability?start_date=2026-06-06&end_date=2026-06-09", "", "").Code)
}

func TestBookedDatesRoute(t *testing.T) {
	e := newEnv()
	e.bookings.days = []time.Time{time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)}
	rw := e.do(http.MethodGet, "/api/v1/rooms/"+roomID+"/booked-dates", "", "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.JSONEq(t, `{"room_id":"`+roomID+`","dates":["2026-06-01","2026-06-02"]}`, rw.Body.String())
}

func TestReserveRoute(t *testing.T) {
	e := newEnv()
	rw := e.do(http.MethodPost, "/api/v1/bookings/payment-intent", guest, `{"room_id":"`+roomID+`","start_date":"2026-06-01","end_date":"2026-06-03","breakfast_included":true}`)
	require.Equal(t, http.StatusOK, rw.Code, rw.Body.String())

	var resp reserveResponse
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&resp))
	assert.Equal(t, "b1", resp.BookingID)
	assert.Equal(t, "pi_1_secret", resp.ClientSecret)
	assert.Equal(t, int64(20000), resp.Quote.Total)
	assert.Equal(t, guest, e.bookings.reserveReq.UserID)
	assert.True(t, e.bookings.reserveReq.BreakfastIncluded)

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/v1/bookings/payment-intent", guest, `{"room_id":"nope","start_date":"2026-06-01","end_date":"2026-06-03"}`).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodPost, "/api/v1/bookings/payment-intent", guest, `{"room_id":"`+roomID+`","start_date":"2026-06-05","end_date":"2026-06-03"}`).Code)

	e.bookings.reserveReq = booking.ReserveRequest{}
	rw = e.do(http.MethodPost, "/api/v1/bookings/payment-intent", guest, `{"room_id":"`+roomID+`","start_date":"2026-10-14","end_date":"9999-12-31"}`)
	assert.Equal(t, http.StatusBadRequest, rw.Code)
	assert.Contains(t, rw.Body.String(), "365 nights")
	assert.Empty(t, e.bookings.reserveReq.UserID, "long stay must be rejected before reaching the service")
}

func TestReserveErrorMapping(t *testing.T) {
	body := `{"room_id":"` + roomID + `","start_date":"2026-06-01","end_date":"2026-06-03"}`
	cases := []struct {
		err  error
		code int
	}{
		{booking.ErrConflict, http.StatusConflict},
		{booking.ErrUpstream, http.StatusServiceUnavailable},
		{booking.ErrNotFound, http.StatusNotFound},
		{booking.ErrForbidden, http.StatusForbidden},
		{booking.ErrValidation, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		e := newEnv()
		e.bookings.err = tc.err
		rw := e.do(http.MethodPost, "/api/v1/bookings/payment-intent", guest, body)
		assert.Equal(t, tc.code, rw.Code, "error %v", tc.err)
		if tc.err == booking.ErrConflict {
			assert.Equal(t, "dates unavailable, choose different dates\n", rw.Body.String())
		}
	}
}

func TestConfirmAndListRoutes(t *testing.T) {
	e := newEnv()
	rw := e.do(http.MethodPost, "/api/v1/bookings/pi_1/confirm", guest, "")
	require.Equal(t, http.StatusOK, rw.Code)
	var b model.Booking
	require.NoError(t, json.NewDecoder(rw.Body).Decode(&b))
	assert.True(t, b.PaymentStatus)
	assert.Equal(t, "pi_1", b.PaymentIntentID)

	rw = e.do(http.MethodGet, "/api/v1/my/bookings", guest, "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), `"id":"b1"`)

	rw = e.do(http.MethodGet, "/api/v1/my/guest-bookings", owner, "")
	require.Equal(t, http.StatusOK, rw.Code)
	assert.Contains(t, rw.Body.String(), `"hotel_owner_id":"`+owner+`"`)

	assert.Equal(t, http.StatusNoContent, e.do(http.MethodDelete, "/api/v1/bookings/b1", guest, "").Code)
}

func TestCancelConfirmedBookingConflicts(t *testing.T) {
	e := newEnv()
	e.bookings.err = booking.ErrNotPending
	rw := e.do(http.MethodDelete, "/api/v1/bookings/b1", guest, "")
	assert.Equal(t, http.StatusConflict, rw.Code)
	assert.Equal(t, "confirmed bookings cannot be cancelled\n", rw.Body.String())

	e.bookings.err = booking.ErrNotFound
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodDelete, "/api/v1/bookings/b1", guest, "").Code)
}
