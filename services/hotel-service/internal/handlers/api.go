package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/md-rashed-zaman/staybook/libs/httpx"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/booking"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/storage"
)

type HotelStore interface {
	Create(ctx context.Context, h model.Hotel) (model.Hotel, error)
	Get(ctx context.Context, hotelID string) (model.Hotel, error)
	Search(ctx context.Context, f model.HotelFilter) ([]model.Hotel, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Hotel, error)
	Update(ctx context.Context, h model.Hotel) (model.Hotel, error)
	Delete(ctx context.Context, hotelID, ownerID string) error
}

type RoomStore interface {
	Create(ctx context.Context, room model.Room) (model.Room, error)
	GetWithHotel(ctx context.Context, roomID string) (model.Room, model.Hotel, error)
	Update(ctx context.Context, room model.Room) (model.Room, error)
	Delete(ctx context.Context, roomID string) error
}

// Bookings is implemented by *booking.Service.
type Bookings interface {
	Reserve(ctx context.Context, req booking.ReserveRequest) (booking.ReserveResult, error)
	Confirm(ctx context.Context, userID, paymentIntentID string) (model.Booking, error)
	CheckAvailability(ctx context.Context, roomID string, stay availability.DateInterval) (booking.Availability, error)
	BookedDays(ctx context.Context, roomID string) ([]time.Time, error)
	ListMine(ctx context.Context, userID string) ([]model.BookingDetail, error)
	ListForOwner(ctx context.Context, ownerID string) ([]model.BookingDetail, error)
	Cancel(ctx context.Context, userID, bookingID string) error
}

type API struct {
	hotels   HotelStore
	rooms    RoomStore
	bookings Bookings
	logger   *slog.Logger
	validate *validator.Validate
}

func NewAPI(hotels HotelStore, rooms RoomStore, bookings Bookings, logger *slog.Logger) *API {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return &API{hotels: hotels, rooms: rooms, bookings: bookings, logger: logger, validate: v}
}

// Register mounts every route on mux. Identity comes from the X-User-Id header
// set by the gateway; routes that need it answer 401 without one.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/hotels", a.SearchHotels)
	mux.HandleFunc("GET /api/v1/hotels/{hotelID}", a.GetHotel)
	mux.HandleFunc("POST /api/v1/hotels", a.authed(a.CreateHotel))
	mux.HandleFunc("PATCH /api/v1/hotels/{hotelID}", a.authed(a.UpdateHotel))
	mux.HandleFunc("DELETE /api/v1/hotels/{hotelID}", a.authed(a.DeleteHotel))
	mux.HandleFunc("GET /api/v1/my/hotels", a.authed(a.MyHotels))

	mux.HandleFunc("POST /api/v1/hotels/{hotelID}/rooms", a.authed(a.CreateRoom))
	mux.HandleFunc("PATCH /api/v1/rooms/{roomID}", a.authed(a.UpdateRoom))
	mux.HandleFunc("DELETE /api/v1/rooms/{roomID}", a.authed(a.DeleteRoom))
	mux.HandleFunc("GET /api/v1/rooms/{roomID}/booked-dates", a.BookedDates)
	mux.HandleFunc("GET /api/v1/rooms/{roomID}/availability", a.Availability)

	mux.HandleFunc("POST /api/v1/bookings/payment-intent", a.authed(a.Reserve))
	mux.HandleFunc("POST /api/v1/bookings/{paymentIntentID}/confirm", a.authed(a.Confirm))
	mux.HandleFunc("DELETE /api/v1/bookings/{bookingID}", a.authed(a.CancelBooking))
	mux.HandleFunc("GET /api/v1/my/bookings", a.authed(a.MyBookings))
	mux.HandleFunc("GET /api/v1/my/guest-bookings", a.authed(a.GuestBookings))
}

func (a *API) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if userID(r) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func userID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(httpx.UserIDHeader))
}

// pathID returns the uuid path parameter name, answering 404 when malformed.
func pathID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	id := r.PathValue(name)
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return "", false
	}
	return id, true
}

// decode reads a JSON body into dst and validates it.
func (a *API) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid json body", http.StatusBadRequest)
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		http.Error(w, validationMessage(err), http.StatusBadRequest)
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "min":
			msgs = append(msgs, fe.Field()+" must be at least "+fe.Param())
		case "oneof":
			msgs = append(msgs, fe.Field()+" has unsupported value "+stringValue(fe.Value()))
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

func stringValue(v any) string {
	s, _ := v.(string)
	return "\"" + s + "\""
}

// writeError maps service and storage errors onto status codes.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, booking.ErrValidation):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, booking.ErrConflict):
		http.Error(w, booking.ErrConflict.Error(), http.StatusConflict)
	case errors.Is(err, booking.ErrNotPending):
		http.Error(w, booking.ErrNotPending.Error(), http.StatusConflict)
	case errors.Is(err, booking.ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, booking.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrConflict):
		http.Error(w, "conflict", http.StatusConflict)
	case errors.Is(err, booking.ErrUpstream):
		http.Error(w, "service temporarily unavailable", http.StatusServiceUnavailable)
	default:
		a.logger.Error("request failed", "path", r.URL.Path, "request_id", httpx.RequestIDFromContext(r.Context()), "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	httpx.WriteJSON(w, code, v)
}
