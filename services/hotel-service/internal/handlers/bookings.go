package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/booking"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/pricing"
)

type reserveRequest struct {
	RoomID            string `json:"room_id" validate:"required,uuid"`
	StartDate         string `json:"start_date" validate:"required"`
	EndDate           string `json:"end_date" validate:"required"`
	BreakfastIncluded bool   `json:"breakfast_included"`
	PaymentIntentID   string `json:"payment_intent_id"`
}

type reserveResponse struct {
	BookingID       string        `json:"booking_id"`
	PaymentIntentID string        `json:"payment_intent_id"`
	ClientSecret    string        `json:"client_secret"`
	Quote           pricing.Quote `json:"quote"`
}

// Reserve opens checkout for a stay: it returns the payment intent the client
// pays against.
func (a *API) Reserve(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if !a.decode(w, r, &req) {
		return
	}
	stay, err := availability.ParseInterval(req.StartDate, req.EndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := a.bookings.Reserve(r.Context(), booking.ReserveRequest{
		UserID:            userID(r),
		RoomID:            req.RoomID,
		Stay:              stay,
		BreakfastIncluded: req.BreakfastIncluded,
		PaymentIntentID:   req.PaymentIntentID,
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reserveResponse{
		BookingID:       res.Booking.ID,
		PaymentIntentID: res.Booking.PaymentIntentID,
		ClientSecret:    res.ClientSecret,
		Quote:           res.Quote,
	})
}

func (a *API) Confirm(w http.ResponseWriter, r *http.Request) {
	b, err := a.bookings.Confirm(r.Context(), userID(r), r.PathValue("paymentIntentID"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) CancelBooking(w http.ResponseWriter, r *http.Request) {
	if err := a.bookings.Cancel(r.Context(), userID(r), r.PathValue("bookingID")); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) MyBookings(w http.ResponseWriter, r *http.Request) {
	items, err := a.bookings.ListMine(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": items})
}

// GuestBookings lists bookings made on the caller's hotels.
func (a *API) GuestBookings(w http.ResponseWriter, r *http.Request) {
	items, err := a.bookings.ListForOwner(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": items})
}
