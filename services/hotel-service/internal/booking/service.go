package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/metrics"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/payments"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/pricing"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/storage"
)

// Rooms loads a room with its hotel.
type Rooms interface {
	GetWithHotel(ctx context.Context, roomID string) (model.Room, model.Hotel, error)
}

// Store persists bookings. Writes also record the matching outbox event.
type Store interface {
	ConfirmedIntervals(ctx context.Context, roomID string) ([]availability.DateInterval, error)
	PendingByIntent(ctx context.Context, userID, intentID string) (model.Booking, error)
	Create(ctx context.Context, b model.Booking) (model.Booking, error)
	UpdatePending(ctx context.Context, b model.Booking) (model.Booking, error)
	Confirm(ctx context.Context, userID, intentID string) (model.Booking, bool, error)
	DeletePending(ctx context.Context, userID, bookingID string) (model.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.BookingDetail, error)
}

type Service struct {
	rooms    Rooms
	store    Store
	payments payments.Provider
	logger   *slog.Logger
	currency string
	now      func() time.Time
}

func NewService(rooms Rooms, store Store, provider payments.Provider, logger *slog.Logger, currency string) *Service {
	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		rooms:    rooms,
		store:    store,
		payments: provider,
		logger:   logger,
		currency: currency,
		now:      time.Now,
	}
}

type ReserveRequest struct {
	UserID            string
	RoomID            string
	Stay              availability.DateInterval
	BreakfastIncluded bool
	// PaymentIntentID is set when the caller retries checkout for an intent
	// they already hold.
	PaymentIntentID string
}

type ReserveResult struct {
	Booking      model.Booking `json:"booking"`
	ClientSecret string        `json:"client_secret"`
	Quote        pricing.Quote `json:"quote"`
}

type Availability struct {
	Available bool `json:"available"`
	Nights    int  `json:"nights"`
}

// CheckAvailability runs the overlap check for stay against the room's
// confirmed bookings. Failing to load them is reported as ErrUpstream, never
// as available.
func (s *Service) CheckAvailability(ctx context.Context, roomID string, stay availability.DateInterval) (Availability, error) {
	if err := validateRoomID(roomID); err != nil {
		return Availability{}, err
	}
	if stay.End.Before(stay.Start) {
		return Availability{}, fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	if availability.Nights(stay.Start, stay.End) > availability.MaxNights {
		return Availability{}, fmt.Errorf("%w: %v", ErrValidation, availability.ErrStayTooLong)
	}
	existing, err := s.store.ConfirmedIntervals(ctx, roomID)
	if err != nil {
		metrics.AvailabilityChecks.WithLabelValues("error").Inc()
		s.logger.Error("load confirmed bookings failed", "room_id", roomID, "err", err)
		return Availability{}, fmt.Errorf("%w: load bookings: %v", ErrUpstream, err)
	}
	res := Availability{
		Available: !availability.HasOverlap(stay, existing),
		Nights:    availability.Nights(stay.Start, stay.End),
	}
	if res.Available {
		metrics.AvailabilityChecks.WithLabelValues("available").Inc()
	} else {
		metrics.AvailabilityChecks.WithLabelValues("unavailable").Inc()
	}
	return res, nil
}

// BookedDays lists the calendar days covered by confirmed bookings of roomID.
func (s *Service) BookedDays(ctx context.Context, roomID string) ([]time.Time, error) {
	if err := validateRoomID(roomID); err != nil {
		return nil, err
	}
	existing, err := s.store.ConfirmedIntervals(ctx, roomID)
	if err != nil {
		s.logger.Error("load confirmed bookings failed", "room_id", roomID, "err", err)
		return nil, fmt.Errorf("%w: load bookings: %v", ErrUpstream, err)
	}
	return availability.BookedDays(existing), nil
}

// Reserve prices the stay, makes sure the dates are still free and opens (or
// re-prices) a payment intent backed by a pending booking.
func (s *Service) Reserve(ctx context.Context, req ReserveRequest) (ReserveResult, error) {
	if err := s.validateStay(req); err != nil {
		return ReserveResult{}, err
	}

	room, hotel, err := s.rooms.GetWithHotel(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ReserveResult{}, fmt.Errorf("%w: room", ErrNotFound)
		}
		s.logger.Error("load room failed", "room_id", req.RoomID, "err", err)
		return ReserveResult{}, fmt.Errorf("%w: load room: %v", ErrUpstream, err)
	}

	avail, err := s.CheckAvailability(ctx, req.RoomID, req.Stay)
	if err != nil {
		return ReserveResult{}, err
	}
	if !avail.Available {
		metrics.BookingConflicts.WithLabelValues("reserve").Inc()
		return ReserveResult{}, ErrConflict
	}

	quote := pricing.ForStay(room, req.Stay.Start, req.Stay.End, req.BreakfastIncluded)
	b := model.Booking{
		UserID:            req.UserID,
		HotelID:           hotel.ID,
		HotelOwnerID:      hotel.OwnerID,
		RoomID:            room.ID,
		StartDate:         req.Stay.Start,
		EndDate:           req.Stay.End,
		BreakfastIncluded: quote.BreakfastTotal > 0,
		Currency:          s.currency,
		TotalPrice:        quote.Total,
	}
	params := payments.IntentParams{
		Amount:   quote.Total,
		Currency: s.currency,
		Metadata: map[string]string{
			"user_id":  req.UserID,
			"hotel_id": hotel.ID,
			"room_id":  room.ID,
		},
	}

	if intentID := strings.TrimSpace(req.PaymentIntentID); intentID != "" {
		res, found, err := s.reprice(ctx, intentID, b, params)
		if err != nil || found {
			if err == nil {
				res.Quote = quote
			}
			return res, err
		}
	}

	intent, err := s.payments.CreateIntent(ctx, params)
	if err != nil {
		metrics.PaymentProviderErrors.WithLabelValues("create_intent").Inc()
		s.logger.Error("create payment intent failed", "room_id", room.ID, "err", err)
		return ReserveResult{}, fmt.Errorf("%w: payment provider: %v", ErrUpstream, err)
	}
	b.PaymentIntentID = intent.ID
	created, err := s.store.Create(ctx, b)
	if err != nil {
		return ReserveResult{}, s.storeError("create booking", err)
	}
	metrics.BookingsReserved.Inc()
	s.logger.Info("booking reserved", "booking_id", created.ID, "room_id", created.RoomID, "payment_intent_id", intent.ID)
	return ReserveResult{Booking: created, ClientSecret: intent.ClientSecret, Quote: quote}, nil
}

// reprice moves an existing pending booking of the caller to the new stay.
// found is false when intentID names no pending booking of the caller, in
// which case a fresh intent should be opened. A pending booking whose intent
// the provider no longer knows is deleted first.
func (s *Service) reprice(ctx context.Context, intentID string, b model.Booking, params payments.IntentParams) (ReserveResult, bool, error) {
	pending, err := s.store.PendingByIntent(ctx, b.UserID, intentID)
	if errors.Is(err, storage.ErrNotFound) {
		return ReserveResult{}, false, nil
	}
	if err != nil {
		return ReserveResult{}, false, s.storeError("load pending booking", err)
	}

	intent, err := s.payments.UpdateIntent(ctx, intentID, params)
	if errors.Is(err, payments.ErrIntentNotFound) {
		s.logger.Warn("pending booking has no payment intent, dropping it", "booking_id", pending.ID, "payment_intent_id", intentID)
		if _, err := s.store.DeletePending(ctx, b.UserID, pending.ID); err != nil &&
			!errors.Is(err, storage.ErrNotFound) && !errors.Is(err, storage.ErrNotPending) {
			return ReserveResult{}, false, s.storeError("drop stale booking", err)
		}
		return ReserveResult{}, false, nil
	}
	if err != nil {
		metrics.PaymentProviderErrors.WithLabelValues("update_intent").Inc()
		s.logger.Error("update payment intent failed", "payment_intent_id", intentID, "err", err)
		return ReserveResult{}, false, fmt.Errorf("%w: payment provider: %v", ErrUpstream, err)
	}

	b.ID = pending.ID
	b.PaymentIntentID = pending.PaymentIntentID
	updated, err := s.store.UpdatePending(ctx, b)
	if err != nil {
		return ReserveResult{}, false, s.storeError("update booking", err)
	}
	metrics.BookingsReserved.Inc()
	s.logger.Info("booking repriced", "booking_id", updated.ID, "payment_intent_id", intentID)
	return ReserveResult{Booking: updated, ClientSecret: intent.ClientSecret}, true, nil
}

// Confirm flips the caller's booking for paymentIntentID to paid once the
// provider reports the payment succeeded. Confirming twice returns the
// confirmed booking.
func (s *Service) Confirm(ctx context.Context, userID, paymentIntentID string) (model.Booking, error) {
	paymentIntentID = strings.TrimSpace(paymentIntentID)
	if userID == "" || paymentIntentID == "" {
		return model.Booking{}, fmt.Errorf("%w: payment intent id is required", ErrValidation)
	}

	paid, err := s.payments.Succeeded(ctx, paymentIntentID)
	if errors.Is(err, payments.ErrIntentNotFound) {
		return model.Booking{}, fmt.Errorf("%w: payment intent", ErrNotFound)
	}
	if err != nil {
		metrics.PaymentProviderErrors.WithLabelValues("retrieve_intent").Inc()
		s.logger.Error("retrieve payment intent failed", "payment_intent_id", paymentIntentID, "err", err)
		return model.Booking{}, fmt.Errorf("%w: payment provider: %v", ErrUpstream, err)
	}
	if !paid {
		return model.Booking{}, fmt.Errorf("%w: payment not completed", ErrValidation)
	}

	b, already, err := s.store.Confirm(ctx, userID, paymentIntentID)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			metrics.BookingConflicts.WithLabelValues("confirm").Inc()
			s.logger.Warn("confirm rejected, dates taken", "payment_intent_id", paymentIntentID)
		}
		return model.Booking{}, s.storeError("confirm booking", err)
	}
	if !already {
		metrics.BookingsConfirmed.Inc()
		s.logger.Info("booking confirmed", "booking_id", b.ID, "room_id", b.RoomID)
	}
	return b, nil
}

func (s *Service) ListMine(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	items, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.storeError("list bookings", err)
	}
	return items, nil
}

func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]model.BookingDetail, error) {
	items, err := s.store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, s.storeError("list guest bookings", err)
	}
	return items, nil
}

// Cancel deletes a pending booking of userID.
func (s *Service) Cancel(ctx context.Context, userID, bookingID string) error {
	if _, err := uuid.Parse(bookingID); err != nil {
		return fmt.Errorf("%w: booking", ErrNotFound)
	}
	if _, err := s.store.DeletePending(ctx, userID, bookingID); err != nil {
		if errors.Is(err, storage.ErrNotPending) {
			return ErrNotPending
		}
		return s.storeError("cancel booking", err)
	}
	s.logger.Info("booking cancelled", "booking_id", bookingID)
	return nil
}

func (s *Service) validateStay(req ReserveRequest) error {
	if strings.TrimSpace(req.UserID) == "" {
		return fmt.Errorf("%w: user is required", ErrValidation)
	}
	if err := validateRoomID(req.RoomID); err != nil {
		return err
	}
	if req.Stay.Start.IsZero() || req.Stay.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if req.Stay.End.Before(req.Stay.Start) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	if availability.Nights(req.Stay.Start, req.Stay.End) > availability.MaxNights {
		return fmt.Errorf("%w: %v", ErrValidation, availability.ErrStayTooLong)
	}
	today := availability.StartOfDay(s.now().UTC())
	if availability.StartOfDay(req.Stay.Start.UTC()).Before(today) {
		return fmt.Errorf("%w: start date is in the past", ErrValidation)
	}
	return nil
}

func validateRoomID(roomID string) error {
	if _, err := uuid.Parse(roomID); err != nil {
		return fmt.Errorf("%w: room id must be a uuid", ErrValidation)
	}
	return nil
}

// storeError maps storage sentinels onto service errors. Anything
// unrecognised is an upstream failure.
func (s *Service) storeError(op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return fmt.Errorf("%w: booking", ErrNotFound)
	case errors.Is(err, storage.ErrConflict):
		return ErrConflict
	case errors.Is(err, context.Canceled):
		return err
	default:
		s.logger.Error(op+" failed", "err", err)
		return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
	}
}
