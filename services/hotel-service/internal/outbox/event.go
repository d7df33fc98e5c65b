package outbox

import (
	"encoding/json"
	"time"

	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
)

const (
	EventBookingReserved  = "booking.reserved.v1"
	EventBookingConfirmed = "booking.confirmed.v1"
	EventBookingCancelled = "booking.cancelled.v1"
)

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type bookingPayload struct {
	BookingID         string `json:"booking_id"`
	UserID            string `json:"user_id"`
	HotelID           string `json:"hotel_id"`
	HotelOwnerID      string `json:"hotel_owner_id"`
	RoomID            string `json:"room_id"`
	StartDate         string `json:"start_date"`
	EndDate           string `json:"end_date"`
	BreakfastIncluded bool   `json:"breakfast_included"`
	Currency          string `json:"currency"`
	TotalPrice        int64  `json:"total_price"`
	PaymentIntentID   string `json:"payment_intent_id"`
	OccurredAt        string `json:"occurred_at"`
}

// BookingEvent builds an event of eventType describing b.
func BookingEvent(eventType string, b model.Booking) (Event, error) {
	payload, err := json.Marshal(bookingPayload{
		BookingID:         b.ID,
		UserID:            b.UserID,
		HotelID:           b.HotelID,
		HotelOwnerID:      b.HotelOwnerID,
		RoomID:            b.RoomID,
		StartDate:         b.StartDate.Format(availability.DateLayout),
		EndDate:           b.EndDate.Format(availability.DateLayout),
		BreakfastIncluded: b.BreakfastIncluded,
		Currency:          b.Currency,
		TotalPrice:        b.TotalPrice,
		PaymentIntentID:   b.PaymentIntentID,
		OccurredAt:        time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: "booking",
		AggregateID:   b.ID,
		EventType:     eventType,
		Payload:       payload,
	}, nil
}
