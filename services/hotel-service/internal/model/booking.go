package model

import "time"

type Booking struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	HotelID           string    `json:"hotel_id"`
	HotelOwnerID      string    `json:"hotel_owner_id"`
	RoomID            string    `json:"room_id"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	BreakfastIncluded bool      `json:"breakfast_included"`
	Currency          string    `json:"currency"`
	TotalPrice        int64     `json:"total_price"`
	PaymentStatus     bool      `json:"payment_status"`
	PaymentIntentID   string    `json:"payment_intent_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BookingDetail is a booking together with the hotel and room it refers to.
type BookingDetail struct {
	Booking
	Hotel Hotel `json:"hotel"`
	Room  Room  `json:"room"`
}
