package model

import "time"

type Hotel struct {
	ID                  string    `json:"id"`
	OwnerID             string    `json:"owner_id"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	ImageURL            string    `json:"image_url"`
	Country             string    `json:"country"`
	State               string    `json:"state"`
	City                string    `json:"city"`
	LocationDescription string    `json:"location_description"`
	Amenities           []string  `json:"amenities"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Rooms               []Room    `json:"rooms"`
}

// Room prices are in minor currency units.
type Room struct {
	ID             string    `json:"id"`
	HotelID        string    `json:"hotel_id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	BedCount       int       `json:"bed_count"`
	GuestCount     int       `json:"guest_count"`
	BathroomCount  int       `json:"bathroom_count"`
	KingBed        int       `json:"king_bed"`
	QueenBed       int       `json:"queen_bed"`
	ImageURL       string    `json:"image_url"`
	BreakfastPrice int64     `json:"breakfast_price"`
	RoomPrice      int64     `json:"room_price"`
	Amenities      []string  `json:"amenities"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HotelFilter narrows a hotel search. Empty fields match everything.
type HotelFilter struct {
	Title   string
	Country string
	State   string
	City    string
}
