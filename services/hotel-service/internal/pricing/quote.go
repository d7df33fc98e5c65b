package pricing

import (
	"time"

	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
)

// Quote is the server-side price of a stay in minor currency units.
type Quote struct {
	Nights         int   `json:"nights"`
	RoomTotal      int64 `json:"room_total"`
	BreakfastTotal int64 `json:"breakfast_total"`
	Total          int64 `json:"total"`
}

// ForStay prices a stay in room from start to end. A same-day stay is charged
// one room night without breakfast. Breakfast is only added when requested and
// the room offers it.
func ForStay(room model.Room, start, end time.Time, breakfast bool) Quote {
	nights := availability.Nights(start, end)
	if nights <= 0 {
		return Quote{Nights: 0, RoomTotal: room.RoomPrice, Total: room.RoomPrice}
	}
	q := Quote{Nights: nights, RoomTotal: int64(nights) * room.RoomPrice}
	if breakfast && room.BreakfastPrice > 0 {
		q.BreakfastTotal = int64(nights) * room.BreakfastPrice
	}
	q.Total = q.RoomTotal + q.BreakfastTotal
	return q
}
