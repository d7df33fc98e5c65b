package handlers

import (
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
)

type roomRequest struct {
	Title          string   `json:"title" validate:"required,min=3"`
	Description    string   `json:"description" validate:"required,min=10"`
	BedCount       int      `json:"bed_count" validate:"min=1"`
	GuestCount     int      `json:"guest_count" validate:"min=1"`
	BathroomCount  int      `json:"bathroom_count" validate:"min=1"`
	KingBed        int      `json:"king_bed" validate:"min=0"`
	QueenBed       int      `json:"queen_bed" validate:"min=0"`
	ImageURL       string   `json:"image_url" validate:"required,min=1"`
	BreakfastPrice int64    `json:"breakfast_price" validate:"min=0"`
	RoomPrice      int64    `json:"room_price" validate:"min=1"`
	Amenities      []string `json:"amenities" validate:"dive,oneof=room_service tv balcony free_wifi city_view ocean_view forest_view mountain_view air_condition sound_proofed"`
}

func (req roomRequest) toModel() model.Room {
	return model.Room{
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		BedCount:       req.BedCount,
		GuestCount:     req.GuestCount,
		BathroomCount:  req.BathroomCount,
		KingBed:        req.KingBed,
		QueenBed:       req.QueenBed,
		ImageURL:       strings.TrimSpace(req.ImageURL),
		BreakfastPrice: req.BreakfastPrice,
		RoomPrice:      req.RoomPrice,
		Amenities:      dedupe(req.Amenities),
	}
}

func (a *API) CreateRoom(w http.ResponseWriter, r *http.Request) {
	hotelID, ok := pathID(w, r, "hotelID")
	if !ok {
		return
	}
	if !a.ownsHotel(w, r, hotelID) {
		return
	}
	var req roomRequest
	if !a.decode(w, r, &req) {
		return
	}
	room := req.toModel()
	room.HotelID = hotelID
	created, err := a.rooms.Create(r.Context(), room)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.logger.Info("room created", "room_id", created.ID, "hotel_id", hotelID)
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := a.ownedRoom(w, r)
	if !ok {
		return
	}
	var req roomRequest
	if !a.decode(w, r, &req) {
		return
	}
	room := req.toModel()
	room.ID = roomID
	updated, err := a.rooms.Update(r.Context(), room)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := a.ownedRoom(w, r)
	if !ok {
		return
	}
	if err := a.rooms.Delete(r.Context(), roomID); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.logger.Info("room deleted", "room_id", roomID)
	w.WriteHeader(http.StatusNoContent)
}

// BookedDates lists the days a room cannot be booked for.
func (a *API) BookedDates(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	days, err := a.bookings.BookedDays(r.Context(), roomID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = d.Format(availability.DateLayout)
	}
	writeJSON(w, http.StatusOK, map[string]any{"room_id": roomID, "dates": dates})
}

func (a *API) Availability(w http.ResponseWriter, r *http.Request) {
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return
	}
	stay, err := availability.ParseInterval(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := a.bookings.CheckAvailability(r.Context(), roomID, stay)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ownedRoom resolves the roomID path parameter and checks the caller owns
// the room's hotel.
func (a *API) ownedRoom(w http.ResponseWriter, r *http.Request) (string, bool) {
	roomID, ok := pathID(w, r, "roomID")
	if !ok {
		return "", false
	}
	_, hotel, err := a.rooms.GetWithHotel(r.Context(), roomID)
	if err != nil {
		a.writeError(w, r, err)
		return "", false
	}
	if hotel.OwnerID != userID(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return "", false
	}
	return roomID, true
}
