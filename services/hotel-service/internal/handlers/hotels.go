package handlers

import (
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
)

type hotelRequest struct {
	Title               string   `json:"title" validate:"required,min=3"`
	Description         string   `json:"description" validate:"required,min=10"`
	ImageURL            string   `json:"image_url" validate:"required,min=2"`
	Country             string   `json:"country" validate:"required,min=1"`
	State               string   `json:"state"`
	City                string   `json:"city"`
	LocationDescription string   `json:"location_description" validate:"required,min=10"`
	Amenities           []string `json:"amenities" validate:"dive,oneof=gym spa bar laundry restaurant shopping free_parking bike_rental free_wifi movie_night swimming_pool coffee_shop"`
}

func (req hotelRequest) toModel() model.Hotel {
	return model.Hotel{
		Title:               strings.TrimSpace(req.Title),
		Description:         strings.TrimSpace(req.Description),
		ImageURL:            strings.TrimSpace(req.ImageURL),
		Country:             strings.TrimSpace(req.Country),
		State:               strings.TrimSpace(req.State),
		City:                strings.TrimSpace(req.City),
		LocationDescription: strings.TrimSpace(req.LocationDescription),
		Amenities:           dedupe(req.Amenities),
	}
}

func (a *API) SearchHotels(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hotels, err := a.hotels.Search(r.Context(), model.HotelFilter{
		Title:   q.Get("title"),
		Country: q.Get("country"),
		State:   q.Get("state"),
		City:    q.Get("city"),
	})
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hotels": hotels})
}

func (a *API) GetHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "hotelID")
	if !ok {
		return
	}
	hotel, err := a.hotels.Get(r.Context(), id)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, hotel)
}

func (a *API) CreateHotel(w http.ResponseWriter, r *http.Request) {
	var req hotelRequest
	if !a.decode(w, r, &req) {
		return
	}
	h := req.toModel()
	h.OwnerID = userID(r)
	created, err := a.hotels.Create(r.Context(), h)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.logger.Info("hotel created", "hotel_id", created.ID, "owner_id", created.OwnerID)
	writeJSON(w, http.StatusCreated, created)
}

func (a *API) UpdateHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "hotelID")
	if !ok {
		return
	}
	if !a.ownsHotel(w, r, id) {
		return
	}
	var req hotelRequest
	if !a.decode(w, r, &req) {
		return
	}
	h := req.toModel()
	h.ID = id
	h.OwnerID = userID(r)
	updated, err := a.hotels.Update(r.Context(), h)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (a *API) DeleteHotel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "hotelID")
	if !ok {
		return
	}
	if !a.ownsHotel(w, r, id) {
		return
	}
	if err := a.hotels.Delete(r.Context(), id, userID(r)); err != nil {
		a.writeError(w, r, err)
		return
	}
	a.logger.Info("hotel deleted", "hotel_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) MyHotels(w http.ResponseWriter, r *http.Request) {
	hotels, err := a.hotels.ListByOwner(r.Context(), userID(r))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hotels": hotels})
}

// ownsHotel answers 404 or 403 unless the caller owns hotelID.
func (a *API) ownsHotel(w http.ResponseWriter, r *http.Request, hotelID string) bool {
	hotel, err := a.hotels.Get(r.Context(), hotelID)
	if err != nil {
		a.writeError(w, r, err)
		return false
	}
	if hotel.OwnerID != userID(r) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return false
	}
	return true
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
