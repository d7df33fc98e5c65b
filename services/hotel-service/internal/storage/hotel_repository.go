package storage

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/staybook/libs/db"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
)

const hotelColumns = `h.id, h.owner_id, h.title, h.description, h.image_url, h.country, h.state, h.city,
	h.location_description, h.amenities, h.created_at, h.updated_at`

type HotelRepository struct {
	pool *db.Pool
}

func NewHotelRepository(pool *db.Pool) *HotelRepository {
	return &HotelRepository{pool: pool}
}

func (r *HotelRepository) Create(ctx context.Context, h model.Hotel) (model.Hotel, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO hotels
			(owner_id, title, description, image_url, country, state, city, location_description, amenities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`, h.OwnerID, h.Title, h.Description, h.ImageURL, h.Country, h.State, h.City, h.LocationDescription,
		nonNil(h.Amenities)).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return model.Hotel{}, translate(err)
	}
	h.Rooms = []model.Room{}
	return h, nil
}

// Get returns the hotel with its rooms.
func (r *HotelRepository) Get(ctx context.Context, hotelID string) (model.Hotel, error) {
	h, err := scanHotel(r.pool.QueryRow(ctx, `SELECT `+hotelColumns+` FROM hotels h WHERE h.id = $1`, hotelID))
	if err != nil {
		return model.Hotel{}, translate(err)
	}
	hotels, err := r.withRooms(ctx, []model.Hotel{h})
	if err != nil {
		return model.Hotel{}, err
	}
	return hotels[0], nil
}

// Search matches title case-insensitively as a substring and location fields exactly.
func (r *HotelRepository) Search(ctx context.Context, f model.HotelFilter) ([]model.Hotel, error) {
	return r.list(ctx, `
		SELECT `+hotelColumns+`
		FROM hotels h
		WHERE ($1 = '' OR position(lower($1) in lower(h.title)) > 0)
			AND ($2 = '' OR h.country = $2)
			AND ($3 = '' OR h.state = $3)
			AND ($4 = '' OR h.city = $4)
		ORDER BY h.created_at DESC
	`, strings.TrimSpace(f.Title), strings.TrimSpace(f.Country), strings.TrimSpace(f.State), strings.TrimSpace(f.City))
}

func (r *HotelRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Hotel, error) {
	return r.list(ctx, `
		SELECT `+hotelColumns+`
		FROM hotels h
		WHERE h.owner_id = $1
		ORDER BY h.created_at DESC
	`, ownerID)
}

// Update replaces the editable fields of a hotel owned by h.OwnerID.
func (r *HotelRepository) Update(ctx context.Context, h model.Hotel) (model.Hotel, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE hotels
		SET title = $3,
			description = $4,
			image_url = $5,
			country = $6,
			state = $7,
			city = $8,
			location_description = $9,
			amenities = $10,
			updated_at = now()
		WHERE id = $1 AND owner_id = $2
		RETURNING created_at, updated_at
	`, h.ID, h.OwnerID, h.Title, h.Description, h.ImageURL, h.Country, h.State, h.City, h.LocationDescription,
		nonNil(h.Amenities)).Scan(&h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return model.Hotel{}, translate(err)
	}
	return r.Get(ctx, h.ID)
}

// Delete removes a hotel owned by ownerID; rooms and bookings cascade.
func (r *HotelRepository) Delete(ctx context.Context, hotelID, ownerID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM hotels WHERE id = $1 AND owner_id = $2`, hotelID, ownerID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *HotelRepository) list(ctx context.Context, query string, args ...any) ([]model.Hotel, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	hotels, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Hotel, error) {
		return scanHotel(row)
	})
	if err != nil {
		return nil, err
	}
	return r.withRooms(ctx, hotels)
}

func (r *HotelRepository) withRooms(ctx context.Context, hotels []model.Hotel) ([]model.Hotel, error) {
	if len(hotels) == 0 {
		return []model.Hotel{}, nil
	}
	ids := make([]string, len(hotels))
	index := make(map[string]int, len(hotels))
	for i := range hotels {
		ids[i] = hotels[i].ID
		index[hotels[i].ID] = i
		hotels[i].Rooms = []model.Room{}
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms r
		WHERE r.hotel_id = ANY($1::text[]::uuid[])
		ORDER BY r.created_at
	`, ids)
	if err != nil {
		return nil, err
	}
	rooms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Room, error) {
		return scanRoom(row)
	})
	if err != nil {
		return nil, err
	}
	for _, room := range rooms {
		if i, ok := index[room.HotelID]; ok {
			hotels[i].Rooms = append(hotels[i].Rooms, room)
		}
	}
	return hotels, nil
}

func scanHotel(row rowScanner) (model.Hotel, error) {
	var h model.Hotel
	err := row.Scan(hotelDest(&h)...)
	return h, err
}
