package storage

import (
	"context"

	"github.com/md-rashed-zaman/staybook/libs/db"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
)

const roomColumns = `r.id, r.hotel_id, r.title, r.description, r.bed_count, r.guest_count, r.bathroom_count,
	r.king_bed, r.queen_bed, r.image_url, r.breakfast_price, r.room_price, r.amenities, r.created_at, r.updated_at`

type RoomRepository struct {
	pool *db.Pool
}

func NewRoomRepository(pool *db.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

func (r *RoomRepository) Create(ctx context.Context, room model.Room) (model.Room, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO rooms
			(hotel_id, title, description, bed_count, guest_count, bathroom_count, king_bed, queen_bed,
			image_url, breakfast_price, room_price, amenities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at, updated_at
	`, room.HotelID, room.Title, room.Description, room.BedCount, room.GuestCount, room.BathroomCount,
		room.KingBed, room.QueenBed, room.ImageURL, room.BreakfastPrice, room.RoomPrice,
		nonNil(room.Amenities)).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return model.Room{}, translate(err)
	}
	return room, nil
}

// GetWithHotel returns the room and the hotel it belongs to, without the
// hotel's room list.
func (r *RoomRepository) GetWithHotel(ctx context.Context, roomID string) (model.Room, model.Hotel, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+roomColumns+`, `+hotelColumns+`
		FROM rooms r
		JOIN hotels h ON h.id = r.hotel_id
		WHERE r.id = $1
	`, roomID)
	room, hotel, err := scanRoomHotel(row)
	if err != nil {
		return model.Room{}, model.Hotel{}, translate(err)
	}
	return room, hotel, nil
}

func (r *RoomRepository) Update(ctx context.Context, room model.Room) (model.Room, error) {
	err := r.pool.QueryRow(ctx, `
		UPDATE rooms
		SET title = $2,
			description = $3,
			bed_count = $4,
			guest_count = $5,
			bathroom_count = $6,
			king_bed = $7,
			queen_bed = $8,
			image_url = $9,
			breakfast_price = $10,
			room_price = $11,
			amenities = $12,
			updated_at = now()
		WHERE id = $1
		RETURNING hotel_id, created_at, updated_at
	`, room.ID, room.Title, room.Description, room.BedCount, room.GuestCount, room.BathroomCount,
		room.KingBed, room.QueenBed, room.ImageURL, room.BreakfastPrice, room.RoomPrice,
		nonNil(room.Amenities)).Scan(&room.HotelID, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		return model.Room{}, translate(err)
	}
	return room, nil
}

func (r *RoomRepository) Delete(ctx context.Context, roomID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, roomID)
	if err != nil {
		return translate(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func roomDest(room *model.Room) []any {
	return []any{
		&room.ID,
		&room.HotelID,
		&room.Title,
		&room.Description,
		&room.BedCount,
		&room.GuestCount,
		&room.BathroomCount,
		&room.KingBed,
		&room.QueenBed,
		&room.ImageURL,
		&room.BreakfastPrice,
		&room.RoomPrice,
		&room.Amenities,
		&room.CreatedAt,
		&room.UpdatedAt,
	}
}

func hotelDest(h *model.Hotel) []any {
	return []any{
		&h.ID,
		&h.OwnerID,
		&h.Title,
		&h.Description,
		&h.ImageURL,
		&h.Country,
		&h.State,
		&h.City,
		&h.LocationDescription,
		&h.Amenities,
		&h.CreatedAt,
		&h.UpdatedAt,
	}
}

func scanRoom(row rowScanner) (model.Room, error) {
	var room model.Room
	err := row.Scan(roomDest(&room)...)
	return room, err
}

func scanRoomHotel(row rowScanner) (model.Room, model.Hotel, error) {
	var room model.Room
	var hotel model.Hotel
	err := row.Scan(append(roomDest(&room), hotelDest(&hotel)...)...)
	return room, hotel, err
}
