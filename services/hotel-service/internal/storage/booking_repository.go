package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/staybook/libs/db"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/outbox"
)

const bookingColumns = `b.id, b.user_id, b.hotel_id, b.hotel_owner_id, b.room_id, b.start_date, b.end_date,
	b.breakfast_included, b.currency, b.total_price, b.payment_status, b.payment_intent_id, b.created_at, b.updated_at`

// bookingDB is the part of *db.Pool the booking repository uses.
type bookingDB interface {
	querier
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type BookingRepository struct {
	conn       bookingDB
	outboxRepo *outbox.Repository
}

func NewBookingRepository(pool *db.Pool, outboxRepo *outbox.Repository) *BookingRepository {
	return &BookingRepository{conn: pool, outboxRepo: outboxRepo}
}

// ConfirmedIntervals returns the stays already paid for on roomID.
func (r *BookingRepository) ConfirmedIntervals(ctx context.Context, roomID string) ([]availability.DateInterval, error) {
	return confirmedIntervals(ctx, r.conn, roomID, "")
}

func (r *BookingRepository) PendingByIntent(ctx context.Context, userID, intentID string) (model.Booking, error) {
	b, err := scanBooking(r.conn.QueryRow(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings b
		WHERE b.payment_intent_id = $1 AND b.user_id = $2 AND NOT b.payment_status
	`, intentID, userID))
	if err != nil {
		return model.Booking{}, translate(err)
	}
	return b, nil
}

// Create stores a pending booking and its reservation event.
func (r *BookingRepository) Create(ctx context.Context, b model.Booking) (model.Booking, error) {
	err := r.conn.InTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO bookings
				(user_id, hotel_id, hotel_owner_id, room_id, start_date, end_date, breakfast_included,
				currency, total_price, payment_status, payment_intent_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10)
			RETURNING id, created_at, updated_at
		`, b.UserID, b.HotelID, b.HotelOwnerID, b.RoomID, b.StartDate, b.EndDate, b.BreakfastIncluded,
			b.Currency, b.TotalPrice, b.PaymentIntentID).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return translate(err)
		}
		b.PaymentStatus = false
		return r.emit(ctx, tx, outbox.EventBookingReserved, b)
	})
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// UpdatePending rewrites the stay and price of a pending booking of b.UserID.
func (r *BookingRepository) UpdatePending(ctx context.Context, b model.Booking) (model.Booking, error) {
	err := r.conn.InTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE bookings
			SET hotel_id = $3,
				hotel_owner_id = $4,
				room_id = $5,
				start_date = $6,
				end_date = $7,
				breakfast_included = $8,
				currency = $9,
				total_price = $10,
				updated_at = now()
			WHERE id = $1 AND user_id = $2 AND NOT payment_status
			RETURNING payment_intent_id, created_at, updated_at
		`, b.ID, b.UserID, b.HotelID, b.HotelOwnerID, b.RoomID, b.StartDate, b.EndDate, b.BreakfastIncluded,
			b.Currency, b.TotalPrice).Scan(&b.PaymentIntentID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return translate(err)
		}
		return r.emit(ctx, tx, outbox.EventBookingReserved, b)
	})
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// Confirm marks the caller's booking for intentID as paid. The room row is
// locked so concurrent confirmations of one room run one at a time, and the
// confirmed set is checked again under that lock. alreadyConfirmed is true
// when nothing had to change.
func (r *BookingRepository) Confirm(ctx context.Context, userID, intentID string) (b model.Booking, alreadyConfirmed bool, err error) {
	err = r.conn.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		b, err = scanBooking(tx.QueryRow(ctx, `
			SELECT `+bookingColumns+`
			FROM bookings b
			WHERE b.payment_intent_id = $1 AND b.user_id = $2
			FOR UPDATE
		`, intentID, userID))
		if err != nil {
			return translate(err)
		}
		if b.PaymentStatus {
			alreadyConfirmed = true
			return nil
		}

		if _, err := tx.Exec(ctx, `SELECT 1 FROM rooms WHERE id = $1 FOR UPDATE`, b.RoomID); err != nil {
			return fmt.Errorf("lock room: %w", err)
		}
		existing, err := confirmedIntervals(ctx, tx, b.RoomID, b.ID)
		if err != nil {
			return err
		}
		if availability.HasOverlap(availability.DateInterval{Start: b.StartDate, End: b.EndDate}, existing) {
			return ErrConflict
		}

		err = tx.QueryRow(ctx, `
			UPDATE bookings
			SET payment_status = true, updated_at = now()
			WHERE id = $1
			RETURNING updated_at
		`, b.ID).Scan(&b.UpdatedAt)
		if err != nil {
			return translate(err)
		}
		b.PaymentStatus = true
		return r.emit(ctx, tx, outbox.EventBookingConfirmed, b)
	})
	if err != nil {
		return model.Booking{}, false, err
	}
	return b, alreadyConfirmed, nil
}

// DeletePending removes a pending booking of userID. Confirmed bookings are
// left untouched and reported with ErrNotPending.
func (r *BookingRepository) DeletePending(ctx context.Context, userID, bookingID string) (model.Booking, error) {
	var b model.Booking
	err := r.conn.InTx(ctx, func(tx pgx.Tx) error {
		var err error
		b, err = scanBooking(tx.QueryRow(ctx, `
			SELECT `+bookingColumns+`
			FROM bookings b
			WHERE b.id = $1 AND b.user_id = $2
			FOR UPDATE
		`, bookingID, userID))
		if err != nil {
			return translate(err)
		}
		if b.PaymentStatus {
			return ErrNotPending
		}
		if _, err := tx.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, b.ID); err != nil {
			return err
		}
		return r.emit(ctx, tx, outbox.EventBookingCancelled, b)
	})
	if err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// ListByUser returns the bookings userID made, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	return r.listDetails(ctx, `b.user_id = $1`, userID)
}

// ListByOwner returns bookings on hotels owned by ownerID, newest first.
func (r *BookingRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.BookingDetail, error) {
	return r.listDetails(ctx, `b.hotel_owner_id = $1`, ownerID)
}

func (r *BookingRepository) listDetails(ctx context.Context, where string, arg string) ([]model.BookingDetail, error) {
	rows, err := r.conn.Query(ctx, `
		SELECT `+bookingColumns+`, `+roomColumns+`, `+hotelColumns+`
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		JOIN hotels h ON h.id = b.hotel_id
		WHERE `+where+`
		ORDER BY b.created_at DESC
	`, arg)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.BookingDetail, error) {
		var d model.BookingDetail
		dest := append(bookingDest(&d.Booking), roomDest(&d.Room)...)
		dest = append(dest, hotelDest(&d.Hotel)...)
		err := row.Scan(dest...)
		return d, err
	})
}

func (r *BookingRepository) emit(ctx context.Context, tx pgx.Tx, eventType string, b model.Booking) error {
	evt, err := outbox.BookingEvent(eventType, b)
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}
	if err := r.outboxRepo.Insert(ctx, tx, evt); err != nil {
		return fmt.Errorf("write outbox: %w", err)
	}
	return nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func confirmedIntervals(ctx context.Context, q querier, roomID, excludeID string) ([]availability.DateInterval, error) {
	rows, err := q.Query(ctx, `
		SELECT start_date, end_date
		FROM bookings
		WHERE room_id = $1
			AND payment_status
			AND ($2 = '' OR id::text <> $2)
		ORDER BY start_date
	`, roomID, excludeID)
	if err != nil {
		return nil, translate(err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (availability.DateInterval, error) {
		var iv availability.DateInterval
		err := row.Scan(&iv.Start, &iv.End)
		return iv, err
	})
}

func bookingDest(b *model.Booking) []any {
	return []any{
		&b.ID,
		&b.UserID,
		&b.HotelID,
		&b.HotelOwnerID,
		&b.RoomID,
		&b.StartDate,
		&b.EndDate,
		&b.BreakfastIncluded,
		&b.Currency,
		&b.TotalPrice,
		&b.PaymentStatus,
		&b.PaymentIntentID,
		&b.CreatedAt,
		&b.UpdatedAt,
	}
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(bookingDest(&b)...)
	return b, err
}
