package storage

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jun(d int) time.Time { return time.Date(2026, 6, d, 0, 0, 0, 0, time.UTC) }

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return assign(dest, r.values)
}

func assign(dest, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, v := range values {
		reflect.ValueOf(dest[i]).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

type fakeRows struct {
	pgx.Rows
	data [][]any
	pos  int
}

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos <= len(r.data)
}

func (r *fakeRows) Scan(dest ...any) error { return assign(dest, r.data[r.pos-1]) }
func (r *fakeRows) Err() error             { return nil }
func (r *fakeRows) Close()                 {}

type call struct {
	sql  string
	args []any
}

// fakeTx answers by statement shape: the booking lookup, the confirmed set
// and the status flip. Every statement is recorded in order.
type fakeTx struct {
	pgx.Tx
	booking   fakeRow
	confirmed [][]any
	updateErr error
	calls     []call
}

func (tx *fakeTx) record(sql string, args []any) {
	tx.calls = append(tx.calls, call{sql: strings.Join(strings.Fields(sql), " "), args: args})
}

func (tx *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	tx.record(sql, args)
	if strings.Contains(sql, "UPDATE bookings") {
		if tx.updateErr != nil {
			return fakeRow{err: tx.updateErr}
		}
		return fakeRow{values: []any{jun(20)}}
	}
	return tx.booking
}

func (tx *fakeTx) Query(_ context.Context, sql string, args ...any) (pgx.Rows, error) {
	tx.record(sql, args)
	return &fakeRows{data: tx.confirmed}, nil
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.record(sql, args)
	return pgconn.NewCommandTag("OK"), nil
}

func (tx *fakeTx) find(fragment string) (call, bool) {
	for _, c := range tx.calls {
		if strings.Contains(c.sql, fragment) {
			return c, true
		}
	}
	return call{}, false
}

func (tx *fakeTx) index(fragment string) int {
	for i, c := range tx.calls {
		if strings.Contains(c.sql, fragment) {
			return i
		}
	}
	return -1
}

// fakeDB runs every transaction against one fakeTx and reports whether it
// would have committed.
type fakeDB struct {
	tx        *fakeTx
	committed bool
}

func (d *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return d.tx.Query(ctx, sql, args...)
}

func (d *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return d.tx.QueryRow(ctx, sql, args...)
}

func (d *fakeDB) InTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	if err := fn(d.tx); err != nil {
		return err
	}
	d.committed = true
	return nil
}

func bookingRow(b model.Booking) fakeRow {
	return fakeRow{values: []any{
		b.ID, b.UserID, b.HotelID, b.HotelOwnerID, b.RoomID, b.StartDate, b.EndDate,
		b.BreakfastIncluded, b.Currency, b.TotalPrice, b.PaymentStatus, b.PaymentIntentID,
		b.CreatedAt, b.UpdatedAt,
	}}
}

func pendingBooking() model.Booking {
	return model.Booking{
		ID:              "b1",
		UserID:          "user_guest",
		HotelID:         "h1",
		HotelOwnerID:    "user_owner",
		RoomID:          "r1",
		StartDate:       jun(5),
		EndDate:         jun(6),
		Currency:        "usd",
		TotalPrice:      10000,
		PaymentIntentID: "pi_1",
		CreatedAt:       jun(1),
		UpdatedAt:       jun(1),
	}
}

func newTestRepo(tx *fakeTx) (*BookingRepository, *fakeDB) {
	d := &fakeDB{tx: tx}
	return &BookingRepository{conn: d, outboxRepo: outbox.NewRepository()}, d
}

func TestConfirmRechecksUnderRoomLock(t *testing.T) {
	tx := &fakeTx{
		booking:   bookingRow(pendingBooking()),
		confirmed: [][]any{{jun(1), jun(5)}},
	}
	repo, d := newTestRepo(tx)

	_, _, err := repo.Confirm(context.Background(), "user_guest", "pi_1")
	require.ErrorIs(t, err, ErrConflict)
	assert.False(t, d.committed)

	lock, ok := tx.find("FROM rooms WHERE id = $1 FOR UPDATE")
	require.True(t, ok, "room row must be locked")
	assert.Equal(t, []any{"r1"}, lock.args)

	reload, ok := tx.find("AND payment_status")
	require.True(t, ok)
	assert.Equal(t, []any{"r1", "b1"}, reload.args, "the booking being confirmed is excluded from its own check")
	assert.Less(t, tx.index("FROM rooms"), tx.index("AND payment_status"), "confirmed set is read under the room lock")

	_, updated := tx.find("UPDATE bookings")
	assert.False(t, updated)
}

func TestConfirmFlipsStatusAndWritesEvent(t *testing.T) {
	tx := &fakeTx{
		booking:   bookingRow(pendingBooking()),
		confirmed: [][]any{{jun(1), jun(4)}, {jun(7), jun(9)}},
	}
	repo, d := newTestRepo(tx)

	b, already, err := repo.Confirm(context.Background(), "user_guest", "pi_1")
	require.NoError(t, err)
	assert.False(t, already)
	assert.True(t, b.PaymentStatus)
	assert.Equal(t, jun(20), b.UpdatedAt)
	assert.True(t, d.committed)

	update, ok := tx.find("UPDATE bookings")
	require.True(t, ok)
	assert.Equal(t, []any{"b1"}, update.args)

	evt, ok := tx.find("INSERT INTO outbox_events")
	require.True(t, ok)
	assert.Equal(t, outbox.EventBookingConfirmed, evt.args[2])
	assert.Equal(t, "b1", evt.args[1])
}

func TestConfirmAlreadyConfirmedSkipsRecheck(t *testing.T) {
	b := pendingBooking()
	b.PaymentStatus = true
	tx := &fakeTx{booking: bookingRow(b)}
	repo, _ := newTestRepo(tx)

	got, already, err := repo.Confirm(context.Background(), "user_guest", "pi_1")
	require.NoError(t, err)
	assert.True(t, already)
	assert.Equal(t, "b1", got.ID)
	assert.Len(t, tx.calls, 1)
}

func TestConfirmExclusionViolationIsConflict(t *testing.T) {
	tx := &fakeTx{
		booking:   bookingRow(pendingBooking()),
		updateErr: &pgconn.PgError{Code: "23P01", ConstraintName: "bookings_no_overlap"},
	}
	repo, d := newTestRepo(tx)

	_, _, err := repo.Confirm(context.Background(), "user_guest", "pi_1")
	assert.ErrorIs(t, err, ErrConflict)
	assert.False(t, d.committed)
	_, wrote := tx.find("INSERT INTO outbox_events")
	assert.False(t, wrote)
}

func TestConfirmUnknownIntent(t *testing.T) {
	tx := &fakeTx{booking: fakeRow{err: pgx.ErrNoRows}}
	repo, _ := newTestRepo(tx)

	_, _, err := repo.Confirm(context.Background(), "user_guest", "pi_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfirmedIntervalsExcludesNothing(t *testing.T) {
	tx := &fakeTx{confirmed: [][]any{{jun(1), jun(3)}}}
	repo, _ := newTestRepo(tx)

	got, err := repo.ConfirmedIntervals(context.Background(), "r1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, jun(1), got[0].Start)
	assert.Equal(t, jun(3), got[0].End)
	assert.Equal(t, []any{"r1", ""}, tx.calls[0].args)
}

func TestDeletePendingRefusesConfirmed(t *testing.T) {
	b := pendingBooking()
	b.PaymentStatus = true
	tx := &fakeTx{booking: bookingRow(b)}
	repo, d := newTestRepo(tx)

	_, err := repo.DeletePending(context.Background(), "user_guest", "b1")
	assert.True(t, errors.Is(err, ErrNotPending))
	assert.False(t, d.committed)
	_, deleted := tx.find("DELETE FROM bookings")
	assert.False(t, deleted)
}
