package booking

import (
	"context"

	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/availability"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/model"
	"github.com/md-rashed-zaman/staybook/services/hotel-service/internal/payments"
	"github.com/stretchr/testify/mock"
)

type mockRooms struct{ mock.Mock }

func (m *mockRooms) GetWithHotel(ctx context.Context, roomID string) (model.Room, model.Hotel, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).(model.Room), args.Get(1).(model.Hotel), args.Error(2)
}

type mockStore struct{ mock.Mock }

func (m *mockStore) ConfirmedIntervals(ctx context.Context, roomID string) ([]availability.DateInterval, error) {
	args := m.Called(ctx, roomID)
	intervals, _ := args.Get(0).([]availability.DateInterval)
	return intervals, args.Error(1)
}

func (m *mockStore) PendingByIntent(ctx context.Context, userID, intentID string) (model.Booking, error) {
	args := m.Called(ctx, userID, intentID)
	return args.Get(0).(model.Booking), args.Error(1)
}

func (m *mockStore) Create(ctx context.Context, b model.Booking) (model.Booking, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(model.Booking), args.Error(1)
}

func (m *mockStore) UpdatePending(ctx context.Context, b model.Booking) (model.Booking, error) {
	args := m.Called(ctx, b)
	return args.Get(0).(model.Booking), args.Error(1)
}

func (m *mockStore) Confirm(ctx context.Context, userID, intentID string) (model.Booking, bool, error) {
	args := m.Called(ctx, userID, intentID)
	return args.Get(0).(model.Booking), args.Bool(1), args.Error(2)
}

func (m *mockStore) DeletePending(ctx context.Context, userID, bookingID string) (model.Booking, error) {
	args := m.Called(ctx, userID, bookingID)
	return args.Get(0).(model.Booking), args.Error(1)
}

func (m *mockStore) ListByUser(ctx context.Context, userID string) ([]model.BookingDetail, error) {
	args := m.Called(ctx, userID)
	items, _ := args.Get(0).([]model.BookingDetail)
	return items, args.Error(1)
}

func (m *mockStore) ListByOwner(ctx context.Context, ownerID string) ([]model.BookingDetail, error) {
	args := m.Called(ctx, ownerID)
	items, _ := args.Get(0).([]model.BookingDetail)
	return items, args.Error(1)
}

type mockProvider struct{ mock.Mock }

func (m *mockProvider) CreateIntent(ctx context.Context, params payments.IntentParams) (payments.Intent, error) {
	args := m.Called(ctx, params)
	return args.Get(0).(payments.Intent), args.Error(1)
}

func (m *mockProvider) UpdateIntent(ctx context.Context, intentID string, params payments.IntentParams) (payments.Intent, error) {
	args := m.Called(ctx, intentID, params)
	return args.Get(0).(payments.Intent), args.Error(1)
}

func (m *mockProvider) Succeeded(ctx context.Context, intentID string) (bool, error) {
	args := m.Called(ctx, intentID)
	return args.Bool(0), args.Error(1)
}
