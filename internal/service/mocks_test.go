package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/amana-asso/delivery-service/internal/geocode"
	"github.com/amana-asso/delivery-service/internal/model"
)

type mockFamilyReader struct {
	mock.Mock
}

func (m *mockFamilyReader) ListValidatedStops(ctx context.Context) ([]model.FamilyStop, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.FamilyStop), args.Error(1)
}

func (m *mockFamilyReader) GetStop(ctx context.Context, id int64) (*model.FamilyStop, error) {
	args := m.Called(ctx, id)
	if stop, ok := args.Get(0).(*model.FamilyStop); ok {
		return stop, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDriverReader struct {
	mock.Mock
}

func (m *mockDriverReader) ListWithLoad(ctx context.Context, date time.Time) ([]model.Driver, error) {
	args := m.Called(ctx, date)
	return args.Get(0).([]model.Driver), args.Error(1)
}

func (m *mockDriverReader) GetByID(ctx context.Context, id int64) (*model.Driver, error) {
	args := m.Called(ctx, id)
	if driver, ok := args.Get(0).(*model.Driver); ok {
		return driver, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockDeliveryStore struct {
	mock.Mock
}

func (m *mockDeliveryStore) AssignedFamilyIDs(ctx context.Context, occasion string, date time.Time) (map[int64]struct{}, error) {
	args := m.Called(ctx, occasion, date)
	return args.Get(0).(map[int64]struct{}), args.Error(1)
}

func (m *mockDeliveryStore) InsertBatch(ctx context.Context, deliveries []model.Delivery) error {
	args := m.Called(ctx, deliveries)
	return args.Error(0)
}

func (m *mockDeliveryStore) Find(ctx context.Context, familyID int64, occasion string, date time.Time) (*model.Delivery, error) {
	args := m.Called(ctx, familyID, occasion, date)
	if delivery, ok := args.Get(0).(*model.Delivery); ok {
		return delivery, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDeliveryStore) UpdateStatusFlags(ctx context.Context, id int64, prepared, inProgress, delivered bool) error {
	args := m.Called(ctx, id, prepared, inProgress, delivered)
	return args.Error(0)
}

func (m *mockDeliveryStore) SetFailureComment(ctx context.Context, id int64, comment string) error {
	args := m.Called(ctx, id, comment)
	return args.Error(0)
}

func (m *mockDeliveryStore) ListByOccasion(ctx context.Context, occasion string, date time.Time) ([]model.Delivery, error) {
	args := m.Called(ctx, occasion, date)
	return args.Get(0).([]model.Delivery), args.Error(1)
}

func (m *mockDeliveryStore) ListUndeliveredByDriver(ctx context.Context, driverID int64, occasion string, date time.Time) ([]model.Delivery, error) {
	args := m.Called(ctx, driverID, occasion, date)
	return args.Get(0).([]model.Delivery), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(to, subject, textBody, htmlBody string) error {
	args := m.Called(to, subject, textBody, htmlBody)
	return args.Error(0)
}

type mockSectorResolver struct {
	mock.Mock
}

func (m *mockSectorResolver) ResolveSector(ctx context.Context, address string) (*geocode.SectorMatch, error) {
	args := m.Called(ctx, address)
	if match, ok := args.Get(0).(*geocode.SectorMatch); ok {
		return match, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSectorWriter struct {
	mock.Mock
}

func (m *mockSectorWriter) SetSector(ctx context.Context, familyID, sectorID int64) error {
	args := m.Called(ctx, familyID, sectorID)
	return args.Error(0)
}
