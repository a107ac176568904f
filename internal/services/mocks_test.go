package services

import (
	"context"
	"net/url"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

// MockPropertyBackend is a mock implementation of PropertyBackend for testing
type MockPropertyBackend struct {
	mock.Mock
}

func (m *MockPropertyBackend) ListProperties(ctx context.Context, query url.Values) ([]models.Property, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

func (m *MockPropertyBackend) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyBackend) UpdatePropertyStatus(ctx context.Context, id int64, status models.PropertyStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockSaleRepository is a mock implementation of repository.SaleRepository for testing
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) Append(ctx context.Context, rec *models.SaleRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockSaleRepository) Delete(ctx context.Context, recordID string) error {
	args := m.Called(ctx, recordID)
	return args.Error(0)
}

func (m *MockSaleRepository) List(ctx context.Context) ([]models.SaleRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SaleRecord), args.Error(1)
}

func (m *MockSaleRepository) Get(ctx context.Context, recordID string) (*models.SaleRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SaleRecord), args.Error(1)
}
