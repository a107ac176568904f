package handlers

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stwalsh4118/hearth/api/internal/backend"
	"github.com/stwalsh4118/hearth/api/internal/filter"
	"github.com/stwalsh4118/hearth/api/internal/models"
	"github.com/stwalsh4118/hearth/api/internal/services"
)

// MockPropertyService is a mock implementation of services.PropertyService.
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) Search(ctx context.Context, c filter.Criteria, strict bool) (*services.SearchResult, error) {
	args := m.Called(ctx, c, strict)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SearchResult), args.Error(1)
}

func (m *MockPropertyService) Get(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) ListForAdmin(ctx context.Context, scope services.AdminScope) ([]models.Property, error) {
	args := m.Called(ctx, scope)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

// MockSalesService is a mock implementation of services.SalesService.
type MockSalesService struct {
	mock.Mock
}

func (m *MockSalesService) MarkSold(ctx context.Context, propertyID int64) (*models.SaleRecord, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SaleRecord), args.Error(1)
}

func (m *MockSalesService) List(ctx context.Context) ([]models.SaleRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SaleRecord), args.Error(1)
}

func (m *MockSalesService) Get(ctx context.Context, recordID string) (*models.SaleRecord, error) {
	args := m.Called(ctx, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SaleRecord), args.Error(1)
}

func (m *MockSalesService) Delete(ctx context.Context, recordID string) error {
	return m.Called(ctx, recordID).Error(0)
}

func (m *MockSalesService) Stats(ctx context.Context, now time.Time) (*services.SalesStats, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SalesStats), args.Error(1)
}

func (m *MockSalesService) Chart(ctx context.Context, now time.Time) ([]services.ChartPoint, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]services.ChartPoint), args.Error(1)
}

func (m *MockSalesService) Report(ctx context.Context, format services.ReportFormat, now time.Time) (*services.Report, error) {
	args := m.Called(ctx, format, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Report), args.Error(1)
}

// fakeLister serves a fixed catalogue to browse sessions.
type fakeLister struct {
	mu      sync.Mutex
	catalog []models.Property
	fail    bool
	calls   int
}

func (f *fakeLister) ListProperties(ctx context.Context, q url.Values) ([]models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, errors.New("backend down")
	}
	return append([]models.Property(nil), f.catalog...), nil
}

func (f *fakeLister) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeLister) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeRemote is an in-memory upstream account.
type fakeRemote struct {
	mu         sync.Mutex
	user       *models.User
	profileErr error
	addErr     error
	removeErr  error
	ids        map[int64]bool
}

func newFakeRemote(user *models.User, ids ...int64) *fakeRemote {
	r := &fakeRemote{user: user, ids: make(map[int64]bool)}
	for _, id := range ids {
		r.ids[id] = true
	}
	return r
}

func (r *fakeRemote) Profile(ctx context.Context) (*models.User, error) {
	if r.profileErr != nil {
		return nil, r.profileErr
	}
	return r.user, nil
}

func (r *fakeRemote) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	favs := make([]models.Favorite, 0, len(r.ids))
	for id := range r.ids {
		favs = append(favs, models.Favorite{ID: id * 10, PropertyID: id})
	}
	return favs, nil
}

func (r *fakeRemote) AddFavorite(ctx context.Context, propertyID int64) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids[propertyID] = true
	return nil
}

func (r *fakeRemote) RemoveFavorite(ctx context.Context, propertyID int64) error {
	if r.removeErr != nil {
		return r.removeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.ids, propertyID)
	return nil
}

func (r *fakeRemote) CheckFavorite(ctx context.Context, propertyID int64) (bool, error) {
	if r.profileErr != nil {
		return false, r.profileErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ids[propertyID], nil
}

var errForbidden = &backend.APIError{StatusCode: 403, Message: "You can only update your own properties"}
