package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/stwalsh4118/hearth/api/internal/backend"
	"github.com/stwalsh4118/hearth/api/internal/filter"
	"github.com/stwalsh4118/hearth/api/internal/logger"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

// Service-level errors
var (
	ErrInvalidPropertyID   = errors.New("property id must be positive")
	ErrPropertyNotFound    = errors.New("property not found")
	ErrPropertyUnavailable = errors.New("property is no longer available")
	ErrBackendUnavailable  = errors.New("could not load properties")
	ErrInvalidScope        = errors.New("scope must be available, sold or all")
)

// UnavailableError reports a property that has been sold or rented.
// It matches ErrPropertyUnavailable through errors.Is.
type UnavailableError struct {
	PropertyID int64
	Status     models.PropertyStatus
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("property %d has been %s", e.PropertyID, e.Status)
}

func (e *UnavailableError) Is(target error) bool {
	return target == ErrPropertyUnavailable
}

// PropertyBackend is the subset of the upstream API the services read and write.
type PropertyBackend interface {
	ListProperties(ctx context.Context, query url.Values) ([]models.Property, error)
	GetProperty(ctx context.Context, id int64) (*models.Property, error)
	UpdatePropertyStatus(ctx context.Context, id int64, status models.PropertyStatus) error
}

// AdminScope selects which listings the admin property table shows.
type AdminScope string

const (
	ScopeAvailable AdminScope = "available"
	ScopeSold      AdminScope = "sold"
	ScopeAll       AdminScope = "all"
)

// SearchResult is one stateless property search.
type SearchResult struct {
	Query      filter.Query      `json:"query"`
	Properties []models.Property `json:"properties"`
	Count      int               `json:"count"`
}

// PropertyService defines property read operations.
type PropertyService interface {
	// Search normalizes c and reads the matching properties.
	// With strict set, a malformed price-range token returns
	// filter.ErrInvalidPriceRange instead of being ignored.
	// Returns ErrBackendUnavailable when the upstream read fails.
	Search(ctx context.Context, c filter.Criteria, strict bool) (*SearchResult, error)

	// Get returns one property.
	// Returns ErrPropertyNotFound for unknown ids and an *UnavailableError
	// for sold or rented listings.
	Get(ctx context.Context, id int64) (*models.Property, error)

	// ListForAdmin returns every listing in scope.
	ListForAdmin(ctx context.Context, scope AdminScope) ([]models.Property, error)
}

// propertyService is the concrete implementation of PropertyService.
type propertyService struct {
	backend PropertyBackend
	log     *logger.Logger
}

// NewPropertyService creates a new instance of PropertyService.
func NewPropertyService(b PropertyBackend, log *logger.Logger) PropertyService {
	return &propertyService{
		backend: b,
		log:     log,
	}
}

func (s *propertyService) Search(ctx context.Context, c filter.Criteria, strict bool) (*SearchResult, error) {
	if strict {
		if _, err := filter.ParsePriceRangeStrict(c.PriceRange); err != nil {
			s.log.Warn("Rejected price range", map[string]interface{}{
				"price_range": c.PriceRange,
			})
			return nil, err
		}
	}

	q := filter.Normalize(c)
	s.log.Info("Searching properties", map[string]interface{}{
		"query": q.String(),
	})

	properties, err := s.backend.ListProperties(ctx, q.Values())
	if err != nil {
		s.log.Error("Failed to search properties", err, map[string]interface{}{
			"query": q.String(),
		})
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	return &SearchResult{Query: q, Properties: properties, Count: len(properties)}, nil
}

func (s *propertyService) Get(ctx context.Context, id int64) (*models.Property, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPropertyID, id)
	}

	p, err := s.backend.GetProperty(ctx, id)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			s.log.Debug("Property not found", map[string]interface{}{
				"property_id": id,
			})
			return nil, ErrPropertyNotFound
		}
		s.log.Error("Failed to load property", err, map[string]interface{}{
			"property_id": id,
		})
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	if p.Status.IsClosed() {
		return nil, &UnavailableError{PropertyID: id, Status: p.Status}
	}
	return p, nil
}

func (s *propertyService) ListForAdmin(ctx context.Context, scope AdminScope) ([]models.Property, error) {
	if scope == "" {
		scope = ScopeAll
	}
	if scope != ScopeAvailable && scope != ScopeSold && scope != ScopeAll {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidScope, scope)
	}

	all, err := s.backend.ListProperties(ctx, nil)
	if err != nil {
		s.log.Error("Failed to list properties for admin", err, map[string]interface{}{
			"scope": string(scope),
		})
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	out := make([]models.Property, 0, len(all))
	for _, p := range all {
		switch scope {
		case ScopeAvailable:
			if p.Status == models.StatusAvailable {
				out = append(out, p)
			}
		case ScopeSold:
			if p.Status.IsClosed() {
				out = append(out, p)
			}
		default:
			out = append(out, p)
		}
	}

	s.log.Info("Admin properties listed", map[string]interface{}{
		"scope": string(scope),
		"count": len(out),
		"total": len(all),
	})
	return out, nil
}
