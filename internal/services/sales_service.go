package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stwalsh4118/hearth/api/internal/backend"
	"github.com/stwalsh4118/hearth/api/internal/logger"
	"github.com/stwalsh4118/hearth/api/internal/models"
	"github.com/stwalsh4118/hearth/api/internal/repository"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Sales errors
var (
	ErrNoSales           = errors.New("no sales data available to generate report")
	ErrSaleNotFound      = errors.New("sale record not found")
	ErrUnsupportedFormat = errors.New("report format must be csv or json")
)

// chartMonths is how many calendar months the sales chart covers, current month included.
const chartMonths = 6

// ReportFormat selects the sales report encoding.
type ReportFormat string

const (
	FormatCSV  ReportFormat = "csv"
	FormatJSON ReportFormat = "json"
)

var reportHeaders = []string{
	"Sale ID", "Property Title", "Type", "Status", "Location", "Sale Date",
	"Sale Price", "Bedrooms", "Bathrooms", "Area (sqft)", "Agent Name", "Agent Email",
}

var usd = message.NewPrinter(language.AmericanEnglish)

// FormatUSD renders a whole-dollar amount with grouping, e.g. $1,250,000.
func FormatUSD(amount float64) string {
	return usd.Sprintf("$%v", number.Decimal(amount, number.MaxFractionDigits(0)))
}

// Bucket aggregates the sales that fall in one period.
type Bucket struct {
	Formatted string  `json:"formatted"`
	Total     float64 `json:"total"`
	Count     int     `json:"count"`
}

func (b *Bucket) add(price float64) {
	b.Count++
	b.Total += price
}

// SalesStats are the dashboard summary cards.
type SalesStats struct {
	ThisMonth Bucket `json:"thisMonth"`
	ThisYear  Bucket `json:"thisYear"`
	AllTime   Bucket `json:"allTime"`
}

// ChartPoint is one month of the sales chart. Revenue is in thousands.
type ChartPoint struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
	Sold    int     `json:"sold"`
	NotSold int     `json:"notSold"`
}

// Report is an encoded sales report ready to download.
type Report struct {
	Filename    string
	ContentType string
	Body        []byte
}

type jsonReport struct {
	GeneratedAt  time.Time           `json:"generatedAt"`
	Sales        []models.SaleRecord `json:"sales"`
	TotalRevenue float64             `json:"totalRevenue"`
	TotalSales   int                 `json:"totalSales"`
}

// SalesService defines the admin sales dashboard operations.
type SalesService interface {
	// MarkSold closes a listing upstream (rented for rent listings, sold
	// otherwise) and then appends a sale record snapshot.
	// Returns ErrPropertyNotFound for unknown ids.
	MarkSold(ctx context.Context, propertyID int64) (*models.SaleRecord, error)

	// List returns the current sale records, newest first.
	List(ctx context.Context) ([]models.SaleRecord, error)

	// Get returns one current record. Returns ErrSaleNotFound otherwise.
	Get(ctx context.Context, recordID string) (*models.SaleRecord, error)

	// Delete removes a record from the current view.
	// Returns ErrSaleNotFound unless it is current.
	Delete(ctx context.Context, recordID string) error

	// Stats buckets current records by the month and year of now.
	Stats(ctx context.Context, now time.Time) (*SalesStats, error)

	// Chart returns the last six months ending with the month of now.
	Chart(ctx context.Context, now time.Time) ([]ChartPoint, error)

	// Report encodes the current records. Returns ErrNoSales when there are none.
	Report(ctx context.Context, format ReportFormat, now time.Time) (*Report, error)
}

// salesService is the concrete implementation of SalesService.
type salesService struct {
	repo    repository.SaleRepository
	backend PropertyBackend
	log     *logger.Logger
	now     func() time.Time
}

// NewSalesService creates a new instance of SalesService.
func NewSalesService(repo repository.SaleRepository, b PropertyBackend, log *logger.Logger) SalesService {
	return &salesService{
		repo:    repo,
		backend: b,
		log:     log,
		now:     time.Now,
	}
}

func (s *salesService) MarkSold(ctx context.Context, propertyID int64) (*models.SaleRecord, error) {
	if propertyID <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPropertyID, propertyID)
	}

	p, err := s.backend.GetProperty(ctx, propertyID)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return nil, ErrPropertyNotFound
		}
		s.log.Error("Failed to load property to mark sold", err, map[string]interface{}{
			"property_id": propertyID,
		})
		return nil, fmt.Errorf("%w: load property: %w", ErrBackendUnavailable, err)
	}

	status := p.ClosingStatus()
	if err := s.backend.UpdatePropertyStatus(ctx, propertyID, status); err != nil {
		s.log.Error("Failed to update property status", err, map[string]interface{}{
			"property_id": propertyID,
			"status":      string(status),
		})
		return nil, fmt.Errorf("%w: update property status: %w", ErrBackendUnavailable, err)
	}

	rec := models.NewSaleRecord(p, status, s.now())
	if err := s.repo.Append(ctx, rec); err != nil {
		// The listing is already closed upstream; surface the gap loudly.
		s.log.Error("Property closed but sale record not saved", err, map[string]interface{}{
			"property_id": propertyID,
			"record_id":   rec.ID,
		})
		return nil, fmt.Errorf("failed to save sale record: %w", err)
	}

	s.log.Info("Property marked as closed", map[string]interface{}{
		"property_id": propertyID,
		"record_id":   rec.ID,
		"status":      string(status),
		"price":       rec.Price,
	})
	return rec, nil
}

func (s *salesService) List(ctx context.Context) ([]models.SaleRecord, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("Failed to list sale records", err, nil)
		return nil, fmt.Errorf("failed to list sale records: %w", err)
	}
	return records, nil
}

func (s *salesService) Get(ctx context.Context, recordID string) (*models.SaleRecord, error) {
	rec, err := s.repo.Get(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale record: %w", err)
	}
	if rec == nil {
		return nil, ErrSaleNotFound
	}
	return rec, nil
}

func (s *salesService) Delete(ctx context.Context, recordID string) error {
	if err := s.repo.Delete(ctx, recordID); err != nil {
		if errors.Is(err, repository.ErrSaleNotFound) {
			return ErrSaleNotFound
		}
		s.log.Error("Failed to delete sale record", err, map[string]interface{}{
			"record_id": recordID,
		})
		return fmt.Errorf("failed to delete sale record: %w", err)
	}

	s.log.Info("Sale record deleted", map[string]interface{}{
		"record_id": recordID,
	})
	return nil
}

func (s *salesService) Stats(ctx context.Context, now time.Time) (*SalesStats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(records, now)
	return &stats, nil
}

func (s *salesService) Chart(ctx context.Context, now time.Time) ([]ChartPoint, error) {
	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	properties, err := s.backend.ListProperties(ctx, nil)
	if err != nil {
		s.log.Error("Failed to load properties for sales chart", err, nil)
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return ComputeChart(records, properties, now), nil
}

func (s *salesService) Report(ctx context.Context, format ReportFormat, now time.Time) (*Report, error) {
	if format != FormatCSV && format != FormatJSON {
		return nil, fmt.Errorf("%w: got %q", ErrUnsupportedFormat, format)
	}

	records, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoSales
	}

	filename := fmt.Sprintf("sales-report-%s.%s", now.UTC().Format("2006-01-02"), format)

	var body []byte
	contentType := "text/csv"
	if format == FormatCSV {
		body, err = encodeCSV(records, now.Location())
	} else {
		contentType = "application/json"
		body, err = json.MarshalIndent(jsonReport{
			GeneratedAt:  now.UTC(),
			TotalSales:   len(records),
			TotalRevenue: ComputeStats(records, now).AllTime.Total,
			Sales:        records,
		}, "", "  ")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s report: %w", format, err)
	}

	s.log.Info("Sales report generated", map[string]interface{}{
		"format":  string(format),
		"records": len(records),
		"bytes":   len(body),
	})
	return &Report{Filename: filename, ContentType: contentType, Body: body}, nil
}

// ComputeStats buckets records into the month and year containing now,
// in now's location, plus an all-time total.
func ComputeStats(records []models.SaleRecord, now time.Time) SalesStats {
	var stats SalesStats
	year, month, _ := now.Date()

	for _, r := range records {
		y, m, _ := r.SaleDate.In(now.Location()).Date()
		stats.AllTime.add(r.Price)
		if y == year {
			stats.ThisYear.add(r.Price)
			if m == month {
				stats.ThisMonth.add(r.Price)
			}
		}
	}

	stats.ThisMonth.Formatted = FormatUSD(stats.ThisMonth.Total)
	stats.ThisYear.Formatted = FormatUSD(stats.ThisYear.Total)
	stats.AllTime.Formatted = FormatUSD(stats.AllTime.Total)
	return stats
}

// ComputeChart returns one point per month for the six months ending with
// now's month. NotSold is listings created that month minus sales that month,
// and may be negative when older listings sell.
func ComputeChart(records []models.SaleRecord, properties []models.Property, now time.Time) []ChartPoint {
	loc := now.Location()
	year, month, _ := now.Date()

	points := make([]ChartPoint, 0, chartMonths)
	for i := chartMonths - 1; i >= 0; i-- {
		start := time.Date(year, month-time.Month(i), 1, 0, 0, 0, 0, loc)
		y, m, _ := start.Date()

		var sold, created int
		var revenue float64
		for _, r := range records {
			ry, rm, _ := r.SaleDate.In(loc).Date()
			if ry == y && rm == m {
				sold++
				revenue += r.Price
			}
		}
		for _, p := range properties {
			py, pm, _ := p.CreatedAt.In(loc).Date()
			if py == y && pm == m {
				created++
			}
		}

		points = append(points, ChartPoint{
			Month:   m.String()[:3],
			Sold:    sold,
			NotSold: created - sold,
			Revenue: revenue / 1000,
		})
	}
	return points
}

func encodeCSV(records []models.SaleRecord, loc *time.Location) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(reportHeaders); err != nil {
		return nil, err
	}
	for _, r := range records {
		agentName, agentEmail := "N/A", "N/A"
		if r.Agent != nil {
			if r.Agent.Name != "" {
				agentName = r.Agent.Name
			}
			if r.Agent.Email != "" {
				agentEmail = r.Agent.Email
			}
		}

		row := []string{
			r.ID,
			r.Title,
			r.ListingType,
			string(r.Status),
			r.Location.City + ", " + r.Location.State,
			r.SaleDate.In(loc).Format("1/2/2006"),
			strconv.FormatFloat(r.Price, 'f', -1, 64),
			strconv.Itoa(r.Bedrooms),
			strconv.Itoa(r.Bathrooms),
			strconv.FormatFloat(r.Area, 'f', -1, 64),
			agentName,
			agentEmail,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
