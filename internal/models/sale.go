package models

import (
	"fmt"
	"time"
)

// SaleRecord is an audit snapshot taken when a property is closed out.
// The embedded Original holds the full property as it looked at sale time.
type SaleRecord struct {
	SaleDate    time.Time      `json:"saleDate"`
	CreatedAt   time.Time      `json:"createdAt"`
	Location    Location       `json:"location"`
	Agent       *Agent         `json:"agent,omitempty"`
	Original    *Property      `json:"originalPropertyData,omitempty"`
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	ListingType string         `json:"listingType"`
	Status      PropertyStatus `json:"status"`
	Images      []string       `json:"images"`
	Price       float64        `json:"price"`
	Area        float64        `json:"area"`
	PropertyID  int64          `json:"propertyId"`
	Bedrooms    int            `json:"bedrooms"`
	Bathrooms   int            `json:"bathrooms"`
}

// NewSaleRecord snapshots p as closed with status at the given time.
func NewSaleRecord(p *Property, status PropertyStatus, at time.Time) *SaleRecord {
	snapshot := *p
	snapshot.Images = make([]string, len(p.Images))
	copy(snapshot.Images, p.Images)

	return &SaleRecord{
		ID:          fmt.Sprintf("sale_%d_%d", p.ID, at.UnixMilli()),
		PropertyID:  p.ID,
		Title:       p.Title,
		ListingType: p.ListingType,
		Status:      status,
		Price:       p.Price,
		Bedrooms:    p.Bedrooms,
		Bathrooms:   p.Bathrooms,
		Area:        p.Area,
		Location:    p.Location,
		Images:      snapshot.Images,
		Agent:       p.Agent,
		SaleDate:    at.UTC(),
		CreatedAt:   p.CreatedAt,
		Original:    &snapshot,
	}
}
