package models

import (
	"time"
)

// PropertyStatus is the availability state of a listing.
type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusSold      PropertyStatus = "sold"
	StatusRented    PropertyStatus = "rented"
)

// IsClosed reports whether the listing has left the market.
func (s PropertyStatus) IsClosed() bool {
	return s == StatusSold || s == StatusRented
}

// PropertyType values accepted by the listing search.
const (
	TypeHouse     = "house"
	TypeApartment = "apartment"
	TypeCondo     = "condo"
	TypeVilla     = "villa"
)

// ListingType values; rent listings close as "rented" rather than "sold".
const (
	ListingSale = "sale"
	ListingRent = "rent"
)

// Location is the postal address of a property.
type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// Agent is the listing contact attached to a property.
type Agent struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Property is a listing record as served by the upstream API.
// Records are read-only here; only Status is ever written back.
// Field order is optimized for memory alignment.
type Property struct {
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	Location    Location       `json:"location"`
	Agent       *Agent         `json:"agent,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	ListingType string         `json:"listingType"`
	Status      PropertyStatus `json:"status"`
	Images      []string       `json:"images"`
	Price       float64        `json:"price"`
	Area        float64        `json:"area"`
	ID          int64          `json:"id"`
	OwnerID     int64          `json:"ownerId,omitempty"`
	Bedrooms    int            `json:"bedrooms"`
	Bathrooms   int            `json:"bathrooms"`
	YearBuilt   int            `json:"yearBuilt,omitempty"`
	Featured    bool           `json:"featured"`
}

// ClosingStatus returns the status a property moves to when it is closed out.
func (p *Property) ClosingStatus() PropertyStatus {
	if p.ListingType == ListingRent {
		return StatusRented
	}
	return StatusSold
}
