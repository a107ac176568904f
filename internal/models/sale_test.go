package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewSaleRecord(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	p := &Property{
		ID:          42,
		Title:       "Lake house",
		ListingType: ListingSale,
		Price:       750000,
		Bedrooms:    3,
		Bathrooms:   2,
		Images:      []string{"http://img/1.jpg"},
		Location:    Location{City: "Dhaka", State: "Dhaka"},
	}

	rec := NewSaleRecord(p, p.ClosingStatus(), at)

	assert.Equal(t, "sale_42_1741944600000", rec.ID)
	assert.Equal(t, StatusSold, rec.Status)
	assert.Equal(t, int64(42), rec.PropertyID)
	assert.Equal(t, 750000.0, rec.Price)
	assert.Equal(t, at, rec.SaleDate)
	assert.Equal(t, "Dhaka", rec.Location.City)

	// Snapshot must not alias the live record.
	p.Images[0] = "changed"
	assert.Equal(t, "http://img/1.jpg", rec.Images[0])
	assert.Equal(t, "http://img/1.jpg", rec.Original.Images[0])
}

func TestClosingStatus(t *testing.T) {
	assert.Equal(t, StatusRented, (&Property{ListingType: ListingRent}).ClosingStatus())
	assert.Equal(t, StatusSold, (&Property{ListingType: ListingSale}).ClosingStatus())
	assert.Equal(t, StatusSold, (&Property{}).ClosingStatus())
}

func TestPropertyStatus_IsClosed(t *testing.T) {
	assert.False(t, StatusAvailable.IsClosed())
	assert.True(t, StatusSold.IsClosed())
	assert.True(t, StatusRented.IsClosed())
}
