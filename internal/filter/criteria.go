// Package filter turns user-entered search inputs into the query shape the
// listing API understands, and debounces changes before anyone fetches.
package filter

import (
	"net/url"
	"strconv"
	"strings"
)

// Default numeric bounds used when no price-range token is selected.
const (
	DefaultMinPrice = 0
	DefaultMaxPrice = 10_000_000
)

// Criteria is the raw filter state as a user edits it.
// When PriceRange is non-empty it overrides MinPrice and MaxPrice.
// Zero MinBedrooms or MinBathrooms means "any".
type Criteria struct {
	Location     string  `json:"location"`
	PropertyType string  `json:"type"`
	PriceRange   string  `json:"priceRange"`
	MinPrice     float64 `json:"minPrice"`
	MaxPrice     float64 `json:"maxPrice"`
	MinBedrooms  int     `json:"bedrooms"`
	MinBathrooms int     `json:"bathrooms"`
}

// DefaultCriteria returns empty text and enum fields with the full price span.
func DefaultCriteria() Criteria {
	return Criteria{
		MinPrice: DefaultMinPrice,
		MaxPrice: DefaultMaxPrice,
	}
}

// Patch is a partial update to Criteria. Nil fields are left untouched.
type Patch struct {
	Location     *string  `json:"location"`
	PropertyType *string  `json:"type" binding:"omitempty,oneof=house apartment condo villa ''"`
	PriceRange   *string  `json:"priceRange"`
	MinPrice     *float64 `json:"minPrice" binding:"omitempty,gte=0"`
	MaxPrice     *float64 `json:"maxPrice" binding:"omitempty,gte=0"`
	MinBedrooms  *int     `json:"bedrooms" binding:"omitempty,gte=0,lte=20"`
	MinBathrooms *int     `json:"bathrooms" binding:"omitempty,gte=0,lte=20"`
}

// Apply returns a copy of c with the non-nil fields of p written over it.
func (c Criteria) Apply(p Patch) Criteria {
	if p.Location != nil {
		c.Location = *p.Location
	}
	if p.PropertyType != nil {
		c.PropertyType = *p.PropertyType
	}
	if p.PriceRange != nil {
		c.PriceRange = *p.PriceRange
	}
	if p.MinPrice != nil {
		c.MinPrice = *p.MinPrice
	}
	if p.MaxPrice != nil {
		c.MaxPrice = *p.MaxPrice
	}
	if p.MinBedrooms != nil {
		c.MinBedrooms = *p.MinBedrooms
	}
	if p.MinBathrooms != nil {
		c.MinBathrooms = *p.MinBathrooms
	}
	return c
}

// Query is the normalized, read-only projection of Criteria sent to the
// listing API. Nil fields carry no constraint.
type Query struct {
	Type      *string  `json:"type"`
	Location  *string  `json:"location"`
	MinPrice  *float64 `json:"minPrice"`
	MaxPrice  *float64 `json:"maxPrice"`
	Bedrooms  *int     `json:"bedrooms"`
	Bathrooms *int     `json:"bathrooms"`
}

// Normalize derives the Query for c.
func Normalize(c Criteria) Query {
	var q Query

	if c.PropertyType != "" {
		t := c.PropertyType
		q.Type = &t
	}
	if loc := strings.TrimSpace(c.Location); loc != "" {
		q.Location = &loc
	}

	if c.PriceRange != "" {
		r := ParsePriceRange(c.PriceRange)
		q.MinPrice, q.MaxPrice = r.Min, r.Max
	} else {
		min, max := c.MinPrice, c.MaxPrice
		q.MinPrice, q.MaxPrice = &min, &max
	}

	if c.MinBedrooms > 0 {
		b := c.MinBedrooms
		q.Bedrooms = &b
	}
	if c.MinBathrooms > 0 {
		b := c.MinBathrooms
		q.Bathrooms = &b
	}
	return q
}

// Values encodes q as listing API query parameters, omitting nil fields.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Type != nil {
		v.Set("type", *q.Type)
	}
	if q.Location != nil {
		v.Set("location", *q.Location)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.Bedrooms != nil {
		v.Set("bedrooms", strconv.Itoa(*q.Bedrooms))
	}
	if q.Bathrooms != nil {
		v.Set("bathrooms", strconv.Itoa(*q.Bathrooms))
	}
	return v
}

// String is the encoded form of q, stable across equal queries.
func (q Query) String() string {
	return q.Values().Encode()
}
