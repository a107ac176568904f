package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/stwalsh4118/hearth/api/internal/models"
)

// number accepts JSON numbers and numeric strings (PostgreSQL NUMERIC columns
// arrive as strings). Anything else decodes as zero.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*n = 0
			return nil
		}
		*n = number(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		*n = 0
		return nil
	}
	*n = number(v)
	return nil
}

// wireProperty is the upstream JSON shape of a property.
type wireProperty struct {
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Images       json.RawMessage `json:"images"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	PropertyType string          `json:"property_type"`
	ListingType  string          `json:"listing_type"`
	Address      string          `json:"address"`
	City         string          `json:"city"`
	State        string          `json:"state"`
	ZipCode      string          `json:"zip_code"`
	Country      string          `json:"country"`
	Status       string          `json:"status"`
	AgentName    string          `json:"agent_name"`
	AgentEmail   string          `json:"agent_email"`
	AgentPhone   string          `json:"agent_phone"`
	Price        number          `json:"price"`
	AreaSqft     number          `json:"area_sqft"`
	ID           int64           `json:"id"`
	AgentID      int64           `json:"agent_id"`
	OwnerID      int64           `json:"owner_id"`
	Bedrooms     int             `json:"bedrooms"`
	Bathrooms    int             `json:"bathrooms"`
	YearBuilt    int             `json:"year_built"`
	Featured     bool            `json:"featured"`
}

func (c *Client) toProperty(w *wireProperty) *models.Property {
	p := &models.Property{
		ID:          w.ID,
		Title:       w.Title,
		Description: w.Description,
		Type:        w.PropertyType,
		ListingType: w.ListingType,
		Price:       float64(w.Price),
		Location: models.Location{
			Address: w.Address,
			City:    w.City,
			State:   w.State,
			ZipCode: w.ZipCode,
			Country: w.Country,
		},
		Bedrooms:  w.Bedrooms,
		Bathrooms: w.Bathrooms,
		Area:      float64(w.AreaSqft),
		YearBuilt: w.YearBuilt,
		Status:    models.PropertyStatus(w.Status),
		Featured:  w.Featured,
		Images:    c.imageURLs(w.Images),
		OwnerID:   w.OwnerID,
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	}
	if p.Status == "" {
		p.Status = models.StatusAvailable
	}
	if w.AgentID != 0 || w.AgentName != "" || w.AgentEmail != "" || w.AgentPhone != "" {
		p.Agent = &models.Agent{
			ID:    w.AgentID,
			Name:  w.AgentName,
			Email: w.AgentEmail,
			Phone: w.AgentPhone,
		}
	}
	return p
}

type wireFavorite struct {
	CreatedAt  time.Time `json:"created_at"`
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property_id"`
}

type wireUser struct {
	FullName     string `json:"full_name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	Phone        string `json:"phone"`
	ProfileImage string `json:"profile_image"`
	ID           int64  `json:"id"`
}
