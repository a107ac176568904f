package models

import "time"

// Favorite links a user to a property they marked.
type Favorite struct {
	CreatedAt  time.Time `json:"createdAt"`
	Property   *Property `json:"property,omitempty"`
	ID         int64     `json:"id"`
	PropertyID int64     `json:"propertyId"`
}
