package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/stwalsh4118/hearth/api/internal/models"
)

// ListProperties returns the properties matching query, in upstream order.
func (c *Client) ListProperties(ctx context.Context, query url.Values) ([]models.Property, error) {
	var resp struct {
		Properties []wireProperty `json:"properties"`
	}
	if err := c.do(ctx, http.MethodGet, "/properties", query, nil, &resp); err != nil {
		return nil, err
	}

	properties := make([]models.Property, 0, len(resp.Properties))
	for i := range resp.Properties {
		properties = append(properties, *c.toProperty(&resp.Properties[i]))
	}
	return properties, nil
}

// GetProperty returns one property. A missing id yields an error matching ErrNotFound.
func (c *Client) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	var resp struct {
		Property *wireProperty `json:"property"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/properties/%d", id), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Property == nil {
		return nil, &APIError{StatusCode: http.StatusNotFound, Message: "Property not found"}
	}
	return c.toProperty(resp.Property), nil
}

// UpdatePropertyStatus changes a listing's status. Requires an admin token.
func (c *Client) UpdatePropertyStatus(ctx context.Context, id int64, status models.PropertyStatus) error {
	body := map[string]string{"status": string(status)}
	return c.do(ctx, http.MethodPatch, fmt.Sprintf("/properties/%d/status", id), nil, body, nil)
}
