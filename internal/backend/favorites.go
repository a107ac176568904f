package backend

import (
	"context"
	"fmt"
	"net/http"

	"github.com/stwalsh4118/hearth/api/internal/models"
)

// ListFavorites returns the full favorite set of the token's user.
func (c *Client) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	var resp struct {
		Favorites []wireFavorite `json:"favorites"`
	}
	if err := c.do(ctx, http.MethodGet, "/favorites", nil, nil, &resp); err != nil {
		return nil, err
	}

	favorites := make([]models.Favorite, 0, len(resp.Favorites))
	for _, f := range resp.Favorites {
		favorites = append(favorites, models.Favorite{
			ID:         f.ID,
			PropertyID: f.PropertyID,
			CreatedAt:  f.CreatedAt,
		})
	}
	return favorites, nil
}

// AddFavorite marks a property as favorite.
func (c *Client) AddFavorite(ctx context.Context, propertyID int64) error {
	body := map[string]int64{"property_id": propertyID}
	return c.do(ctx, http.MethodPost, "/favorites", nil, body, nil)
}

// RemoveFavorite unmarks a property.
func (c *Client) RemoveFavorite(ctx context.Context, propertyID int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/favorites/%d", propertyID), nil, nil, nil)
}

// CheckFavorite asks the upstream API whether a property is a favorite.
func (c *Client) CheckFavorite(ctx context.Context, propertyID int64) (bool, error) {
	var resp struct {
		IsFavorited bool `json:"isFavorited"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/favorites/check/%d", propertyID), nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.IsFavorited, nil
}
