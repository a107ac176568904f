package backend

import (
	"context"
	"net/http"

	"github.com/stwalsh4118/hearth/api/internal/models"
)

// Profile returns the user the bound token belongs to.
func (c *Client) Profile(ctx context.Context) (*models.User, error) {
	var resp struct {
		User *wireUser `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, &APIError{StatusCode: http.StatusUnauthorized, Message: "no user in profile response"}
	}
	return &models.User{
		ID:           resp.User.ID,
		FullName:     resp.User.FullName,
		Email:        resp.User.Email,
		Role:         resp.User.Role,
		Phone:        resp.User.Phone,
		ProfileImage: resp.User.ProfileImage,
	}, nil
}
