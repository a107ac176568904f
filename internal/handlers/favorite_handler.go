package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/hearth/api/internal/backend"
	"github.com/stwalsh4118/hearth/api/internal/browse"
	apierrors "github.com/stwalsh4118/hearth/api/internal/errors"
	"github.com/stwalsh4118/hearth/api/internal/favorites"
	"github.com/stwalsh4118/hearth/api/internal/middleware"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

// FavoriteHandler handles favorite listing and toggling for browse sessions.
type FavoriteHandler struct {
	store     *browse.Store
	remoteFor RemoteFactory
}

// NewFavoriteHandler creates a new FavoriteHandler instance.
func NewFavoriteHandler(store *browse.Store, remoteFor RemoteFactory) *FavoriteHandler {
	return &FavoriteHandler{
		store:     store,
		remoteFor: remoteFor,
	}
}

// FavoritesResponse is the session's favorite set.
type FavoritesResponse struct {
	Status    favorites.Status  `json:"status"`
	IDs       []int64           `json:"ids"`
	Favorites []models.Favorite `json:"favorites"`
	Count     int               `json:"count"`
}

// CheckResponse reports whether the caller has favorited one property.
type CheckResponse struct {
	PropertyID  int64 `json:"propertyId"`
	IsFavorited bool  `json:"isFavorited"`
}

// List handles GET /api/v1/sessions/:id/favorites.
func (h *FavoriteHandler) List(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}

	synchronizer := sess.Favorites()
	favs := synchronizer.Favorites()
	if favs == nil {
		favs = []models.Favorite{}
	}
	c.JSON(http.StatusOK, FavoritesResponse{
		Status:    synchronizer.Status(),
		IDs:       synchronizer.IDs(),
		Favorites: favs,
		Count:     len(favs),
	})
}

// Toggle handles POST /api/v1/sessions/:id/favorites/:propertyId/toggle.
// Failures answer 200 with {success: false, error} and leave the set unchanged.
func (h *FavoriteHandler) Toggle(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}
	propertyID, ok := parseID(c, "propertyId")
	if !ok {
		return
	}

	favorited, err := sess.ToggleFavorite(c.Request.Context(), propertyID)
	if err != nil {
		switch {
		case errors.Is(err, favorites.ErrNotLoggedIn):
			apierrors.ToggleFailed(c, favorites.LoginRequiredMessage)
		case errors.Is(err, favorites.ErrRemoveFailed):
			apierrors.ToggleFailed(c, backend.Message(err, "Failed to remove favorite"))
		default:
			apierrors.ToggleFailed(c, backend.Message(err, "Failed to add favorite"))
		}
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Favorite toggled", map[string]interface{}{
			"session_id":  sess.ID,
			"property_id": propertyID,
			"favorited":   favorited,
		})
	}
	apierrors.Toggled(c, favorited)
}

// Check handles GET /api/v1/properties/:id/favorite. It asks the upstream
// API directly and needs no session, as on a property detail page.
func (h *FavoriteHandler) Check(c *gin.Context) {
	propertyID, ok := parseID(c, "id")
	if !ok {
		return
	}

	favorited, err := h.remoteFor(middleware.GetToken(c)).CheckFavorite(c.Request.Context(), propertyID)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			apierrors.Unauthorized(c, "Invalid or expired token")
			return
		}
		apierrors.BadGateway(c, backend.Message(err, "Failed to check favorite"), err)
		return
	}

	c.JSON(http.StatusOK, CheckResponse{PropertyID: propertyID, IsFavorited: favorited})
}
