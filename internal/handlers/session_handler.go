package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/hearth/api/internal/backend"
	"github.com/stwalsh4118/hearth/api/internal/browse"
	apierrors "github.com/stwalsh4118/hearth/api/internal/errors"
	"github.com/stwalsh4118/hearth/api/internal/favorites"
	"github.com/stwalsh4118/hearth/api/internal/fetcher"
	"github.com/stwalsh4118/hearth/api/internal/filter"
	"github.com/stwalsh4118/hearth/api/internal/middleware"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

// UserRemote is the upstream account of one authenticated user.
type UserRemote interface {
	favorites.Remote
	Profile(ctx context.Context) (*models.User, error)
	CheckFavorite(ctx context.Context, propertyID int64) (bool, error)
}

// RemoteFactory binds the upstream client to a bearer token.
type RemoteFactory func(token string) UserRemote

// SessionHandler handles browse session lifecycle, filters and views.
type SessionHandler struct {
	store     *browse.Store
	remoteFor RemoteFactory
}

// NewSessionHandler creates a new SessionHandler instance.
func NewSessionHandler(store *browse.Store, remoteFor RemoteFactory) *SessionHandler {
	return &SessionHandler{
		store:     store,
		remoteFor: remoteFor,
	}
}

// SessionResponse is returned when a session is created.
type SessionResponse struct {
	ID   string      `json:"id"`
	View browse.View `json:"view"`
}

// FiltersResponse acknowledges a filter change. The fetch it triggers runs
// after the quiet period; clients poll the view for the result.
type FiltersResponse struct {
	Criteria filter.Criteria `json:"criteria"`
	Query    filter.Query    `json:"query"`
	Pending  bool            `json:"pending"`
}

// Create handles POST /api/v1/sessions.
// With a bearer token the session starts logged in and loads favorites.
func (h *SessionHandler) Create(c *gin.Context) {
	var (
		user   *models.User
		remote UserRemote
	)
	if token := middleware.GetToken(c); token != "" {
		var ok bool
		if user, remote, ok = h.authenticate(c, token); !ok {
			return
		}
	}

	sess := h.store.Create()
	if user != nil {
		h.login(c, sess, user, remote)
	}
	sess.Start()

	c.JSON(http.StatusCreated, SessionResponse{ID: sess.ID, View: sess.View()})
}

// Delete handles DELETE /api/v1/sessions/:id.
func (h *SessionHandler) Delete(c *gin.Context) {
	if err := h.store.Delete(c.Param("id")); err != nil {
		apierrors.NotFound(c, "Session not found")
		return
	}
	c.Status(http.StatusNoContent)
}

// Login handles POST /api/v1/sessions/:id/login. It requires a bearer token.
func (h *SessionHandler) Login(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}

	user, remote, ok := h.authenticate(c, middleware.GetToken(c))
	if !ok {
		return
	}
	h.login(c, sess, user, remote)

	c.JSON(http.StatusOK, sess.View())
}

// Logout handles POST /api/v1/sessions/:id/logout.
func (h *SessionHandler) Logout(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}
	sess.Logout()
	c.JSON(http.StatusOK, sess.View())
}

// View handles GET /api/v1/sessions/:id/view.
func (h *SessionHandler) View(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// UpdateFilters handles PATCH /api/v1/sessions/:id/filters.
func (h *SessionHandler) UpdateFilters(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}

	var patch filter.Patch
	if !bindJSON(c, &patch) {
		return
	}

	q := sess.UpdateFilters(patch)
	c.JSON(http.StatusAccepted, FiltersResponse{
		Criteria: sess.View().Criteria,
		Query:    q,
		Pending:  true,
	})
}

// ResetFilters handles POST /api/v1/sessions/:id/filters/reset.
func (h *SessionHandler) ResetFilters(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}

	q := sess.ResetFilters()
	c.JSON(http.StatusAccepted, FiltersResponse{
		Criteria: filter.DefaultCriteria(),
		Query:    q,
		Pending:  true,
	})
}

// Refresh handles POST /api/v1/sessions/:id/refresh, the manual retry after
// a failed load. A refresh overtaken by a newer query still answers 200 with
// the newer view.
func (h *SessionHandler) Refresh(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}

	if _, err := sess.Refresh(c.Request.Context()); err != nil && !errors.Is(err, fetcher.ErrSuperseded) {
		apierrors.BadGateway(c, "Could not load properties", err)
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// Dashboard handles GET /api/v1/sessions/:id/dashboard.
func (h *SessionHandler) Dashboard(c *gin.Context) {
	sess, ok := lookupSession(c, h.store)
	if !ok {
		return
	}
	if sess.User() == nil {
		apierrors.Unauthorized(c, "Please login to view your dashboard")
		return
	}
	c.JSON(http.StatusOK, sess.Dashboard())
}

// authenticate resolves the user behind token through the upstream profile endpoint.
func (h *SessionHandler) authenticate(c *gin.Context, token string) (*models.User, UserRemote, bool) {
	remote := h.remoteFor(token)
	user, err := remote.Profile(c.Request.Context())
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			apierrors.Unauthorized(c, "Invalid or expired token")
			return nil, nil, false
		}
		apierrors.BadGateway(c, "Could not load user profile", err)
		return nil, nil, false
	}
	return user, remote, true
}

// login attaches user to sess. A favorites load failure leaves the session
// logged in with an empty set.
func (h *SessionHandler) login(c *gin.Context, sess *browse.Session, user *models.User, remote UserRemote) {
	if err := sess.Login(c.Request.Context(), user, remote); err != nil {
		if log := middleware.GetLogger(c); log != nil {
			log.Warn("Favorites failed to load at login", map[string]interface{}{
				"session_id": sess.ID,
				"user_id":    user.ID,
				"error":      err.Error(),
			})
		}
	}
}

// lookupSession resolves the :id path parameter, writing 404 when unknown.
func lookupSession(c *gin.Context, store *browse.Store) (*browse.Session, bool) {
	sess, err := store.Get(c.Param("id"))
	if err != nil {
		apierrors.NotFound(c, "Session not found")
		return nil, false
	}
	return sess, true
}
