package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/hearth/api/internal/backend"
	apierrors "github.com/stwalsh4118/hearth/api/internal/errors"
)

type favoritesBody struct {
	Status string  `json:"status"`
	IDs    []int64 `json:"ids"`
	Count  int     `json:"count"`
}

func (f *sessionFixture) favorites(t *testing.T, id string) favoritesBody {
	t.Helper()

	w := serve(f.router, http.MethodGet, "/api/v1/sessions/"+id+"/favorites", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var body favoritesBody
	decode(t, w, &body)
	return body
}

func (f *sessionFixture) toggle(t *testing.T, id, propertyID string) apierrors.Result {
	t.Helper()

	w := serve(f.router, http.MethodPost, "/api/v1/sessions/"+id+"/favorites/"+propertyID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res apierrors.Result
	decode(t, w, &res)
	return res
}

func TestFavoriteHandler_ListAnonymous(t *testing.T) {
	f := newSessionFixture(t)
	id, _ := f.create(t)

	body := f.favorites(t, id)

	assert.Equal(t, "logged_out", body.Status)
	assert.Empty(t, body.IDs)
	assert.NotNil(t, body.IDs)
	assert.Zero(t, body.Count)
}

func TestFavoriteHandler_ToggleRequiresLogin(t *testing.T) {
	f := newSessionFixture(t)
	id, _ := f.create(t)

	res := f.toggle(t, id, "1")

	assert.False(t, res.Success)
	assert.Equal(t, "Please login to add favorites", res.Error)
	assert.Nil(t, res.Favorited)
	assert.Empty(t, f.favorites(t, id).IDs)
}

func TestFavoriteHandler_ToggleAddAndRemove(t *testing.T) {
	f := newSessionFixture(t)
	id, _ := f.create(t, bearer(t, 7, "agent")...)

	res := f.toggle(t, id, "1")
	require.True(t, res.Success)
	require.NotNil(t, res.Favorited)
	assert.True(t, *res.Favorited)
	assert.Equal(t, []int64{1, 3}, f.favorites(t, id).IDs)

	res = f.toggle(t, id, "3")
	require.True(t, res.Success)
	require.NotNil(t, res.Favorited)
	assert.False(t, *res.Favorited)
	assert.Equal(t, []int64{1}, f.favorites(t, id).IDs)

	view := f.view(t, id)
	for _, p := range view.Properties {
		assert.Equal(t, p.ID == 1, p.Favorited, "property %d", p.ID)
	}
}

func TestFavoriteHandler_ToggleRemoteFailureKeepsSet(t *testing.T) {
	tests := []struct {
		name       string
		propertyID string
		setup      func(r *fakeRemote)
		message    string
	}{
		{
			name:       "add rejected with upstream message",
			propertyID: "1",
			setup: func(r *fakeRemote) {
				r.addErr = &backend.APIError{StatusCode: 400, Message: "Property already in favorites"}
			},
			message: "Property already in favorites",
		},
		{
			name:       "add fails without message",
			propertyID: "1",
			setup: func(r *fakeRemote) {
				r.addErr = &backend.APIError{StatusCode: 500}
			},
			message: "Failed to add favorite",
		},
		{
			name:       "remove fails without message",
			propertyID: "3",
			setup: func(r *fakeRemote) {
				r.removeErr = &backend.APIError{StatusCode: 502}
			},
			message: "Failed to remove favorite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSessionFixture(t)
			id, _ := f.create(t, bearer(t, 7, "agent")...)
			tt.setup(f.remote)

			res := f.toggle(t, id, tt.propertyID)

			assert.False(t, res.Success)
			assert.Equal(t, tt.message, res.Error)
			assert.Equal(t, []int64{3}, f.favorites(t, id).IDs)
		})
	}
}

func TestFavoriteHandler_ToggleBadPropertyID(t *testing.T) {
	f := newSessionFixture(t)
	id, _ := f.create(t, bearer(t, 7, "agent")...)

	w := serve(f.router, http.MethodPost, "/api/v1/sessions/"+id+"/favorites/abc/toggle", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, apierrors.ErrBadRequest, decodeError(t, w).Code)
}

func TestFavoriteHandler_Check(t *testing.T) {
	f := newSessionFixture(t)

	w := serve(f.router, http.MethodGet, "/api/v1/properties/3/favorite", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(f.router, http.MethodGet, "/api/v1/properties/3/favorite", nil, bearer(t, 7, "agent")...)
	require.Equal(t, http.StatusOK, w.Code)
	var resp CheckResponse
	decode(t, w, &resp)
	assert.Equal(t, CheckResponse{PropertyID: 3, IsFavorited: true}, resp)

	w = serve(f.router, http.MethodGet, "/api/v1/properties/1/favorite", nil, bearer(t, 7, "agent")...)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &resp)
	assert.False(t, resp.IsFavorited)
}
