package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	apierrors "github.com/stwalsh4118/hearth/api/internal/errors"
	"github.com/stwalsh4118/hearth/api/internal/logger"
	"github.com/stwalsh4118/hearth/api/internal/middleware"
)

const testSecret = "handler-test-secret"

// newTestRouter creates a router with the request id, logging and auth middleware.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger.Nop()))
	router.Use(middleware.Auth(testSecret))
	return router
}

// serve sends a request with an optional JSON body and records the response.
func serve(router *gin.Engine, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// bearer returns Authorization header arguments for serve.
func bearer(t *testing.T, userID int64, role string) []string {
	t.Helper()

	claims := middleware.Claims{
		UserID: userID,
		Email:  "user@example.com",
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return []string{"Authorization", "Bearer " + signed}
}

// decodeError reads the error envelope from a response.
func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorDetail {
	t.Helper()

	var resp apierrors.ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp.Error
}

// decode reads a JSON response body into out.
func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}
