package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(time.Hour))
	}
	raw, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return raw
}

func authRouter(extra ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Auth(testSecret))
	handlers := append(extra, func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.JSON(http.StatusOK, gin.H{"anonymous": true})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": claims.UserID, "role": claims.Role, "token": GetToken(c)})
	})
	router.GET("/test", handlers...)
	return router
}

func doAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuth_AnonymousPassesThrough(t *testing.T) {
	w := doAuth(authRouter(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"anonymous":true}`, w.Body.String())
}

func TestAuth_ValidTokenSetsClaims(t *testing.T) {
	raw := signToken(t, testSecret, jwt.SigningMethodHS256, Claims{UserID: 7, Role: "user"})

	w := doAuth(authRouter(), "Bearer "+raw)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":7`)
	assert.Contains(t, w.Body.String(), raw)
}

func TestAuth_RejectsBadTokens(t *testing.T) {
	expired := signToken(t, testSecret, jwt.SigningMethodHS256, Claims{
		UserID:           1,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	wrongKey := signToken(t, "other-secret", jwt.SigningMethodHS256, Claims{UserID: 1})
	wrongAlg := signToken(t, testSecret, jwt.SigningMethodHS512, Claims{UserID: 1})

	tests := []struct {
		name   string
		header string
	}{
		{name: "not bearer", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer "},
		{name: "garbage", header: "Bearer not-a-jwt"},
		{name: "expired", header: "Bearer " + expired},
		{name: "wrong key", header: "Bearer " + wrongKey},
		{name: "wrong algorithm", header: "Bearer " + wrongAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doAuth(authRouter(), tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
		})
	}
}

func TestRequireAuth(t *testing.T) {
	router := authRouter(RequireAuth())

	assert.Equal(t, http.StatusUnauthorized, doAuth(router, "").Code)

	raw := signToken(t, testSecret, jwt.SigningMethodHS256, Claims{UserID: 3})
	assert.Equal(t, http.StatusOK, doAuth(router, "Bearer "+raw).Code)
}

func TestRequireAdmin(t *testing.T) {
	router := authRouter(RequireAdmin(nil))
	user := signToken(t, testSecret, jwt.SigningMethodHS256, Claims{UserID: 3, Role: "user"})
	admin := signToken(t, testSecret, jwt.SigningMethodHS256, Claims{UserID: 1, Role: "admin"})
	roleless := signToken(t, testSecret, jwt.SigningMethodHS256, Claims{UserID: 1})

	assert.Equal(t, http.StatusUnauthorized, doAuth(router, "").Code)

	w := doAuth(router, "Bearer "+user)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Admin access required")

	assert.Equal(t, http.StatusOK, doAuth(router, "Bearer "+admin).Code)
	assert.Equal(t, http.StatusForbidden, doAuth(router, "Bearer "+roleless).Code)
}

func TestRequireAdmin_RolelessTokenUsesProfile(t *testing.T) {
	roleless := signToken(t, testSecret, jwt.SigningMethodHS256, Claims{UserID: 1})

	tests := []struct {
		name   string
		user   *models.User
		err    error
		status int
	}{
		{name: "profile is admin", user: &models.User{ID: 1, Role: models.RoleAdmin}, status: http.StatusOK},
		{name: "profile is agent", user: &models.User{ID: 1, Role: "agent"}, status: http.StatusForbidden},
		{name: "profile lookup fails", err: errors.New("connection refused"), status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotToken string
			lookup := func(ctx context.Context, token string) (*models.User, error) {
				gotToken = token
				return tt.user, tt.err
			}

			w := doAuth(authRouter(RequireAdmin(lookup)), "Bearer "+roleless)

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, roleless, gotToken)
		})
	}
}

func TestRequireAdmin_RoleClaimSkipsProfile(t *testing.T) {
	calls := 0
	lookup := func(ctx context.Context, token string) (*models.User, error) {
		calls++
		return &models.User{Role: models.RoleAdmin}, nil
	}
	router := authRouter(RequireAdmin(lookup))
	admin := signToken(t, testSecret, jwt.SigningMethodHS256, Claims{UserID: 1, Role: "admin"})
	user := signToken(t, testSecret, jwt.SigningMethodHS256, Claims{UserID: 3, Role: "user"})

	assert.Equal(t, http.StatusOK, doAuth(router, "Bearer "+admin).Code)
	assert.Equal(t, http.StatusForbidden, doAuth(router, "Bearer "+user).Code)
	assert.Equal(t, http.StatusUnauthorized, doAuth(router, "").Code)
	assert.Zero(t, calls)
}

func TestClaims_IsAdminNilSafe(t *testing.T) {
	var c *Claims
	assert.False(t, c.IsAdmin())
}
