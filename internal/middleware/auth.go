package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stwalsh4118/hearth/api/internal/models"
)

const (
	claimsKey = "auth_claims"
	tokenKey  = "auth_token"
)

// Claims are the fields the listing backend puts in its access tokens.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IsAdmin reports whether the token carries the admin role.
func (c *Claims) IsAdmin() bool {
	return c != nil && c.Role == "admin"
}

// ErrMalformedAuthHeader is returned for an Authorization header that is not "Bearer <token>".
var ErrMalformedAuthHeader = errors.New("authorization header must be Bearer <token>")

// ParseToken verifies an HS256 token signed with secret and returns its claims.
func ParseToken(secret []byte, raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Auth verifies a bearer token when one is present. Requests without an
// Authorization header continue anonymously; an invalid token is rejected.
// The raw token is kept so handlers can forward it to the backend.
func Auth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", ErrMalformedAuthHeader.Error())
			return
		}
		raw = strings.TrimSpace(raw)

		claims, err := ParseToken(key, raw)
		if err != nil {
			if log := GetLogger(c); log != nil {
				log.Warn("Rejected bearer token", map[string]interface{}{
					"error": err.Error(),
					"path":  c.Request.URL.Path,
				})
			}
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
			return
		}

		c.Set(claimsKey, claims)
		c.Set(tokenKey, raw)
		c.Next()
	}
}

// RequireAuth rejects requests that did not present a valid token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetClaims(c) == nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		c.Next()
	}
}

// ProfileLookup fetches the caller's account from the upstream API.
type ProfileLookup func(ctx context.Context, token string) (*models.User, error)

// RequireAdmin rejects callers who are not admins. A token without a role
// claim is resolved through profile.
func RequireAdmin(profile ProfileLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
			return
		}
		if claims.IsAdmin() {
			c.Next()
			return
		}
		if claims.Role != "" || profile == nil {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			return
		}

		user, err := profile(c.Request.Context(), GetToken(c))
		if err != nil {
			if log := GetLogger(c); log != nil {
				log.Error("Admin profile lookup failed", err, map[string]interface{}{
					"user_id": claims.UserID,
					"path":    c.Request.URL.Path,
				})
			}
			abortWithError(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Could not verify admin access")
			return
		}
		if !user.IsAdmin() {
			abortWithError(c, http.StatusForbidden, "FORBIDDEN", "Admin access required")
			return
		}
		c.Next()
	}
}

// GetClaims returns the verified token claims, or nil for anonymous requests.
func GetClaims(c *gin.Context) *Claims {
	if v, exists := c.Get(claimsKey); exists {
		if claims, ok := v.(*Claims); ok {
			return claims
		}
	}
	return nil
}

// GetToken returns the verified raw bearer token, or "".
func GetToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
