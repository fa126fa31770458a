package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/communityforum/backend/internal/models"
)

const identityKey = "identity"

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

// Identity extracts a verified user snapshot from a bearer token when one is
// present and stores it in the request context. The token is optional: the
// reference system trusts the client-supplied snapshot, so handlers fall
// back to the request body when no token was sent. A token that is present
// but invalid is rejected outright.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return jwtSecret(), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			return
		}

		c.Set(identityKey, models.UserSnapshot{
			UID:      claimString(claims, "uid"),
			UserName: claimString(claims, "userName"),
			Email:    claimString(claims, "email"),
			Photo:    claimString(claims, "photo"),
		})
		c.Next()
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}

// VerifiedUser returns the token-derived identity, if the request carried one.
func VerifiedUser(c *gin.Context) (models.UserSnapshot, bool) {
	raw, exists := c.Get(identityKey)
	if !exists {
		return models.UserSnapshot{}, false
	}
	user, ok := raw.(models.UserSnapshot)
	return user, ok
}

// ResolveUser prefers the verified identity over the client-supplied
// snapshot. The snapshot is still what gets denormalized onto records, but a
// verified token always wins as the authorization source.
func ResolveUser(c *gin.Context, fallback models.UserSnapshot) models.UserSnapshot {
	if user, ok := VerifiedUser(c); ok {
		return user
	}
	return fallback
}
