package middleware

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mountain-community/backend/internal/models"
)

// UserKey is the context key the auth middlewares store the loaded user under.
const UserKey = "current_user"

const tokenLifetime = 8 * 24 * time.Hour

var jwtSecret = []byte(os.Getenv("JWT_SECRET"))

// GenerateToken issues an HS256 bearer token for the user.
func GenerateToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  fmt.Sprintf("%d", user.ID),
		"role": user.Role,
		"jti":  uuid.NewString(),
		"exp":  time.Now().Add(tokenLifetime).Unix(),
	})
	return token.SignedString(jwtSecret)
}

func parseToken(tokenString string) (int, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, fmt.Errorf("invalid token subject")
	}
	var userID int
	if _, err := fmt.Sscanf(sub, "%d", &userID); err != nil {
		return 0, fmt.Errorf("invalid token subject")
	}
	return userID, nil
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// RequireAuth rejects the request with 401 unless a valid bearer token names
// an existing user. The loaded user is stored in the context.
func RequireAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or malformed token"})
			return
		}
		userID, err := parseToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User no longer exists"})
			return
		}
		c.Set(UserKey, &user)
		c.Next()
	}
}

// OptionalAuth loads the user when a valid token is present and otherwise
// leaves the request anonymous. Read endpoints use it so moderators see
// hidden content on the same routes.
func OptionalAuth(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := bearerToken(c); tokenString != "" {
			if userID, err := parseToken(tokenString); err == nil {
				var user models.User
				if err := db.First(&user, userID).Error; err == nil {
					c.Set(UserKey, &user)
				}
			}
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user holds one of the
// given roles. Must run after RequireAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Not enough permissions"})
	}
}

// RequireActive blocks suspended accounts from mutating endpoints. An expired
// suspension is lifted on first use.
func RequireActive(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		if user.Status == models.StatusSuspended {
			if user.SuspendedUntil != nil && time.Now().After(*user.SuspendedUntil) {
				db.Model(user).Updates(map[string]interface{}{
					"status":          models.StatusActive,
					"suspended_until": nil,
				})
				user.Status = models.StatusActive
				user.SuspendedUntil = nil
			} else {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Account is suspended"})
				return
			}
		}
		c.Next()
	}
}

// CurrentUser returns the user loaded by RequireAuth/OptionalAuth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	raw, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := raw.(*models.User)
	return user, ok
}

// IsStaff reports whether the request carries a moderator or admin.
func IsStaff(c *gin.Context) bool {
	user, ok := CurrentUser(c)
	return ok && user.IsStaff()
}
