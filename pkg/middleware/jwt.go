package middleware

import (
	"net/http"
	"strings"

	"playtube/video-api/internal/model"
	"playtube/video-api/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewAuthMiddleware verifies the access token from the accessToken cookie or
// the Authorization header and loads the user behind it. Requests without a
// valid token are rejected with 401.
func NewAuthMiddleware(db *gorm.DB, tokens *security.Tokens) gin.HandlerFunc {
	return authMiddleware(db, tokens, true)
}

// NewOptionalAuthMiddleware resolves the viewer if a valid access token is
// present but lets anonymous requests through. Used on public endpoints whose
// response depends on who is looking.
func NewOptionalAuthMiddleware(db *gorm.DB, tokens *security.Tokens) gin.HandlerFunc {
	return authMiddleware(db, tokens, false)
}

func authMiddleware(db *gorm.DB, tokens *security.Tokens, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			if cookie, err := c.Cookie("accessToken"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			if !required {
				c.Next()
				return
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"statusCode": http.StatusUnauthorized,
				"message":    "Unauthorized request",
				"success":    false,
				"errors":     []string{},
			})
			return
		}

		claims, err := tokens.VerifyAccess(tokenStr)
		if err != nil {
			if !required {
				c.Next()
				return
			}

			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"statusCode": http.StatusUnauthorized,
				"message":    "Invalid access token",
				"success":    false,
				"errors":     []string{},
			})
			return
		}

		var user model.User

		err = db.Where("id = ?", claims.Subject).First(&user).Error
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				// Token outlived its account
				if !required {
					c.Next()
					return
				}

				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"statusCode": http.StatusUnauthorized,
					"message":    "Invalid access token",
					"success":    false,
					"errors":     []string{},
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"statusCode": http.StatusInternalServerError,
				"message":    "Internal server error",
				"success":    false,
				"errors":     []string{},
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		c.Set("userID", user.ID)
		c.Set("user", &user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}

	return ""
}
