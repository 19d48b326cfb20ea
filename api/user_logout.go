package api

import (
	"net/http"

	"playtube/video-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserLogout clears the persisted refresh token and both cookies. Calling it
// twice is harmless.
func (a *API) UserLogout(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	err := a.DB.Model(model.User{}).
		Where("id = ?", userID).
		Update("refresh_token", "").
		Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to clear refresh token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	clearAuthCookies(c)
	respond(c, http.StatusOK, nil, "User logged out successfully")
}
