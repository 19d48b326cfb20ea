package api

import (
	"errors"
	"net/http"

	"playtube/video-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type refreshBody struct {
	RefreshToken string `json:"refreshToken"`
}

// UserRefresh rotates the token pair. The incoming refresh token must match
// the persisted slot exactly, which is what catches replayed tokens that were
// already rotated out.
func (a *API) UserRefresh(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	incoming, _ := c.Cookie("refreshToken")
	if incoming == "" {
		var data refreshBody
		if err := c.ShouldBind(&data); err == nil {
			incoming = data.RefreshToken
		}
	}

	if incoming == "" {
		fail(c, http.StatusUnauthorized, "Unauthorized request")
		return
	}

	userID, err := a.Tokens.VerifyRefresh(incoming)
	if err != nil {
		fail(c, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	var user model.User

	err = a.DB.Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusUnauthorized, "Invalid refresh token")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if user.RefreshToken == "" || user.RefreshToken != incoming {
		fail(c, http.StatusUnauthorized, "Refresh token is expired or already used")
		return
	}

	accessToken, err := a.Tokens.MintAccessToken(&user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to mint access token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	refreshToken, err := a.Tokens.MintRefreshToken(&user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to mint refresh token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.Model(&user).Update("refresh_token", refreshToken).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to persist refresh token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	a.setAuthCookies(c, accessToken, refreshToken)
	respond(c, http.StatusOK, gin.H{
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "Access token refreshed")
}
