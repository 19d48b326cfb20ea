package api

import (
	"errors"
	"net/http"

	"playtube/video-api/internal/model"
	"playtube/video-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type changePasswordBody struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// UserChangePassword re-hashes and stores a new password after verifying the
// old one. The refresh token slot is left alone on purpose: changing the
// password does not end the current session.
func (a *API) UserChangePassword(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data changePasswordBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.OldPassword == "" {
		fail(c, http.StatusBadRequest, "Old password field can't be empty")
		return
	}

	if err := validators.PasswordValidator(data.NewPassword); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var user model.User

	err := a.DB.Where("id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "User not found")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := a.Hash.VerifyPasswd(data.OldPassword, user.PasswordHash)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		fail(c, http.StatusUnauthorized, "Old password is incorrect")
		return
	}

	hash, err := a.Hash.GenerateFromPassword(data.NewPassword)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.Model(&user).Update("password_hash", hash).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to persist password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, nil, "Password changed successfully")
}
