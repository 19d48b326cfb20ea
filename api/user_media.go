package api

import (
	"errors"
	"net/http"

	"playtube/video-api/internal/model"
	"playtube/video-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) UserUpdateAvatar(c *gin.Context) {
	a.updateImage(c, "avatar", true)
}

func (a *API) UserUpdateCover(c *gin.Context) {
	a.updateImage(c, "coverImage", false)
}

// updateImage uploads a replacement avatar or cover, points the user record
// at it and then tries to delete the superseded blob. That deletion is
// best-effort: a leaked blob beats a broken profile.
func (a *API) updateImage(c *gin.Context, field string, avatar bool) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	fh, err := c.FormFile(field)
	if err != nil {
		fail(c, http.StatusBadRequest, "No "+field+" file provided")
		return
	}

	code, f, mime, err := validators.ImageValidator(fh)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate image", zap.Error(err), zap.String("requestID", requestID))
			err = errors.New("internal server error")
		}

		fail(c, code, err.Error())
		return
	}
	defer f.Close()

	url, key, err := a.Storage.Upload(c.Request.Context(), f, fh.Size, mime)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Image upload failed")

		zap.L().Error("Failed to upload image", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	var oldKey string
	updates := map[string]any{}

	if avatar {
		oldKey = user.AvatarKey
		user.AvatarURL, user.AvatarKey = url, key
		updates["avatar_url"], updates["avatar_key"] = url, key
	} else {
		oldKey = user.CoverKey
		user.CoverURL, user.CoverKey = url, key
		updates["cover_url"], updates["cover_key"] = url, key
	}

	if err := a.DB.Model(user).Updates(updates).Error; err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to update user image", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if oldKey != "" {
		if err := a.Storage.Delete(c.Request.Context(), oldKey); err != nil {
			zap.L().Warn("Failed to delete replaced image", zap.Error(err), zap.String("key", oldKey), zap.String("requestID", requestID))
		}
	}

	respond(c, http.StatusOK, user.Public(), "Image updated successfully")
}
