package api

import (
	"errors"
	"net/http"
	"strings"

	"playtube/video-api/internal/model"
	"playtube/video-api/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func (a *API) UserRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	username := strings.ToLower(strings.TrimSpace(c.PostForm("username")))
	email := strings.ToLower(strings.TrimSpace(c.PostForm("email")))
	fullname := strings.TrimSpace(c.PostForm("fullname"))
	password := c.PostForm("password")

	if fullname == "" {
		fail(c, http.StatusBadRequest, "Fullname field can't be empty")
		return
	}

	if err := validators.UsernameValidator(username); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.EmailValidator(email); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := validators.PasswordValidator(password); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var found bool

	r := a.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("username = ? OR email = ?", username, email).
		Find(&found)
	if r.Error != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to check if user is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if found {
		fail(c, http.StatusConflict, "A user with this username or email already exists")
		return
	}

	avatarFh, err := c.FormFile("avatar")
	if err != nil {
		fail(c, http.StatusBadRequest, "Avatar is required")
		return
	}

	code, avatarFile, avatarMime, err := validators.ImageValidator(avatarFh)
	if err != nil {
		if code == http.StatusInternalServerError {
			zap.L().Error("Failed to validate avatar", zap.Error(err), zap.String("requestID", requestID))
			err = errors.New("internal server error")
		}

		fail(c, code, err.Error())
		return
	}
	defer avatarFile.Close()

	avatarURL, avatarKey, err := a.Storage.Upload(c.Request.Context(), avatarFile, avatarFh.Size, avatarMime)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Avatar upload failed")

		zap.L().Error("Failed to upload avatar", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// The cover image is optional and its upload is best-effort. Registration
	// proceeds without one if anything goes wrong here.
	var coverURL, coverKey string

	if coverFh, err := c.FormFile("coverImage"); err == nil {
		code, coverFile, coverMime, err := validators.ImageValidator(coverFh)
		if err == nil {
			defer coverFile.Close()

			coverURL, coverKey, err = a.Storage.Upload(c.Request.Context(), coverFile, coverFh.Size, coverMime)
			if err != nil {
				zap.L().Warn("Failed to upload cover image", zap.Error(err), zap.String("requestID", requestID))
				coverURL, coverKey = "", ""
			}
		} else {
			zap.L().Debug("Invalid cover image ignored", zap.Error(err), zap.Int("code", code), zap.String("requestID", requestID))
		}
	}

	hash, err := a.Hash.GenerateFromPassword(password)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	user := model.User{
		ID:           userID,
		Username:     username,
		Email:        email,
		Fullname:     fullname,
		PasswordHash: hash,
		AvatarURL:    avatarURL,
		AvatarKey:    avatarKey,
		CoverURL:     coverURL,
		CoverKey:     coverKey,
	}

	if err := a.DB.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fail(c, http.StatusConflict, "A user with this username or email already exists")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusCreated, user.Public(), "User registered successfully")
}
