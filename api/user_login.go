package api

import (
	"errors"
	"net/http"
	"strings"

	"playtube/video-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type loginBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Cost-10 hash of nothing useful, compared against when the identifier
// doesn't resolve so that lookups take the same time either way.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (a *API) UserLogin(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data loginBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if data.Username == "" && data.Email == "" {
		fail(c, http.StatusBadRequest, "Username or email is required")
		return
	}

	if data.Password == "" {
		fail(c, http.StatusBadRequest, "Password field can't be empty")
		return
	}

	q := a.DB
	if data.Username != "" {
		q = q.Where("username = ?", strings.ToLower(strings.TrimSpace(data.Username)))
	} else {
		q = q.Where("email = ?", strings.ToLower(strings.TrimSpace(data.Email)))
	}

	var user model.User

	findErr := q.First(&user).Error
	if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to look up user", zap.Error(findErr), zap.String("requestID", requestID))
		return
	}

	hash := dummyHash
	if findErr == nil {
		hash = user.PasswordHash
	}

	ok, err := a.Hash.VerifyPasswd(data.Password, hash)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Same answer whether the identifier or the password was wrong
	if findErr != nil || !ok {
		fail(c, http.StatusUnauthorized, "Invalid user credentials")
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

	// Single slot per user, so logging in invalidates every earlier session
	err = a.DB.Model(&user).Update("refresh_token", refreshToken).Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to persist refresh token", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	a.setAuthCookies(c, accessToken, refreshToken)
	respond(c, http.StatusOK, gin.H{
		"user":         user.Public(),
		"accessToken":  accessToken,
		"refreshToken": refreshToken,
	}, "User logged in successfully")
}
