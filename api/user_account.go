package api

import (
	"errors"
	"net/http"
	"strings"

	"playtube/video-api/internal/model"
	"playtube/video-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type updateAccountBody struct {
	Fullname string `json:"fullname"`
	Email    string `json:"email"`
}

func (a *API) UserUpdateAccount(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	user := c.MustGet("user").(*model.User)

	var data updateAccountBody
	if err := c.ShouldBind(&data); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")

		zap.L().Error("Can't bind request body", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	fullname := strings.TrimSpace(data.Fullname)
	email := strings.ToLower(strings.TrimSpace(data.Email))

	if fullname == "" {
		fail(c, http.StatusBadRequest, "Fullname field can't be empty")
		return
	}

	if err := validators.EmailValidator(email); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	if email != user.Email {
		var taken bool

		r := a.DB.Model(model.User{}).
			Select("count(*) > 0").
			Where("email = ? AND id != ?", email, user.ID).
			Find(&taken)
		if r.Error != nil {
			fail(c, http.StatusInternalServerError, "Internal server error")

			zap.L().Error("Failed to check email uniqueness", zap.Error(r.Error), zap.String("requestID", requestID))
			return
		}

		if taken {
			fail(c, http.StatusConflict, "This email is already registered")
			return
		}
	}

	user.Fullname = fullname
	user.Email = email

	err := a.DB.Model(user).Updates(map[string]any{
		"fullname": fullname,
		"email":    email,
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			fail(c, http.StatusConflict, "This email is already registered")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to update account", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, user.Public(), "Account details updated successfully")
}
