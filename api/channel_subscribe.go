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

// ChannelSubscribe toggles the subscription edge between the logged in user
// and the channel. Subscribing to yourself is rejected.
func (a *API) ChannelSubscribe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	username := strings.ToLower(strings.TrimSpace(c.Param("username")))
	if username == "" {
		fail(c, http.StatusBadRequest, "Username can't be empty")
		return
	}

	var channel model.User

	err := a.DB.Where("username = ?", username).First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Channel does not exist")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to look up channel", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if channel.ID == userID {
		fail(c, http.StatusBadRequest, "You can't subscribe to your own channel")
		return
	}

	r := a.DB.
		Where("subscriber_id = ? AND channel_id = ?", userID, channel.ID).
		Delete(&model.Subscription{})
	if r.Error != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to toggle subscription", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	subscribed := false

	if r.RowsAffected == 0 {
		err = a.DB.Create(&model.Subscription{
			SubscriberID: userID,
			ChannelID:    channel.ID,
		}).Error
		if err != nil {
			// A concurrent toggle beat us to it, treat it as subscribed
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				fail(c, http.StatusInternalServerError, "Internal server error")

				zap.L().Error("Failed to create subscription", zap.Error(err), zap.String("requestID", requestID))
				return
			}
		}

		subscribed = true
	}

	respond(c, http.StatusOK, gin.H{"subscribed": subscribed}, "Subscription toggled")
}
