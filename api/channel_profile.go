package api

import (
	"errors"
	"net/http"
	"strings"

	"playtube/video-api/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) ChannelProfile(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		fail(c, http.StatusBadRequest, "Username can't be empty")
		return
	}

	// Empty for anonymous viewers
	viewerID := c.GetString("userID")

	profile, err := service.GetChannelProfile(a.DB, username, viewerID)
	if err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			fail(c, http.StatusNotFound, "Channel does not exist")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to aggregate channel profile", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	respond(c, http.StatusOK, profile, "Channel profile fetched successfully")
}
