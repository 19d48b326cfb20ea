package api

import (
	"net/http"

	"playtube/video-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) UserWatchHistory(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var entries []model.WatchEntry

	err := a.DB.
		Preload("Video").
		Preload("Video.Owner").
		Where("user_id = ?", userID).
		Order("watched_at desc").
		Limit(50).
		Find(&entries).
		Error
	if err != nil {
		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to fetch watch history", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	videos := make([]model.PublicVideo, 0, len(entries))
	for _, e := range entries {
		videos = append(videos, e.Video.Public())
	}

	respond(c, http.StatusOK, videos, "Watch history fetched successfully")
}
