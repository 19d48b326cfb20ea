package api

import (
	"errors"
	"net/http"
	"time"

	"playtube/video-api/internal/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VideoFetch returns a single published video, bumps its view counter and,
// for logged in viewers, appends a watch history entry.
func (a *API) VideoFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	viewerID := c.GetString("userID")

	videoID := c.Param("videoID")

	var video model.Video

	err := a.DB.Preload("Owner").Where("id = ?", videoID).First(&video).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			fail(c, http.StatusNotFound, "Video does not exist")
			return
		}

		fail(c, http.StatusInternalServerError, "Internal server error")

		zap.L().Error("Failed to look up video", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Unpublished videos stay invisible to everyone but their owner
	if !video.IsPublished && video.OwnerID != viewerID {
		fail(c, http.StatusNotFound, "Video does not exist")
		return
	}

	err = a.DB.Model(&video).
		UpdateColumn("views", gorm.Expr("views + 1")).
		Error
	if err != nil {
		zap.L().Warn("Failed to bump view counter", zap.Error(err), zap.String("requestID", requestID))
	} else {
		video.Views++
	}

	if viewerID != "" {
		err = a.DB.Create(&model.WatchEntry{
			UserID:    viewerID,
			VideoID:   video.ID,
			WatchedAt: time.Now(),
		}).Error
		if err != nil {
			zap.L().Warn("Failed to record watch history", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	respond(c, http.StatusOK, video.Public(), "Video fetched successfully")
}
