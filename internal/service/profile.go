package service

import (
	"errors"
	"strings"

	"playtube/video-api/internal/model"

	"gorm.io/gorm"
)

var ErrChannelNotFound = errors.New("channel not found")

// ChannelProfile is the public view of a user as a channel. The counts are a
// point-in-time read over the subscription edges, no transaction needed.
type ChannelProfile struct {
	ID                string `json:"id"`
	Username          string `json:"username"`
	Fullname          string `json:"fullname"`
	Email             string `json:"email"`
	AvatarURL         string `json:"avatar"`
	CoverURL          string `json:"coverImage,omitempty"`
	SubscribersCount  int64  `json:"subscribersCount"`
	SubscribedToCount int64  `json:"subscribedToCount"`
	IsSubscribed      bool   `json:"isSubscribed"`
}

// GetChannelProfile aggregates the channel view of username. viewerID may be
// empty for anonymous viewers, which always yields IsSubscribed=false.
func GetChannelProfile(db *gorm.DB, username, viewerID string) (*ChannelProfile, error) {
	var channel model.User

	err := db.Where("username = ?", strings.ToLower(strings.TrimSpace(username))).First(&channel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChannelNotFound
		}

		return nil, err
	}

	p := &ChannelProfile{
		ID:        channel.ID,
		Username:  channel.Username,
		Fullname:  channel.Fullname,
		Email:     channel.Email,
		AvatarURL: channel.AvatarURL,
		CoverURL:  channel.CoverURL,
	}

	err = db.Model(model.Subscription{}).
		Where("channel_id = ?", channel.ID).
		Count(&p.SubscribersCount).
		Error
	if err != nil {
		return nil, err
	}

	err = db.Model(model.Subscription{}).
		Where("subscriber_id = ?", channel.ID).
		Count(&p.SubscribedToCount).
		Error
	if err != nil {
		return nil, err
	}

	if viewerID != "" {
		var n int64
		err = db.Model(model.Subscription{}).
			Where("channel_id = ? AND subscriber_id = ?", channel.ID, viewerID).
			Count(&n).
			Error
		if err != nil {
			return nil, err
		}

		p.IsSubscribed = n > 0
	}

	return p, nil
}
