package model

import "time"

type Video struct {
	ID          string `gorm:"primaryKey"`
	OwnerID     string `gorm:"index;not null"`
	VideoURL    string `gorm:"not null"`
	ThumbURL    string `gorm:"not null"`
	Title       string `gorm:"index;not null"`
	Description string
	Duration    float64
	Views       int64 `gorm:"default:0"`
	IsPublished bool  `gorm:"default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Owner User `gorm:"foreignKey:OwnerID"`
}

type PublicVideo struct {
	ID          string    `json:"id"`
	VideoURL    string    `json:"videoFile"`
	ThumbURL    string    `json:"thumbnail"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	CreatedAt   time.Time `json:"createdAt"`

	OwnerID       string `json:"ownerId"`
	OwnerUsername string `json:"ownerUsername,omitempty"`
	OwnerAvatar   string `json:"ownerAvatar,omitempty"`
}

func (v *Video) Public() PublicVideo {
	return PublicVideo{
		ID:            v.ID,
		VideoURL:      v.VideoURL,
		ThumbURL:      v.ThumbURL,
		Title:         v.Title,
		Description:   v.Description,
		Duration:      v.Duration,
		Views:         v.Views,
		CreatedAt:     v.CreatedAt,
		OwnerID:       v.OwnerID,
		OwnerUsername: v.Owner.Username,
		OwnerAvatar:   v.Owner.AvatarURL,
	}
}
