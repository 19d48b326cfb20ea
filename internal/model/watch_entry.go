package model

import "time"

// WatchEntry records one view of a video by a user. History is ordered by
// WatchedAt, newest first.
type WatchEntry struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	UserID    string `gorm:"index;not null"`
	VideoID   string `gorm:"not null"`
	WatchedAt time.Time

	Video Video `gorm:"foreignKey:VideoID"`
}
