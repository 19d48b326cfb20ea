package model

import "time"

// Subscription is a directed edge: SubscriberID follows ChannelID. The
// composite unique index keeps the edge set a proper set.
type Subscription struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	SubscriberID string `gorm:"uniqueIndex:idx_sub_edge;index;not null"`
	ChannelID    string `gorm:"uniqueIndex:idx_sub_edge;index;not null"`
	CreatedAt    time.Time
}
