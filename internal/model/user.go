package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	Fullname     string `gorm:"index;not null"`
	PasswordHash string `gorm:"not null"`

	AvatarURL string `gorm:"not null"`
	AvatarKey string
	CoverURL  string
	CoverKey  string

	// RefreshToken is the single live refresh token for this user. Rotation
	// overwrites it, logout clears it. Anything else stored here is stale.
	RefreshToken string

	CreatedAt time.Time
	UpdatedAt time.Time

	Videos       []Video      `gorm:"foreignKey:OwnerID"`
	WatchHistory []WatchEntry `gorm:"foreignKey:UserID"`
}

// PublicUser is the only shape of a user that ever leaves the API. The
// password hash and refresh token stay server-side.
type PublicUser struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Fullname  string    `json:"fullname"`
	AvatarURL string    `json:"avatar"`
	CoverURL  string    `json:"coverImage,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Fullname:  u.Fullname,
		AvatarURL: u.AvatarURL,
		CoverURL:  u.CoverURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
