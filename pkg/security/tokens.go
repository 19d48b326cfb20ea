package security

import (
	"errors"
	"fmt"
	"time"

	"playtube/video-api/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
)

// ErrTokenInvalid is returned for every verification failure. Expired,
// malformed and wrongly-signed tokens are deliberately indistinguishable
// to callers.
var ErrTokenInvalid = errors.New("token invalid or expired")

// AccessClaims ride in short-lived access tokens and carry enough identity
// to serve most requests without a user lookup.
type AccessClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Fullname string `json:"fullname"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the user ID. Refresh tokens live long, so they
// hold nothing worth replaying.
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// Tokens mints and verifies the access/refresh token pair. The two token
// kinds are signed with distinct secrets so they can be revoked independently.
type Tokens struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

func NewTokens() *Tokens {
	return &Tokens{
		AccessSecret:  []byte(viper.GetString("jwt.access_secret")),
		RefreshSecret: []byte(viper.GetString("jwt.refresh_secret")),
		AccessTTL:     viper.GetDuration("jwt.access_expiry"),
		RefreshTTL:    viper.GetDuration("jwt.refresh_expiry"),
	}
}

func (t *Tokens) MintAccessToken(u *model.User) (string, error) {
	claims := &AccessClaims{
		Email:    u.Email,
		Username: u.Username,
		Fullname: u.Fullname,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.AccessTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.AccessSecret)
}

func (t *Tokens) MintRefreshToken(u *model.User) (string, error) {
	claims := &RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(t.RefreshTTL)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.RefreshSecret)
}

// VerifyAccess parses and validates an access token and returns its claims.
func (t *Tokens) VerifyAccess(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := t.verify(token, claims, t.AccessSecret); err != nil {
		return nil, err
	}

	return claims, nil
}

// VerifyRefresh parses and validates a refresh token and returns the subject
// user ID.
func (t *Tokens) VerifyRefresh(token string) (string, error) {
	claims := &RefreshClaims{}
	if err := t.verify(token, claims, t.RefreshSecret); err != nil {
		return "", err
	}

	return claims.Subject, nil
}

func (t *Tokens) verify(token string, claims jwt.Claims, secret []byte) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(tk *jwt.Token) (any, error) {
		if tk.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", tk.Method.Alg())
		}

		return secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrTokenInvalid
	}

	return nil
}
