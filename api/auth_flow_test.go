package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"playtube/video-api/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRegister(t *testing.T) {
	a, storage := newTestAPI(t)

	w := registerUser(t, a, "alice")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	e := parseEnvelope(t, w)
	assert.True(t, e.Success)

	var data map[string]any
	require.NoError(t, json.Unmarshal(e.Data, &data))

	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "alice@example.com", data["email"])
	assert.Contains(t, data["avatar"], "https://cdn.test/")
	assert.NotContains(t, data, "password")
	assert.NotContains(t, data, "passwordHash")
	assert.NotContains(t, data, "refreshToken")

	// The stored hash must never equal the plaintext
	var user model.User
	require.NoError(t, a.DB.Where("username = ?", "alice").First(&user).Error)
	assert.NotEqual(t, "password123", user.PasswordHash)

	ok, err := a.Hash.VerifyPasswd("password123", user.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Len(t, storage.blobs, 1, "exactly the avatar was uploaded")
}

func TestUserRegisterNormalizesIdentity(t *testing.T) {
	a, _ := newTestAPI(t)

	buf, ct := registerForm(t, map[string]string{
		"username": "  MiXeD  ",
		"email":    "  MiXeD@Example.COM ",
		"fullname": "Mixed Case",
		"password": "password123",
	}, true, false)

	req, w := newUploadRequest(http.MethodPost, "/api/users", buf, ct)
	a.Router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var user model.User
	require.NoError(t, a.DB.Where("username = ?", "mixed").First(&user).Error)
	assert.Equal(t, "mixed@example.com", user.Email)
}

func TestUserRegisterDuplicate(t *testing.T) {
	a, _ := newTestAPI(t)

	require.Equal(t, http.StatusCreated, registerUser(t, a, "alice").Code)

	w := registerUser(t, a, "alice")
	assert.Equal(t, http.StatusConflict, w.Code)

	e := parseEnvelope(t, w)
	assert.False(t, e.Success)
	assert.NotNil(t, e.Errors)

	var n int64
	require.NoError(t, a.DB.Model(model.User{}).Count(&n).Error)
	assert.Equal(t, int64(1), n, "the duplicate must not create a second record")
}

func TestUserRegisterMissingAvatar(t *testing.T) {
	a, _ := newTestAPI(t)

	buf, ct := registerForm(t, map[string]string{
		"username": "bob",
		"email":    "bob@example.com",
		"fullname": "Bob Tester",
		"password": "password123",
	}, false, false)

	req, w := newUploadRequest(http.MethodPost, "/api/users", buf, ct)
	a.Router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserRegisterAvatarUploadFails(t *testing.T) {
	a, storage := newTestAPI(t)
	storage.failing = true

	w := registerUser(t, a, "alice")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var n int64
	require.NoError(t, a.DB.Model(model.User{}).Count(&n).Error)
	assert.Zero(t, n, "registration aborts when the avatar upload fails")
}

func TestUserLogin(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")

	w, cookies := loginUser(t, a, "alice", "password123")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	access := cookieByName(cookies, "accessToken")
	refresh := cookieByName(cookies, "refreshToken")
	require.NotNil(t, access)
	require.NotNil(t, refresh)

	assert.True(t, access.HttpOnly)
	assert.True(t, access.Secure)
	assert.True(t, refresh.HttpOnly)
	assert.True(t, refresh.Secure)

	e := parseEnvelope(t, w)

	var data struct {
		User         map[string]any `json:"user"`
		AccessToken  string         `json:"accessToken"`
		RefreshToken string         `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))

	assert.Equal(t, access.Value, data.AccessToken)
	assert.Equal(t, refresh.Value, data.RefreshToken)
	assert.Equal(t, "alice", data.User["username"])
	assert.NotContains(t, data.User, "refreshToken")
}

func TestUserLoginByEmail(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")

	w := doJSON(a, http.MethodPost, "/api/users/login", gin.H{
		"email":    "Alice@Example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUserLoginDoesNotLeakWhichFieldWasWrong(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")

	unknown := doJSON(a, http.MethodPost, "/api/users/login", gin.H{
		"username": "nobody",
		"password": "password123",
	})
	wrongPass := doJSON(a, http.MethodPost, "/api/users/login", gin.H{
		"username": "alice",
		"password": "wrong-password",
	})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPass.Code)
	assert.Equal(t, unknown.Body.String(), wrongPass.Body.String())
}

func TestUserLoginMissingFields(t *testing.T) {
	a, _ := newTestAPI(t)

	w := doJSON(a, http.MethodPost, "/api/users/login", gin.H{"password": "password123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(a, http.MethodPost, "/api/users/login", gin.H{"username": "alice"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUserCurrent(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	_, cookies := loginUser(t, a, "alice", "password123")

	w := doJSON(a, http.MethodGet, "/api/users/me", nil, cookieByName(cookies, "accessToken"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	e := parseEnvelope(t, w)

	var data map[string]any
	require.NoError(t, json.Unmarshal(e.Data, &data))

	assert.Equal(t, "alice", data["username"])
	assert.NotContains(t, data, "passwordHash")
	assert.NotContains(t, data, "refreshToken")
}

func TestUserCurrentUnauthorized(t *testing.T) {
	a, _ := newTestAPI(t)

	w := doJSON(a, http.MethodGet, "/api/users/me", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(a, http.MethodGet, "/api/users/me", nil, &http.Cookie{Name: "accessToken", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRotation(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	_, cookies := loginUser(t, a, "alice", "password123")

	original := cookieByName(cookies, "refreshToken")
	require.NotNil(t, original)

	// First refresh succeeds and rotates the slot
	w := doJSON(a, http.MethodPost, "/api/users/refresh", nil, original)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	rotated := cookieByName(w.Result().Cookies(), "refreshToken")
	require.NotNil(t, rotated)
	assert.NotEqual(t, original.Value, rotated.Value)

	// Replaying the rotated-out token fails
	w = doJSON(a, http.MethodPost, "/api/users/refresh", nil, original)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The fresh one keeps working
	w = doJSON(a, http.MethodPost, "/api/users/refresh", nil, rotated)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshFromBody(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	w, _ := loginUser(t, a, "alice", "password123")

	e := parseEnvelope(t, w)
	var data struct {
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(e.Data, &data))

	w = doJSON(a, http.MethodPost, "/api/users/refresh", gin.H{"refreshToken": data.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	a, _ := newTestAPI(t)

	// No token at all
	w := doJSON(a, http.MethodPost, "/api/users/refresh", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Not a JWT
	w = doJSON(a, http.MethodPost, "/api/users/refresh", nil, &http.Cookie{Name: "refreshToken", Value: "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid signature but the subject is gone
	ghost := model.User{ID: "ghost", Username: "ghost", Email: "g@example.com", Fullname: "Ghost", PasswordHash: "x", AvatarURL: "a"}
	token, err := a.Tokens.MintRefreshToken(&ghost)
	require.NoError(t, err)

	w = doJSON(a, http.MethodPost, "/api/users/refresh", nil, &http.Cookie{Name: "refreshToken", Value: token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRejectsUnpersistedToken(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	loginUser(t, a, "alice", "password123")

	var user model.User
	require.NoError(t, a.DB.Where("username = ?", "alice").First(&user).Error)

	// Signed correctly, but it's not the token in the slot
	stray, err := a.Tokens.MintRefreshToken(&user)
	require.NoError(t, err)
	require.NotEqual(t, user.RefreshToken, stray)

	w := doJSON(a, http.MethodPost, "/api/users/refresh", nil, &http.Cookie{Name: "refreshToken", Value: stray})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestConcurrentRefreshLeavesOneLiveSession(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	_, cookies := loginUser(t, a, "alice", "password123")
	original := cookieByName(cookies, "refreshToken")

	results := make(chan *http.Response, 2)
	for range 2 {
		go func() {
			w := doJSON(a, http.MethodPost, "/api/users/refresh", nil, original)
			results <- w.Result()
		}()
	}

	var winners []string
	for range 2 {
		res := <-results
		if res.StatusCode == http.StatusOK {
			if c := cookieByName(res.Cookies(), "refreshToken"); c != nil {
				winners = append(winners, c.Value)
			}
		}
	}

	require.NotEmpty(t, winners, "at least one refresh must win the race")

	// The slot is last-write-wins: whatever happened, exactly one of the
	// handed-out tokens is live and the original is dead
	var user model.User
	require.NoError(t, a.DB.Where("username = ?", "alice").First(&user).Error)
	assert.Contains(t, winners, user.RefreshToken)
	assert.NotEqual(t, original.Value, user.RefreshToken)

	w := doJSON(a, http.MethodPost, "/api/users/refresh", nil, original)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "the stale token stays dead")
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	_, cookies := loginUser(t, a, "alice", "password123")

	access := cookieByName(cookies, "accessToken")
	refresh := cookieByName(cookies, "refreshToken")

	w := doJSON(a, http.MethodPost, "/api/users/logout", nil, access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Logout is idempotent
	w = doJSON(a, http.MethodPost, "/api/users/logout", nil, access)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(a, http.MethodPost, "/api/users/refresh", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChangePassword(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	_, cookies := loginUser(t, a, "alice", "password123")
	access := cookieByName(cookies, "accessToken")

	var before model.User
	require.NoError(t, a.DB.Where("username = ?", "alice").First(&before).Error)

	// Wrong old password leaves the hash untouched
	w := doJSON(a, http.MethodPost, "/api/users/password", gin.H{
		"oldPassword": "wrong-password",
		"newPassword": "newpassword123",
	}, access)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var after model.User
	require.NoError(t, a.DB.Where("username = ?", "alice").First(&after).Error)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)

	// Correct old password re-hashes
	w = doJSON(a, http.MethodPost, "/api/users/password", gin.H{
		"oldPassword": "password123",
		"newPassword": "newpassword123",
	}, access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	lw, _ := loginUser(t, a, "alice", "password123")
	assert.Equal(t, http.StatusUnauthorized, lw.Code)

	lw, _ = loginUser(t, a, "alice", "newpassword123")
	assert.Equal(t, http.StatusOK, lw.Code)
}

func TestChangePasswordKeepsSessionAlive(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	_, cookies := loginUser(t, a, "alice", "password123")
	access := cookieByName(cookies, "accessToken")
	refresh := cookieByName(cookies, "refreshToken")

	w := doJSON(a, http.MethodPost, "/api/users/password", gin.H{
		"oldPassword": "password123",
		"newPassword": "newpassword123",
	}, access)
	require.Equal(t, http.StatusOK, w.Code)

	// The refresh slot survives a password change
	w = doJSON(a, http.MethodPost, "/api/users/refresh", nil, refresh)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateAccount(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	registerUser(t, a, "bob")
	_, cookies := loginUser(t, a, "alice", "password123")
	access := cookieByName(cookies, "accessToken")

	// Both fields are required
	w := doJSON(a, http.MethodPatch, "/api/users", gin.H{"fullname": "Alice Renamed"}, access)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(a, http.MethodPatch, "/api/users", gin.H{"email": "alice2@example.com"}, access)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Someone else's email is a conflict
	w = doJSON(a, http.MethodPatch, "/api/users", gin.H{
		"fullname": "Alice Renamed",
		"email":    "bob@example.com",
	}, access)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(a, http.MethodPatch, "/api/users", gin.H{
		"fullname": "Alice Renamed",
		"email":    "alice2@example.com",
	}, access)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var user model.User
	require.NoError(t, a.DB.Where("username = ?", "alice").First(&user).Error)
	assert.Equal(t, "Alice Renamed", user.Fullname)
	assert.Equal(t, "alice2@example.com", user.Email)
}

func TestValidateEndpoint(t *testing.T) {
	a, _ := newTestAPI(t)
	registerUser(t, a, "alice")
	_, cookies := loginUser(t, a, "alice", "password123")

	w := doJSON(a, http.MethodHead, "/api/validate", nil, cookieByName(cookies, "accessToken"))
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(a, http.MethodHead, "/api/validate", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
