package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"playtube/video-api/internal/model"
	"playtube/video-api/pkg/security"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// memStorage is an in-memory stand-in for the R2 blob store.
type memStorage struct {
	mu      sync.Mutex
	n       int
	blobs   map[string][]byte
	deleted []string
	failing bool
}

func newMemStorage() *memStorage {
	return &memStorage{blobs: map[string][]byte{}}
}

func (m *memStorage) Upload(_ context.Context, r io.Reader, _ int64, contentType string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing {
		return "", "", fmt.Errorf("storage is down")
	}

	b, err := io.ReadAll(r)
	if err != nil {
		return "", "", err
	}

	m.n++
	key := fmt.Sprintf("blob-%d", m.n)
	m.blobs[key] = b

	return "https://cdn.test/" + key, key, nil
}

func (m *memStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.blobs, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func newTestAPI(t *testing.T) (*API, *memStorage) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	viper.Set("upload.max_size", int64(8<<20))

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(model.User{}, model.Video{}, model.Subscription{}, model.WatchEntry{}))

	storage := newMemStorage()

	a := &API{
		DB:   db,
		Hash: security.NewPasswordHash(),
		Tokens: &security.Tokens{
			AccessSecret:  []byte("access-secret-for-tests"),
			RefreshSecret: []byte("refresh-secret-for-tests"),
			AccessTTL:     time.Hour,
			RefreshTTL:    time.Hour * 24,
		},
		Storage: storage,
	}
	a.setupRoutes()

	return a, storage
}

// Small but real enough for mimetype to call it a PNG.
var pngBytes = append([]byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}, make([]byte, 64)...)

func imagePartHeader(field, filename string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	h.Set("Content-Type", "image/png")
	return h
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
	Errors     []string        `json:"errors"`
}

func doJSON(a *API, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		r = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var e envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &e), "body: %s", w.Body.String())
	return e
}

func registerForm(t *testing.T, fields map[string]string, withAvatar, withCover bool) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	if withAvatar {
		fw, err := mw.CreatePart(imagePartHeader("avatar", "avatar.png"))
		require.NoError(t, err)
		fw.Write(pngBytes)
	}

	if withCover {
		fw, err := mw.CreatePart(imagePartHeader("coverImage", "cover.png"))
		require.NoError(t, err)
		fw.Write(pngBytes)
	}

	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func textFileForm(t *testing.T, field, content string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	fw, err := mw.CreateFormFile(field, "notes.txt")
	require.NoError(t, err)
	io.WriteString(fw, content)

	require.NoError(t, mw.Close())
	return buf, mw.FormDataContentType()
}

func newUploadRequest(method, path string, body *bytes.Buffer, contentType string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", contentType)
	return req, httptest.NewRecorder()
}

func registerUser(t *testing.T, a *API, username string) *httptest.ResponseRecorder {
	t.Helper()

	buf, ct := registerForm(t, map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"fullname": strings.ToUpper(username[:1]) + username[1:] + " Tester",
		"password": "password123",
	}, true, false)

	req := httptest.NewRequest(http.MethodPost, "/api/users", buf)
	req.Header.Set("Content-Type", ct)

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)
	return w
}

func loginUser(t *testing.T, a *API, username, password string) (*httptest.ResponseRecorder, []*http.Cookie) {
	t.Helper()

	w := doJSON(a, http.MethodPost, "/api/users/login", gin.H{
		"username": username,
		"password": password,
	})

	return w, w.Result().Cookies()
}

func cookieByName(cookies []*http.Cookie, name string) *http.Cookie {
	for _, c := range cookies {
		if c.Name == name {
			return c
		}
	}
	return nil
}
