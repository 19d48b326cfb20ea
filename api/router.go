// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"playtube/video-api/cloudflare"
	"playtube/video-api/db"
	"playtube/video-api/internal/service"
	"playtube/video-api/pkg/middleware"
	"playtube/video-api/pkg/security"

	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

type API struct {
	DB      *gorm.DB
	Router  *gin.Engine
	Hash    *security.PasswordHash
	Tokens  *security.Tokens
	Storage service.Storage
}

func NewRouter() (*API, error) {
	a := &API{
		Hash:   security.NewPasswordHash(),
		Tokens: security.NewTokens(),
	}

	db, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger()

	r2, err := cloudflare.NewR2()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize R2 client, %w", err)
	}
	a.Storage = service.NewR2Storage(r2)

	a.setupRoutes()

	return a, nil
}

func (a *API) setupRoutes() {
	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	auth := middleware.NewAuthMiddleware(a.DB, a.Tokens)
	viewer := middleware.NewOptionalAuthMiddleware(a.DB, a.Tokens)

	jsonBody := middleware.BodySizeLimiter(1 << 20)
	uploadBody := middleware.BodySizeLimiter(viper.GetInt64("upload.max_size") * 2)

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates an access token
		main.HEAD("/validate", auth, a.Validate)
	}

	users := main.Group("/users")
	{
		// POST /api/users		-> Registers a new user (multipart, avatar required)
		users.POST("", uploadBody, a.UserRegister)

		// POST /api/users/login	-> Logs in a user and sets the token cookies
		users.POST("/login", jsonBody, a.UserLogin)

		// POST /api/users/logout	-> Clears the session and cookies
		users.POST("/logout", jsonBody, auth, a.UserLogout)

		// POST /api/users/refresh	-> Rotates the refresh token pair
		users.POST("/refresh", jsonBody, a.UserRefresh)

		// POST /api/users/password	-> Changes the current user's password
		users.POST("/password", jsonBody, auth, a.UserChangePassword)

		// GET /api/users/me		-> Returns the logged in user
		users.GET("/me", auth, a.UserCurrent)

		// PATCH /api/users		-> Updates fullname and email
		users.PATCH("", jsonBody, auth, a.UserUpdateAccount)

		// PATCH /api/users/avatar	-> Replaces the avatar image
		users.PATCH("/avatar", uploadBody, auth, a.UserUpdateAvatar)

		// PATCH /api/users/cover	-> Replaces the cover image
		users.PATCH("/cover", uploadBody, auth, a.UserUpdateCover)

		// GET /api/users/history	-> Returns the watch history, newest first
		users.GET("/history", auth, a.UserWatchHistory)
	}

	channels := main.Group("/channels")
	{
		// GET /api/channels/:username	-> Public channel profile with subscriber counts
		channels.GET("/:username", viewer, a.ChannelProfile)

		// POST /api/channels/:username/subscribe -> Toggles a subscription
		channels.POST("/:username/subscribe", auth, a.ChannelSubscribe)
	}

	videos := main.Group("/videos")
	{
		// GET /api/videos/:videoID	-> Fetches a published video, counts the view
		videos.GET("/:videoID", viewer, a.VideoFetch)
	}
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	if lvl, err := zapcore.ParseLevel(viper.GetString("app.log_level")); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}
