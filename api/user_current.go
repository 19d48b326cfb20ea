package api

import (
	"net/http"

	"playtube/video-api/internal/model"

	"github.com/gin-gonic/gin"
)

func (a *API) UserCurrent(c *gin.Context) {
	user := c.MustGet("user").(*model.User)

	respond(c, http.StatusOK, user.Public(), "Current user fetched successfully")
}
