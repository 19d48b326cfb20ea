package api

import "github.com/gin-gonic/gin"

// Both token cookies are httpOnly and secure, always.
func (a *API) setAuthCookies(c *gin.Context, access, refresh string) {
	c.SetCookie("accessToken", access, int(a.Tokens.AccessTTL.Seconds()), "/", "", true, true)
	c.SetCookie("refreshToken", refresh, int(a.Tokens.RefreshTTL.Seconds()), "/", "", true, true)
}

func clearAuthCookies(c *gin.Context) {
	c.SetCookie("accessToken", "", -1, "/", "", true, true)
	c.SetCookie("refreshToken", "", -1, "/", "", true, true)
}
