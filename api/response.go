package api

import "github.com/gin-gonic/gin"

// Response is the uniform success envelope every endpoint replies with.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func respond(c *gin.Context, code int, data any, message string) {
	c.JSON(code, Response{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    true,
	})
}

func fail(c *gin.Context, code int, message string, errs ...string) {
	if errs == nil {
		errs = []string{}
	}

	c.AbortWithStatusJSON(code, ErrorResponse{
		StatusCode: code,
		Message:    message,
		Success:    false,
		Errors:     errs,
	})
}
