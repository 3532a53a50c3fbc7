// Package httpx provides helper functions for writing portal responses.
package httpx

import (
	"github.com/gin-gonic/gin"

	"github.com/kylejryan/artisan-request-portal/internal/api"
)

// JSON writes v with the given status code.
func JSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

// Success writes a success notice.
func Success(c *gin.Context, status int, msg string) {
	JSON(c, status, api.Notice{Success: true, Level: api.LevelSuccess, Message: msg})
}

// Error writes an error notice and stops the handler chain.
func Error(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, api.Notice{Level: api.LevelError, Message: msg})
}

// Redirect writes an error notice pointing the client at another view.
func Redirect(c *gin.Context, status int, msg, to string) {
	c.AbortWithStatusJSON(status, api.Notice{Level: api.LevelError, Message: msg, Redirect: to})
}
