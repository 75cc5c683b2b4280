package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes the success envelope.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    0,
		"message": "ok",
		"data":    data,
	})
}

// Accepted is OK with a 202 status, used for queued work.
func Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, gin.H{
		"code":    0,
		"message": "accepted",
		"data":    data,
	})
}

func Fail(c *gin.Context, httpStatus int, code int, msg string) {
	c.JSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}

// AbortFail writes the error envelope and stops the handler chain.
func AbortFail(c *gin.Context, httpStatus int, code int, msg string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
		"data":    nil,
	})
}
