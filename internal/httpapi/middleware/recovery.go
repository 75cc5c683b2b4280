package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/suPer8Hu/wyr-platform/internal/common"
)

// Recovery turns a panic into a 500 error envelope and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("[panic] request_id=%s method=%s path=%s err=%v\n%s",
					c.GetString(RequestIDKey), c.Request.Method, c.Request.URL.Path, rec, debug.Stack())
				common.AbortFail(c, http.StatusInternalServerError, 50000, "internal error")
			}
		}()
		c.Next()
	}
}
