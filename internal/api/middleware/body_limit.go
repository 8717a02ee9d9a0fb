package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"turnout-deployment/pkg/response"
)

// BodyLimit 全局请求体大小限制中间件
// Content-Length 超限直接拒绝；未声明长度的请求由 MaxBytesReader 在读取时截断；maxBytes <= 0 表示不限制
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes <= 0 {
			c.Next()
			return
		}
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "请求体过大")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
