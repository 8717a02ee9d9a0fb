package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"turnout-deployment/internal/service"
	"turnout-deployment/pkg/response"
)

// sessionKey 与 middleware.SessionKey 保持一致
const sessionKey = "session"

// MustGetSession 从 Gin 上下文中安全提取当前编辑会话。
// 如果会话中间件未正确注入，返回 false 并写入 500 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetSession(c *gin.Context) (*service.Session, bool) {
	v, exists := c.Get(sessionKey)
	if !exists {
		response.Error(c, http.StatusInternalServerError, 10006, "会话未初始化")
		return nil, false
	}
	sess, ok := v.(*service.Session)
	if !ok || sess == nil {
		response.Error(c, http.StatusInternalServerError, 10006, "会话未初始化")
		return nil, false
	}
	return sess, true
}
