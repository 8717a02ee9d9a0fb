package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnout-deployment/config"
	"turnout-deployment/internal/service"
)

// SessionKey 当前编辑会话在 gin.Context 中的键
const SessionKey = "session"

// Session 编辑会话中间件
// 从 Cookie 读取会话 ID；缺失或已过期时新建会话（从持久层加载草稿）并下发 Cookie。
// 新建时持久层不可用不阻断请求，会话以空草稿开始。
// 注册表容量由 session.max_sessions 限制，忽略 Cookie 的客户端只会挤掉最久未活跃的会话。
func Session(sessions service.SessionService, cfg *config.SessionConfig, logger *zap.Logger) gin.HandlerFunc {
	maxAge := int(cfg.IdleTTL.Seconds())

	return func(c *gin.Context) {
		if id, err := c.Cookie(cfg.CookieName); err == nil && id != "" {
			if sess, ok := sessions.Get(id); ok {
				c.Set(SessionKey, sess)
				c.Next()
				return
			}
		}

		sess, err := sessions.Start(c.Request.Context())
		if err != nil {
			logger.Warn("新会话加载草稿失败", zap.String("session_id", sess.ID), zap.Error(err))
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cfg.CookieName, sess.ID, maxAge, "/", "", cfg.CookieSecure, true)
		c.Set(SessionKey, sess)

		c.Next()
	}
}
