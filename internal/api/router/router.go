package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnout-deployment/config"
	"turnout-deployment/internal/api/handler"
	"turnout-deployment/internal/api/middleware"
	"turnout-deployment/internal/service"
)

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时不启用限流
func Setup(cfg *config.Config, h *handler.Handler, sessions service.SessionService, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	if cfg.RateLimit.Enabled && limiter != nil {
		v1.Use(middleware.RateLimit(limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, logger))
	}
	{
		// 不依赖会话
		v1.GET("/deployment/summary", h.Deployment.Summary)
		v1.GET("/catalog/names", h.Deployment.ListNames)

		withSession := v1.Group("")
		withSession.Use(middleware.Session(sessions, &cfg.Session, logger))
		{
			// 页面导航
			nav := withSession.Group("/session")
			{
				nav.POST("/edit", h.Deployment.OpenEdit)
				nav.POST("/summary", h.Deployment.OpenSummary)
			}

			// 编辑草稿
			draft := withSession.Group("/draft")
			{
				draft.GET("", h.Deployment.GetDraft)
				draft.PUT("/slots/:vehicle/:position", h.Deployment.SetSlot)
				draft.POST("/reset", h.Deployment.ResetAll)
				draft.POST("/save", h.Deployment.Save)
				draft.GET("/export.csv", h.Export.ExportCSV)
				draft.GET("/export.xlsx", h.Export.ExportXLSX)
			}
		}
	}

	return r
}
