package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"turnout-deployment/internal/dto"
	"turnout-deployment/internal/service"
	pkgerrors "turnout-deployment/pkg/errors"
	"turnout-deployment/pkg/response"
)

const warnTransportUnavailable = "持久层暂不可用，当前显示的数据可能不完整"

// DeploymentHandler 部署模块 HTTP 处理器
type DeploymentHandler struct {
	deploymentSvc service.DeploymentService
	logger        *zap.Logger
}

// NewDeploymentHandler 创建 DeploymentHandler
func NewDeploymentHandler(deploymentSvc service.DeploymentService, logger *zap.Logger) *DeploymentHandler {
	return &DeploymentHandler{deploymentSvc: deploymentSvc, logger: logger}
}

// Summary 部署汇总（直接读取持久层）
// GET /api/v1/deployment/summary
func (h *DeploymentHandler) Summary(c *gin.Context) {
	resp, err := h.deploymentSvc.Summary(c.Request.Context())
	h.respondDegraded(c, resp, err)
}

// ListNames 人员名册
// GET /api/v1/catalog/names
func (h *DeploymentHandler) ListNames(c *gin.Context) {
	response.OK(c, h.deploymentSvc.Catalog(c.Request.Context()))
}

// OpenEdit 进入编辑页
// POST /api/v1/session/edit
func (h *DeploymentHandler) OpenEdit(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	resp, err := h.deploymentSvc.OpenEdit(c.Request.Context(), sess)
	h.respondDegraded(c, resp, err)
}

// OpenSummary 返回汇总页（丢弃未保存改动）
// POST /api/v1/session/summary
func (h *DeploymentHandler) OpenSummary(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	resp, err := h.deploymentSvc.OpenSummary(c.Request.Context(), sess)
	h.respondDegraded(c, resp, err)
}

// GetDraft 当前草稿 + 名册
// GET /api/v1/draft
func (h *DeploymentHandler) GetDraft(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	resp := h.deploymentSvc.GetDraft(c.Request.Context(), sess)
	resp.Catalog = h.deploymentSvc.Catalog(c.Request.Context())
	response.OK(c, resp)
}

// SetSlot 设置岗位人员
// PUT /api/v1/draft/slots/:vehicle/:position
func (h *DeploymentHandler) SetSlot(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	var req dto.SetSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.deploymentSvc.SetSlot(c.Request.Context(), sess, c.Param("vehicle"), c.Param("position"), *req.Name)
	if err != nil {
		h.handleError(c, err)
		return
	}
	response.OK(c, resp)
}

// ResetAll 清空全部岗位
// POST /api/v1/draft/reset
func (h *DeploymentHandler) ResetAll(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	response.OK(c, h.deploymentSvc.ResetAll(c.Request.Context(), sess))
}

// Save 保存草稿。部分失败同样返回 200，由 success=false 与 failures 表达
// POST /api/v1/draft/save
func (h *DeploymentHandler) Save(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}
	response.OK(c, h.deploymentSvc.Save(c.Request.Context(), sess))
}

// respondDegraded 持久层不可用时仍返回可用数据，附带警告
func (h *DeploymentHandler) respondDegraded(c *gin.Context, data interface{}, err error) {
	if err == nil {
		response.OK(c, data)
		return
	}
	if errors.Is(err, pkgerrors.ErrTransportUnavailable) {
		response.OKWithWarning(c, data, warnTransportUnavailable)
		return
	}
	h.logger.Error("部署请求处理失败", zap.Error(err))
	response.InternalError(c)
}

func (h *DeploymentHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownSlot):
		response.BadRequest(c, 20001, "未知的车辆或岗位")
	case errors.Is(err, service.ErrUnknownPersonnel):
		response.BadRequest(c, 20002, "人员不在名册中")
	default:
		h.logger.Error("部署请求处理失败", zap.Error(err))
		response.InternalError(c)
	}
}
