package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"turnout-deployment/internal/repository"
	pkgerrors "turnout-deployment/pkg/errors"
)

// 名册来源
const (
	CatalogSourceDirectory = "directory"
	CatalogSourceFallback  = "fallback"
)

// CatalogCacheKey 名册缓存键；导入名册后需删除
const CatalogCacheKey = "catalog:personnel"

// sampleNames 内置示例名单：人员目录不可用或为空时使用
var sampleNames = []string{
	"LTA SHABIR", "WO2 AMIN", "SGT MUZAMIL", "SGT SULTAN", "CPL PUTRA",
	"LCP BU XIANG XUAN", "LCP QUINN", "SGT RAIHAN", "LCP HAROUN", "SGT FAUZI",
	"SGT ADLY", "LCP NATHAN", "ORNS 1", "ORNS 2", "WO2 AZHAR", "SGT3 ZHUBRAN",
	"SSG AHMAD", "WO2 ZULHAINI", "LCP KHAMBHATI", "LCP CHINMAY",
}

// NameCache 名册缓存（Redis 实现见 pkg/redis）
type NameCache interface {
	GetStrings(ctx context.Context, key string) ([]string, error)
	SetStrings(ctx context.Context, key string, values []string, ttl time.Duration) error
}

// Catalog 可选人员名单；Names[0] 恒为空串，表示"未分配"
type Catalog struct {
	Names  []string
	Source string
}

// Contains 名单中是否包含该姓名
func (c Catalog) Contains(name string) bool {
	for _, n := range c.Names {
		if n == name {
			return true
		}
	}
	return false
}

// CatalogService 人员名册业务接口
type CatalogService interface {
	// ListNames 从不返回错误：目录不可用时回退到内置名单
	ListNames(ctx context.Context) Catalog
}

type catalogService struct {
	repo     *repository.Repository
	cache    NameCache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService 创建 CatalogService；cache 可为 nil（不启用缓存）
func NewCatalogService(repo *repository.Repository, cache NameCache, cacheTTL time.Duration, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

func (s *catalogService) ListNames(ctx context.Context) Catalog {
	directory, err := s.fetchDirectory(ctx)
	catalog := selectCatalog(directory, err)
	if catalog.Source == CatalogSourceFallback {
		s.logger.Debug("人员目录不可用或为空，使用内置名单", zap.Error(err))
	}
	return catalog
}

// fetchDirectory 读取人员目录（优先缓存）。
// 目录不可达返回 ErrCatalogUnavailable；目录可达但为空返回空切片、nil 错误。
func (s *catalogService) fetchDirectory(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		names, err := s.cache.GetStrings(ctx, CatalogCacheKey)
		if err == nil {
			return names, nil
		}
		// 缓存未命中或 Redis 异常均直连数据库
	}

	names, err := s.repo.Personnel.ListNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkgerrors.ErrCatalogUnavailable, err)
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := s.cache.SetStrings(ctx, CatalogCacheKey, names, s.cacheTTL); err != nil {
			s.logger.Debug("写入名册缓存失败", zap.Error(err))
		}
	}
	return names, nil
}

// selectCatalog 目录可达且至少含一个非空姓名时采用目录，否则回退内置名单
func selectCatalog(directory []string, err error) Catalog {
	if err == nil {
		names := make([]string, 0, len(directory)+1)
		names = append(names, "")
		for _, n := range directory {
			if strings.TrimSpace(n) == "" {
				continue
			}
			names = append(names, n)
		}
		if len(names) > 1 {
			return Catalog{Names: names, Source: CatalogSourceDirectory}
		}
	}

	names := make([]string, 0, len(sampleNames)+1)
	names = append(names, "")
	names = append(names, sampleNames...)
	return Catalog{Names: names, Source: CatalogSourceFallback}
}
