// seed 从 YAML 文件导入人员名册到 personnel 表。
// 已存在的姓名跳过；导入后清除 Redis 中的名册缓存。
//
//	go run ./cmd/seed -file personnel.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"turnout-deployment/config"
	"turnout-deployment/internal/model"
	"turnout-deployment/internal/repository"
	"turnout-deployment/internal/service"
	"turnout-deployment/pkg/database"
	applogger "turnout-deployment/pkg/logger"
	"turnout-deployment/pkg/redis"
)

// personnelFile 名册文件格式
type personnelFile struct {
	Personnel []string `yaml:"personnel"`
}

// parsePersonnel 解析名册：去除首尾空白，跳过空行与重复姓名，保持文件顺序
func parsePersonnel(r io.Reader) ([]string, error) {
	var f personnelFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("解析名册文件失败: %w", err)
	}

	seen := make(map[string]struct{}, len(f.Personnel))
	names := make([]string, 0, len(f.Personnel))
	for _, n := range f.Personnel {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		names = append(names, n)
	}
	return names, nil
}

func main() {
	configPath := flag.String("config", "", "配置文件路径")
	filePath := flag.String("file", "personnel.yaml", "名册 YAML 文件")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	file, err := os.Open(*filePath)
	if err != nil {
		logger.Fatal("打开名册文件失败", zap.String("file", *filePath), zap.Error(err))
	}
	names, err := parsePersonnel(file)
	file.Close()
	if err != nil {
		logger.Fatal("名册文件格式错误", zap.Error(err))
	}
	if len(names) == 0 {
		logger.Warn("名册文件为空，无需导入", zap.String("file", *filePath))
		return
	}

	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	defer func() {
		if sqlDB, _ := db.DB(); sqlDB != nil {
			sqlDB.Close()
		}
	}()
	if err := database.Migrate(db, cfg.Database.Driver, logger, model.Tables()...); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := repository.NewRepository(db)
	inserted, err := repo.Personnel.BulkInsert(ctx, names)
	if err != nil {
		logger.Fatal("导入名册失败", zap.Error(err))
	}
	logger.Info("名册导入完成",
		zap.Int("total", len(names)),
		zap.Int64("inserted", inserted),
		zap.Int64("skipped", int64(len(names))-inserted),
	)

	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，名册缓存将在过期后刷新", zap.Error(err))
			return
		}
		defer rdb.Close()
		if err := rdb.Delete(ctx, service.CatalogCacheKey); err != nil {
			logger.Warn("清除名册缓存失败", zap.Error(err))
		}
	}
}
