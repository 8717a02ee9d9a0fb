package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"turnout-deployment/internal/model"
)

// ── 导出模块业务错误 ──

var (
	ErrExportEmpty        = errors.New("暂无可导出的部署数据")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

const (
	exportCSVFilename  = "turnout_deployment.csv"
	exportXLSXFilename = "turnout_deployment.xlsx"
	exportSheetName    = "Deployment"
)

var exportHeader = []string{"Vehicle", "Position", "Role_Description", "Name"}

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出内容来自会话草稿（而非持久层），仅包含非空岗位
//   - 行顺序：车辆固定顺序，车内按岗位序号
//   - 以 bytes.Buffer 返回，由 Handler 层设置下载响应头
type ExportService interface {
	ExportCSV(ctx context.Context, sess *Session) (*bytes.Buffer, string, error)
	ExportXLSX(ctx context.Context, sess *Session) (*bytes.Buffer, string, error)
}

type exportService struct {
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(logger *zap.Logger) ExportService {
	return &exportService{logger: logger}
}

// exportRows 草稿快照 → 表格行（含岗位全称）
func exportRows(sess *Session) [][]string {
	sess.mu.Lock()
	values := sess.draft.SnapshotForExport()
	sess.mu.Unlock()

	rows := make([][]string, 0, len(values))
	for _, v := range values {
		rows = append(rows, []string{v.Vehicle, v.Position, model.RoleDescription(v.Position), v.Name})
	}
	return rows
}

// ────────────────────── CSV ──────────────────────

func (s *exportService) ExportCSV(_ context.Context, sess *Session) (*bytes.Buffer, string, error) {
	rows := exportRows(sess)
	if len(rows) == 0 {
		return nil, "", ErrExportEmpty
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(exportHeader); err != nil {
		s.logger.Error("写入 CSV 表头失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	if err := w.WriteAll(rows); err != nil {
		s.logger.Error("写入 CSV 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportCSVFilename, nil
}

// ────────────────────── XLSX ──────────────────────

func (s *exportService) ExportXLSX(_ context.Context, sess *Session) (*bytes.Buffer, string, error) {
	rows := exportRows(sess)
	if len(rows) == 0 {
		return nil, "", ErrExportEmpty
	}

	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(exportSheetName)
	if err != nil {
		s.logger.Error("创建工作表失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(exportSheetName, "A", "B", 12)
	f.SetColWidth(exportSheetName, "C", "C", 26)
	f.SetColWidth(exportSheetName, "D", "D", 24)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#C00000"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, title := range exportHeader {
		c, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(exportSheetName, c, title)
	}
	f.SetCellStyle(exportSheetName, "A1", "D1", headerStyle)

	for r, row := range rows {
		for i, value := range row {
			c, _ := excelize.CoordinatesToCellName(i+1, r+2)
			f.SetCellValue(exportSheetName, c, value)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, exportXLSXFilename, nil
}
