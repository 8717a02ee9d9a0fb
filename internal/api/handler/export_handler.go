package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"turnout-deployment/internal/service"
	"turnout-deployment/pkg/response"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportCSV 导出当前草稿为 CSV
// GET /api/v1/draft/export.csv
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportCSV(c.Request.Context(), sess)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, buf, filename, contentTypeCSV)
}

// ExportXLSX 导出当前草稿为 Excel
// GET /api/v1/draft/export.xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	sess, ok := MustGetSession(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportXLSX(c.Request.Context(), sess)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	sendFile(c, buf, filename, contentTypeXLSX)
}

// sendFile 设置下载响应头
func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportEmpty):
		response.BadRequest(c, 20101, "暂无可导出的部署数据")
	default:
		response.InternalError(c)
	}
}
