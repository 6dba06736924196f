package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"condominio/backend/internal/service"
	"condominio/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportRoster 导出出席名册
// GET /api/v1/attendance-lists/:id/export
func (h *ExportHandler) ExportRoster(c *gin.Context) {
	listID := c.Param("id")
	if listID == "" {
		response.BadRequest(c, 10001, "名册ID不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportRoster(c.Request.Context(), listID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.writeXLSX(c, filename, buf.Bytes())
}

// ExportDetailed 导出名册明细（含汇总页）
// GET /api/v1/attendance-lists/:id/export/detailed
func (h *ExportHandler) ExportDetailed(c *gin.Context) {
	listID := c.Param("id")
	if listID == "" {
		response.BadRequest(c, 10001, "名册ID不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportDetailed(c.Request.Context(), listID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	h.writeXLSX(c, filename, buf.Bytes())
}

func (h *ExportHandler) writeXLSX(c *gin.Context, filename string, data []byte) {
	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttendanceListNotFound):
		response.NotFound(c, 24101, "出席名册不存在")
	case errors.Is(err, service.ErrExportTooManyRows):
		response.BadRequest(c, 24102, "名册记录数超过导出上限")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
