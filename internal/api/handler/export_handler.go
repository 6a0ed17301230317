package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/service"
	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 求解结果导出 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportXLSX 导出求解结果为 Excel
// GET /api/v1/commission/:id/configuration/:cid/export.xlsx
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	commissionID, configID, ok := configParams(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportXLSX(c.Request.Context(), commissionID, configID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// ExportICS 导出指定日期的答辩日历
// GET /api/v1/commission/:id/configuration/:cid/export.ics?date=YYYY-MM-DD&start=HH:MM&location=
func (h *ExportHandler) ExportICS(c *gin.Context) {
	commissionID, configID, ok := configParams(c)
	if !ok {
		return
	}

	var req dto.ExportICSRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "date 不能为空")
		return
	}

	data, filename, err := h.exportSvc.ExportICS(c.Request.Context(), commissionID, configID, &req)
	if err != nil {
		h.handleExportError(c, err)
		return
	}
	response.Attachment(c, filename, contentTypeICS, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConfigurationNotFound):
		response.NotFound(c, 12001, "配置不存在")
	case errors.Is(err, service.ErrExportNoSolution):
		response.NotFound(c, 16101, "该配置尚无求解结果")
	case errors.Is(err, service.ErrExportInvalidDate):
		response.BadRequest(c, 16102, "日期或时间格式错误")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
