package handler

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stefa168/ottimizzatore-lauree/internal/api/middleware"
	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/service"
	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

// CommissionHandler 委员会模块 HTTP 处理器
type CommissionHandler struct {
	commissionSvc service.CommissionService
}

// NewCommissionHandler 创建 CommissionHandler
func NewCommissionHandler(commissionSvc service.CommissionService) *CommissionHandler {
	return &CommissionHandler{commissionSvc: commissionSvc}
}

// ListPreviews 委员会摘要列表（id + title）
// GET /api/v1/commission
func (h *CommissionHandler) ListPreviews(c *gin.Context) {
	previews, err := h.commissionSvc.ListPreviews(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, previews)
}

// ListCommissions 委员会完整列表
// GET /api/v1/commissions
func (h *CommissionHandler) ListCommissions(c *gin.Context) {
	commissions, err := h.commissionSvc.List(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, commissions)
}

// GetCommission 委员会详情（条目、配置、执行记录与结果）
// GET /api/v1/commission/:id
func (h *CommissionHandler) GetCommission(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	commission, err := h.commissionSvc.Get(c.Request.Context(), id)
	if err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.OK(c, commission)
}

// DeleteCommission 删除委员会及其学生、配置与结果
// DELETE /api/v1/commission/:id
func (h *CommissionHandler) DeleteCommission(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.commissionSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.OK(c, dto.DeleteCommissionResponse{ID: id})
}

// ListProfessors 委员会中每位教授及其负担
// GET /api/v1/commission/:id/professors
func (h *CommissionHandler) ListProfessors(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	burdens, err := h.commissionSvc.Burdens(c.Request.Context(), id)
	if err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.OK(c, burdens)
}

// Upload 上传名册创建委员会
// POST /api/v1/upload（multipart: file, title）
func (h *CommissionHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		if middleware.IsBodyTooLarge(err) {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "名册文件过大")
			return
		}
		response.BadRequest(c, 10001, "缺少名册文件")
		return
	}
	// 名册按 OOXML 解析，旧版二进制 .xls 需先另存为 .xlsx
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".xlsx":
	case ".xls":
		response.BadRequest(c, 11002, "不支持旧版 .xls 格式，请另存为 .xlsx 后上传")
		return
	default:
		response.BadRequest(c, 11002, "仅支持 .xlsx 文件")
		return
	}

	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 11002, "无法读取上传文件")
		return
	}
	defer f.Close()

	result, err := h.commissionSvc.Upload(c.Request.Context(), fh.Filename, c.PostForm("title"), f)
	if err != nil {
		h.handleCommissionError(c, err)
		return
	}
	response.Created(c, result)
}

func (h *CommissionHandler) handleCommissionError(c *gin.Context, err error) {
	var missing *service.MissingColumnsError
	var rowErr *service.RowError

	switch {
	case errors.Is(err, service.ErrCommissionNotFound):
		response.NotFound(c, 11001, "委员会不存在")
	case errors.Is(err, service.ErrUploadInvalidFile):
		response.BadRequest(c, 11002, "无法读取名册文件")
	case errors.As(err, &missing):
		response.UnprocessableEntity(c, 11003, "名册缺少必需列", strings.Join(missing.Columns, ", "))
	case errors.As(err, &rowErr):
		response.UnprocessableEntity(c, 11004, "名册数据行无效", rowErr.Error())
	case errors.Is(err, service.ErrUploadEmpty):
		response.UnprocessableEntity(c, 11005, "名册中没有数据行", "")
	default:
		response.InternalError(c)
	}
}
