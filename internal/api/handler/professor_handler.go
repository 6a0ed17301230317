package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/service"
	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

// ProfessorHandler 教授模块 HTTP 处理器
type ProfessorHandler struct {
	professorSvc service.ProfessorService
}

// NewProfessorHandler 创建 ProfessorHandler
func NewProfessorHandler(professorSvc service.ProfessorService) *ProfessorHandler {
	return &ProfessorHandler{professorSvc: professorSvc}
}

// UpdateProfessor 修改职级与出席时段
// PUT /api/v1/professor/:id
func (h *ProfessorHandler) UpdateProfessor(c *gin.Context) {
	id, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateProfessorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if req.Role == nil && req.Availability == nil {
		response.BadRequest(c, 10001, "至少需要提供 role 或 availability")
		return
	}

	professor, err := h.professorSvc.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleProfessorError(c, err)
		return
	}
	response.OK(c, professor)
}

func (h *ProfessorHandler) handleProfessorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfessorNotFound):
		response.NotFound(c, 14001, "教授不存在")
	case errors.Is(err, service.ErrProfessorEmptyField):
		response.BadRequest(c, 14002, "职级与出席时段不能为空")
	case errors.Is(err, service.ErrInvalidRole):
		response.BadRequest(c, 14003, "无效的职级")
	case errors.Is(err, service.ErrInvalidAvailability):
		response.BadRequest(c, 14004, "无效的出席时段")
	default:
		response.InternalError(c)
	}
}
