package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/stefa168/ottimizzatore-lauree/internal/dto"
	"github.com/stefa168/ottimizzatore-lauree/internal/model"
	"github.com/stefa168/ottimizzatore-lauree/internal/service"
	pkgerrors "github.com/stefa168/ottimizzatore-lauree/pkg/errors"
	"github.com/stefa168/ottimizzatore-lauree/pkg/response"
)

// 配置冲突状态
const (
	conflictSolved  = "solved"
	conflictSolving = "solving"
	conflictStalled = "stalled"
	conflictEnded   = "ended"
)

// ConfigurationHandler 优化配置与求解 HTTP 处理器
type ConfigurationHandler struct {
	configurationSvc service.ConfigurationService
	solveSvc         service.SolveService
}

// NewConfigurationHandler 创建 ConfigurationHandler
func NewConfigurationHandler(configurationSvc service.ConfigurationService, solveSvc service.SolveService) *ConfigurationHandler {
	return &ConfigurationHandler{configurationSvc: configurationSvc, solveSvc: solveSvc}
}

func configParams(c *gin.Context) (commissionID, configID int64, ok bool) {
	if commissionID, ok = MustGetIDParam(c, "id"); !ok {
		return 0, 0, false
	}
	if configID, ok = MustGetIDParam(c, "cid"); !ok {
		return 0, 0, false
	}
	return commissionID, configID, true
}

// ListConfigurations 委员会的全部配置
// GET /api/v1/commission/:id/configuration
func (h *ConfigurationHandler) ListConfigurations(c *gin.Context) {
	commissionID, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	confs, err := h.configurationSvc.List(c.Request.Context(), commissionID)
	if err != nil {
		h.handleConfigurationError(c, err)
		return
	}
	response.OK(c, confs)
}

// CreateConfiguration 以默认参数新建配置
// POST /api/v1/commission/:id/configuration
func (h *ConfigurationHandler) CreateConfiguration(c *gin.Context) {
	commissionID, ok := MustGetIDParam(c, "id")
	if !ok {
		return
	}

	conf, err := h.configurationSvc.Create(c.Request.Context(), commissionID)
	if err != nil {
		h.handleConfigurationError(c, err)
		return
	}
	response.Created(c, conf)
}

// GetConfiguration 配置详情
// GET /api/v1/commission/:id/configuration/:cid
func (h *ConfigurationHandler) GetConfiguration(c *gin.Context) {
	commissionID, configID, ok := configParams(c)
	if !ok {
		return
	}

	conf, err := h.configurationSvc.Get(c.Request.Context(), commissionID, configID)
	if err != nil {
		h.handleConfigurationError(c, err)
		return
	}
	response.OK(c, conf)
}

// UpdateConfiguration 部分更新配置
// PUT /api/v1/commission/:id/configuration/:cid
func (h *ConfigurationHandler) UpdateConfiguration(c *gin.Context) {
	commissionID, configID, ok := configParams(c)
	if !ok {
		return
	}

	var req dto.UpdateConfigurationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	conf, err := h.configurationSvc.Update(c.Request.Context(), commissionID, configID, &req)
	if err != nil {
		h.handleConfigurationError(c, err)
		return
	}
	response.OK(c, conf)
}

// GetStatus 运行状态与按时段分组的结果
// GET /api/v1/commission/:id/configuration/:cid/status
func (h *ConfigurationHandler) GetStatus(c *gin.Context) {
	commissionID, configID, ok := configParams(c)
	if !ok {
		return
	}

	st, err := h.configurationSvc.Status(c.Request.Context(), commissionID, configID)
	if err != nil {
		h.handleConfigurationError(c, err)
		return
	}
	response.OK(c, st)
}

// Solve 提交求解任务
// POST /api/v1/commission/:id/solve/:cid
func (h *ConfigurationHandler) Solve(c *gin.Context) {
	commissionID, configID, ok := configParams(c)
	if !ok {
		return
	}

	result, err := h.solveSvc.Solve(c.Request.Context(), commissionID, configID)
	if err != nil {
		h.handleConfigurationError(c, err)
		return
	}
	response.Accepted(c, result)
}

func (h *ConfigurationHandler) handleConfigurationError(c *gin.Context, err error) {
	if ve, ok := pkgerrors.AsValidation(err); ok {
		response.ErrorWithDetails(c, http.StatusBadRequest, 12002, "配置校验失败", ve.Error())
		return
	}

	switch {
	case errors.Is(err, service.ErrCommissionNotFound):
		response.NotFound(c, 11001, "委员会不存在")
	case errors.Is(err, service.ErrConfigurationNotFound):
		response.NotFound(c, 12001, "配置不存在")
	case errors.Is(err, service.ErrInvalidSolver):
		response.ErrorWithDetails(c, http.StatusBadRequest, 12003, "无效的求解器", validSolvers())
	case errors.Is(err, service.ErrConfigurationSolved):
		response.Conflict(c, 12004, "配置已求解", dto.ConflictState{State: conflictSolved})
	case errors.Is(err, service.ErrConfigurationRunning):
		response.Conflict(c, 12005, "配置正在求解中", dto.ConflictState{State: conflictSolving})
	case errors.Is(err, service.ErrConfigurationStalled):
		response.Conflict(c, 12006, "配置已加锁但没有正在执行的求解任务", dto.ConflictState{State: conflictStalled})
	case errors.Is(err, service.ErrConfigurationEnded):
		response.Conflict(c, 12007, "求解已结束但未产生结果", dto.ConflictState{State: conflictEnded})
	case errors.Is(err, service.ErrSolverBusy):
		response.Error(c, http.StatusServiceUnavailable, 13001, "求解队列已满，请稍后重试")
	default:
		response.InternalError(c)
	}
}

// validSolvers 可选求解器列表，用于错误详情
func validSolvers() string {
	names := make([]string, 0, len(model.Solvers()))
	for _, s := range model.Solvers() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
