package handler

import "github.com/stefa168/ottimizzatore-lauree/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Commission    *CommissionHandler
	Configuration *ConfigurationHandler
	Professor     *ProfessorHandler
	Export        *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Commission:    NewCommissionHandler(svc.Commission),
		Configuration: NewConfigurationHandler(svc.Configuration, svc.Solve),
		Professor:     NewProfessorHandler(svc.Professor),
		Export:        NewExportHandler(svc.Export),
	}
}
