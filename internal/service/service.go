package service

import (
	"go.uber.org/zap"

	"condominio/backend/config"
	"condominio/backend/internal/registry"
	"condominio/backend/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	AttendanceList   AttendanceListService
	AttendanceRecord AttendanceRecordService
	Proxy            ProxyService
	Export           ExportService
	Calendar         CalendarService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	reg *registry.Registry,
	logger *zap.Logger,
) *Service {
	return &Service{
		AttendanceList:   NewAttendanceListService(repo, reg, logger),
		AttendanceRecord: NewAttendanceRecordService(repo, logger),
		Proxy:            NewProxyService(repo, reg, logger),
		Export:           NewExportService(cfg, repo, logger),
		Calendar:         NewCalendarService(cfg, repo, logger),
	}
}
