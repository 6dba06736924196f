package handler

import "condominio/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	AttendanceList   *AttendanceListHandler
	AttendanceRecord *AttendanceRecordHandler
	Proxy            *ProxyHandler
	Export           *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		AttendanceList:   NewAttendanceListHandler(svc.AttendanceList, svc.Calendar),
		AttendanceRecord: NewAttendanceRecordHandler(svc.AttendanceRecord),
		Proxy:            NewProxyHandler(svc.Proxy),
		Export:           NewExportHandler(svc.Export),
	}
}
