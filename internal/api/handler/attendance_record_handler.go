package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"condominio/backend/internal/dto"
	"condominio/backend/internal/service"
	"condominio/backend/pkg/response"
)

// AttendanceRecordHandler 出席记录模块 HTTP 处理器
type AttendanceRecordHandler struct {
	recordSvc service.AttendanceRecordService
}

// NewAttendanceRecordHandler 创建 AttendanceRecordHandler
func NewAttendanceRecordHandler(recordSvc service.AttendanceRecordService) *AttendanceRecordHandler {
	return &AttendanceRecordHandler{recordSvc: recordSvc}
}

// MarkSimple 简化标记（按记录 ID 登记本人出席）
// PUT /api/v1/attendance-records/:id/mark
func (h *AttendanceRecordHandler) MarkSimple(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordSvc.Mark(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, record)
}

// MarkFull 完整标记（按业务键，支持代理出席与签名）
// POST /api/v1/attendance-records/mark
func (h *AttendanceRecordHandler) MarkFull(c *gin.Context) {
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordSvc.MarkWithDetails(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, record)
}

// Unmark 取消出席
// PUT /api/v1/attendance-records/:id/unmark
func (h *AttendanceRecordHandler) Unmark(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordSvc.Unmark(c.Request.Context(), id, callerID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, record)
}

// Verify 审计核验
// PUT /api/v1/attendance-records/:id/verify
func (h *AttendanceRecordHandler) Verify(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	var req dto.VerifyAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordSvc.Verify(c.Request.Context(), id, callerID, &req)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, record)
}

// SetValidity 记录有效性开关
// PUT /api/v1/attendance-records/:id/validity
func (h *AttendanceRecordHandler) SetValidity(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "记录ID不能为空")
		return
	}

	var req dto.SetValidityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	record, err := h.recordSvc.SetValidity(c.Request.Context(), id, *req.IsValid, callerID)
	if err != nil {
		h.handleRecordError(c, err)
		return
	}

	response.OK(c, record)
}

// ListRecords 名册记录分页查询
// GET /api/v1/attendance-lists/:id/records?page=1&page_size=20&unit_number=&attended=
func (h *AttendanceRecordHandler) ListRecords(c *gin.Context) {
	listID := c.Param("id")
	if listID == "" {
		response.BadRequest(c, 10001, "名册ID不能为空")
		return
	}

	var req dto.ListRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	records, total, err := h.recordSvc.Records(c.Request.Context(), listID, &req)
	if err != nil {
		if errors.Is(err, service.ErrAttendanceListNotFound) {
			response.NotFound(c, 21101, "出席名册不存在")
			return
		}
		// 记录读取失败时返回空页与错误标记，前端可继续渲染
		response.ErrorWithDetails(c, http.StatusOK, 22001, "查询出席记录失败", "degraded")
		return
	}

	response.OKPage(c, records, total, req.GetPage(), req.GetPageSize())
}

// Summary 出席统计
// GET /api/v1/attendance-lists/:id/summary
func (h *AttendanceRecordHandler) Summary(c *gin.Context) {
	listID := c.Param("id")
	if listID == "" {
		response.BadRequest(c, 10001, "名册ID不能为空")
		return
	}

	summary, err := h.recordSvc.Summary(c.Request.Context(), listID)
	if err != nil {
		if errors.Is(err, service.ErrAttendanceListNotFound) {
			response.NotFound(c, 21101, "出席名册不存在")
			return
		}
		// 统计读取失败同样降级为空结果加错误标记
		response.ErrorWithDetails(c, http.StatusOK, 22002, "查询出席统计失败", "degraded")
		return
	}

	response.OK(c, summary)
}

func (h *AttendanceRecordHandler) handleRecordError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecordNotFound):
		response.NotFound(c, 22101, "出席记录不存在")
	case errors.Is(err, service.ErrAttendanceListNotFound):
		response.NotFound(c, 21101, "出席名册不存在")
	case errors.Is(err, service.ErrAlreadyAttended):
		response.Conflict(c, 22102, "该单元已登记出席")
	case errors.Is(err, service.ErrNotAttended):
		response.Conflict(c, 22103, "该单元尚未登记出席")
	case errors.Is(err, service.ErrAttendanceModeInvalid):
		response.BadRequest(c, 22104, "本人出席与代理出席必须恰好选择一种")
	case errors.Is(err, service.ErrInvalidProxy):
		response.UnprocessableEntity(c, 22105, "代理无效：不属于该单元或不在委托有效期内")
	default:
		response.InternalError(c)
	}
}
