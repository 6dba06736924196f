package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"condominio/backend/internal/dto"
	"condominio/backend/internal/service"
	"condominio/backend/pkg/response"
)

// AttendanceListHandler 出席名册模块 HTTP 处理器
type AttendanceListHandler struct {
	listSvc     service.AttendanceListService
	calendarSvc service.CalendarService
}

// NewAttendanceListHandler 创建 AttendanceListHandler
func NewAttendanceListHandler(listSvc service.AttendanceListService, calendarSvc service.CalendarService) *AttendanceListHandler {
	return &AttendanceListHandler{listSvc: listSvc, calendarSvc: calendarSvc}
}

// CreateList 手动创建名册
// POST /api/v1/attendance-lists
func (h *AttendanceListHandler) CreateList(c *gin.Context) {
	var req dto.CreateAttendanceListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.listSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleListError(c, err)
		return
	}

	response.Created(c, list)
}

// GenerateList 按投票组生成名册
// POST /api/v1/attendance-lists/generate
func (h *AttendanceListHandler) GenerateList(c *gin.Context) {
	var req dto.GenerateAttendanceListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.listSvc.Generate(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleListError(c, err)
		return
	}

	response.Created(c, list)
}

// ListLists 查询物业的名册列表
// GET /api/v1/attendance-lists?business_id=xxx&title=xxx&is_active=true
func (h *AttendanceListHandler) ListLists(c *gin.Context) {
	var req dto.ListAttendanceListsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	lists, err := h.listSvc.List(c.Request.Context(), &req)
	if err != nil {
		// 列表读取失败时返回空列表与错误标记，前端可继续渲染
		response.ErrorWithDetails(c, http.StatusOK, 21001, "查询名册列表失败", "degraded")
		return
	}

	response.OK(c, gin.H{"list": lists})
}

// GetList 获取名册详情
// GET /api/v1/attendance-lists/:id
func (h *AttendanceListHandler) GetList(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "名册ID不能为空")
		return
	}

	list, err := h.listSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleListError(c, err)
		return
	}

	response.OK(c, list)
}

// DeleteList 删除名册（级联删除记录）
// DELETE /api/v1/attendance-lists/:id
func (h *AttendanceListHandler) DeleteList(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "名册ID不能为空")
		return
	}

	if err := h.listSvc.Delete(c.Request.Context(), id); err != nil {
		h.handleListError(c, err)
		return
	}

	response.OK(c, nil)
}

// Calendar 大会日历订阅（ICS）
// GET /api/v1/attendance-lists/calendar.ics?business_id=xxx
func (h *AttendanceListHandler) Calendar(c *gin.Context) {
	businessID := c.Query("business_id")
	if businessID == "" {
		response.BadRequest(c, 10001, "business_id 不能为空")
		return
	}

	feed, err := h.calendarSvc.Feed(c.Request.Context(), businessID)
	if err != nil {
		response.InternalError(c)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=asambleas.ics")
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(feed))
}

func (h *AttendanceListHandler) handleListError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAttendanceListNotFound):
		response.NotFound(c, 21101, "出席名册不存在")
	case errors.Is(err, service.ErrVotingGroupNotFound):
		response.NotFound(c, 21102, "投票组不存在")
	case errors.Is(err, service.ErrNoEligibleUnits):
		response.NotFound(c, 21103, "投票组内没有可参会的物业单元")
	case errors.Is(err, service.ErrMeetingDateInvalid):
		response.BadRequest(c, 21104, "大会日期格式无效")
	case errors.Is(err, service.ErrRegistryUnavailable):
		response.BadGateway(c, 21105, "物业登记服务不可用")
	default:
		response.InternalError(c)
	}
}
