package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"condominio/backend/internal/dto"
	"condominio/backend/internal/service"
	"condominio/backend/pkg/response"
)

// ProxyHandler 代理委托模块 HTTP 处理器
type ProxyHandler struct {
	proxySvc service.ProxyService
}

// NewProxyHandler 创建 ProxyHandler
func NewProxyHandler(proxySvc service.ProxyService) *ProxyHandler {
	return &ProxyHandler{proxySvc: proxySvc}
}

// CreateProxy 创建代理委托
// POST /api/v1/proxies
func (h *ProxyHandler) CreateProxy(c *gin.Context) {
	var req dto.CreateProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	proxy, err := h.proxySvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleProxyError(c, err)
		return
	}

	response.Created(c, proxy)
}

// GetProxy 查询代理委托详情
// GET /api/v1/proxies/:id
func (h *ProxyHandler) GetProxy(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "代理ID不能为空")
		return
	}

	proxy, err := h.proxySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleProxyError(c, err)
		return
	}

	response.OK(c, proxy)
}

// UpdateProxy 更新代理委托
// PUT /api/v1/proxies/:id
func (h *ProxyHandler) UpdateProxy(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "代理ID不能为空")
		return
	}

	var req dto.UpdateProxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	proxy, err := h.proxySvc.Update(c.Request.Context(), id, &req, callerID)
	if err != nil {
		h.handleProxyError(c, err)
		return
	}

	response.OK(c, proxy)
}

// DeleteProxy 删除代理委托（级联清除其登记的出席）
// DELETE /api/v1/proxies/:id
func (h *ProxyHandler) DeleteProxy(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "代理ID不能为空")
		return
	}

	if err := h.proxySvc.Delete(c.Request.Context(), id); err != nil {
		h.handleProxyError(c, err)
		return
	}

	response.OK(c, gin.H{"deleted": true})
}

// ListProxies 分页查询代理委托
// GET /api/v1/proxies?page=1&page_size=20&property_unit_id=&is_active=
func (h *ProxyHandler) ListProxies(c *gin.Context) {
	var req dto.ListProxiesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	proxies, total, err := h.proxySvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleProxyError(c, err)
		return
	}

	response.OKPage(c, proxies, total, req.GetPage(), req.GetPageSize())
}

// ListUnitProxies 查询单元名下的全部代理委托
// GET /api/v1/property-units/:id/proxies
func (h *ProxyHandler) ListUnitProxies(c *gin.Context) {
	unitID := c.Param("id")
	if unitID == "" {
		response.BadRequest(c, 10001, "单元ID不能为空")
		return
	}

	proxies, err := h.proxySvc.ListByUnit(c.Request.Context(), unitID)
	if err != nil {
		h.handleProxyError(c, err)
		return
	}

	response.OK(c, proxies)
}

func (h *ProxyHandler) handleProxyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProxyNotFound):
		response.NotFound(c, 23101, "代理委托不存在")
	case errors.Is(err, service.ErrProxyUnitMissing):
		response.NotFound(c, 23102, "被代理单元不存在")
	case errors.Is(err, service.ErrProxyDateInvalid):
		response.BadRequest(c, 23103, "委托日期无效：开始日期不能晚于结束日期")
	case errors.Is(err, service.ErrProxyOverlap):
		response.Conflict(c, 23104, "同一单元已存在有效期重叠的代理委托")
	case errors.Is(err, service.ErrRegistryUnavailable):
		response.BadGateway(c, 23105, "单元登记数据暂不可用")
	default:
		response.InternalError(c)
	}
}
