package dto

// ── 委托代理模块 DTO ──

// CreateProxyRequest 创建代理请求
type CreateProxyRequest struct {
	BusinessID      string  `json:"business_id"       binding:"required,uuid"`
	PropertyUnitID  string  `json:"property_unit_id"  binding:"required,uuid"`
	ProxyName       string  `json:"proxy_name"        binding:"required,min=2,max=200"`
	ProxyDNI        *string `json:"proxy_dni"         binding:"omitempty,max=50"`
	ProxyEmail      *string `json:"proxy_email"       binding:"omitempty,email"`
	ProxyPhone      *string `json:"proxy_phone"       binding:"omitempty,max=50"`
	ProxyAddress    *string `json:"proxy_address"     binding:"omitempty,max=300"`
	ProxyType       string  `json:"proxy_type"        binding:"required,oneof=external resident family"`
	StartDate       string  `json:"start_date"        binding:"required"` // "2026-09-01"
	EndDate         *string `json:"end_date"`
	PowerOfAttorney *string `json:"power_of_attorney" binding:"omitempty,max=10000"`
	Notes           *string `json:"notes"             binding:"omitempty,max=2000"`
}

// UpdateProxyRequest 部分更新代理请求
type UpdateProxyRequest struct {
	ProxyName       *string `json:"proxy_name"        binding:"omitempty,min=2,max=200"`
	ProxyDNI        *string `json:"proxy_dni"         binding:"omitempty,max=50"`
	ProxyEmail      *string `json:"proxy_email"       binding:"omitempty,email"`
	ProxyPhone      *string `json:"proxy_phone"       binding:"omitempty,max=50"`
	ProxyAddress    *string `json:"proxy_address"     binding:"omitempty,max=300"`
	ProxyType       *string `json:"proxy_type"        binding:"omitempty,oneof=external resident family"`
	StartDate       *string `json:"start_date"`
	EndDate         *string `json:"end_date"`
	PowerOfAttorney *string `json:"power_of_attorney" binding:"omitempty,max=10000"`
	IsActive        *bool   `json:"is_active"`
	Notes           *string `json:"notes"             binding:"omitempty,max=2000"`
}

// ListProxiesRequest 代理列表查询参数
type ListProxiesRequest struct {
	PaginationRequest
	BusinessID     string `form:"business_id"      binding:"required,uuid"`
	PropertyUnitID string `form:"property_unit_id" binding:"omitempty,uuid"`
	ProxyType      string `form:"proxy_type"       binding:"omitempty,oneof=external resident family"`
	IsActive       *bool  `form:"is_active"`
}

// ProxyResponse 代理信息响应
type ProxyResponse struct {
	ID              string  `json:"id"`
	BusinessID      string  `json:"business_id"`
	PropertyUnitID  string  `json:"property_unit_id"`
	ProxyName       string  `json:"proxy_name"`
	ProxyDNI        *string `json:"proxy_dni,omitempty"`
	ProxyEmail      *string `json:"proxy_email,omitempty"`
	ProxyPhone      *string `json:"proxy_phone,omitempty"`
	ProxyAddress    *string `json:"proxy_address,omitempty"`
	ProxyType       string  `json:"proxy_type"`
	StartDate       string  `json:"start_date"`
	EndDate         *string `json:"end_date,omitempty"`
	PowerOfAttorney *string `json:"power_of_attorney,omitempty"`
	IsActive        bool    `json:"is_active"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}
