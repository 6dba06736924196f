package dto

// ── 出席名册模块 DTO ──

// CreateAttendanceListRequest 手动创建名册请求
type CreateAttendanceListRequest struct {
	VotingGroupID string  `json:"voting_group_id" binding:"required,uuid"`
	Title         string  `json:"title"           binding:"required,min=2,max=200"`
	Description   *string `json:"description"     binding:"omitempty,max=2000"`
	Notes         *string `json:"notes"           binding:"omitempty,max=2000"`
	MeetingDate   *string `json:"meeting_date"`   // "2026-09-15"
}

// GenerateAttendanceListRequest 按投票组生成名册请求
type GenerateAttendanceListRequest struct {
	VotingGroupID string  `json:"voting_group_id" binding:"required,uuid"`
	Title         *string `json:"title"           binding:"omitempty,min=2,max=200"` // 为空时按投票组名自动生成
	MeetingDate   *string `json:"meeting_date"`
}

// ListAttendanceListsRequest 名册列表查询参数
type ListAttendanceListsRequest struct {
	BusinessID string `form:"business_id" binding:"required,uuid"`
	Title      string `form:"title"`
	IsActive   *bool  `form:"is_active"`
}

// AttendanceListResponse 名册信息响应
type AttendanceListResponse struct {
	ID            string  `json:"id"`
	VotingGroupID string  `json:"voting_group_id"`
	BusinessID    string  `json:"business_id"`
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	Notes         *string `json:"notes,omitempty"`
	MeetingDate   *string `json:"meeting_date,omitempty"`
	IsActive      bool    `json:"is_active"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}
