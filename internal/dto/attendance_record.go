package dto

// ── 出席记录模块 DTO ──

// MarkAttendanceRequest 完整标记出席请求（按业务键定位记录）
// attended_as_owner 与 attended_as_proxy 必须恰好一个为 true
type MarkAttendanceRequest struct {
	AttendanceListID string  `json:"attendance_list_id" binding:"required,uuid"`
	PropertyUnitID   string  `json:"property_unit_id"   binding:"required,uuid"`
	ResidentID       *string `json:"resident_id"        binding:"omitempty,uuid"`
	ProxyID          *string `json:"proxy_id"           binding:"omitempty,uuid"`
	AttendedAsOwner  bool    `json:"attended_as_owner"`
	AttendedAsProxy  bool    `json:"attended_as_proxy"`
	Signature        *string `json:"signature"          binding:"omitempty,max=10000"`
	SignatureMethod  *string `json:"signature_method"   binding:"omitempty,oneof=digital handwritten electronic"`
	Notes            *string `json:"notes"              binding:"omitempty,max=2000"`
}

// VerifyAttendanceRequest 出席核验请求（核验人取自登录态）
type VerifyAttendanceRequest struct {
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

// SetValidityRequest 记录有效性开关请求
type SetValidityRequest struct {
	IsValid *bool `json:"is_valid" binding:"required"`
}

// ListRecordsRequest 记录分页查询参数
type ListRecordsRequest struct {
	PaginationRequest
	UnitNumber string `form:"unit_number"`
	Attended   *bool  `form:"attended"`
}

// AttendanceRecordResponse 出席记录响应（含展示名称）
type AttendanceRecordResponse struct {
	ID                string  `json:"id"`
	AttendanceListID  string  `json:"attendance_list_id"`
	PropertyUnitID    string  `json:"property_unit_id"`
	UnitNumber        string  `json:"unit_number"`
	ResidentID        *string `json:"resident_id,omitempty"`
	ResidentName      *string `json:"resident_name,omitempty"`
	ProxyID           *string `json:"proxy_id,omitempty"`
	ProxyName         *string `json:"proxy_name,omitempty"`
	AttendedAsOwner   bool    `json:"attended_as_owner"`
	AttendedAsProxy   bool    `json:"attended_as_proxy"`
	Signature         *string `json:"signature,omitempty"`
	SignatureDate     *string `json:"signature_date,omitempty"`
	SignatureMethod   *string `json:"signature_method,omitempty"`
	VerifiedBy        *string `json:"verified_by,omitempty"`
	VerificationDate  *string `json:"verification_date,omitempty"`
	VerificationNotes *string `json:"verification_notes,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	IsValid           bool    `json:"is_valid"`
	CreatedAt         string  `json:"created_at"`
	UpdatedAt         string  `json:"updated_at"`
}

// SummaryResponse 出席统计响应
// 同时给出按单元数与按产权系数两种口径；无效记录计入分母但不计入出席
type SummaryResponse struct {
	TotalUnits           int     `json:"total_units"`
	AttendedUnits        int     `json:"attended_units"`
	AbsentUnits          int     `json:"absent_units"`
	AttendedAsOwner      int     `json:"attended_as_owner"`
	AttendedAsProxy      int     `json:"attended_as_proxy"`
	AttendanceRate       float64 `json:"attendance_rate"`
	AbsenceRate          float64 `json:"absence_rate"`
	AttendanceRateByCoef float64 `json:"attendance_rate_by_coef"`
	AbsenceRateByCoef    float64 `json:"absence_rate_by_coef"`
}
