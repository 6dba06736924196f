package model

import "time"

// 签名方式
const (
	SignatureMethodDigital     = "digital"
	SignatureMethodHandwritten = "handwritten"
	SignatureMethodElectronic  = "electronic"
)

// AttendanceRecord 出席记录表 — 对应 attendance_records
// 每个名册内每个单元恰好一条，生成名册时一并创建
// 不变量：attended_as_owner 与 attended_as_proxy 互斥（数据库 CHECK 兜底）
type AttendanceRecord struct {
	AttendanceRecordID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"              json:"attendance_record_id"`
	AttendanceListID   string     `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_records_list_unit" json:"attendance_list_id"`
	PropertyUnitID     string     `gorm:"type:uuid;not null;uniqueIndex:uq_attendance_records_list_unit" json:"property_unit_id"`
	ResidentID         *string    `gorm:"type:uuid"                                                   json:"resident_id,omitempty"`
	ProxyID            *string    `gorm:"type:uuid"                                                   json:"proxy_id,omitempty"`
	AttendedAsOwner    bool       `gorm:"not null;default:false"                                      json:"attended_as_owner"`
	AttendedAsProxy    bool       `gorm:"not null;default:false"                                      json:"attended_as_proxy"`
	Signature          *string    `gorm:"type:text"                                                   json:"signature,omitempty"`
	SignatureDate      *time.Time `json:"signature_date,omitempty"`
	SignatureMethod    *string    `gorm:"type:varchar(20)"                                            json:"signature_method,omitempty"` // digital | handwritten | electronic
	VerifiedBy         *string    `gorm:"type:uuid"                                                   json:"verified_by,omitempty"`
	VerificationDate   *time.Time `json:"verification_date,omitempty"`
	VerificationNotes  *string    `gorm:"type:text"                                                   json:"verification_notes,omitempty"`
	Notes              *string    `gorm:"type:text"                                                   json:"notes,omitempty"`
	IsValid            bool       `gorm:"not null;default:true"                                       json:"is_valid"` // false 时不计入出席统计
	BaseModel
}

// TableName 指定表名
func (AttendanceRecord) TableName() string { return "attendance_records" }

// Attended 记录是否处于已出席状态（本人或代理）
// 与统计引擎、attended 过滤条件使用同一判定
func (r *AttendanceRecord) Attended() bool {
	return r.AttendedAsOwner || r.AttendedAsProxy
}
