package model

import "time"

// AttendanceList 出席名册表 — 对应 attendance_lists
// 一个名册对应一个投票组的一场大会；创建后除 is_active 外不可变
type AttendanceList struct {
	AttendanceListID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"attendance_list_id"`
	VotingGroupID    string     `gorm:"type:uuid;not null"                             json:"voting_group_id"`
	BusinessID       string     `gorm:"type:uuid;not null"                             json:"business_id"`
	Title            string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description      *string    `gorm:"type:text"                                      json:"description,omitempty"`
	Notes            *string    `gorm:"type:text"                                      json:"notes,omitempty"`
	MeetingDate      *time.Time `gorm:"type:date"                                      json:"meeting_date,omitempty"` // 大会日期，代理有效期校验以此为准
	IsActive         bool       `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (AttendanceList) TableName() string { return "attendance_lists" }

// EffectiveDate 返回代理有效期校验使用的基准日期
// 未设置大会日期时退回当前日期
func (l *AttendanceList) EffectiveDate(now time.Time) time.Time {
	if l.MeetingDate != nil {
		return *l.MeetingDate
	}
	return now
}
