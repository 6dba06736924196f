package model

import "time"

// 代理类型
const (
	ProxyTypeExternal = "external"
	ProxyTypeResident = "resident"
	ProxyTypeFamily   = "family"
)

// Proxy 委托代理表 — 对应 proxies
// 记录某单元在一段时间窗口内的投票委托
// 不变量：同一单元的活动代理时间窗口互不重叠（Service 事务内校验）
type Proxy struct {
	ProxyID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"proxy_id"`
	BusinessID      string     `gorm:"type:uuid;not null"                             json:"business_id"`
	PropertyUnitID  string     `gorm:"type:uuid;not null;index:idx_proxies_unit_active" json:"property_unit_id"`
	ProxyName       string     `gorm:"type:varchar(200);not null"                     json:"proxy_name"`
	ProxyDNI        *string    `gorm:"column:proxy_dni;type:varchar(50)"              json:"proxy_dni,omitempty"`
	ProxyEmail      *string    `gorm:"type:varchar(200)"                              json:"proxy_email,omitempty"`
	ProxyPhone      *string    `gorm:"type:varchar(50)"                               json:"proxy_phone,omitempty"`
	ProxyAddress    *string    `gorm:"type:varchar(300)"                              json:"proxy_address,omitempty"`
	ProxyType       string     `gorm:"type:varchar(20);not null"                      json:"proxy_type"` // external | resident | family
	StartDate       time.Time  `gorm:"type:date;not null"                             json:"start_date"`
	EndDate         *time.Time `gorm:"type:date"                                      json:"end_date,omitempty"` // 空表示无截止
	PowerOfAttorney *string    `gorm:"type:text"                                      json:"power_of_attorney,omitempty"`
	IsActive        bool       `gorm:"not null;default:true;index:idx_proxies_unit_active" json:"is_active"`
	Notes           *string    `gorm:"type:text"                                      json:"notes,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Proxy) TableName() string { return "proxies" }

// WindowContains 判断日期是否落在委托窗口内
// 起止均为含端点的日历日期；end_date 为空表示无截止
func (p *Proxy) WindowContains(date time.Time) bool {
	day := truncateToDay(date)
	if day.Before(truncateToDay(p.StartDate)) {
		return false
	}
	if p.EndDate != nil && day.After(truncateToDay(*p.EndDate)) {
		return false
	}
	return true
}

// WindowOverlaps 判断两个委托窗口是否重叠（端点相接视为重叠）
func (p *Proxy) WindowOverlaps(start time.Time, end *time.Time) bool {
	s1, s2 := truncateToDay(p.StartDate), truncateToDay(start)
	// p 在对方开始之前就已结束
	if p.EndDate != nil && truncateToDay(*p.EndDate).Before(s2) {
		return false
	}
	// 对方在 p 开始之前就已结束
	if end != nil && truncateToDay(*end).Before(s1) {
		return false
	}
	return true
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
