package model

import "time"

// PropertyUnit 物业单元表 — 对应 property_units
// 由物业登记系统维护，本服务只读
type PropertyUnit struct {
	PropertyUnitID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"property_unit_id"`
	BusinessID           string    `gorm:"type:uuid;not null"                             json:"business_id"`
	UnitNumber           string    `gorm:"type:varchar(50);not null"                      json:"unit_number"`
	OwnershipCoefficient float64   `gorm:"type:numeric(10,8);not null;default:0"          json:"ownership_coefficient"` // 产权系数，全物业合计 ≈ 1
	CurrentResidentID    *string   `gorm:"type:uuid"                                      json:"current_resident_id,omitempty"`
	CreatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt            time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (PropertyUnit) TableName() string { return "property_units" }

// Resident 住户表 — 对应 residents
// 由住户管理系统维护，本服务只读（仅用于展示姓名）
type Resident struct {
	ResidentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"resident_id"`
	BusinessID string    `gorm:"type:uuid;not null"                             json:"business_id"`
	FullName   string    `gorm:"type:varchar(200);not null"                     json:"full_name"`
	Email      *string   `gorm:"type:varchar(200)"                              json:"email,omitempty"`
	Phone      *string   `gorm:"type:varchar(50)"                               json:"phone,omitempty"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (Resident) TableName() string { return "residents" }
