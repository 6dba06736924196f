package model

import "time"

// VotingGroup 投票组表 — 对应 voting_groups
// 由大会管理系统维护，本服务只读
type VotingGroup struct {
	VotingGroupID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"voting_group_id"`
	BusinessID    string    `gorm:"type:uuid;not null"                             json:"business_id"`
	Name          string    `gorm:"type:varchar(200);not null"                     json:"name"`
	Description   *string   `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive      bool      `gorm:"not null;default:true"                          json:"is_active"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

// TableName 指定表名
func (VotingGroup) TableName() string { return "voting_groups" }

// VotingGroupUnit 投票组成员表 — 对应 voting_group_units
type VotingGroupUnit struct {
	VotingGroupID  string `gorm:"type:uuid;primaryKey" json:"voting_group_id"`
	PropertyUnitID string `gorm:"type:uuid;primaryKey" json:"property_unit_id"`
}

// TableName 指定表名
func (VotingGroupUnit) TableName() string { return "voting_group_units" }
