package registry

import "gorm.io/gorm"

// Registry 外部登记数据的只读访问聚合
// 物业单元、住户与投票组由平台其他系统维护，本服务只消费；
// 访问失败按上游不可用处理，不在本层重试。
type Registry struct {
	PropertyUnit PropertyUnitRegistry
	VotingGroup  VotingGroupRegistry
}

// NewRegistry 创建 Registry 聚合
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{
		PropertyUnit: NewPropertyUnitRegistry(db),
		VotingGroup:  NewVotingGroupRegistry(db),
	}
}
