package registry

import (
	"context"

	"gorm.io/gorm"

	"condominio/backend/internal/model"
)

// VotingGroupRegistry 投票组只读访问接口
type VotingGroupRegistry interface {
	GetByID(ctx context.Context, id string) (*model.VotingGroup, error)
	// ListUnitIDs 返回投票组全部成员单元的 ID
	ListUnitIDs(ctx context.Context, votingGroupID string) ([]string, error)
}

// votingGroupRegistry VotingGroupRegistry 的 GORM 实现
type votingGroupRegistry struct {
	db *gorm.DB
}

// NewVotingGroupRegistry 创建 VotingGroupRegistry 实例
func NewVotingGroupRegistry(db *gorm.DB) VotingGroupRegistry {
	return &votingGroupRegistry{db: db}
}

func (r *votingGroupRegistry) GetByID(ctx context.Context, id string) (*model.VotingGroup, error) {
	var group model.VotingGroup
	err := r.db.WithContext(ctx).
		Where("voting_group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *votingGroupRegistry) ListUnitIDs(ctx context.Context, votingGroupID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.VotingGroupUnit{}).
		Where("voting_group_id = ?", votingGroupID).
		Pluck("property_unit_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}
