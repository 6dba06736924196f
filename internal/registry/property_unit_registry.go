package registry

import (
	"context"

	"gorm.io/gorm"

	"condominio/backend/internal/model"
)

// PropertyUnitRegistry 物业单元只读访问接口
type PropertyUnitRegistry interface {
	GetByID(ctx context.Context, id string) (*model.PropertyUnit, error)
	ListByBusiness(ctx context.Context, businessID string) ([]model.PropertyUnit, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.PropertyUnit, error)
}

// propertyUnitRegistry PropertyUnitRegistry 的 GORM 实现
type propertyUnitRegistry struct {
	db *gorm.DB
}

// NewPropertyUnitRegistry 创建 PropertyUnitRegistry 实例
func NewPropertyUnitRegistry(db *gorm.DB) PropertyUnitRegistry {
	return &propertyUnitRegistry{db: db}
}

func (r *propertyUnitRegistry) GetByID(ctx context.Context, id string) (*model.PropertyUnit, error) {
	var unit model.PropertyUnit
	err := r.db.WithContext(ctx).
		Where("property_unit_id = ?", id).
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *propertyUnitRegistry) ListByBusiness(ctx context.Context, businessID string) ([]model.PropertyUnit, error) {
	var units []model.PropertyUnit
	err := r.db.WithContext(ctx).
		Where("business_id = ?", businessID).
		Order("unit_number ASC").
		Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}

func (r *propertyUnitRegistry) ListByIDs(ctx context.Context, ids []string) ([]model.PropertyUnit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var units []model.PropertyUnit
	err := r.db.WithContext(ctx).
		Where("property_unit_id IN ?", ids).
		Order("unit_number ASC").
		Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}
