package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"condominio/backend/internal/model"
	apperrors "condominio/backend/pkg/errors"
)

// ProxyFilter 代理列表过滤条件
type ProxyFilter struct {
	BusinessID     string
	PropertyUnitID string
	ProxyType      string
	IsActive       *bool
}

// ProxyRepository 委托代理数据访问接口
type ProxyRepository interface {
	Create(ctx context.Context, proxy *model.Proxy) error
	GetByID(ctx context.Context, id string) (*model.Proxy, error)
	Update(ctx context.Context, proxy *model.Proxy) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ProxyFilter, offset, limit int) ([]model.Proxy, int64, error)
	ListByUnit(ctx context.Context, unitID string) ([]model.Proxy, error)
	// ListActiveByUnit 取某单元全部活动代理，供窗口重叠校验
	ListActiveByUnit(ctx context.Context, unitID string) ([]model.Proxy, error)
}

// proxyRepo ProxyRepository 的 GORM 实现
type proxyRepo struct {
	db *gorm.DB
}

// NewProxyRepo 创建 ProxyRepository 实例
func NewProxyRepo(db *gorm.DB) ProxyRepository {
	return &proxyRepo{db: db}
}

// exclusionViolationCode 排他约束冲突的 SQLSTATE（excl_proxies_active_window）
const exclusionViolationCode = "23P01"

// isExclusionViolation 判断错误是否为数据库排他约束冲突
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == exclusionViolationCode
}

func (r *proxyRepo) Create(ctx context.Context, proxy *model.Proxy) error {
	if err := r.db.WithContext(ctx).Create(proxy).Error; err != nil {
		// 并发创建时 Service 层预校验可能双双通过，由排他约束兜底
		if isExclusionViolation(err) {
			return apperrors.ErrWindowConflict
		}
		return err
	}
	return nil
}

func (r *proxyRepo) GetByID(ctx context.Context, id string) (*model.Proxy, error) {
	var proxy model.Proxy
	err := r.db.WithContext(ctx).
		Where("proxy_id = ?", id).
		First(&proxy).Error
	if err != nil {
		return nil, err
	}
	return &proxy, nil
}

func (r *proxyRepo) Update(ctx context.Context, proxy *model.Proxy) error {
	if err := r.db.WithContext(ctx).Save(proxy).Error; err != nil {
		if isExclusionViolation(err) {
			return apperrors.ErrWindowConflict
		}
		return err
	}
	return nil
}

func (r *proxyRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("proxy_id = ?", id).
		Delete(&model.Proxy{}).Error
}

func (r *proxyRepo) List(ctx context.Context, filter ProxyFilter, offset, limit int) ([]model.Proxy, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Proxy{}).
		Where("business_id = ?", filter.BusinessID)

	if filter.PropertyUnitID != "" {
		db = db.Where("property_unit_id = ?", filter.PropertyUnitID)
	}
	if filter.ProxyType != "" {
		db = db.Where("proxy_type = ?", filter.ProxyType)
	}
	if filter.IsActive != nil {
		db = db.Where("is_active = ?", *filter.IsActive)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var proxies []model.Proxy
	err := db.
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&proxies).Error
	if err != nil {
		return nil, 0, err
	}

	return proxies, total, nil
}

func (r *proxyRepo) ListByUnit(ctx context.Context, unitID string) ([]model.Proxy, error) {
	var proxies []model.Proxy
	err := r.db.WithContext(ctx).
		Where("property_unit_id = ?", unitID).
		Order("start_date DESC").
		Find(&proxies).Error
	return proxies, err
}

func (r *proxyRepo) ListActiveByUnit(ctx context.Context, unitID string) ([]model.Proxy, error) {
	var proxies []model.Proxy
	err := r.db.WithContext(ctx).
		Where("property_unit_id = ? AND is_active = ?", unitID, true).
		Find(&proxies).Error
	return proxies, err
}
