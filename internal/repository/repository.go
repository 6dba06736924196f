package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	AttendanceList   AttendanceListRepository
	AttendanceRecord AttendanceRecordRepository
	Proxy            ProxyRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		AttendanceList:   NewAttendanceListRepo(db),
		AttendanceRecord: NewAttendanceRecordRepo(db),
		Proxy:            NewProxyRepo(db),
		db:               db,
	}
}

// BeginTx 开启数据库事务
// db 为空时（单元测试注入 Mock Repository 的场景）返回 nil 事务，
// 调用方以 tx != nil 判断是否需要提交/回滚。
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx 返回绑定到事务连接的 Repository 聚合
// tx 为空时返回自身（Mock 场景下各 Repository 不变）。
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}
