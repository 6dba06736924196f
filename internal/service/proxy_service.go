package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"condominio/backend/internal/dto"
	"condominio/backend/internal/model"
	"condominio/backend/internal/registry"
	"condominio/backend/internal/repository"
	apperrors "condominio/backend/pkg/errors"
)

// ── 委托代理模块业务错误 ──

var (
	ErrProxyNotFound    = errors.New("代理不存在")
	ErrProxyUnitMissing = errors.New("物业单元不存在")
	ErrProxyDateInvalid = errors.New("委托日期无效：格式错误或截止日期早于开始日期")
	ErrProxyOverlap     = errors.New("该单元已有时间窗口重叠的活动代理")
)

// ProxyService 委托代理业务接口
//
// 不变量：同一单元同一时刻至多一个活动代理（窗口互不重叠）。
// 删除代理会级联清除指向它的代理出席（记录退回未出席），两步在同一事务内完成。
type ProxyService interface {
	Create(ctx context.Context, req *dto.CreateProxyRequest, callerID string) (*dto.ProxyResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProxyResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateProxyRequest, callerID string) (*dto.ProxyResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, req *dto.ListProxiesRequest) ([]dto.ProxyResponse, int64, error)
	ListByUnit(ctx context.Context, unitID string) ([]dto.ProxyResponse, error)
}

type proxyService struct {
	repo   *repository.Repository
	reg    *registry.Registry
	logger *zap.Logger
}

// NewProxyService 创建 ProxyService 实例
func NewProxyService(repo *repository.Repository, reg *registry.Registry, logger *zap.Logger) ProxyService {
	return &proxyService{repo: repo, reg: reg, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *proxyService) Create(ctx context.Context, req *dto.CreateProxyRequest, callerID string) (*dto.ProxyResponse, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrProxyDateInvalid
	}
	endDate, err := parseOptionalDate(req.EndDate)
	if err != nil {
		return nil, ErrProxyDateInvalid
	}
	if endDate != nil && endDate.Before(startDate) {
		return nil, ErrProxyDateInvalid
	}

	if _, err := s.reg.PropertyUnit.GetByID(ctx, req.PropertyUnitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProxyUnitMissing
		}
		s.logger.Error("查询物业单元失败", zap.String("property_unit_id", req.PropertyUnitID), zap.Error(err))
		return nil, ErrRegistryUnavailable
	}

	proxy := &model.Proxy{
		BusinessID:      req.BusinessID,
		PropertyUnitID:  req.PropertyUnitID,
		ProxyName:       req.ProxyName,
		ProxyDNI:        req.ProxyDNI,
		ProxyEmail:      req.ProxyEmail,
		ProxyPhone:      req.ProxyPhone,
		ProxyAddress:    req.ProxyAddress,
		ProxyType:       req.ProxyType,
		StartDate:       startDate,
		EndDate:         endDate,
		PowerOfAttorney: req.PowerOfAttorney,
		IsActive:        true,
		Notes:           req.Notes,
	}
	proxy.CreatedBy = &callerID
	proxy.UpdatedBy = &callerID

	// 预校验给出友好错误；并发双委托由数据库排他约束兜底
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	if err := s.checkOverlap(ctx, txRepo, proxy, ""); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		return nil, err
	}

	if err := txRepo.Proxy.Create(ctx, proxy); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, apperrors.ErrWindowConflict) {
			// 并发下另一操作员抢先提交了重叠窗口，预校验未能看到
			return nil, ErrProxyOverlap
		}
		s.logger.Error("创建代理失败", zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return toProxyResponse(proxy), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *proxyService) GetByID(ctx context.Context, id string) (*dto.ProxyResponse, error) {
	proxy, err := s.getProxy(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProxyResponse(proxy), nil
}

// ────────────────────── Update ──────────────────────

func (s *proxyService) Update(ctx context.Context, id string, req *dto.UpdateProxyRequest, callerID string) (*dto.ProxyResponse, error) {
	proxy, err := s.getProxy(ctx, id)
	if err != nil {
		return nil, err
	}

	wasActive := proxy.IsActive
	datesChanged := false

	if req.ProxyName != nil {
		proxy.ProxyName = *req.ProxyName
	}
	if req.ProxyDNI != nil {
		proxy.ProxyDNI = req.ProxyDNI
	}
	if req.ProxyEmail != nil {
		proxy.ProxyEmail = req.ProxyEmail
	}
	if req.ProxyPhone != nil {
		proxy.ProxyPhone = req.ProxyPhone
	}
	if req.ProxyAddress != nil {
		proxy.ProxyAddress = req.ProxyAddress
	}
	if req.ProxyType != nil {
		proxy.ProxyType = *req.ProxyType
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrProxyDateInvalid
		}
		proxy.StartDate = startDate
		datesChanged = true
	}
	if req.EndDate != nil {
		endDate, err := parseOptionalDate(req.EndDate)
		if err != nil {
			return nil, ErrProxyDateInvalid
		}
		proxy.EndDate = endDate
		datesChanged = true
	}
	if proxy.EndDate != nil && proxy.EndDate.Before(proxy.StartDate) {
		return nil, ErrProxyDateInvalid
	}
	if req.PowerOfAttorney != nil {
		proxy.PowerOfAttorney = req.PowerOfAttorney
	}
	if req.IsActive != nil {
		proxy.IsActive = *req.IsActive
	}
	if req.Notes != nil {
		proxy.Notes = req.Notes
	}

	proxy.UpdatedBy = &callerID

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	// 激活或窗口变动时重新校验不重叠（排除自身）
	if proxy.IsActive && (!wasActive || datesChanged) {
		if err := s.checkOverlap(ctx, txRepo, proxy, proxy.ProxyID); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			return nil, err
		}
	}

	if err := txRepo.Proxy.Update(ctx, proxy); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if errors.Is(err, apperrors.ErrWindowConflict) {
			return nil, ErrProxyOverlap
		}
		s.logger.Error("更新代理失败", zap.String("proxy_id", id), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return nil, err
		}
	}

	return toProxyResponse(proxy), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 硬删除代理并级联清除指向它的代理出席
// 两个实体分属不同 Repository，级联必须在这里以单一事务显式完成
func (s *proxyService) Delete(ctx context.Context, id string) error {
	proxy, err := s.getProxy(ctx, id)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()

	txRepo := s.repo.WithTx(tx)

	cleared, err := txRepo.AttendanceRecord.ClearProxyAttendance(ctx, id)
	if err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("清除代理出席失败", zap.String("proxy_id", id), zap.Error(err))
		return err
	}

	if err := txRepo.Proxy.Delete(ctx, id); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("删除代理失败", zap.String("proxy_id", id), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	if cleared > 0 {
		s.logger.Info("代理删除并级联清除出席",
			zap.String("proxy_id", id),
			zap.String("property_unit_id", proxy.PropertyUnitID),
			zap.Int64("records_cleared", cleared),
		)
	}

	return nil
}

// ────────────────────── List / ListByUnit ──────────────────────

func (s *proxyService) List(ctx context.Context, req *dto.ListProxiesRequest) ([]dto.ProxyResponse, int64, error) {
	filter := repository.ProxyFilter{
		BusinessID:     req.BusinessID,
		PropertyUnitID: req.PropertyUnitID,
		ProxyType:      req.ProxyType,
		IsActive:       req.IsActive,
	}

	proxies, total, err := s.repo.Proxy.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出代理失败", zap.String("business_id", req.BusinessID), zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ProxyResponse, 0, len(proxies))
	for i := range proxies {
		result = append(result, *toProxyResponse(&proxies[i]))
	}

	return result, total, nil
}

func (s *proxyService) ListByUnit(ctx context.Context, unitID string) ([]dto.ProxyResponse, error) {
	if _, err := s.reg.PropertyUnit.GetByID(ctx, unitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProxyUnitMissing
		}
		s.logger.Error("查询物业单元失败", zap.String("property_unit_id", unitID), zap.Error(err))
		return nil, ErrRegistryUnavailable
	}

	proxies, err := s.repo.Proxy.ListByUnit(ctx, unitID)
	if err != nil {
		s.logger.Error("查询单元代理失败", zap.String("property_unit_id", unitID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.ProxyResponse, 0, len(proxies))
	for i := range proxies {
		result = append(result, *toProxyResponse(&proxies[i]))
	}

	return result, nil
}

// ── 内部辅助方法 ──

// checkOverlap 校验同单元活动代理窗口不重叠；excludeID 用于更新场景排除自身
func (s *proxyService) checkOverlap(ctx context.Context, repo *repository.Repository, proxy *model.Proxy, excludeID string) error {
	actives, err := repo.Proxy.ListActiveByUnit(ctx, proxy.PropertyUnitID)
	if err != nil {
		s.logger.Error("查询活动代理失败", zap.String("property_unit_id", proxy.PropertyUnitID), zap.Error(err))
		return err
	}

	for i := range actives {
		if actives[i].ProxyID == excludeID {
			continue
		}
		if actives[i].WindowOverlaps(proxy.StartDate, proxy.EndDate) {
			return ErrProxyOverlap
		}
	}

	return nil
}

func (s *proxyService) getProxy(ctx context.Context, id string) (*model.Proxy, error) {
	proxy, err := s.repo.Proxy.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProxyNotFound
		}
		s.logger.Error("查询代理失败", zap.String("proxy_id", id), zap.Error(err))
		return nil, err
	}
	return proxy, nil
}

func toProxyResponse(proxy *model.Proxy) *dto.ProxyResponse {
	resp := &dto.ProxyResponse{
		ID:              proxy.ProxyID,
		BusinessID:      proxy.BusinessID,
		PropertyUnitID:  proxy.PropertyUnitID,
		ProxyName:       proxy.ProxyName,
		ProxyDNI:        proxy.ProxyDNI,
		ProxyEmail:      proxy.ProxyEmail,
		ProxyPhone:      proxy.ProxyPhone,
		ProxyAddress:    proxy.ProxyAddress,
		ProxyType:       proxy.ProxyType,
		StartDate:       proxy.StartDate.Format("2006-01-02"),
		PowerOfAttorney: proxy.PowerOfAttorney,
		IsActive:        proxy.IsActive,
		Notes:           proxy.Notes,
		CreatedAt:       proxy.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:       proxy.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if proxy.EndDate != nil {
		d := proxy.EndDate.Format("2006-01-02")
		resp.EndDate = &d
	}
	return resp
}
