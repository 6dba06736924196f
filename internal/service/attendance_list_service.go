package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"condominio/backend/internal/dto"
	"condominio/backend/internal/model"
	"condominio/backend/internal/registry"
	"condominio/backend/internal/repository"
)

// ── 出席名册模块业务错误 ──

var (
	ErrAttendanceListNotFound = errors.New("出席名册不存在")
	ErrVotingGroupNotFound    = errors.New("投票组不存在")
	ErrNoEligibleUnits        = errors.New("投票组内没有可参会的物业单元")
	ErrMeetingDateInvalid     = errors.New("大会日期格式无效")
	ErrRegistryUnavailable    = errors.New("物业登记服务不可用")
)

// AttendanceListService 出席名册业务接口
type AttendanceListService interface {
	// Create 手动创建名册：按投票组成员一并生成全部未出席记录
	Create(ctx context.Context, req *dto.CreateAttendanceListRequest, callerID string) (*dto.AttendanceListResponse, error)
	// Generate 按投票组自动生成名册，标题缺省取投票组名
	// 已存在同组名册时仍创建新名册：一场大会一份名册，记录唯一性在名册内部保证
	Generate(ctx context.Context, req *dto.GenerateAttendanceListRequest, callerID string) (*dto.AttendanceListResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AttendanceListResponse, error)
	List(ctx context.Context, req *dto.ListAttendanceListsRequest) ([]dto.AttendanceListResponse, error)
	Delete(ctx context.Context, id string) error
}

type attendanceListService struct {
	repo   *repository.Repository
	reg    *registry.Registry
	logger *zap.Logger
}

// NewAttendanceListService 创建 AttendanceListService 实例
func NewAttendanceListService(repo *repository.Repository, reg *registry.Registry, logger *zap.Logger) AttendanceListService {
	return &attendanceListService{repo: repo, reg: reg, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *attendanceListService) Create(ctx context.Context, req *dto.CreateAttendanceListRequest, callerID string) (*dto.AttendanceListResponse, error) {
	meetingDate, err := parseOptionalDate(req.MeetingDate)
	if err != nil {
		return nil, ErrMeetingDateInvalid
	}

	group, units, err := s.resolveGroupUnits(ctx, req.VotingGroupID)
	if err != nil {
		return nil, err
	}

	list := &model.AttendanceList{
		VotingGroupID: group.VotingGroupID,
		BusinessID:    group.BusinessID,
		Title:         req.Title,
		Description:   req.Description,
		Notes:         req.Notes,
		MeetingDate:   meetingDate,
		IsActive:      true,
	}

	if err := s.createWithRecords(ctx, list, units, callerID); err != nil {
		return nil, err
	}

	return toAttendanceListResponse(list), nil
}

// ────────────────────── Generate ──────────────────────

func (s *attendanceListService) Generate(ctx context.Context, req *dto.GenerateAttendanceListRequest, callerID string) (*dto.AttendanceListResponse, error) {
	meetingDate, err := parseOptionalDate(req.MeetingDate)
	if err != nil {
		return nil, ErrMeetingDateInvalid
	}

	group, units, err := s.resolveGroupUnits(ctx, req.VotingGroupID)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Asistencia %s", group.Name)
	if req.Title != nil {
		title = *req.Title
	}

	list := &model.AttendanceList{
		VotingGroupID: group.VotingGroupID,
		BusinessID:    group.BusinessID,
		Title:         title,
		MeetingDate:   meetingDate,
		IsActive:      true,
	}

	if err := s.createWithRecords(ctx, list, units, callerID); err != nil {
		return nil, err
	}

	s.logger.Info("出席名册生成完成",
		zap.String("attendance_list_id", list.AttendanceListID),
		zap.String("voting_group_id", group.VotingGroupID),
		zap.Int("units", len(units)),
	)

	return toAttendanceListResponse(list), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *attendanceListService) GetByID(ctx context.Context, id string) (*dto.AttendanceListResponse, error) {
	list, err := s.repo.AttendanceList.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceListNotFound
		}
		s.logger.Error("查询出席名册失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return toAttendanceListResponse(list), nil
}

// ────────────────────── List ──────────────────────

func (s *attendanceListService) List(ctx context.Context, req *dto.ListAttendanceListsRequest) ([]dto.AttendanceListResponse, error) {
	lists, err := s.repo.AttendanceList.List(ctx, req.BusinessID, req.Title, req.IsActive)
	if err != nil {
		s.logger.Error("列出出席名册失败", zap.String("business_id", req.BusinessID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.AttendanceListResponse, 0, len(lists))
	for i := range lists {
		result = append(result, *toAttendanceListResponse(&lists[i]))
	}

	return result, nil
}

// ────────────────────── Delete ──────────────────────

func (s *attendanceListService) Delete(ctx context.Context, id string) error {
	_, err := s.repo.AttendanceList.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttendanceListNotFound
		}
		s.logger.Error("查询出席名册失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 记录由外键级联删除
	if err := s.repo.AttendanceList.Delete(ctx, id); err != nil {
		s.logger.Error("删除出席名册失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

// resolveGroupUnits 解析投票组及其成员单元
// 登记服务的非 NotFound 错误一律按上游不可用处理
func (s *attendanceListService) resolveGroupUnits(ctx context.Context, votingGroupID string) (*model.VotingGroup, []model.PropertyUnit, error) {
	group, err := s.reg.VotingGroup.GetByID(ctx, votingGroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrVotingGroupNotFound
		}
		s.logger.Error("查询投票组失败", zap.String("voting_group_id", votingGroupID), zap.Error(err))
		return nil, nil, ErrRegistryUnavailable
	}

	unitIDs, err := s.reg.VotingGroup.ListUnitIDs(ctx, votingGroupID)
	if err != nil {
		s.logger.Error("查询投票组成员失败", zap.String("voting_group_id", votingGroupID), zap.Error(err))
		return nil, nil, ErrRegistryUnavailable
	}
	if len(unitIDs) == 0 {
		return nil, nil, ErrNoEligibleUnits
	}

	units, err := s.reg.PropertyUnit.ListByIDs(ctx, unitIDs)
	if err != nil {
		s.logger.Error("查询物业单元失败", zap.String("voting_group_id", votingGroupID), zap.Error(err))
		return nil, nil, ErrRegistryUnavailable
	}
	if len(units) == 0 {
		return nil, nil, ErrNoEligibleUnits
	}

	return group, units, nil
}

// createWithRecords 同一事务内创建名册及每单元一条未出席记录
func (s *attendanceListService) createWithRecords(ctx context.Context, list *model.AttendanceList, units []model.PropertyUnit, callerID string) error {
	list.CreatedBy = &callerID
	list.UpdatedBy = &callerID

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

	if err := txRepo.AttendanceList.Create(ctx, list); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建出席名册失败", zap.Error(err))
		return err
	}

	records := make([]model.AttendanceRecord, 0, len(units))
	for i := range units {
		u := &units[i]
		record := model.AttendanceRecord{
			AttendanceListID: list.AttendanceListID,
			PropertyUnitID:   u.PropertyUnitID,
			ResidentID:       u.CurrentResidentID,
			AttendedAsOwner:  false,
			AttendedAsProxy:  false,
			IsValid:          true,
		}
		record.CreatedBy = &callerID
		record.UpdatedBy = &callerID
		records = append(records, record)
	}

	if err := txRepo.AttendanceRecord.CreateBatch(ctx, records); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建出席记录失败", zap.String("attendance_list_id", list.AttendanceListID), zap.Error(err))
		return err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			s.logger.Error("提交事务失败", zap.Error(err))
			return err
		}
	}

	return nil
}

func toAttendanceListResponse(list *model.AttendanceList) *dto.AttendanceListResponse {
	var meetingDate *string
	if list.MeetingDate != nil {
		d := list.MeetingDate.Format("2006-01-02")
		meetingDate = &d
	}
	return &dto.AttendanceListResponse{
		ID:            list.AttendanceListID,
		VotingGroupID: list.VotingGroupID,
		BusinessID:    list.BusinessID,
		Title:         list.Title,
		Description:   list.Description,
		Notes:         list.Notes,
		MeetingDate:   meetingDate,
		IsActive:      list.IsActive,
		CreatedAt:     list.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     list.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// parseOptionalDate 解析可选的 "2006-01-02" 日期
func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	d, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
