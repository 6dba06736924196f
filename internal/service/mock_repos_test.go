package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"condominio/backend/internal/model"
	"condominio/backend/internal/repository"
	apperrors "condominio/backend/pkg/errors"
)

// ── Mock AttendanceListRepository ──

type mockAttendanceListRepo struct {
	lists map[string]*model.AttendanceList
	seq   int
}

func newMockAttendanceListRepo() *mockAttendanceListRepo {
	return &mockAttendanceListRepo{lists: make(map[string]*model.AttendanceList)}
}

func (m *mockAttendanceListRepo) Create(_ context.Context, list *model.AttendanceList) error {
	if list.AttendanceListID == "" {
		m.seq++
		list.AttendanceListID = fmt.Sprintf("list-%d", m.seq)
	}
	m.lists[list.AttendanceListID] = list
	return nil
}

func (m *mockAttendanceListRepo) GetByID(_ context.Context, id string) (*model.AttendanceList, error) {
	if l, ok := m.lists[id]; ok {
		return l, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceListRepo) List(_ context.Context, businessID, title string, isActive *bool) ([]model.AttendanceList, error) {
	var result []model.AttendanceList
	for _, l := range m.lists {
		if businessID != "" && l.BusinessID != businessID {
			continue
		}
		if title != "" && !strings.Contains(l.Title, title) {
			continue
		}
		if isActive != nil && l.IsActive != *isActive {
			continue
		}
		result = append(result, *l)
	}
	return result, nil
}

func (m *mockAttendanceListRepo) Update(_ context.Context, list *model.AttendanceList) error {
	m.lists[list.AttendanceListID] = list
	return nil
}

func (m *mockAttendanceListRepo) Delete(_ context.Context, id string) error {
	delete(m.lists, id)
	return nil
}

// ── Mock AttendanceRecordRepository ──

// units 用于补齐联表取回的单元号与产权系数
type mockAttendanceRecordRepo struct {
	records map[string]*model.AttendanceRecord
	units   map[string]*model.PropertyUnit
	seq     int
}

func newMockAttendanceRecordRepo() *mockAttendanceRecordRepo {
	return &mockAttendanceRecordRepo{
		records: make(map[string]*model.AttendanceRecord),
		units:   make(map[string]*model.PropertyUnit),
	}
}

func (m *mockAttendanceRecordRepo) CreateBatch(_ context.Context, records []model.AttendanceRecord) error {
	for i := range records {
		r := records[i]
		if r.AttendanceRecordID == "" {
			m.seq++
			r.AttendanceRecordID = fmt.Sprintf("rec-%d", m.seq)
		}
		m.records[r.AttendanceRecordID] = &r
	}
	return nil
}

func (m *mockAttendanceRecordRepo) GetByID(_ context.Context, id string) (*model.AttendanceRecord, error) {
	if r, ok := m.records[id]; ok {
		copied := *r
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRecordRepo) GetByListAndUnit(_ context.Context, listID, unitID string) (*model.AttendanceRecord, error) {
	for _, r := range m.records {
		if r.AttendanceListID == listID && r.PropertyUnitID == unitID {
			copied := *r
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAttendanceRecordRepo) Mark(_ context.Context, id string, updates map[string]interface{}) error {
	r, ok := m.records[id]
	if !ok || r.Attended() {
		return apperrors.ErrOptimisticLock
	}
	applyRecordUpdates(r, updates)
	return nil
}

func (m *mockAttendanceRecordRepo) Unmark(_ context.Context, id string, updates map[string]interface{}) error {
	r, ok := m.records[id]
	if !ok || !r.Attended() {
		return apperrors.ErrOptimisticLock
	}
	applyRecordUpdates(r, updates)
	return nil
}

func (m *mockAttendanceRecordRepo) Update(_ context.Context, id string, updates map[string]interface{}) error {
	r, ok := m.records[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	applyRecordUpdates(r, updates)
	return nil
}

func (m *mockAttendanceRecordRepo) ListPage(_ context.Context, listID string, offset, limit int, unitNumber string, attended *bool) ([]repository.RecordRow, int64, error) {
	rows := m.rowsOf(listID)

	var filtered []repository.RecordRow
	for _, row := range rows {
		if unitNumber != "" && !strings.Contains(row.UnitNumber, unitNumber) {
			continue
		}
		if attended != nil && row.Attended() != *attended {
			continue
		}
		filtered = append(filtered, row)
	}

	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockAttendanceRecordRepo) ListAll(_ context.Context, listID string, limit int) ([]repository.RecordRow, error) {
	rows := m.rowsOf(listID)
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (m *mockAttendanceRecordRepo) SummaryRows(_ context.Context, listID string) ([]repository.SummaryRow, error) {
	var rows []repository.SummaryRow
	for _, r := range m.records {
		if r.AttendanceListID != listID {
			continue
		}
		var coef float64
		if u, ok := m.units[r.PropertyUnitID]; ok {
			coef = u.OwnershipCoefficient
		}
		rows = append(rows, repository.SummaryRow{
			AttendedAsOwner:      r.AttendedAsOwner,
			AttendedAsProxy:      r.AttendedAsProxy,
			IsValid:              r.IsValid,
			OwnershipCoefficient: coef,
		})
	}
	return rows, nil
}

func (m *mockAttendanceRecordRepo) ClearProxyAttendance(_ context.Context, proxyID string) (int64, error) {
	var cleared int64
	for _, r := range m.records {
		if r.ProxyID != nil && *r.ProxyID == proxyID {
			r.ProxyID = nil
			r.AttendedAsProxy = false
			cleared++
		}
	}
	return cleared, nil
}

func (m *mockAttendanceRecordRepo) rowsOf(listID string) []repository.RecordRow {
	var rows []repository.RecordRow
	for _, r := range m.records {
		if r.AttendanceListID != listID {
			continue
		}
		row := repository.RecordRow{AttendanceRecord: *r}
		if u, ok := m.units[r.PropertyUnitID]; ok {
			row.UnitNumber = u.UnitNumber
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].UnitNumber < rows[j].UnitNumber })
	return rows
}

// applyRecordUpdates 按 GORM Updates map 的语义更新 Mock 内的记录
func applyRecordUpdates(r *model.AttendanceRecord, updates map[string]interface{}) {
	for key, value := range updates {
		switch key {
		case "attended_as_owner":
			r.AttendedAsOwner = value.(bool)
		case "attended_as_proxy":
			r.AttendedAsProxy = value.(bool)
		case "is_valid":
			r.IsValid = value.(bool)
		case "proxy_id":
			r.ProxyID = asStrPtr(value)
		case "resident_id":
			r.ResidentID = asStrPtr(value)
		case "signature":
			r.Signature = asStrPtr(value)
		case "signature_method":
			r.SignatureMethod = asStrPtr(value)
		case "signature_date":
			r.SignatureDate = asTimePtr(value)
		case "verified_by":
			r.VerifiedBy = asStrPtr(value)
		case "verification_date":
			r.VerificationDate = asTimePtr(value)
		case "verification_notes":
			r.VerificationNotes = asStrPtr(value)
		case "notes":
			r.Notes = asStrPtr(value)
		case "updated_by":
			r.UpdatedBy = asStrPtr(value)
		case "updated_at":
			if t, ok := value.(time.Time); ok {
				r.UpdatedAt = t
			}
		}
	}
}

func asStrPtr(value interface{}) *string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		return &v
	case *string:
		return v
	}
	return nil
}

func asTimePtr(value interface{}) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return &v
	case *time.Time:
		return v
	}
	return nil
}

// ── Mock ProxyRepository ──

type mockProxyRepo struct {
	proxies   map[string]*model.Proxy
	seq       int
	createErr error
	updateErr error
}

func newMockProxyRepo() *mockProxyRepo {
	return &mockProxyRepo{proxies: make(map[string]*model.Proxy)}
}

func (m *mockProxyRepo) Create(_ context.Context, proxy *model.Proxy) error {
	if m.createErr != nil {
		return m.createErr
	}
	if proxy.ProxyID == "" {
		m.seq++
		proxy.ProxyID = fmt.Sprintf("proxy-%d", m.seq)
	}
	m.proxies[proxy.ProxyID] = proxy
	return nil
}

func (m *mockProxyRepo) GetByID(_ context.Context, id string) (*model.Proxy, error) {
	if p, ok := m.proxies[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProxyRepo) Update(_ context.Context, proxy *model.Proxy) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.proxies[proxy.ProxyID] = proxy
	return nil
}

func (m *mockProxyRepo) Delete(_ context.Context, id string) error {
	delete(m.proxies, id)
	return nil
}

func (m *mockProxyRepo) List(_ context.Context, filter repository.ProxyFilter, offset, limit int) ([]model.Proxy, int64, error) {
	var filtered []model.Proxy
	for _, p := range m.proxies {
		if filter.BusinessID != "" && p.BusinessID != filter.BusinessID {
			continue
		}
		if filter.PropertyUnitID != "" && p.PropertyUnitID != filter.PropertyUnitID {
			continue
		}
		if filter.ProxyType != "" && p.ProxyType != filter.ProxyType {
			continue
		}
		if filter.IsActive != nil && p.IsActive != *filter.IsActive {
			continue
		}
		filtered = append(filtered, *p)
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ProxyID < filtered[j].ProxyID })

	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockProxyRepo) ListByUnit(_ context.Context, unitID string) ([]model.Proxy, error) {
	var result []model.Proxy
	for _, p := range m.proxies {
		if p.PropertyUnitID == unitID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProxyRepo) ListActiveByUnit(_ context.Context, unitID string) ([]model.Proxy, error) {
	var result []model.Proxy
	for _, p := range m.proxies {
		if p.PropertyUnitID == unitID && p.IsActive {
			result = append(result, *p)
		}
	}
	return result, nil
}

// ── Mock PropertyUnitRegistry ──

type mockPropertyUnitRegistry struct {
	units map[string]*model.PropertyUnit
	err   error
}

func newMockPropertyUnitRegistry() *mockPropertyUnitRegistry {
	return &mockPropertyUnitRegistry{units: make(map[string]*model.PropertyUnit)}
}

func (m *mockPropertyUnitRegistry) GetByID(_ context.Context, id string) (*model.PropertyUnit, error) {
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.units[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPropertyUnitRegistry) ListByBusiness(_ context.Context, businessID string) ([]model.PropertyUnit, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.PropertyUnit
	for _, u := range m.units {
		if u.BusinessID == businessID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockPropertyUnitRegistry) ListByIDs(_ context.Context, ids []string) ([]model.PropertyUnit, error) {
	if m.err != nil {
		return nil, m.err
	}
	var result []model.PropertyUnit
	for _, id := range ids {
		if u, ok := m.units[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

// ── Mock VotingGroupRegistry ──

type mockVotingGroupRegistry struct {
	groups  map[string]*model.VotingGroup
	members map[string][]string
	err     error
}

func newMockVotingGroupRegistry() *mockVotingGroupRegistry {
	return &mockVotingGroupRegistry{
		groups:  make(map[string]*model.VotingGroup),
		members: make(map[string][]string),
	}
}

func (m *mockVotingGroupRegistry) GetByID(_ context.Context, id string) (*model.VotingGroup, error) {
	if m.err != nil {
		return nil, m.err
	}
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVotingGroupRegistry) ListUnitIDs(_ context.Context, votingGroupID string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members[votingGroupID], nil
}
