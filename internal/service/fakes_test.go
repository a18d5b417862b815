package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/grading"
	"selfreg-backend/internal/ledger"
	"selfreg-backend/internal/lifecycle"
	"selfreg-backend/internal/ports"
	"selfreg-backend/internal/repository"
)

var (
	superAdmin = domain.Actor{AdminID: 1, Username: "root", Role: domain.RoleSuperAdmin}
	localAdmin = domain.Actor{AdminID: 2, Username: "anil", Role: domain.RoleLocalAdmin}
	userAdmin  = domain.Actor{AdminID: 3, Username: "beena", Role: domain.RoleUserAdmin}
)

// memRegistrations is an in-memory RegistrationStore. failUpdate makes
// UpdateStatus fail for specific ids.
type memRegistrations struct {
	mu         sync.Mutex
	nextID     int64
	items      map[int64]*domain.Registration
	categories *memCategories
	failUpdate map[int64]error
	now        time.Time
}

func newMemRegistrations(categories *memCategories) *memRegistrations {
	return &memRegistrations{
		items:      map[int64]*domain.Registration{},
		categories: categories,
		failUpdate: map[int64]error{},
		now:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

// seed stores reg as-is, assigning an id when missing.
func (m *memRegistrations) seed(reg domain.Registration) *domain.Registration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if reg.ID == 0 {
		m.nextID++
		reg.ID = m.nextID
	} else if reg.ID > m.nextID {
		m.nextID = reg.ID
	}
	if reg.Status == "" {
		reg.Status = domain.StatusPending
	}
	m.items[reg.ID] = &reg
	return &reg
}

func (m *memRegistrations) Create(_ context.Context, in ports.NewRegistration) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.items {
		if r.MobileNumber == in.MobileNumber {
			return nil, fmt.Errorf("%w: registrations_mobile_number_key", repository.ErrDuplicate)
		}
	}
	m.nextID++
	reg := &domain.Registration{
		ID:           m.nextID,
		CustomerID:   in.CustomerID,
		Name:         in.Name,
		MobileNumber: in.MobileNumber,
		Address:      in.Address,
		Ward:         in.Ward,
		AgentPro:     in.AgentPro,
		CategoryID:   in.CategoryID,
		PanchayathID: in.PanchayathID,
		Preference:   in.Preference,
		FeePaid:      in.FeePaid,
		Status:       domain.StatusPending,
		CreatedAt:    m.now,
		UpdatedAt:    m.now,
	}
	if m.categories != nil {
		if c, ok := m.categories.items[in.CategoryID]; ok {
			reg.CategoryName = c.Name
		}
	}
	m.items[reg.ID] = reg
	out := *reg
	return &out, nil
}

func (m *memRegistrations) Get(_ context.Context, id int64) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (m *memRegistrations) FindForStatusCheck(_ context.Context, mobile, customerID string) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.items {
		if (mobile != "" && r.MobileNumber == mobile) || (customerID != "" && strings.EqualFold(r.CustomerID, customerID)) {
			out := *r
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memRegistrations) List(_ context.Context, f ports.RegistrationFilter) ([]domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []domain.Registration{}
	for _, r := range m.items {
		if f.Status != nil && r.Status != *f.Status {
			continue
		}
		if f.CategoryID != nil && r.CategoryID != *f.CategoryID {
			continue
		}
		if f.PanchayathID != nil && (r.PanchayathID == nil || *r.PanchayathID != *f.PanchayathID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(r.MobileNumber, search) &&
			!strings.Contains(strings.ToLower(r.CustomerID), search) {
			continue
		}
		if f.From != nil && r.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !r.CreatedAt.Before(f.To.AddDate(0, 0, 1)) {
			continue
		}
		if f.CreatedAfter != nil && !r.CreatedAt.After(*f.CreatedAfter) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (m *memRegistrations) UpdateStatus(_ context.Context, id int64, change lifecycle.StatusChange) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failUpdate[id]; err != nil {
		return nil, err
	}
	r, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	change.Apply(r)
	out := *r
	return &out, nil
}

func (m *memRegistrations) Update(_ context.Context, id int64, in ports.RegistrationEdit, at time.Time) (*domain.Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, other := range m.items {
		if other.ID != id && other.MobileNumber == in.MobileNumber {
			return nil, fmt.Errorf("%w: registrations_mobile_number_key", repository.ErrDuplicate)
		}
	}
	r.Name, r.Address, r.MobileNumber, r.Ward, r.AgentPro, r.FeePaid = in.Name, in.Address, in.MobileNumber, in.Ward, in.AgentPro, in.FeePaid
	r.UpdatedAt = at
	out := *r
	return &out, nil
}

func (m *memRegistrations) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memRegistrations) StatusCounts(_ context.Context) (map[domain.RegistrationStatus]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[domain.RegistrationStatus]int64{}
	for _, r := range m.items {
		out[r.Status]++
	}
	return out, nil
}

func (m *memRegistrations) LocalityStats(_ context.Context) ([]grading.LocalityStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byID := map[int64]*grading.LocalityStats{}
	for _, r := range m.items {
		if r.PanchayathID == nil {
			continue
		}
		s, ok := byID[*r.PanchayathID]
		if !ok {
			s = &grading.LocalityStats{PanchayathID: *r.PanchayathID, Name: r.Panchayath}
			byID[*r.PanchayathID] = s
		}
		s.Registrations++
		if r.Status == domain.StatusApproved {
			s.Approved++
			s.Revenue += r.FeePaid
		}
	}
	out := make([]grading.LocalityStats, 0, len(byID))
	for _, s := range byID {
		out = append(out, *s)
	}
	return out, nil
}

type memCategories struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Category
}

func newMemCategories(seed ...domain.Category) *memCategories {
	m := &memCategories{items: map[int64]domain.Category{}}
	for _, c := range seed {
		if c.ID > m.nextID {
			m.nextID = c.ID
		}
		m.items[c.ID] = c
	}
	return m
}

func (m *memCategories) List(_ context.Context, activeOnly bool) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Category
	for _, c := range m.items {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memCategories) Get(_ context.Context, id int64) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &c, nil
}

func (m *memCategories) Create(_ context.Context, c domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	c.ID = m.nextID
	m.items[c.ID] = c
	return &c, nil
}

func (m *memCategories) Update(_ context.Context, c domain.Category) (*domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[c.ID]; !ok {
		return nil, repository.ErrNotFound
	}
	m.items[c.ID] = c
	return &c, nil
}

func (m *memCategories) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memGrants struct {
	mu      sync.Mutex
	byAdmin map[int64][]domain.PermissionGrant
	err     error
}

func newMemGrants() *memGrants {
	return &memGrants{byAdmin: map[int64][]domain.PermissionGrant{}}
}

func (m *memGrants) grant(adminID int64, module domain.Module, perms ...domain.PermissionType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range perms {
		m.byAdmin[adminID] = append(m.byAdmin[adminID], domain.PermissionGrant{AdminID: adminID, Module: module, Permission: p})
	}
}

func (m *memGrants) ListGrants(_ context.Context, adminID int64) ([]domain.PermissionGrant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.PermissionGrant(nil), m.byAdmin[adminID]...), nil
}

func (m *memGrants) ReplaceGrants(_ context.Context, adminID int64, grants []domain.PermissionGrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.byAdmin[adminID] = append([]domain.PermissionGrant(nil), grants...)
	return nil
}

type memActivity struct {
	mu      sync.Mutex
	entries []ports.NewActivityLog
}

func (m *memActivity) Create(_ context.Context, in ports.NewActivityLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, in)
	return int64(len(m.entries)), nil
}

func (m *memActivity) List(_ context.Context, limit int) ([]domain.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ActivityLog
	for i := len(m.entries) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		e := m.entries[i]
		out = append(out, domain.ActivityLog{ID: int64(i + 1), Title: e.Title, Message: e.Message, Actor: e.Actor, Type: e.Type})
	}
	return out, nil
}

func (m *memActivity) titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e.Title)
	}
	return out
}

type memAdmins struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]*domain.AdminUser
}

func newMemAdmins() *memAdmins {
	return &memAdmins{items: map[int64]*domain.AdminUser{}}
}

func (m *memAdmins) Create(_ context.Context, p ports.CreateAdminParams) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.items {
		if a.Username == p.Username {
			return nil, fmt.Errorf("%w: admin_users_username_key", repository.ErrDuplicate)
		}
	}
	m.nextID++
	a := &domain.AdminUser{ID: m.nextID, Username: p.Username, PasswordHash: p.PasswordHash, Role: p.Role, IsActive: p.IsActive}
	m.items[a.ID] = a
	out := *a
	return &out, nil
}

func (m *memAdmins) GetByID(_ context.Context, id int64) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *a
	return &out, nil
}

func (m *memAdmins) GetByUsername(_ context.Context, username string) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.items {
		if a.Username == username {
			out := *a
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAdmins) List(_ context.Context) ([]domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.AdminUser
	for _, a := range m.items {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memAdmins) Update(_ context.Context, id int64, p ports.UpdateAdminParams) (*domain.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if p.PasswordHash != nil {
		a.PasswordHash = *p.PasswordHash
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
	out := *a
	return &out, nil
}

func (m *memAdmins) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memAdmins) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if a, ok := m.items[id]; ok {
		a.LastLogin = &at
	}
	return nil
}

func (m *memAdmins) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

// memLedger keeps running totals of the money log.
type memLedger struct {
	mu        sync.Mutex
	totals    ledger.Totals
	transfers []domain.CashTransaction
	expenses  []domain.Expense
}

func (m *memLedger) collect(amount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totals.ApprovedFees += amount
}

func (m *memLedger) Totals(_ context.Context) (ledger.Totals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totals, nil
}

func (m *memLedger) RecordTransfer(_ context.Context, in ports.NewTransfer, check ports.BalanceCheck) (*domain.CashTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := check(m.totals); err != nil {
		return nil, err
	}
	m.totals.Transfers += in.Amount
	tx := domain.CashTransaction{ID: int64(len(m.transfers) + 1), Amount: in.Amount, FromDate: in.FromDate, ToDate: in.ToDate, Remarks: in.Remarks}
	m.transfers = append(m.transfers, tx)
	return &tx, nil
}

func (m *memLedger) RecordExpense(_ context.Context, in ports.NewExpense, check ports.BalanceCheck) (*domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := check(m.totals); err != nil {
		return nil, err
	}
	if in.PaymentMethod == domain.PaymentBank {
		m.totals.BankExpenses += in.Amount
	} else {
		m.totals.CashExpenses += in.Amount
	}
	e := domain.Expense{ID: int64(len(m.expenses) + 1), Amount: in.Amount, PaymentMethod: in.PaymentMethod, Description: in.Description, ExpenseDate: in.ExpenseDate}
	m.expenses = append(m.expenses, e)
	return &e, nil
}

func (m *memLedger) ListTransfers(_ context.Context, _ int) ([]domain.CashTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CashTransaction(nil), m.transfers...), nil
}

func (m *memLedger) ListExpenses(_ context.Context, _ int) ([]domain.Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Expense(nil), m.expenses...), nil
}

// mockRegistrations is used where a test must prove a store method was never
// reached or must script a failure.
type mockRegistrations struct {
	mock.Mock
}

func (m *mockRegistrations) Create(ctx context.Context, in ports.NewRegistration) (*domain.Registration, error) {
	args := m.Called(ctx, in)
	reg, _ := args.Get(0).(*domain.Registration)
	return reg, args.Error(1)
}

func (m *mockRegistrations) Get(ctx context.Context, id int64) (*domain.Registration, error) {
	args := m.Called(ctx, id)
	reg, _ := args.Get(0).(*domain.Registration)
	return reg, args.Error(1)
}

func (m *mockRegistrations) FindForStatusCheck(ctx context.Context, mobile, customerID string) (*domain.Registration, error) {
	args := m.Called(ctx, mobile, customerID)
	reg, _ := args.Get(0).(*domain.Registration)
	return reg, args.Error(1)
}

func (m *mockRegistrations) List(ctx context.Context, f ports.RegistrationFilter) ([]domain.Registration, error) {
	args := m.Called(ctx, f)
	items, _ := args.Get(0).([]domain.Registration)
	return items, args.Error(1)
}

func (m *mockRegistrations) UpdateStatus(ctx context.Context, id int64, change lifecycle.StatusChange) (*domain.Registration, error) {
	args := m.Called(ctx, id, change)
	reg, _ := args.Get(0).(*domain.Registration)
	return reg, args.Error(1)
}

func (m *mockRegistrations) Update(ctx context.Context, id int64, in ports.RegistrationEdit, at time.Time) (*domain.Registration, error) {
	args := m.Called(ctx, id, in, at)
	reg, _ := args.Get(0).(*domain.Registration)
	return reg, args.Error(1)
}

func (m *mockRegistrations) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockRegistrations) StatusCounts(ctx context.Context) (map[domain.RegistrationStatus]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[domain.RegistrationStatus]int64)
	return counts, args.Error(1)
}

func (m *mockRegistrations) LocalityStats(ctx context.Context) ([]grading.LocalityStats, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).([]grading.LocalityStats)
	return stats, args.Error(1)
}

func portsAdmin(username string, role domain.AdminRole) ports.CreateAdminParams {
	return ports.CreateAdminParams{Username: username, PasswordHash: "x", Role: role, IsActive: true}
}
