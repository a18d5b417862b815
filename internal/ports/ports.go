package ports

import (
	"context"
	"time"

	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/grading"
	"selfreg-backend/internal/ledger"
	"selfreg-backend/internal/lifecycle"
)

// HealthChecker pings a dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// RegistrationFilter narrows registration list queries. Zero values mean "any".
type RegistrationFilter struct {
	Status       *domain.RegistrationStatus
	CategoryID   *int64
	PanchayathID *int64
	Search       string
	From         *time.Time
	To           *time.Time
	// CreatedAfter is an exclusive lower bound on created_at.
	CreatedAfter *time.Time
	Limit        int
}

type NewRegistration struct {
	CustomerID   string
	Name         string
	MobileNumber string
	Address      string
	Ward         string
	AgentPro     *string
	CategoryID   int64
	PanchayathID *int64
	Preference   *string
	FeePaid      int64
}

// RegistrationEdit holds the admin-editable, non-status fields.
type RegistrationEdit struct {
	Name         string
	Address      string
	MobileNumber string
	Ward         string
	AgentPro     *string
	FeePaid      int64
}

type RegistrationStore interface {
	Create(ctx context.Context, in NewRegistration) (*domain.Registration, error)
	Get(ctx context.Context, id int64) (*domain.Registration, error)
	FindForStatusCheck(ctx context.Context, mobile, customerID string) (*domain.Registration, error)
	List(ctx context.Context, f RegistrationFilter) ([]domain.Registration, error)
	UpdateStatus(ctx context.Context, id int64, change lifecycle.StatusChange) (*domain.Registration, error)
	Update(ctx context.Context, id int64, in RegistrationEdit, at time.Time) (*domain.Registration, error)
	Delete(ctx context.Context, id int64) error
	StatusCounts(ctx context.Context) (map[domain.RegistrationStatus]int64, error)
	LocalityStats(ctx context.Context) ([]grading.LocalityStats, error)
}

type CategoryStore interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Category, error)
	Get(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, c domain.Category) (*domain.Category, error)
	Update(ctx context.Context, c domain.Category) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}

type PanchayathStore interface {
	List(ctx context.Context) ([]domain.Panchayath, error)
	Create(ctx context.Context, p domain.Panchayath) (*domain.Panchayath, error)
	Update(ctx context.Context, p domain.Panchayath) (*domain.Panchayath, error)
	Delete(ctx context.Context, id int64) error
}

type AnnouncementStore interface {
	List(ctx context.Context) ([]domain.Announcement, error)
	Create(ctx context.Context, a domain.Announcement) (*domain.Announcement, error)
	Update(ctx context.Context, a domain.Announcement) (*domain.Announcement, error)
	Delete(ctx context.Context, id int64) error
}

type UtilityStore interface {
	List(ctx context.Context, activeOnly bool) ([]domain.Utility, error)
	Create(ctx context.Context, u domain.Utility) (*domain.Utility, error)
	Update(ctx context.Context, u domain.Utility) (*domain.Utility, error)
	Delete(ctx context.Context, id int64) error
}

type CreateAdminParams struct {
	Username     string
	PasswordHash string
	Role         domain.AdminRole
	IsActive     bool
}

// UpdateAdminParams leaves a field unchanged when it is nil.
type UpdateAdminParams struct {
	PasswordHash *string
	Role         *domain.AdminRole
	IsActive     *bool
}

type AdminStore interface {
	Create(ctx context.Context, p CreateAdminParams) (*domain.AdminUser, error)
	GetByID(ctx context.Context, id int64) (*domain.AdminUser, error)
	GetByUsername(ctx context.Context, username string) (*domain.AdminUser, error)
	List(ctx context.Context) ([]domain.AdminUser, error)
	Update(ctx context.Context, id int64, p UpdateAdminParams) (*domain.AdminUser, error)
	Delete(ctx context.Context, id int64) error
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

type GrantStore interface {
	ListGrants(ctx context.Context, adminID int64) ([]domain.PermissionGrant, error)
	// ReplaceGrants clears the admin's grants and inserts grants in one transaction.
	ReplaceGrants(ctx context.Context, adminID int64, grants []domain.PermissionGrant) error
}

type NewTransfer struct {
	Amount   int64
	FromDate *time.Time
	ToDate   *time.Time
	Remarks  *string
}

type NewExpense struct {
	Amount        int64
	PaymentMethod domain.PaymentMethod
	Description   string
	ExpenseDate   time.Time
}

// BalanceCheck runs against the totals read inside the recording transaction.
type BalanceCheck func(ledger.Totals) error

type LedgerStore interface {
	Totals(ctx context.Context) (ledger.Totals, error)
	RecordTransfer(ctx context.Context, in NewTransfer, check BalanceCheck) (*domain.CashTransaction, error)
	RecordExpense(ctx context.Context, in NewExpense, check BalanceCheck) (*domain.Expense, error)
	ListTransfers(ctx context.Context, limit int) ([]domain.CashTransaction, error)
	ListExpenses(ctx context.Context, limit int) ([]domain.Expense, error)
}

type NewActivityLog struct {
	Title   string
	Message string
	Actor   string
	Type    domain.ActivityLogType
}

type ActivityLogStore interface {
	Create(ctx context.Context, in NewActivityLog) (int64, error)
	List(ctx context.Context, limit int) ([]domain.ActivityLog, error)
}
