package domain

import "time"

// Enumerations
const (
	RoleSuperAdmin AdminRole = "super_admin"
	RoleLocalAdmin AdminRole = "local_admin"
	RoleUserAdmin  AdminRole = "user_admin"

	StatusPending  RegistrationStatus = "pending"
	StatusApproved RegistrationStatus = "approved"
	StatusRejected RegistrationStatus = "rejected"

	PaymentCash PaymentMethod = "cash"
	PaymentBank PaymentMethod = "bank"

	LogInfo    ActivityLogType = "info"
	LogWarning ActivityLogType = "warning"
	LogError   ActivityLogType = "error"
)

// SelfApprovedBy marks registrations confirmed by the registrant without an admin session.
const SelfApprovedBy = "self"

type AdminRole string
type RegistrationStatus string
type PaymentMethod string
type ActivityLogType string

func (r AdminRole) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleLocalAdmin, RoleUserAdmin:
		return true
	}
	return false
}

func (s RegistrationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentBank
}

type Registration struct {
	ID           int64
	CustomerID   string
	Name         string
	MobileNumber string
	Address      string
	Ward         string
	AgentPro     *string
	CategoryID   int64
	CategoryName string
	PanchayathID *int64
	Panchayath   string
	Preference   *string
	FeePaid      int64
	Status       RegistrationStatus
	ApprovedDate *time.Time
	ApprovedBy   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Category struct {
	ID           int64
	Name         string
	ActualFee    int64
	OfferFee     int64
	IsActive     bool
	Description  *string
	PopupWarning *string
	ImageURL     *string
	QRImageURL   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsFree reports whether registrants of this category may confirm themselves.
func (c Category) IsFree() bool {
	return c.OfferFee == 0
}

type Panchayath struct {
	ID        int64
	Name      string
	District  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AdminUser struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         AdminRole
	IsActive     bool
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PermissionGrant struct {
	AdminID    int64
	Module     Module
	Permission PermissionType
}

type CashTransaction struct {
	ID        int64
	Amount    int64
	FromDate  *time.Time
	ToDate    *time.Time
	Remarks   *string
	CreatedAt time.Time
}

type Expense struct {
	ID            int64
	Amount        int64
	PaymentMethod PaymentMethod
	Description   string
	ExpenseDate   time.Time
	CreatedAt     time.Time
}

type Announcement struct {
	ID         int64
	Title      string
	Content    string
	IsActive   bool
	ExpiryDate *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Visible reports whether the announcement should be shown publicly at t.
func (a Announcement) Visible(t time.Time) bool {
	if !a.IsActive {
		return false
	}
	return a.ExpiryDate == nil || !a.ExpiryDate.Before(t)
}

type Utility struct {
	ID          int64
	Name        string
	URL         string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ActivityLog struct {
	ID       int64
	Title    string
	Message  string
	Actor    string
	Type     ActivityLogType
	LoggedAt time.Time
}

// Actor is the authenticated admin on whose behalf an operation runs.
type Actor struct {
	AdminID  int64
	Username string
	Role     AdminRole
}
