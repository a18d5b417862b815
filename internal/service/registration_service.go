package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/lifecycle"
	"selfreg-backend/internal/metrics"
	"selfreg-backend/internal/ports"
	"selfreg-backend/internal/repository"
)

var mobilePattern = regexp.MustCompile(`^[6-9][0-9]{9}$`)

type RegistrationService struct {
	Registrations   ports.RegistrationStore
	Categories      ports.CategoryStore
	Access          Authorizer
	Activity        ActivityRecorder
	Metrics         *metrics.Metrics
	Logger          *slog.Logger
	BulkConcurrency int
	Now             func() time.Time
}

type SubmitInput struct {
	Name         string
	MobileNumber string
	Address      string
	Ward         string
	AgentPro     *string
	CategoryID   int64
	PanchayathID *int64
	Preference   *string
}

// ListQuery is a registration list request. ExpiringWithin, when set, keeps only
// pending registrations with 0 < days remaining <= *ExpiringWithin.
type ListQuery struct {
	Filter         ports.RegistrationFilter
	ExpiringWithin *int
}

type BulkOutcome struct {
	ID           int64
	Registration *domain.Registration
	Err          error
}

func (o BulkOutcome) OK() bool { return o.Err == nil }

func (s RegistrationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// NormalizeMobile strips separators and an optional +91/0 prefix.
func NormalizeMobile(raw string) string {
	m := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(strings.TrimSpace(raw))
	m = strings.TrimPrefix(m, "+91")
	if len(m) == 11 && strings.HasPrefix(m, "0") {
		m = m[1:]
	}
	return m
}

func newCustomerID() string {
	return "SE" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// Submit creates a pending registration from the public form. The fee charged is
// the category's offer fee at submission time.
func (s RegistrationService) Submit(ctx context.Context, in SubmitInput) (*domain.Registration, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.MobileNumber = NormalizeMobile(in.MobileNumber)
	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !mobilePattern.MatchString(in.MobileNumber) {
		return nil, apperr.Validation("mobile number must be 10 digits")
	}
	if in.CategoryID == 0 {
		return nil, apperr.Validation("category is required")
	}
	category, err := s.Categories.Get(ctx, in.CategoryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.Validation("category not found")
		}
		return nil, apperr.Upstream(err, "load category")
	}
	if !category.IsActive {
		return nil, apperr.Validation("category %q is not accepting registrations", category.Name)
	}

	reg, err := s.Registrations.Create(ctx, ports.NewRegistration{
		CustomerID:   newCustomerID(),
		Name:         in.Name,
		MobileNumber: in.MobileNumber,
		Address:      strings.TrimSpace(in.Address),
		Ward:         strings.TrimSpace(in.Ward),
		AgentPro:     trimmedOrNil(in.AgentPro),
		CategoryID:   category.ID,
		PanchayathID: in.PanchayathID,
		Preference:   trimmedOrNil(in.Preference),
		FeePaid:      category.OfferFee,
	})
	if err != nil {
		return nil, translateStoreErr(err, "register")
	}
	s.Metrics.IncSubmitted()
	return reg, nil
}

// CheckStatus looks a registration up for the public status page. A miss is not an error.
func (s RegistrationService) CheckStatus(ctx context.Context, mobile, customerID string) (*domain.Registration, bool, error) {
	mobile = NormalizeMobile(mobile)
	customerID = strings.TrimSpace(customerID)
	if mobile == "" && customerID == "" {
		return nil, false, apperr.Validation("mobile number or customer id is required")
	}
	reg, err := s.Registrations.FindForStatusCheck(ctx, mobile, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, apperr.Upstream(err, "check status")
	}
	return reg, true, nil
}

// SelfConfirm approves a pending registration in a free category without an
// admin session. Both the mobile number and the customer id must match.
func (s RegistrationService) SelfConfirm(ctx context.Context, mobile, customerID string) (*domain.Registration, error) {
	mobile = NormalizeMobile(mobile)
	customerID = strings.TrimSpace(customerID)
	if mobile == "" || customerID == "" {
		return nil, apperr.Validation("mobile number and customer id are required")
	}
	reg, err := s.Registrations.FindForStatusCheck(ctx, mobile, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "registration not found")
		}
		return nil, apperr.Upstream(err, "load registration")
	}
	if reg.MobileNumber != mobile || !strings.EqualFold(reg.CustomerID, customerID) {
		return nil, apperr.New(apperr.CodeNotFound, "registration not found")
	}
	category, err := s.Categories.Get(ctx, reg.CategoryID)
	if err != nil {
		return nil, translateStoreErr(err, "load category")
	}
	if err := lifecycle.CanSelfConfirm(*reg, *category); err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	change, err := lifecycle.Plan(domain.StatusApproved, "", s.now())
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	updated, err := s.Registrations.UpdateStatus(ctx, reg.ID, change)
	if err != nil {
		return nil, translateStoreErr(err, "confirm registration")
	}
	s.Metrics.IncTransition(string(domain.StatusApproved), "self")
	s.Activity.Record(ctx, domain.SelfApprovedBy, domain.LogInfo, "Registration self-confirmed", "%s confirmed %s", updated.Name, updated.CustomerID)
	return updated, nil
}

func (s RegistrationService) List(ctx context.Context, actor domain.Actor, q ListQuery) ([]domain.Registration, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleRegistrations, domain.PermRead); err != nil {
		return nil, err
	}
	if q.ExpiringWithin == nil {
		items, err := s.Registrations.List(ctx, q.Filter)
		if err != nil {
			return nil, apperr.Upstream(err, "list registrations")
		}
		return items, nil
	}

	pending := domain.StatusPending
	if q.Filter.Status != nil && *q.Filter.Status != pending {
		return []domain.Registration{}, nil
	}
	now := s.now()
	open := lifecycle.OpenSince(now)
	q.Filter.Status = &pending
	q.Filter.CreatedAfter = &open
	// The limit applies to the expiring rows, not to the pending rows the store returns.
	limit := q.Filter.Limit
	q.Filter.Limit = 0
	items, err := s.Registrations.List(ctx, q.Filter)
	if err != nil {
		return nil, apperr.Upstream(err, "list registrations")
	}
	items = lifecycle.FilterExpiring(items, *q.ExpiringWithin, now)
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s RegistrationService) Get(ctx context.Context, actor domain.Actor, id int64) (*domain.Registration, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleRegistrations, domain.PermRead); err != nil {
		return nil, err
	}
	reg, err := s.Registrations.Get(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err, "load registration")
	}
	return reg, nil
}

// UpdateStatus moves a registration to status on behalf of actor.
func (s RegistrationService) UpdateStatus(ctx context.Context, actor domain.Actor, id int64, status domain.RegistrationStatus) (*domain.Registration, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleRegistrations, domain.PermWrite); err != nil {
		return nil, err
	}
	return s.transition(ctx, actor, id, status)
}

func (s RegistrationService) transition(ctx context.Context, actor domain.Actor, id int64, status domain.RegistrationStatus) (*domain.Registration, error) {
	change, err := lifecycle.Plan(status, actor.Username, s.now())
	if err != nil {
		return nil, apperr.Validation("%s", err.Error())
	}
	reg, err := s.Registrations.UpdateStatus(ctx, id, change)
	if err != nil {
		return nil, translateStoreErr(err, "update status")
	}
	s.Metrics.IncTransition(string(status), "admin")
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Registration status changed", "%s (%s) set to %s", reg.Name, reg.CustomerID, status)
	return reg, nil
}

// BulkApprove approves every pending id independently. The permission check
// runs once up front; after that a failing item never affects the others.
// Ids that are not pending are left untouched and reported as validation errors.
func (s RegistrationService) BulkApprove(ctx context.Context, actor domain.Actor, ids []int64) ([]BulkOutcome, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleRegistrations, domain.PermWrite); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, apperr.Validation("no registrations selected")
	}
	start := time.Now()
	defer s.Metrics.ObserveBulkApprove(start)

	limit := s.BulkConcurrency
	if limit < 1 {
		limit = 1
	}
	outcomes := make([]BulkOutcome, len(ids))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, id := range ids {
		g.Go(func() error {
			reg, err := s.approvePending(ctx, actor, id)
			outcomes[i] = BulkOutcome{ID: id, Registration: reg, Err: err}
			switch {
			case apperr.HasCode(err, apperr.CodeValidation):
				s.Metrics.IncBulkItem("skipped")
			case err != nil:
				s.Metrics.IncBulkItem("failed")
				if s.Logger != nil {
					s.Logger.Warn("bulk approve item failed", "registration_id", id, "err", err)
				}
			default:
				s.Metrics.IncBulkItem("approved")
			}
			return nil
		})
	}
	_ = g.Wait()
	return outcomes, nil
}

func (s RegistrationService) approvePending(ctx context.Context, actor domain.Actor, id int64) (*domain.Registration, error) {
	current, err := s.Registrations.Get(ctx, id)
	if err != nil {
		return nil, translateStoreErr(err, "load registration")
	}
	if current.Status != domain.StatusPending {
		return nil, apperr.Validation("registration %s is %s, not pending", current.CustomerID, current.Status)
	}
	return s.transition(ctx, actor, id, domain.StatusApproved)
}

type EditInput = ports.RegistrationEdit

// Edit changes non-status fields. Status and approval fields are never touched.
func (s RegistrationService) Edit(ctx context.Context, actor domain.Actor, id int64, in EditInput) (*domain.Registration, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleRegistrations, domain.PermWrite); err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.MobileNumber = NormalizeMobile(in.MobileNumber)
	in.AgentPro = trimmedOrNil(in.AgentPro)
	if in.Name == "" {
		return nil, apperr.Validation("name is required")
	}
	if !mobilePattern.MatchString(in.MobileNumber) {
		return nil, apperr.Validation("mobile number must be 10 digits")
	}
	if in.FeePaid < 0 {
		return nil, apperr.Validation("fee paid cannot be negative")
	}
	reg, err := s.Registrations.Update(ctx, id, in, s.now())
	if err != nil {
		return nil, translateStoreErr(err, "update registration")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Registration edited", "%s (%s) updated", reg.Name, reg.CustomerID)
	return reg, nil
}

// Delete hard-deletes a registration regardless of status.
func (s RegistrationService) Delete(ctx context.Context, actor domain.Actor, id int64) error {
	if err := s.Access.Require(ctx, actor, domain.ModuleRegistrations, domain.PermDelete); err != nil {
		return err
	}
	if err := s.Registrations.Delete(ctx, id); err != nil {
		return translateStoreErr(err, "delete registration")
	}
	s.Activity.Record(ctx, actorName(actor), domain.LogWarning, "Registration deleted", "registration %d deleted", id)
	return nil
}

// translateStoreErr maps repository sentinels onto the error taxonomy.
func translateStoreErr(err error, op string) error {
	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return apperr.New(apperr.CodeNotFound, fmt.Sprintf("%s: record not found", op))
	case errors.Is(err, repository.ErrDuplicate):
		if strings.Contains(err.Error(), "mobile") {
			return apperr.New(apperr.CodeConflict, "mobile number already registered")
		}
		return apperr.New(apperr.CodeConflict, fmt.Sprintf("%s: record already exists", op))
	case errors.Is(err, repository.ErrInvalidReference):
		return apperr.New(apperr.CodeValidation, fmt.Sprintf("%s: referenced record does not exist or is still in use", op))
	}
	return apperr.Upstream(err, op)
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
