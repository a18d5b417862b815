// Package lifecycle holds the registration state machine and the pending aging rules.
package lifecycle

import (
	"fmt"
	"time"

	"selfreg-backend/internal/domain"
)

// ApprovalEffect says what a transition does to approved_date / approved_by.
type ApprovalEffect int

const (
	ApprovalKeep ApprovalEffect = iota
	ApprovalStamp
	ApprovalClear
)

// StatusChange is the write a transition produces.
type StatusChange struct {
	Status       domain.RegistrationStatus
	Approval     ApprovalEffect
	ApprovedDate *time.Time
	ApprovedBy   *string
	At           time.Time
}

// Plan computes the change for moving a registration to target. Every state may
// move to every other state; the effect depends only on the target.
// approver is the acting admin's username, empty for self-service confirmation.
func Plan(target domain.RegistrationStatus, approver string, now time.Time) (StatusChange, error) {
	change := StatusChange{Status: target, At: now}
	switch target {
	case domain.StatusApproved:
		if approver == "" {
			approver = domain.SelfApprovedBy
		}
		at := now
		change.Approval = ApprovalStamp
		change.ApprovedDate = &at
		change.ApprovedBy = &approver
	case domain.StatusPending:
		change.Approval = ApprovalClear
	case domain.StatusRejected:
		change.Approval = ApprovalKeep
	default:
		return StatusChange{}, fmt.Errorf("invalid status %q", target)
	}
	return change, nil
}

// Apply writes the change onto r.
func (c StatusChange) Apply(r *domain.Registration) {
	r.Status = c.Status
	r.UpdatedAt = c.At
	switch c.Approval {
	case ApprovalStamp:
		r.ApprovedDate = c.ApprovedDate
		r.ApprovedBy = c.ApprovedBy
	case ApprovalClear:
		r.ApprovedDate = nil
		r.ApprovedBy = nil
	}
}

// CanSelfConfirm reports whether the registrant may approve reg without an admin.
func CanSelfConfirm(reg domain.Registration, category domain.Category) error {
	if reg.Status != domain.StatusPending {
		return fmt.Errorf("registration is already %s", reg.Status)
	}
	if !category.IsFree() {
		return fmt.Errorf("category %q requires admin approval", category.Name)
	}
	return nil
}
