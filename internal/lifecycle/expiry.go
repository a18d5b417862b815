package lifecycle

import (
	"time"

	"selfreg-backend/internal/domain"
)

// AgingWindowDays is how long a pending registration stays open.
const AgingWindowDays = 15

const day = 24 * time.Hour

type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// DaysRemaining is max(0, window - ceil(elapsed days)).
func DaysRemaining(createdAt, now time.Time) int {
	elapsed := now.Sub(createdAt)
	if elapsed < 0 {
		elapsed = 0
	}
	days := int(elapsed / day)
	if elapsed%day != 0 {
		days++
	}
	remaining := AgingWindowDays - days
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ExpiresAt is the end of the aging window for a registration created at createdAt.
func ExpiresAt(createdAt time.Time) time.Time {
	return createdAt.Add(AgingWindowDays * day)
}

// OpenSince is the exclusive created_at lower bound of registrations whose
// aging window is still open at now.
func OpenSince(now time.Time) time.Time {
	return now.Add(-AgingWindowDays * day)
}

// UrgencyFor maps days remaining to its band.
func UrgencyFor(daysRemaining int) Urgency {
	switch {
	case daysRemaining <= 1:
		return UrgencyCritical
	case daysRemaining <= 3:
		return UrgencyHigh
	case daysRemaining <= 7:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// Aging is the computed expiry view of a pending registration.
type Aging struct {
	DaysRemaining int
	Urgency       Urgency
	ExpiresAt     time.Time
}

// AgingOf returns the aging view, or false when reg is not pending.
func AgingOf(reg domain.Registration, now time.Time) (Aging, bool) {
	if reg.Status != domain.StatusPending {
		return Aging{}, false
	}
	days := DaysRemaining(reg.CreatedAt, now)
	return Aging{
		DaysRemaining: days,
		Urgency:       UrgencyFor(days),
		ExpiresAt:     ExpiresAt(reg.CreatedAt),
	}, true
}

// FilterExpiring keeps pending registrations with 0 < days remaining <= within.
// Overdue registrations (0 remaining) are not "expiring soon".
func FilterExpiring(regs []domain.Registration, within int, now time.Time) []domain.Registration {
	out := make([]domain.Registration, 0, len(regs))
	for _, reg := range regs {
		if reg.Status != domain.StatusPending {
			continue
		}
		days := DaysRemaining(reg.CreatedAt, now)
		if days > 0 && days <= within {
			out = append(out, reg)
		}
	}
	return out
}
