package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/grading"
	"selfreg-backend/internal/ledger"
	"selfreg-backend/internal/lifecycle"
	"selfreg-backend/internal/ports"
)

// ExpiringSoonDays is the window the dashboard counts as "expiring soon".
const ExpiringSoonDays = 3

type ReportService struct {
	Registrations ports.RegistrationStore
	Ledger        ports.LedgerStore
	Access        Authorizer
	Logger        *slog.Logger
	Now           func() time.Time
}

type GradeReport struct {
	Localities   []grading.Graded
	Distribution map[grading.Grade]int
}

type Summary struct {
	StatusCounts map[domain.RegistrationStatus]int64
	Total        int64
	ExpiringSoon int
	// Revenue and Balances are nil when the actor cannot read accounts.
	Revenue  *int64
	Balances *ledger.Balances
}

func (s ReportService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// PanchayathGrades grades every panchayath and ranks them best first.
func (s ReportService) PanchayathGrades(ctx context.Context, actor domain.Actor) (*GradeReport, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleRegistrations, domain.PermRead); err != nil {
		return nil, err
	}
	stats, err := s.Registrations.LocalityStats(ctx)
	if err != nil {
		return nil, apperr.Upstream(err, "load panchayath stats")
	}
	ranked := grading.Rank(stats)
	return &GradeReport{Localities: ranked, Distribution: grading.Distribution(ranked)}, nil
}

// Summary gathers the dashboard figures concurrently.
func (s ReportService) Summary(ctx context.Context, actor domain.Actor) (*Summary, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleRegistrations, domain.PermRead); err != nil {
		return nil, err
	}
	withAccounts := s.Access.Can(ctx, actor, domain.ModuleAccounts, domain.PermRead)
	now := s.now()

	var (
		out     Summary
		pending []domain.Registration
		totals  ledger.Totals
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		counts, err := s.Registrations.StatusCounts(gctx)
		if err != nil {
			return apperr.Upstream(err, "count registrations")
		}
		out.StatusCounts = counts
		return nil
	})
	g.Go(func() error {
		status := domain.StatusPending
		open := lifecycle.OpenSince(now)
		items, err := s.Registrations.List(gctx, ports.RegistrationFilter{Status: &status, CreatedAfter: &open})
		if err != nil {
			return apperr.Upstream(err, "list pending registrations")
		}
		pending = items
		return nil
	})
	g.Go(func() error {
		t, err := s.Ledger.Totals(gctx)
		if err != nil {
			return apperr.Upstream(err, "load ledger totals")
		}
		totals = t
		return nil
	})
	if err := g.Wait(); err != nil {
		if s.Logger != nil {
			s.Logger.Error("build summary", "err", err)
		}
		return nil, err
	}

	for _, n := range out.StatusCounts {
		out.Total += n
	}
	out.ExpiringSoon = len(lifecycle.FilterExpiring(pending, ExpiringSoonDays, now))
	if withAccounts {
		revenue := totals.ApprovedFees
		b := ledger.Compute(totals)
		out.Revenue = &revenue
		out.Balances = &b
	}
	return &out, nil
}
