package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/grading"
)

func TestPanchayathGradesRanked(t *testing.T) {
	store := new(mockRegistrations)
	store.On("LocalityStats", mock.Anything).Return([]grading.LocalityStats{
		{PanchayathID: 1, Name: "Athirampuzha", Registrations: 12, Revenue: 6000},
		{PanchayathID: 2, Name: "Ettumanoor", Registrations: 110, Revenue: 60000},
		{PanchayathID: 3, Name: "Kumarakom", Registrations: 5, Revenue: 100},
	}, nil)
	svc := ReportService{Registrations: store, Access: Authorizer{Grants: newMemGrants()}}

	report, err := svc.PanchayathGrades(context.Background(), userAdmin)
	require.NoError(t, err)
	require.Len(t, report.Localities, 3)
	assert.Equal(t, "Ettumanoor", report.Localities[0].Name)
	assert.Equal(t, grading.GradeAPlus, report.Localities[0].Grade)
	assert.Equal(t, grading.GradeC, report.Localities[1].Grade)
	assert.Equal(t, grading.GradeD, report.Localities[2].Grade)
	assert.Equal(t, 1, report.Distribution[grading.GradeAPlus])
}

func TestSummary(t *testing.T) {
	now := time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)
	regs := newMemRegistrations(nil)
	regs.seed(domain.Registration{MobileNumber: "9000000001", CreatedAt: now.Add(-13 * 24 * time.Hour)})
	regs.seed(domain.Registration{MobileNumber: "9000000002", CreatedAt: now.Add(-2 * 24 * time.Hour)})
	regs.seed(domain.Registration{MobileNumber: "9000000003", Status: domain.StatusApproved, FeePaid: 400})
	regs.seed(domain.Registration{MobileNumber: "9000000004", Status: domain.StatusRejected})
	money := &memLedger{}
	money.collect(400)

	grants := newMemGrants()
	svc := ReportService{Registrations: regs, Ledger: money, Access: Authorizer{Grants: grants}, Now: func() time.Time { return now }}
	ctx := context.Background()

	sum, err := svc.Summary(ctx, superAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(4), sum.Total)
	assert.Equal(t, int64(2), sum.StatusCounts[domain.StatusPending])
	require.NotNil(t, sum.Revenue)
	assert.Equal(t, int64(400), *sum.Revenue)
	assert.Equal(t, 1, sum.ExpiringSoon)
	require.NotNil(t, sum.Balances)
	assert.Equal(t, int64(400), sum.Balances.CashInHand)

	grants.grant(localAdmin.AdminID, domain.ModuleRegistrations, domain.PermRead)
	sum, err = svc.Summary(ctx, localAdmin)
	require.NoError(t, err)
	assert.Equal(t, int64(4), sum.Total)
	assert.Nil(t, sum.Revenue, "no accounts grant hides revenue")
	assert.Nil(t, sum.Balances, "no accounts grant hides balances")

	grants.grant(localAdmin.AdminID, domain.ModuleAccounts, domain.PermRead)
	sum, err = svc.Summary(ctx, localAdmin)
	require.NoError(t, err)
	require.NotNil(t, sum.Revenue)
	assert.Equal(t, int64(400), *sum.Revenue)
	assert.NotNil(t, sum.Balances)
}

func TestSummaryUpstreamFailure(t *testing.T) {
	store := new(mockRegistrations)
	store.On("StatusCounts", mock.Anything).Return(nil, errors.New("timeout"))
	store.On("List", mock.Anything, mock.Anything).Return([]domain.Registration{}, nil).Maybe()
	svc := ReportService{Registrations: store, Ledger: &memLedger{}, Access: Authorizer{}}

	_, err := svc.Summary(context.Background(), superAdmin)
	assert.True(t, apperr.HasCode(err, apperr.CodeUpstream))
}
