package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ledger"
)

func newLedgerService() (LedgerService, *memLedger, *memGrants) {
	store := &memLedger{}
	grants := newMemGrants()
	return LedgerService{Store: store, Access: Authorizer{Grants: grants}}, store, grants
}

func TestLedgerBalancesFollowEntries(t *testing.T) {
	svc, store, _ := newLedgerService()
	ctx := context.Background()
	store.collect(1000)
	store.collect(500)

	_, err := svc.RecordTransfer(ctx, superAdmin, TransferInput{Amount: 1200})
	require.NoError(t, err)
	_, err = svc.RecordExpense(ctx, superAdmin, ExpenseInput{Amount: 200, PaymentMethod: domain.PaymentCash, Description: "stationery"})
	require.NoError(t, err)
	_, err = svc.RecordExpense(ctx, superAdmin, ExpenseInput{Amount: 700, PaymentMethod: domain.PaymentBank, Description: "hall rent"})
	require.NoError(t, err)

	st, err := svc.Balances(ctx, superAdmin)
	require.NoError(t, err)
	assert.Equal(t, ledger.Balances{CashInHand: 100, CashAtBank: 500}, st.Balances)
	assert.Equal(t, int64(1500), st.Totals.ApprovedFees)
}

func TestLedgerRejectsOverspend(t *testing.T) {
	svc, store, _ := newLedgerService()
	ctx := context.Background()
	store.collect(300)

	_, err := svc.RecordTransfer(ctx, superAdmin, TransferInput{Amount: 301})
	require.Error(t, err)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
	assert.True(t, errors.Is(err, ledger.ErrInsufficientFunds))

	_, err = svc.RecordExpense(ctx, superAdmin, ExpenseInput{Amount: 1, PaymentMethod: domain.PaymentBank, Description: "fee"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = svc.RecordTransfer(ctx, superAdmin, TransferInput{Amount: 0})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = svc.RecordExpense(ctx, superAdmin, ExpenseInput{Amount: 10, PaymentMethod: "upi", Description: "x"})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	st, _ := svc.Balances(ctx, superAdmin)
	assert.Equal(t, int64(300), st.Balances.CashInHand)
	assert.Empty(t, store.transfers)
	assert.Empty(t, store.expenses)
}

func TestLedgerConcurrentTransfersCannotBothSpend(t *testing.T) {
	svc, store, _ := newLedgerService()
	ctx := context.Background()
	store.collect(100)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.RecordTransfer(ctx, superAdmin, TransferInput{Amount: 80}); err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, success)
	st, _ := svc.Balances(ctx, superAdmin)
	assert.Equal(t, int64(20), st.Balances.CashInHand)
}

func TestLedgerGatedOnAccounts(t *testing.T) {
	svc, _, grants := newLedgerService()
	ctx := context.Background()
	grants.grant(localAdmin.AdminID, domain.ModuleRegistrations, domain.PermRead, domain.PermWrite)

	_, err := svc.Balances(ctx, localAdmin)
	assert.True(t, apperr.HasCode(err, apperr.CodePermissionDenied))

	_, err = svc.RecordTransfer(ctx, userAdmin, TransferInput{Amount: 10})
	assert.True(t, apperr.HasCode(err, apperr.CodePermissionDenied))

	_, err = svc.Balances(ctx, userAdmin)
	assert.NoError(t, err)
}
