package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"selfreg-backend/internal/apperr"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ledger"
	"selfreg-backend/internal/metrics"
	"selfreg-backend/internal/ports"
)

// LedgerService records cash movements and reports derived balances.
type LedgerService struct {
	Store    ports.LedgerStore
	Access   Authorizer
	Activity ActivityRecorder
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

type Statement struct {
	Totals   ledger.Totals
	Balances ledger.Balances
}

type TransferInput = ports.NewTransfer

type ExpenseInput struct {
	Amount        int64
	PaymentMethod domain.PaymentMethod
	Description   string
	ExpenseDate   *time.Time
}

func (s LedgerService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s LedgerService) Balances(ctx context.Context, actor domain.Actor) (Statement, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAccounts, domain.PermRead); err != nil {
		return Statement{}, err
	}
	return s.statement(ctx)
}

func (s LedgerService) statement(ctx context.Context) (Statement, error) {
	t, err := s.Store.Totals(ctx)
	if err != nil {
		return Statement{}, apperr.Upstream(err, "load ledger totals")
	}
	return Statement{Totals: t, Balances: ledger.Compute(t)}, nil
}

// RecordTransfer moves cash in hand to the bank. The balance check runs against
// totals read under the ledger lock.
func (s LedgerService) RecordTransfer(ctx context.Context, actor domain.Actor, in TransferInput) (*domain.CashTransaction, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAccounts, domain.PermWrite); err != nil {
		return nil, err
	}
	if in.Amount <= 0 {
		return nil, apperr.Validation("%s", ledger.ErrInvalidAmount.Error())
	}
	if in.FromDate != nil && in.ToDate != nil && in.ToDate.Before(*in.FromDate) {
		return nil, apperr.Validation("to date must not be before from date")
	}
	in.Remarks = trimmedOrNil(in.Remarks)
	tx, err := s.Store.RecordTransfer(ctx, in, func(t ledger.Totals) error {
		return ledger.CheckTransfer(ledger.Compute(t), in.Amount)
	})
	if err != nil {
		return nil, ledgerErr(err, "record transfer")
	}
	s.Metrics.IncLedgerEntry("transfer")
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Cash transferred", "%s transferred %d to bank", actorName(actor), in.Amount)
	return tx, nil
}

func (s LedgerService) RecordExpense(ctx context.Context, actor domain.Actor, in ExpenseInput) (*domain.Expense, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAccounts, domain.PermWrite); err != nil {
		return nil, err
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, apperr.Validation("description is required")
	}
	if !in.PaymentMethod.Valid() {
		return nil, apperr.Validation("invalid payment method %q", in.PaymentMethod)
	}
	if in.Amount <= 0 {
		return nil, apperr.Validation("%s", ledger.ErrInvalidAmount.Error())
	}
	date := s.now()
	if in.ExpenseDate != nil {
		date = *in.ExpenseDate
	}
	exp, err := s.Store.RecordExpense(ctx, ports.NewExpense{
		Amount:        in.Amount,
		PaymentMethod: in.PaymentMethod,
		Description:   desc,
		ExpenseDate:   date,
	}, func(t ledger.Totals) error {
		return ledger.CheckExpense(ledger.Compute(t), in.Amount, in.PaymentMethod)
	})
	if err != nil {
		return nil, ledgerErr(err, "record expense")
	}
	s.Metrics.IncLedgerEntry("expense_" + string(in.PaymentMethod))
	s.Activity.Record(ctx, actorName(actor), domain.LogInfo, "Expense recorded", "%s paid %d by %s: %s", actorName(actor), in.Amount, in.PaymentMethod, desc)
	return exp, nil
}

func (s LedgerService) ListTransfers(ctx context.Context, actor domain.Actor, limit int) ([]domain.CashTransaction, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAccounts, domain.PermRead); err != nil {
		return nil, err
	}
	items, err := s.Store.ListTransfers(ctx, limit)
	if err != nil {
		return nil, apperr.Upstream(err, "list transfers")
	}
	return items, nil
}

func (s LedgerService) ListExpenses(ctx context.Context, actor domain.Actor, limit int) ([]domain.Expense, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAccounts, domain.PermRead); err != nil {
		return nil, err
	}
	items, err := s.Store.ListExpenses(ctx, limit)
	if err != nil {
		return nil, apperr.Upstream(err, "list expenses")
	}
	return items, nil
}

const exportLimit = 10000

// Ledger is the full account snapshot used for exports.
type Ledger struct {
	Statement
	Transfers []domain.CashTransaction
	Expenses  []domain.Expense
}

func (s LedgerService) Snapshot(ctx context.Context, actor domain.Actor) (*Ledger, error) {
	if err := s.Access.Require(ctx, actor, domain.ModuleAccounts, domain.PermRead); err != nil {
		return nil, err
	}
	st, err := s.statement(ctx)
	if err != nil {
		return nil, err
	}
	transfers, err := s.Store.ListTransfers(ctx, exportLimit)
	if err != nil {
		return nil, apperr.Upstream(err, "list transfers")
	}
	expenses, err := s.Store.ListExpenses(ctx, exportLimit)
	if err != nil {
		return nil, apperr.Upstream(err, "list expenses")
	}
	return &Ledger{Statement: st, Transfers: transfers, Expenses: expenses}, nil
}

func ledgerErr(err error, op string) error {
	if errors.Is(err, ledger.ErrInsufficientFunds) || errors.Is(err, ledger.ErrInvalidAmount) {
		return apperr.Wrap(err, apperr.CodeValidation, err.Error())
	}
	return translateStoreErr(err, op)
}
