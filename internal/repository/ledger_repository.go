package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"selfreg-backend/internal/db"
	"selfreg-backend/internal/domain"
	"selfreg-backend/internal/ledger"
	"selfreg-backend/internal/ports"
)

// ledgerLockKey serialises ledger writes so balance checks see every prior entry.
const ledgerLockKey int64 = 0x5e1f_1ed9

type LedgerRepository struct {
	DB *db.Postgres
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Totals aggregates the full fee, transfer and expense history.
func (r LedgerRepository) Totals(ctx context.Context) (ledger.Totals, error) {
	return readTotals(ctx, r.DB.Pool)
}

func readTotals(ctx context.Context, q queryRower) (ledger.Totals, error) {
	var t ledger.Totals
	err := q.QueryRow(ctx, `
		SELECT
			(SELECT COALESCE(SUM(fee_paid), 0) FROM registrations WHERE status = 'approved')::bigint,
			(SELECT COALESCE(SUM(amount), 0) FROM cash_transactions)::bigint,
			(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE payment_method = 'cash')::bigint,
			(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE payment_method = 'bank')::bigint
	`).Scan(&t.ApprovedFees, &t.Transfers, &t.CashExpenses, &t.BankExpenses)
	return t, err
}

// RecordTransfer inserts a cash-to-bank transfer if check accepts the current totals.
func (r LedgerRepository) RecordTransfer(ctx context.Context, in ports.NewTransfer, check ports.BalanceCheck) (*domain.CashTransaction, error) {
	var out domain.CashTransaction
	err := r.withLedgerLock(ctx, check, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO cash_transactions (amount, from_date, to_date, remarks, created_at)
			VALUES ($1,$2,$3,$4, now())
			RETURNING id, amount, from_date, to_date, remarks, created_at
		`, in.Amount, dateOrNil(in.FromDate), dateOrNil(in.ToDate), in.Remarks).Scan(
			&out.ID, &out.Amount, &out.FromDate, &out.ToDate, &out.Remarks, &out.CreatedAt,
		)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RecordExpense inserts an expense if check accepts the current totals.
func (r LedgerRepository) RecordExpense(ctx context.Context, in ports.NewExpense, check ports.BalanceCheck) (*domain.Expense, error) {
	var (
		out    domain.Expense
		method string
	)
	err := r.withLedgerLock(ctx, check, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO expenses (amount, payment_method, description, expense_date, created_at)
			VALUES ($1,$2,$3,$4, now())
			RETURNING id, amount, payment_method, description, expense_date, created_at
		`, in.Amount, string(in.PaymentMethod), in.Description, in.ExpenseDate.Format("2006-01-02")).Scan(
			&out.ID, &out.Amount, &method, &out.Description, &out.ExpenseDate, &out.CreatedAt,
		)
	})
	if err != nil {
		return nil, err
	}
	out.PaymentMethod = domain.PaymentMethod(method)
	return &out, nil
}

func (r LedgerRepository) withLedgerLock(ctx context.Context, check ports.BalanceCheck, insert func(pgx.Tx) error) error {
	tx, err := r.DB.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, ledgerLockKey); err != nil {
		return fmt.Errorf("acquire ledger lock: %w", err)
	}
	if check != nil {
		totals, err := readTotals(ctx, tx)
		if err != nil {
			return fmt.Errorf("read ledger totals: %w", err)
		}
		if err := check(totals); err != nil {
			return err
		}
	}
	if err := insert(tx); err != nil {
		return translate(err)
	}
	return tx.Commit(ctx)
}

func (r LedgerRepository) ListTransfers(ctx context.Context, limit int) ([]domain.CashTransaction, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, amount, from_date, to_date, remarks, created_at
		FROM cash_transactions
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.CashTransaction
	for rows.Next() {
		var t domain.CashTransaction
		if err := rows.Scan(&t.ID, &t.Amount, &t.FromDate, &t.ToDate, &t.Remarks, &t.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

func (r LedgerRepository) ListExpenses(ctx context.Context, limit int) ([]domain.Expense, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.DB.Pool.Query(ctx, `
		SELECT id, amount, payment_method, description, expense_date, created_at
		FROM expenses
		ORDER BY expense_date DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []domain.Expense
	for rows.Next() {
		var (
			e      domain.Expense
			method string
		)
		if err := rows.Scan(&e.ID, &e.Amount, &method, &e.Description, &e.ExpenseDate, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.PaymentMethod = domain.PaymentMethod(method)
		items = append(items, e)
	}
	return items, rows.Err()
}

func dateOrNil(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
