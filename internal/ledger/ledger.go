// Package ledger derives cash and bank balances from collected fees, transfers and expenses.
// Balances are never stored; they are recomputed from source records on every read.
package ledger

import (
	"errors"
	"fmt"

	"selfreg-backend/internal/domain"
)

var (
	ErrInvalidAmount     = errors.New("amount must be greater than zero")
	ErrInsufficientFunds = errors.New("insufficient balance")
)

// Totals are the aggregates balances are derived from.
type Totals struct {
	ApprovedFees int64
	Transfers    int64
	CashExpenses int64
	BankExpenses int64
}

type Balances struct {
	CashInHand int64
	CashAtBank int64
}

// Compute derives balances:
//
//	cashInHand = approvedFees - transfers - cashExpenses
//	cashAtBank = transfers - bankExpenses
func Compute(t Totals) Balances {
	return Balances{
		CashInHand: t.ApprovedFees - t.Transfers - t.CashExpenses,
		CashAtBank: t.Transfers - t.BankExpenses,
	}
}

// Available is the spendable balance of a bucket.
func (b Balances) Available(method domain.PaymentMethod) int64 {
	if method == domain.PaymentBank {
		return b.CashAtBank
	}
	return b.CashInHand
}

// CheckTransfer validates moving amount of cash in hand to the bank.
func CheckTransfer(b Balances, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if amount > b.CashInHand {
		return fmt.Errorf("%w: transfer of %d exceeds cash in hand %d", ErrInsufficientFunds, amount, b.CashInHand)
	}
	return nil
}

// CheckExpense validates paying amount out of the bucket for method.
func CheckExpense(b Balances, amount int64, method domain.PaymentMethod) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if !method.Valid() {
		return fmt.Errorf("invalid payment method %q", method)
	}
	if avail := b.Available(method); amount > avail {
		return fmt.Errorf("%w: expense of %d exceeds %s balance %d", ErrInsufficientFunds, amount, method, avail)
	}
	return nil
}
