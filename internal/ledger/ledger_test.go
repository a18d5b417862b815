package ledger

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfreg-backend/internal/domain"
)

func TestCompute(t *testing.T) {
	b := Compute(Totals{ApprovedFees: 10000, Transfers: 6000, CashExpenses: 1500, BankExpenses: 2000})
	assert.Equal(t, int64(2500), b.CashInHand)
	assert.Equal(t, int64(4000), b.CashAtBank)
	assert.Equal(t, int64(2500), b.Available(domain.PaymentCash))
	assert.Equal(t, int64(4000), b.Available(domain.PaymentBank))
}

func TestChecks(t *testing.T) {
	b := Balances{CashInHand: 1000, CashAtBank: 300}

	assert.NoError(t, CheckTransfer(b, 1000))
	assert.ErrorIs(t, CheckTransfer(b, 1001), ErrInsufficientFunds)
	assert.ErrorIs(t, CheckTransfer(b, 0), ErrInvalidAmount)

	assert.NoError(t, CheckExpense(b, 300, domain.PaymentBank))
	assert.ErrorIs(t, CheckExpense(b, 301, domain.PaymentBank), ErrInsufficientFunds)
	assert.NoError(t, CheckExpense(b, 900, domain.PaymentCash))
	assert.ErrorIs(t, CheckExpense(b, -5, domain.PaymentCash), ErrInvalidAmount)
	assert.Error(t, CheckExpense(b, 5, domain.PaymentMethod("card")))
}

type entryKind int

const (
	feeCollected entryKind = iota
	transferToBank
	expensePaid
)

// entry is one record of a money log.
type entry struct {
	kind   entryKind
	amount int64
	method domain.PaymentMethod
}

func replay(log []entry) Totals {
	var t Totals
	for _, e := range log {
		switch e.kind {
		case feeCollected:
			t.ApprovedFees += e.amount
		case transferToBank:
			t.Transfers += e.amount
		case expensePaid:
			if e.method == domain.PaymentBank {
				t.BankExpenses += e.amount
			} else {
				t.CashExpenses += e.amount
			}
		}
	}
	return t
}

// Applying only entries that pass the checks keeps both identities and never
// drives a bucket negative.
func TestChecksKeepIdentities(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	var log []entry

	for i := 0; i < 500; i++ {
		totals := replay(log)
		balances := Compute(totals)

		amount := rng.Int63n(2000) + 1
		var ev entry
		switch rng.Intn(4) {
		case 0:
			ev = entry{kind: feeCollected, amount: amount}
		case 1:
			if CheckTransfer(balances, amount) != nil {
				continue
			}
			ev = entry{kind: transferToBank, amount: amount}
		case 2:
			if CheckExpense(balances, amount, domain.PaymentCash) != nil {
				continue
			}
			ev = entry{kind: expensePaid, amount: amount, method: domain.PaymentCash}
		default:
			if CheckExpense(balances, amount, domain.PaymentBank) != nil {
				continue
			}
			ev = entry{kind: expensePaid, amount: amount, method: domain.PaymentBank}
		}
		log = append(log, ev)

		totals = replay(log)
		balances = Compute(totals)
		require.Equal(t, totals.ApprovedFees, balances.CashInHand+totals.CashExpenses+totals.Transfers)
		require.Equal(t, totals.Transfers, balances.CashAtBank+totals.BankExpenses)
		require.GreaterOrEqual(t, balances.CashInHand, int64(0))
		require.GreaterOrEqual(t, balances.CashAtBank, int64(0))
	}
}
