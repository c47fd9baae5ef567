package service

// arqueo.go — drawer reconciliation math. Pure functions, no repository
// access: re-running the same counts always yields the same result, and the
// numbers can be re-derived from the raw per-denomination counts for audit.

import (
	"errors"

	"restopos/internal/dto"

	"github.com/shopspring/decimal"
)

// CashTotal sums denomination × quantity over the physical count.
func CashTotal(counts []dto.DenominationCount) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, c := range counts {
		if c.Denomination.IsNegative() {
			return decimal.Zero, errors.New("denominación negativa en el conteo")
		}
		if c.Quantity < 0 {
			return decimal.Zero, errors.New("cantidad negativa en el conteo")
		}
		total = total.Add(c.Denomination.Mul(decimal.NewFromInt(int64(c.Quantity))))
	}
	return total, nil
}

// ArqueoInput carries the shift-side expectations and the operator-side
// counts for one reconciliation run.
type ArqueoInput struct {
	OpeningAmount decimal.Decimal
	CashSales     decimal.Decimal
	CardSales     decimal.Decimal
	TransferSales decimal.Decimal
	// Approved CASH refunds paid out of this drawer.
	CashRefunds decimal.Decimal

	Counts          []dto.DenominationCount
	CountedCard     decimal.Decimal
	CountedTransfer decimal.Decimal
}

// Reconcile compares the counted drawer against the full multi-method
// expected total. Difference keeps its sign: positive is overage, negative is
// shortage — it is never clamped, both must reach the operator.
func Reconcile(in ArqueoInput) (*dto.ArqueoResponse, error) {
	cashTotal, err := CashTotal(in.Counts)
	if err != nil {
		return nil, err
	}

	expectedCash := in.OpeningAmount.Add(in.CashSales).Sub(in.CashRefunds)
	expectedTotal := expectedCash.Add(in.CardSales).Add(in.TransferSales)
	countedTotal := cashTotal.Add(in.CountedCard).Add(in.CountedTransfer)

	return &dto.ArqueoResponse{
		CashTotal:     cashTotal,
		CountedTotal:  countedTotal,
		ExpectedCash:  expectedCash,
		ExpectedTotal: expectedTotal,
		Difference:    countedTotal.Sub(expectedTotal),
	}, nil
}
