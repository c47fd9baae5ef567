package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenShiftRequest struct {
	OpeningAmount decimal.Decimal `json:"opening_amount" validate:"min=0"`
}

// DenominationCount is one line of the physical cash count. The caller always
// submits raw per-denomination counts so the total stays re-derivable for
// audit; a pre-summed figure is not accepted.
type DenominationCount struct {
	Denomination decimal.Decimal `json:"denomination" validate:"required"`
	Quantity     int             `json:"quantity"     validate:"min=0"`
}

type CloseShiftRequest struct {
	CashCount       []DenominationCount `json:"cash_count"       validate:"required,min=1,dive"`
	CountedCard     decimal.Decimal     `json:"counted_card"     validate:"min=0"`
	CountedTransfer decimal.Decimal     `json:"counted_transfer" validate:"min=0"`
	Notes           *string             `json:"notes"`
}

// ArqueoRequest runs the reconciliation math against an open or closed shift
// without side effects.
type ArqueoRequest struct {
	CashCount       []DenominationCount `json:"cash_count"       validate:"required,min=1,dive"`
	CountedCard     decimal.Decimal     `json:"counted_card"     validate:"min=0"`
	CountedTransfer decimal.Decimal     `json:"counted_transfer" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SalesByMethod struct {
	Cash     decimal.Decimal `json:"cash"`
	Card     decimal.Decimal `json:"card"`
	Transfer decimal.Decimal `json:"transfer"`
	Total    decimal.Decimal `json:"total"`
}

type ShiftResponse struct {
	ID            string          `json:"id"`
	OperatorID    string          `json:"operator_id"`
	OperatorName  string          `json:"operator_name,omitempty"`
	Status        string          `json:"status"`
	OpeningAmount decimal.Decimal `json:"opening_amount"`
	Sales         SalesByMethod   `json:"sales"`
	TotalOrders   int             `json:"total_orders"`
	CashRefunds   decimal.Decimal `json:"cash_refunds"`

	ClosingAmount  *decimal.Decimal `json:"closing_amount,omitempty"`
	ExpectedAmount *decimal.Decimal `json:"expected_amount,omitempty"`
	Difference     *decimal.Decimal `json:"difference,omitempty"`
	Notes          *string          `json:"notes,omitempty"`

	OpenedAt string  `json:"opened_at"`
	ClosedAt *string `json:"closed_at,omitempty"`
}

// ArqueoResponse surfaces the full multi-method reconciliation. Difference is
// signed: positive = overage, negative = shortage. Never clamped.
type ArqueoResponse struct {
	ShiftID       string          `json:"shift_id"`
	CashTotal     decimal.Decimal `json:"cash_total"`
	CountedTotal  decimal.Decimal `json:"counted_total"`
	ExpectedCash  decimal.Decimal `json:"expected_cash"`
	ExpectedTotal decimal.Decimal `json:"expected_total"`
	Difference    decimal.Decimal `json:"difference"`
}

type CloseShiftResponse struct {
	Shift  ShiftResponse  `json:"shift"`
	Arqueo ArqueoResponse `json:"arqueo"`
}

// PendingOrderDetail identifies one order blocking shift closure.
type PendingOrderDetail struct {
	ID           string          `json:"id"`
	TicketNumber int             `json:"ticket_number"`
	Name         string          `json:"name"`
	Status       string          `json:"status"`
	Total        decimal.Decimal `json:"total"`
}
