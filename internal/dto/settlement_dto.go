package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// PaymentLegRequest is one (method, amount) leg of a settlement. A single leg
// is a simple payment; two or more form a split whose amounts must sum to the
// amount due.
type PaymentLegRequest struct {
	Method string          `json:"method" validate:"required,oneof=CASH CARD TRANSFER"`
	Amount decimal.Decimal `json:"amount" validate:"required"`
	// CASH only: amount physically handed over (≥ amount due for simple cash).
	ReceivedAmount *decimal.Decimal `json:"received_amount"`
	// Voucher / transfer reference for methods configured to require one.
	Reference *string `json:"reference"`
}

type SettleOrderRequest struct {
	// AttemptToken is generated client-side per settlement attempt; retrying
	// after a network failure reuses it so the charge is recorded only once.
	AttemptToken string              `json:"attempt_token" validate:"required,min=8,max=64"`
	Legs         []PaymentLegRequest `json:"legs"          validate:"required,min=1,dive"`
}

type ApplyDiscountRequest struct {
	Type   string          `json:"type"   validate:"required,oneof=PERCENTAGE FIXED"`
	Value  decimal.Decimal `json:"value"  validate:"required"`
	Reason string          `json:"reason" validate:"required,min=3"`
}

type TipRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PaymentResponse struct {
	ID             string           `json:"id"`
	Method         string           `json:"method"`
	Amount         decimal.Decimal  `json:"amount"`
	ReceivedAmount *decimal.Decimal `json:"received_amount,omitempty"`
	ChangeAmount   *decimal.Decimal `json:"change_amount,omitempty"`
	Reference      *string          `json:"reference,omitempty"`
	CreatedAt      string           `json:"created_at"`
}

type SettlementResponse struct {
	OrderID      string            `json:"order_id"`
	TicketNumber int               `json:"ticket_number"`
	Status       string            `json:"status"`
	AmountDue    decimal.Decimal   `json:"amount_due"`
	Change       decimal.Decimal   `json:"change"`
	Payments     []PaymentResponse `json:"payments"`
}

// InsufficientPaymentDetail tells the cashier exactly how much is missing.
type InsufficientPaymentDetail struct {
	AmountDue decimal.Decimal `json:"amount_due"`
	Offered   decimal.Decimal `json:"offered"`
	Missing   decimal.Decimal `json:"missing"`
}
