package dto

import "github.com/shopspring/decimal"

type CreateRefundRequest struct {
	OrderID string          `json:"order_id" validate:"required,uuid"`
	Method  string          `json:"method"   validate:"required,oneof=CASH CARD TRANSFER"`
	Amount  decimal.Decimal `json:"amount"   validate:"required"`
	Reason  string          `json:"reason"   validate:"required,min=3"`
}

type RefundResponse struct {
	ID           string          `json:"id"`
	OrderID      string          `json:"order_id"`
	TicketNumber int             `json:"ticket_number,omitempty"`
	ShiftID      string          `json:"shift_id"`
	Method       string          `json:"method"`
	Amount       decimal.Decimal `json:"amount"`
	Reason       string          `json:"reason"`
	Status       string          `json:"status"`
	CreatedAt    string          `json:"created_at"`
	ResolvedAt   *string         `json:"resolved_at,omitempty"`
}
