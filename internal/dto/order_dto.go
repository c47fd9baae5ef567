package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity"   validate:"required,gt=0"`
	Notes     string `json:"notes"`
}

type CreateOrderRequest struct {
	Type         string             `json:"type"          validate:"required,oneof=DINE_IN TAKEAWAY"`
	TableID      *string            `json:"table_id"      validate:"omitempty,uuid"`
	CustomerName *string            `json:"customer_name"`
	Items        []OrderItemRequest `json:"items"         validate:"required,min=1,dive"`
}

type UpdateItemsRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

type OrderFilter struct {
	Status string
	Date   string // YYYY-MM-DD
	Page   int
	Limit  int
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderItemResponse struct {
	ID        string          `json:"id"`
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Notes     string          `json:"notes,omitempty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type OrderResponse struct {
	ID           string  `json:"id"`
	TicketNumber int     `json:"ticket_number"`
	Type         string  `json:"type"`
	TableID      *string `json:"table_id,omitempty"`
	TableName    string  `json:"table_name,omitempty"`
	WaiterID     string  `json:"waiter_id"`
	WaiterName   string  `json:"waiter_name,omitempty"`
	CustomerName *string `json:"customer_name,omitempty"`
	Status       string  `json:"status"`

	Items []OrderItemResponse `json:"items"`

	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountType   *string         `json:"discount_type,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	DiscountReason *string         `json:"discount_reason,omitempty"`
	Tip            decimal.Decimal `json:"tip"`
	Tax            decimal.Decimal `json:"tax"`
	Total          decimal.Decimal `json:"total"`

	// PrintWarning is set when a kitchen/correction ticket could not be
	// printed; the operation itself still succeeded.
	PrintWarning *string `json:"print_warning,omitempty"`

	CreatedAt string  `json:"created_at"`
	PaidAt    *string `json:"paid_at,omitempty"`
}

type OrderListResponse struct {
	Data  []OrderResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
