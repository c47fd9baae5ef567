package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ShiftStatus string

const (
	ShiftOpen   ShiftStatus = "OPEN"
	ShiftClosed ShiftStatus = "CLOSED"
)

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodCard     PaymentMethod = "CARD"
	MethodTransfer PaymentMethod = "TRANSFER"
)

// Shift is one cashier's period of custody over the cash drawer.
// At most one OPEN shift exists at a time (partial unique index below).
//
// The *_sales columns are a cache kept in step inside the settlement
// transaction; closure always recomputes them from the payment ledger, so the
// ledger stays the single source of truth.
type Shift struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OperatorID    uuid.UUID       `gorm:"type:uuid;not null"`
	OpeningAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        ShiftStatus     `gorm:"type:varchar(20);not null;default:'OPEN'"`

	CashSales     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CardSales     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TransferSales decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalSales    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalOrders   int             `gorm:"not null;default:0"`

	// Set only at closure.
	ClosingAmount  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ExpectedAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Difference     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Notes          *string

	OpenedAt time.Time
	ClosedAt *time.Time

	Payments []Payment `gorm:"foreignKey:ShiftID"`
	Operator *User     `gorm:"foreignKey:OperatorID"`
}

// Payment is an immutable row in the settlement ledger. Never updated or
// deleted — refunds are separate entities, not reversals of these rows.
type Payment struct {
	ID      uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID uuid.UUID     `gorm:"type:uuid;index;not null;uniqueIndex:idx_order_attempt"`
	ShiftID uuid.UUID     `gorm:"type:uuid;index;not null"`
	Method  PaymentMethod `gorm:"type:varchar(20);not null"`

	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// CASH only: what the customer handed over and what went back.
	ReceivedAmount *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ChangeAmount   *decimal.Decimal `gorm:"type:decimal(12,2)"`
	// Card voucher / transfer reference for methods that require one.
	Reference *string `gorm:"type:varchar(100)"`

	// AttemptToken is the client-generated idempotency key; a retried
	// settlement with the same token maps to the same ledger rows.
	AttemptToken string `gorm:"type:varchar(64);not null;uniqueIndex:idx_order_attempt"`

	CreatedAt time.Time
}
