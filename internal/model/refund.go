package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RefundStatus string

const (
	RefundPending  RefundStatus = "PENDING"
	RefundApproved RefundStatus = "APPROVED"
	RefundRejected RefundStatus = "REJECTED"
)

// Refund is a reversal request against a PAID order. Approved CASH refunds
// reduce the issuing shift's expected cash at closure; the payment ledger
// itself is never touched.
type Refund struct {
	ID      uuid.UUID     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID uuid.UUID     `gorm:"type:uuid;index;not null"`
	ShiftID uuid.UUID     `gorm:"type:uuid;index;not null"`
	Method  PaymentMethod `gorm:"type:varchar(20);not null"`

	Amount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason string          `gorm:"not null"`
	Status RefundStatus    `gorm:"type:varchar(20);not null;default:'PENDING'"`

	RequestedBy uuid.UUID  `gorm:"type:uuid;not null"`
	ResolvedBy  *uuid.UUID `gorm:"type:uuid"`
	ResolvedAt  *time.Time
	CreatedAt   time.Time
}
