package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderInKitchen OrderStatus = "IN_KITCHEN"
	OrderReady     OrderStatus = "READY"
	OrderServed    OrderStatus = "SERVED"
	OrderPaid      OrderStatus = "PAID"
	OrderCancelled OrderStatus = "CANCELLED"
)

// Settled reports whether the order has reached a terminal state.
func (s OrderStatus) Settled() bool {
	return s == OrderPaid || s == OrderCancelled
}

type OrderType string

const (
	OrderDineIn   OrderType = "DINE_IN"
	OrderTakeaway OrderType = "TAKEAWAY"
)

type DiscountType string

const (
	DiscountPercentage DiscountType = "PERCENTAGE"
	DiscountFixed      DiscountType = "FIXED"
)

// Order flows PENDING → IN_KITCHEN → READY → SERVED → PAID, or → CANCELLED
// from any pre-PAID state. Settlement transitions it to PAID; it is never
// reopened afterwards.
type Order struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TicketNumber int         `gorm:"uniqueIndex;not null"`
	Type         OrderType   `gorm:"type:varchar(20);not null"`
	TableID      *uuid.UUID  `gorm:"type:uuid;index"`
	WaiterID     uuid.UUID   `gorm:"type:uuid;not null"`
	CustomerName *string     `gorm:"type:varchar(100)"`
	Status       OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`

	Subtotal decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// Single discount per order — re-applying replaces these fields.
	DiscountType   *DiscountType    `gorm:"type:varchar(20)"`
	DiscountValue  *decimal.Decimal `gorm:"type:decimal(12,2)"`
	DiscountAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountReason *string
	Tip            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Tax            decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	PaidAt    *time.Time
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Items  []OrderItem `gorm:"foreignKey:OrderID"`
	Table  *Table      `gorm:"foreignKey:TableID"`
	Waiter *User       `gorm:"foreignKey:WaiterID"`
}

// DisplayName is the label shown on pending-order guards and kitchen tickets:
// the table name for dine-in, the customer (or ticket number) for takeaway.
func (o *Order) DisplayName() string {
	if o.Type == OrderDineIn && o.Table != nil {
		return o.Table.Name
	}
	if o.CustomerName != nil && *o.CustomerName != "" {
		return *o.CustomerName
	}
	return "Para llevar"
}

// OrderItem snapshots product name and price at order time so later catalog
// edits don't rewrite history.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null"`
	Name      string          `gorm:"type:varchar(150);not null"`
	Area      string          `gorm:"type:varchar(50);not null;default:'cocina'"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Quantity  int             `gorm:"not null"`
	Notes     string
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time
}
