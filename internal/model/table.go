package model

import (
	"time"

	"github.com/google/uuid"
)

type TableStatus string

const (
	TableAvailable TableStatus = "AVAILABLE"
	TableOccupied  TableStatus = "OCCUPIED"
)

// Table is a physical dining table. Occupied by dine-in orders and released
// back to AVAILABLE when the order is settled or cancelled.
type Table struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Number    int         `gorm:"uniqueIndex;not null"`
	Name      string      `gorm:"type:varchar(50);not null"`
	Area      string      `gorm:"type:varchar(50)"`
	Status    TableStatus `gorm:"type:varchar(20);not null;default:'AVAILABLE'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Table) TableName() string { return "dining_tables" }
