package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethodOption struct {
	Name              PaymentMethod `json:"name"`
	Enabled           bool          `json:"enabled"`
	RequiresReference bool          `json:"requires_reference"`
}

type PrinterConfig struct {
	Name    string `json:"name"`
	Type    string `json:"type"` // "kitchen" | "bar" | "receipt"
	IP      string `json:"ip"`
	Port    int    `json:"port"`
	Enabled bool   `json:"enabled"`
}

type OperatingHours struct {
	Day    string `json:"day"`
	Open   string `json:"open"`
	Close  string `json:"close"`
	IsOpen bool   `json:"is_open"`
}

// Setting is the single business-configuration row. Settlement reads only
// TaxRate/TaxEnabled and the payment method list; the rest feeds peripheral
// screens.
type Setting struct {
	ID int `gorm:"primaryKey"`

	TaxRate    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:8"`
	TaxEnabled bool            `gorm:"not null;default:true"`
	TipRate    decimal.Decimal `gorm:"type:decimal(5,2);not null;default:10"`
	TipEnabled bool            `gorm:"not null;default:true"`
	Currency   string          `gorm:"type:varchar(3);not null;default:'COP'"`

	PaymentMethods []PaymentMethodOption `gorm:"serializer:json"`
	Printers       []PrinterConfig       `gorm:"serializer:json"`
	OperatingHours []OperatingHours      `gorm:"serializer:json"`

	UpdatedAt time.Time
}

// DefaultSetting seeds the configuration row on first boot.
func DefaultSetting() *Setting {
	return &Setting{
		ID:         1,
		TaxRate:    decimal.NewFromInt(8),
		TaxEnabled: true,
		TipRate:    decimal.NewFromInt(10),
		TipEnabled: true,
		Currency:   "COP",
		PaymentMethods: []PaymentMethodOption{
			{Name: MethodCash, Enabled: true},
			{Name: MethodCard, Enabled: true, RequiresReference: true},
			{Name: MethodTransfer, Enabled: true, RequiresReference: true},
		},
	}
}

// MethodEnabled reports whether a payment method is configured and enabled.
func (s *Setting) MethodEnabled(m PaymentMethod) bool {
	for _, opt := range s.PaymentMethods {
		if opt.Name == m {
			return opt.Enabled
		}
	}
	return false
}
