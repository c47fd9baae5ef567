package dto

import (
	"github.com/shopspring/decimal"

	"restopos/internal/model"
)

// UpdateSettingRequest uses pointers so partial updates leave untouched
// sections alone.
type UpdateSettingRequest struct {
	TaxRate        *decimal.Decimal            `json:"tax_rate"`
	TaxEnabled     *bool                       `json:"tax_enabled"`
	TipRate        *decimal.Decimal            `json:"tip_rate"`
	TipEnabled     *bool                       `json:"tip_enabled"`
	Currency       *string                     `json:"currency" validate:"omitempty,len=3"`
	PaymentMethods []model.PaymentMethodOption `json:"payment_methods"`
	Printers       []model.PrinterConfig       `json:"printers"`
	OperatingHours []model.OperatingHours      `json:"operating_hours"`
}

type SettingResponse struct {
	TaxRate        decimal.Decimal             `json:"tax_rate"`
	TaxEnabled     bool                        `json:"tax_enabled"`
	TipRate        decimal.Decimal             `json:"tip_rate"`
	TipEnabled     bool                        `json:"tip_enabled"`
	Currency       string                      `json:"currency"`
	PaymentMethods []model.PaymentMethodOption `json:"payment_methods"`
	Printers       []model.PrinterConfig       `json:"printers"`
	OperatingHours []model.OperatingHours      `json:"operating_hours"`
}
