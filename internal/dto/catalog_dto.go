package dto

import "github.com/shopspring/decimal"

// ─── Tables ──────────────────────────────────────────────────────────────────

type CreateTableRequest struct {
	Number int    `json:"number" validate:"required,min=1"`
	Name   string `json:"name"   validate:"required"`
	Area   string `json:"area"`
}

type TableResponse struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Name   string `json:"name"`
	Area   string `json:"area,omitempty"`
	Status string `json:"status"`
}

// ─── Products / categories ───────────────────────────────────────────────────

type CreateProductRequest struct {
	Name       string          `json:"name"        validate:"required"`
	Price      decimal.Decimal `json:"price"       validate:"required"`
	CategoryID *string         `json:"category_id" validate:"omitempty,uuid"`
	Area       string          `json:"area"        validate:"omitempty,oneof=cocina bar"`
}

type UpdateProductRequest struct {
	Name       *string          `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	CategoryID *string          `json:"category_id" validate:"omitempty,uuid"`
	Area       *string          `json:"area"        validate:"omitempty,oneof=cocina bar"`
}

type ProductResponse struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category,omitempty"`
	Area     string          `json:"area"`
	Active   bool            `json:"active"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required"`
}

type CategoryResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
