package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// Correction ticket types understood by the print server.
const (
	CorrectionAdd      = "AGREGAR"
	CorrectionRemove   = "ELIMINAR"
	CorrectionQuantity = "CANTIDAD"
	CorrectionModify   = "MODIFICACION"
)

// TicketItem is one line on a kitchen ticket.
type TicketItem struct {
	Nombre   string `json:"nombre"`
	Cantidad int    `json:"cantidad"`
	Notas    string `json:"notas,omitempty"`
}

// KitchenTicket is sent to the print server when an order enters the kitchen.
// One ticket per preparation area (cocina / bar).
type KitchenTicket struct {
	Mesa   string          `json:"mesa"`
	Mesero string          `json:"mesero"`
	Area   string          `json:"area"`
	Items  []TicketItem    `json:"items"`
	Total  decimal.Decimal `json:"total"`
	Hora   string          `json:"hora"`
}

// CorrectionItem is one line on a correction ticket. CantidadAnterior is only
// present for CANTIDAD corrections.
type CorrectionItem struct {
	Nombre           string  `json:"nombre"`
	Cantidad         int     `json:"cantidad"`
	CantidadAnterior *int    `json:"cantidadAnterior,omitempty"`
	Notas            *string `json:"notas,omitempty"`
}

// CorrectionTicket notifies the kitchen of changes to an order it already has.
type CorrectionTicket struct {
	Tipo   string           `json:"tipo"`
	Mesa   string           `json:"mesa"`
	Area   string           `json:"area"`
	Mesero string           `json:"mesero"`
	Items  []CorrectionItem `json:"items"`
	Hora   string           `json:"hora"`
}

type printResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// PrintClient talks to the local print server over HTTP. The print server
// owns the physical thermal printers; this process never touches them.
type PrintClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewPrintClient(baseURL string) *PrintClient {
	return &PrintClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// PrintKitchen sends a kitchen ticket. A success:false body counts as a
// failure just like a transport error or a non-2xx status.
func (c *PrintClient) PrintKitchen(ctx context.Context, ticket KitchenTicket) error {
	return c.post(ctx, "/print-kitchen", ticket)
}

// PrintCorrection sends a correction ticket.
func (c *PrintClient) PrintCorrection(ctx context.Context, ticket CorrectionTicket) error {
	return c.post(ctx, "/print-correction", ticket)
}

func (c *PrintClient) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("printer: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("printer: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("printer: print server unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("printer: print server returned %d", resp.StatusCode)
	}

	var result printResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("printer: decode response: %w", err)
	}
	if !result.Success {
		return fmt.Errorf("printer: print server rejected job: %s", result.Message)
	}
	return nil
}
