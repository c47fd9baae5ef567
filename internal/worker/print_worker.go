package worker

// print_worker.go
// Consumes kitchen and correction ticket jobs from QueuePrint. Each POST to
// the print server goes through the circuit breaker; exhausted retries land
// in the DLQ. Printing is never allowed to fail an order or a settlement.

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"restopos/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// KitchenPrintJobPayload is the job envelope for a kitchen ticket.
type KitchenPrintJobPayload struct {
	OrderID string              `json:"order_id"`
	Ticket  infra.KitchenTicket `json:"ticket"`
}

// CorrectionPrintJobPayload is the job envelope for a correction ticket.
type CorrectionPrintJobPayload struct {
	OrderID string                 `json:"order_id"`
	Ticket  infra.CorrectionTicket `json:"ticket"`
}

type PrintWorker struct {
	client  *infra.PrintClient
	breaker *infra.Breaker
	rdb     *redis.Client
}

func NewPrintWorker(client *infra.PrintClient, breaker *infra.Breaker, rdb *redis.Client) *PrintWorker {
	return &PrintWorker{client: client, breaker: breaker, rdb: rdb}
}

// ProcessKitchen handles one kitchen ticket job.
func (w *PrintWorker) ProcessKitchen(ctx context.Context, raw json.RawMessage) {
	var payload KitchenPrintJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("print_worker: invalid kitchen payload")
		return
	}

	err := w.post(ctx, raw, JobKitchenPrint, payload.OrderID, func() error {
		return w.client.PrintKitchen(ctx, payload.Ticket)
	})
	if err == nil {
		log.Info().Str("order_id", payload.OrderID).Str("area", payload.Ticket.Area).
			Msg("print_worker: kitchen ticket printed")
	}
}

// ProcessCorrection handles one correction ticket job.
func (w *PrintWorker) ProcessCorrection(ctx context.Context, raw json.RawMessage) {
	var payload CorrectionPrintJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("print_worker: invalid correction payload")
		return
	}

	err := w.post(ctx, raw, JobCorrectionPrint, payload.OrderID, func() error {
		return w.client.PrintCorrection(ctx, payload.Ticket)
	})
	if err == nil {
		log.Info().Str("order_id", payload.OrderID).Str("tipo", payload.Ticket.Tipo).
			Msg("print_worker: correction ticket printed")
	}
}

const printMaxAttempts = 3

// post runs one print call through the breaker with retries; on exhaustion
// the job goes to the DLQ for manual reprint.
func (w *PrintWorker) post(ctx context.Context, raw json.RawMessage, jobType, orderID string, fn func() error) error {
	err := withRetry(ctx, printMaxAttempts, func(attempt int) error {
		callErr := w.breaker.Do(fn)
		if callErr != nil {
			log.Warn().Err(callErr).Int("attempt", attempt+1).Str("order_id", orderID).
				Msg("print_worker: print attempt failed")
		}
		return callErr
	})
	if err != nil {
		reason := err.Error()
		if errors.Is(err, infra.ErrBreakerOpen) {
			reason = "print server circuit open"
		}
		SendToDLQ(ctx, w.rdb, QueuePrint, jobType, raw, reason, printMaxAttempts)
	}
	return err
}

// withRetry calls fn up to maxAttempts times with exponential backoff.
// Backoff schedule: attempt 1 = immediate, 2 = 1s, 3 = 2s.
// Returns nil if any attempt succeeds; last error otherwise.
func withRetry(ctx context.Context, maxAttempts int, fn func(attempt int) error) error {
	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		if i > 0 {
			wait := time.Duration(1<<uint(i-1)) * time.Second
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
		if err := fn(i); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
