package service

import (
	"errors"
	"fmt"

	"restopos/internal/dto"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Guard violations carry enough structured detail for the terminal to show
// the operator what to fix — never just a generic failure message.

// PendingOrdersError blocks shift closure while unsettled orders remain.
type PendingOrdersError struct {
	Orders []dto.PendingOrderDetail
}

func (e *PendingOrdersError) Error() string {
	return fmt.Sprintf("hay %d pedidos sin cobrar o cancelar", len(e.Orders))
}

// AlreadyPaidError rejects double settlement of an order.
type AlreadyPaidError struct {
	OrderID      uuid.UUID
	TicketNumber int
}

func (e *AlreadyPaidError) Error() string {
	return fmt.Sprintf("el pedido #%d ya fue cobrado", e.TicketNumber)
}

// InsufficientPaymentError reports exactly how much is missing.
type InsufficientPaymentError struct {
	AmountDue decimal.Decimal
	Offered   decimal.Decimal
}

func (e *InsufficientPaymentError) Missing() decimal.Decimal {
	return e.AmountDue.Sub(e.Offered)
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("pago insuficiente: faltan $%s", e.Missing().StringFixed(0))
}

// ShiftAlreadyOpenError rejects opening a second shift.
type ShiftAlreadyOpenError struct {
	ShiftID uuid.UUID
}

func (e *ShiftAlreadyOpenError) Error() string {
	return "ya existe un turno de caja abierto"
}

// ShiftAlreadyClosedError rejects re-closing a closed shift.
type ShiftAlreadyClosedError struct {
	ShiftID uuid.UUID
}

func (e *ShiftAlreadyClosedError) Error() string {
	return "el turno de caja ya está cerrado"
}

// ErrNoOpenShift is returned when a settlement or refund arrives with no
// shift in custody of the drawer.
var ErrNoOpenShift = errors.New("no hay un turno de caja abierto")

// ErrNotFound is the domain-level not-found, decoupled from gorm's.
// Handlers match it with errors.Is to produce a 404.
var ErrNotFound = errors.New("no encontrado")

// NotFoundError keeps the entity-specific message while still matching
// ErrNotFound, and any domain sentinel (ErrNoOpenShift) its source carried.
type NotFoundError struct {
	Msg string
	Err error
}

func (e *NotFoundError) Error() string { return e.Msg }
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	return e.Err != nil && errors.Is(e.Err, target)
}

// StoreUnavailableError wraps backing-store failures. Retryable: the caller
// may repeat the request (settlements carry an attempt token, so retries are
// safe).
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("almacén de datos no disponible (%s): %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error { return e.Err }

// storeErr maps a repository error: record-not-found stays a domain error,
// anything else is a retryable store failure.
func storeErr(op string, err error, notFound error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return &NotFoundError{Msg: notFound.Error(), Err: notFound}
	}
	return &StoreUnavailableError{Op: op, Err: err}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
