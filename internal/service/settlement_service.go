package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// paymentTolerance is the smallest currency unit: 1 peso (COP carries no
// decimals). Split totals within this tolerance of the amount due settle.
var paymentTolerance = decimal.NewFromInt(1)

type SettlementService interface {
	// Settle records payment(s) against an order and transitions it to PAID.
	// Atomic: status change, ledger rows, shift totals and table release
	// commit together or not at all.
	Settle(ctx context.Context, orderID uuid.UUID, req dto.SettleOrderRequest) (*dto.SettlementResponse, error)
	// Cancel voids an order that has not gone past the kitchen.
	Cancel(ctx context.Context, orderID uuid.UUID) error
	ApplyDiscount(ctx context.Context, orderID uuid.UUID, req dto.ApplyDiscountRequest) (*dto.OrderResponse, error)
	SetTip(ctx context.Context, orderID uuid.UUID, req dto.TipRequest) (*dto.OrderResponse, error)
}

type settlementService struct {
	orderRepo   repository.OrderRepository
	shiftRepo   repository.ShiftRepository
	tableRepo   repository.TableRepository
	settingRepo repository.SettingRepository
}

func NewSettlementService(
	orderRepo repository.OrderRepository,
	shiftRepo repository.ShiftRepository,
	tableRepo repository.TableRepository,
	settingRepo repository.SettingRepository,
) SettlementService {
	return &settlementService{
		orderRepo:   orderRepo,
		shiftRepo:   shiftRepo,
		tableRepo:   tableRepo,
		settingRepo: settingRepo,
	}
}

// runTx executes fn inside a GORM transaction when db is available, or calls
// fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// computeAmountDue reproduces the settlement arithmetic in its fixed order:
// taxable base, then tax, then tip. The configured tax rate is authoritative.
func computeAmountDue(o *model.Order, cfg *model.Setting) (taxable, tax, due decimal.Decimal) {
	taxable = o.Subtotal.Sub(o.DiscountAmount)
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}
	rate := cfg.TaxRate
	if !cfg.TaxEnabled || rate.IsNegative() {
		rate = decimal.Zero
	}
	tax = taxable.Mul(rate).Div(decimal.NewFromInt(100)).Round(0)
	due = taxable.Add(tax).Add(o.Tip)
	return taxable, tax, due
}

// ── Settle ────────────────────────────────────────────────────────────────────

func (s *settlementService) Settle(ctx context.Context, orderID uuid.UUID, req dto.SettleOrderRequest) (*dto.SettlementResponse, error) {
	// Idempotent retry: if this attempt token already produced ledger rows,
	// the settlement committed — return it instead of charging again.
	if existing, err := s.shiftRepo.FindPaymentsByAttempt(ctx, orderID, req.AttemptToken); err == nil && len(existing) > 0 {
		order, err := s.orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return nil, storeErr("buscar pedido", err, ErrNotFound)
		}
		return buildSettlementResponse(order, order.Total, existing), nil
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeErr("buscar pedido", err, errors.New("pedido no encontrado"))
	}
	switch order.Status {
	case model.OrderPaid:
		return nil, &AlreadyPaidError{OrderID: order.ID, TicketNumber: order.TicketNumber}
	case model.OrderCancelled:
		return nil, errors.New("el pedido está cancelado")
	}

	shift, err := s.shiftRepo.FindOpen(ctx)
	if err != nil {
		return nil, storeErr("buscar turno abierto", err, ErrNoOpenShift)
	}

	cfg, err := s.settingRepo.Get(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "leer configuración", Err: err}
	}

	// A settlement always leaves ledger rows behind, even when a discount
	// brought the amount due to zero. Binding validation guards the HTTP
	// path; this guards every other caller.
	if len(req.Legs) == 0 {
		return nil, errors.New("se requiere al menos un pago")
	}

	// Per-leg validation before any money math.
	offered := decimal.Zero
	for _, leg := range req.Legs {
		if !leg.Amount.IsPositive() {
			return nil, errors.New("el monto de cada pago debe ser mayor a cero")
		}
		method := model.PaymentMethod(leg.Method)
		if !cfg.MethodEnabled(method) {
			return nil, fmt.Errorf("método de pago no habilitado: %s", leg.Method)
		}
		if requiresReference(cfg, method) && (leg.Reference == nil || *leg.Reference == "") {
			return nil, fmt.Errorf("el método %s requiere una referencia", leg.Method)
		}
		offered = offered.Add(leg.Amount)
	}

	_, tax, due := computeAmountDue(order, cfg)
	order.Tax = tax

	simpleCash := len(req.Legs) == 1 && model.PaymentMethod(req.Legs[0].Method) == model.MethodCash

	change := decimal.Zero
	if simpleCash {
		// Simple cash accepts overpayment and returns change. "Received" is
		// what physically crossed the counter; the ledger amount is the due.
		received := req.Legs[0].Amount
		if req.Legs[0].ReceivedAmount != nil {
			received = *req.Legs[0].ReceivedAmount
		}
		if received.LessThan(due.Sub(paymentTolerance)) {
			return nil, &InsufficientPaymentError{AmountDue: due, Offered: received}
		}
		change = received.Sub(due)
		if change.IsNegative() {
			change = decimal.Zero
		}
	} else {
		// Split and non-cash settlements must match the due exactly: there is
		// no way to hand change back on a card or transfer.
		if offered.LessThan(due.Sub(paymentTolerance)) {
			return nil, &InsufficientPaymentError{AmountDue: due, Offered: offered}
		}
		if offered.GreaterThan(due.Add(paymentTolerance)) {
			return nil, errors.New("el pago excede el total; solo efectivo simple admite vuelto")
		}
	}

	// All-or-nothing: PAID transition, ledger rows, shift totals, table.
	now := time.Now()
	payments := make([]model.Payment, 0, len(req.Legs))
	txErr := runTx(ctx, s.orderRepo.DB(), func(tx *gorm.DB) error {
		// MarkPaidTx re-checks the status under the row lock: a concurrent
		// settlement that won the race reports zero rows here, and the whole
		// transaction rolls back without touching the ledger.
		if err := s.orderRepo.MarkPaidTx(tx, order.ID, now); err != nil {
			if isNotFound(err) {
				return &AlreadyPaidError{OrderID: order.ID, TicketNumber: order.TicketNumber}
			}
			return err
		}

		byMethod := map[model.PaymentMethod]decimal.Decimal{}
		for _, leg := range req.Legs {
			method := model.PaymentMethod(leg.Method)
			amount := leg.Amount
			p := model.Payment{
				OrderID:      order.ID,
				ShiftID:      shift.ID,
				Method:       method,
				Amount:       amount,
				Reference:    leg.Reference,
				AttemptToken: req.AttemptToken,
			}
			if method == model.MethodCash {
				received := amount
				legChange := decimal.Zero
				if simpleCash {
					amount = due
					p.Amount = due
					if leg.ReceivedAmount != nil {
						received = *leg.ReceivedAmount
					}
					legChange = change
				} else if leg.ReceivedAmount != nil {
					received = *leg.ReceivedAmount
				}
				p.ReceivedAmount = &received
				p.ChangeAmount = &legChange
			}
			if err := s.shiftRepo.CreatePaymentTx(tx, &p); err != nil {
				return err
			}
			payments = append(payments, p)
			byMethod[method] = byMethod[method].Add(amount)
		}

		if err := s.shiftRepo.IncrementTotalsTx(tx, shift.ID, byMethod); err != nil {
			return err
		}

		if order.Type == model.OrderDineIn && order.TableID != nil {
			if err := s.tableRepo.UpdateStatusTx(tx, *order.TableID, model.TableAvailable); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		var alreadyPaid *AlreadyPaidError
		if errors.As(txErr, &alreadyPaid) {
			return nil, alreadyPaid
		}
		return nil, &StoreUnavailableError{Op: "registrar cobro", Err: txErr}
	}

	order.Status = model.OrderPaid
	order.PaidAt = &now
	return buildSettlementResponse(order, due, payments), nil
}

// ── Cancel ────────────────────────────────────────────────────────────────────

func (s *settlementService) Cancel(ctx context.Context, orderID uuid.UUID) error {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return storeErr("buscar pedido", err, errors.New("pedido no encontrado"))
	}
	if order.Status != model.OrderPending && order.Status != model.OrderInKitchen {
		return fmt.Errorf("el pedido #%d no puede cancelarse en estado %s", order.TicketNumber, order.Status)
	}

	txErr := runTx(ctx, s.orderRepo.DB(), func(tx *gorm.DB) error {
		if err := s.orderRepo.UpdateStatusTx(tx, order.ID, model.OrderCancelled); err != nil {
			return err
		}
		if order.Type == model.OrderDineIn && order.TableID != nil {
			return s.tableRepo.UpdateStatusTx(tx, *order.TableID, model.TableAvailable)
		}
		return nil
	})
	if txErr != nil {
		return &StoreUnavailableError{Op: "cancelar pedido", Err: txErr}
	}
	return nil
}

// ── ApplyDiscount ─────────────────────────────────────────────────────────────

func (s *settlementService) ApplyDiscount(ctx context.Context, orderID uuid.UUID, req dto.ApplyDiscountRequest) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeErr("buscar pedido", err, errors.New("pedido no encontrado"))
	}
	if order.Status.Settled() {
		return nil, fmt.Errorf("no se puede descontar un pedido en estado %s", order.Status)
	}

	discountType := model.DiscountType(req.Type)
	var amount decimal.Decimal
	switch discountType {
	case model.DiscountPercentage:
		// Over 100% is a caller bug, not something to silently clamp.
		if req.Value.IsNegative() || req.Value.GreaterThan(decimal.NewFromInt(100)) {
			return nil, errors.New("el porcentaje de descuento debe estar entre 0 y 100")
		}
		amount = order.Subtotal.Mul(req.Value).Div(decimal.NewFromInt(100)).Round(0)
	case model.DiscountFixed:
		if req.Value.IsNegative() {
			return nil, errors.New("el descuento no puede ser negativo")
		}
		// A fixed discount above the subtotal clamps: the taxable base never
		// goes negative.
		amount = req.Value
		if amount.GreaterThan(order.Subtotal) {
			amount = order.Subtotal
		}
	default:
		return nil, errors.New("tipo de descuento inválido")
	}

	// Single discount per order: re-applying replaces the previous one.
	reason := req.Reason
	value := req.Value
	order.DiscountType = &discountType
	order.DiscountValue = &value
	order.DiscountAmount = amount
	order.DiscountReason = &reason
	s.recomputeTotals(ctx, order)

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, &StoreUnavailableError{Op: "aplicar descuento", Err: err}
	}
	return orderToResponse(order), nil
}

// ── SetTip ────────────────────────────────────────────────────────────────────

func (s *settlementService) SetTip(ctx context.Context, orderID uuid.UUID, req dto.TipRequest) (*dto.OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeErr("buscar pedido", err, errors.New("pedido no encontrado"))
	}
	if order.Status.Settled() {
		return nil, fmt.Errorf("no se puede modificar la propina de un pedido en estado %s", order.Status)
	}
	if req.Amount.IsNegative() {
		return nil, errors.New("la propina no puede ser negativa")
	}

	order.Tip = req.Amount
	s.recomputeTotals(ctx, order)

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, &StoreUnavailableError{Op: "registrar propina", Err: err}
	}
	return orderToResponse(order), nil
}

// recomputeTotals refreshes the order's stored tax and total from the current
// configuration. The stored figures are display values; Settle recomputes the
// authoritative amount due at payment time.
func (s *settlementService) recomputeTotals(ctx context.Context, order *model.Order) {
	cfg, err := s.settingRepo.Get(ctx)
	if err != nil {
		cfg = model.DefaultSetting()
	}
	_, tax, due := computeAmountDue(order, cfg)
	order.Tax = tax
	order.Total = due
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func requiresReference(cfg *model.Setting, m model.PaymentMethod) bool {
	for _, opt := range cfg.PaymentMethods {
		if opt.Name == m {
			return opt.RequiresReference
		}
	}
	return false
}

func buildSettlementResponse(order *model.Order, due decimal.Decimal, payments []model.Payment) *dto.SettlementResponse {
	change := decimal.Zero
	out := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		p := &payments[i]
		if p.ChangeAmount != nil {
			change = change.Add(*p.ChangeAmount)
		}
		out = append(out, dto.PaymentResponse{
			ID:             p.ID.String(),
			Method:         string(p.Method),
			Amount:         p.Amount,
			ReceivedAmount: p.ReceivedAmount,
			ChangeAmount:   p.ChangeAmount,
			Reference:      p.Reference,
			CreatedAt:      p.CreatedAt.Format(time.RFC3339),
		})
	}
	return &dto.SettlementResponse{
		OrderID:      order.ID.String(),
		TicketNumber: order.TicketNumber,
		Status:       string(model.OrderPaid),
		AmountDue:    due,
		Change:       change,
		Payments:     out,
	}
}
