package service

import (
	"context"
	"errors"
	"time"

	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/repository"
	"restopos/internal/worker"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ShiftService interface {
	Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenShiftRequest) (*dto.ShiftResponse, error)
	Close(ctx context.Context, shiftID uuid.UUID, req dto.CloseShiftRequest) (*dto.CloseShiftResponse, error)
	// Arqueo runs the reconciliation math without closing anything — used for
	// mid-shift spot checks and post-closure audits.
	Arqueo(ctx context.Context, shiftID uuid.UUID, req dto.ArqueoRequest) (*dto.ArqueoResponse, error)
	Active(ctx context.Context) (*dto.ShiftResponse, error)
	Report(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftResponse, error)
	History(ctx context.Context, page, limit int) ([]dto.ShiftResponse, int64, error)
	// FindOpenShift is used by the settlement and refund services.
	FindOpenShift(ctx context.Context) (*model.Shift, error)
}

type shiftService struct {
	repo       repository.ShiftRepository
	orderRepo  repository.OrderRepository
	refundRepo repository.RefundRepository
	dispatcher *worker.Dispatcher
}

func NewShiftService(
	repo repository.ShiftRepository,
	orderRepo repository.OrderRepository,
	refundRepo repository.RefundRepository,
	dispatcher *worker.Dispatcher,
) ShiftService {
	return &shiftService{repo: repo, orderRepo: orderRepo, refundRepo: refundRepo, dispatcher: dispatcher}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *shiftService) Open(ctx context.Context, operatorID uuid.UUID, req dto.OpenShiftRequest) (*dto.ShiftResponse, error) {
	if req.OpeningAmount.IsNegative() {
		return nil, errors.New("el monto de apertura no puede ser negativo")
	}

	// Guard: at most one open shift. The partial unique index on the table
	// backs this check up, so a race between two opens cannot produce two.
	if existing, err := s.repo.FindOpen(ctx); err == nil && existing != nil {
		return nil, &ShiftAlreadyOpenError{ShiftID: existing.ID}
	} else if err != nil && !isNotFound(err) {
		return nil, &StoreUnavailableError{Op: "buscar turno abierto", Err: err}
	}

	shift := &model.Shift{
		OperatorID:    operatorID,
		OpeningAmount: req.OpeningAmount,
		Status:        model.ShiftOpen,
		OpenedAt:      time.Now(),
	}
	if err := s.repo.Create(ctx, shift); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, &ShiftAlreadyOpenError{}
		}
		return nil, &StoreUnavailableError{Op: "abrir turno", Err: err}
	}

	return s.buildResponse(ctx, shift)
}

// ── Close ─────────────────────────────────────────────────────────────────────

func (s *shiftService) Close(ctx context.Context, shiftID uuid.UUID, req dto.CloseShiftRequest) (*dto.CloseShiftResponse, error) {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, storeErr("buscar turno", err, errors.New("turno de caja no encontrado"))
	}
	if shift.Status != model.ShiftOpen {
		return nil, &ShiftAlreadyClosedError{ShiftID: shift.ID}
	}

	// Hard guard: every order opened during the shift must be PAID or
	// CANCELLED before the drawer can close.
	pending, err := s.orderRepo.ListUnsettledSince(ctx, shift.OpenedAt)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "buscar pedidos pendientes", Err: err}
	}
	if len(pending) > 0 {
		details := make([]dto.PendingOrderDetail, 0, len(pending))
		for i := range pending {
			o := &pending[i]
			details = append(details, dto.PendingOrderDetail{
				ID:           o.ID.String(),
				TicketNumber: o.TicketNumber,
				Name:         o.DisplayName(),
				Status:       string(o.Status),
				Total:        o.Total,
			})
		}
		return nil, &PendingOrdersError{Orders: details}
	}

	// Totals come from the payment ledger, never from the cached columns.
	sums, err := s.repo.SumPaymentsByMethod(ctx, shift.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "sumar pagos", Err: err}
	}
	orderCount, err := s.repo.CountSettledOrders(ctx, shift.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "contar pedidos", Err: err}
	}
	cashRefunds, err := s.refundRepo.SumApprovedCashByShift(ctx, shift.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "sumar reembolsos", Err: err}
	}

	arqueo, err := Reconcile(ArqueoInput{
		OpeningAmount:   shift.OpeningAmount,
		CashSales:       sums[model.MethodCash],
		CardSales:       sums[model.MethodCard],
		TransferSales:   sums[model.MethodTransfer],
		CashRefunds:     cashRefunds,
		Counts:          req.CashCount,
		CountedCard:     req.CountedCard,
		CountedTransfer: req.CountedTransfer,
	})
	if err != nil {
		return nil, err
	}
	arqueo.ShiftID = shift.ID.String()

	// The shift-level figures are cash-only: expected drawer vs counted
	// drawer. The arqueo block carries the multi-method reconciliation.
	countedCash := arqueo.CashTotal
	expectedCash := arqueo.ExpectedCash
	difference := countedCash.Sub(expectedCash)

	now := time.Now()
	shift.CashSales = sums[model.MethodCash]
	shift.CardSales = sums[model.MethodCard]
	shift.TransferSales = sums[model.MethodTransfer]
	shift.TotalSales = shift.CashSales.Add(shift.CardSales).Add(shift.TransferSales)
	shift.TotalOrders = int(orderCount)
	shift.ClosingAmount = &countedCash
	shift.ExpectedAmount = &expectedCash
	shift.Difference = &difference
	shift.Notes = req.Notes
	shift.Status = model.ShiftClosed
	shift.ClosedAt = &now

	if err := s.repo.Update(ctx, shift); err != nil {
		return nil, &StoreUnavailableError{Op: "cerrar turno", Err: err}
	}

	// Best-effort: end-of-shift report (PDF + email). Never blocks closure.
	if s.dispatcher != nil {
		_ = s.dispatcher.EnqueueShiftReport(ctx, worker.ShiftReportJobPayload{ShiftID: shift.ID.String()})
	}

	resp, err := s.buildResponse(ctx, shift)
	if err != nil {
		return nil, err
	}
	return &dto.CloseShiftResponse{Shift: *resp, Arqueo: *arqueo}, nil
}

// ── Arqueo (audit, no side effects) ──────────────────────────────────────────

func (s *shiftService) Arqueo(ctx context.Context, shiftID uuid.UUID, req dto.ArqueoRequest) (*dto.ArqueoResponse, error) {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, storeErr("buscar turno", err, errors.New("turno de caja no encontrado"))
	}
	sums, err := s.repo.SumPaymentsByMethod(ctx, shift.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "sumar pagos", Err: err}
	}
	cashRefunds, err := s.refundRepo.SumApprovedCashByShift(ctx, shift.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "sumar reembolsos", Err: err}
	}

	arqueo, err := Reconcile(ArqueoInput{
		OpeningAmount:   shift.OpeningAmount,
		CashSales:       sums[model.MethodCash],
		CardSales:       sums[model.MethodCard],
		TransferSales:   sums[model.MethodTransfer],
		CashRefunds:     cashRefunds,
		Counts:          req.CashCount,
		CountedCard:     req.CountedCard,
		CountedTransfer: req.CountedTransfer,
	})
	if err != nil {
		return nil, err
	}
	arqueo.ShiftID = shift.ID.String()
	return arqueo, nil
}

// ── Read paths ────────────────────────────────────────────────────────────────

func (s *shiftService) Active(ctx context.Context) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindOpen(ctx)
	if err != nil {
		return nil, storeErr("buscar turno abierto", err, ErrNoOpenShift)
	}
	return s.buildResponse(ctx, shift)
}

func (s *shiftService) Report(ctx context.Context, shiftID uuid.UUID) (*dto.ShiftResponse, error) {
	shift, err := s.repo.FindByID(ctx, shiftID)
	if err != nil {
		return nil, storeErr("buscar turno", err, errors.New("turno de caja no encontrado"))
	}
	return s.buildResponse(ctx, shift)
}

func (s *shiftService) History(ctx context.Context, page, limit int) ([]dto.ShiftResponse, int64, error) {
	shifts, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, &StoreUnavailableError{Op: "listar turnos", Err: err}
	}
	out := make([]dto.ShiftResponse, 0, len(shifts))
	for i := range shifts {
		resp, err := s.buildResponse(ctx, &shifts[i])
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *resp)
	}
	return out, total, nil
}

func (s *shiftService) FindOpenShift(ctx context.Context) (*model.Shift, error) {
	shift, err := s.repo.FindOpen(ctx)
	if err != nil {
		return nil, storeErr("buscar turno abierto", err, ErrNoOpenShift)
	}
	return shift, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *shiftService) buildResponse(ctx context.Context, shift *model.Shift) (*dto.ShiftResponse, error) {
	sums, err := s.repo.SumPaymentsByMethod(ctx, shift.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "sumar pagos", Err: err}
	}
	orderCount, err := s.repo.CountSettledOrders(ctx, shift.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "contar pedidos", Err: err}
	}
	cashRefunds, err := s.refundRepo.SumApprovedCashByShift(ctx, shift.ID)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "sumar reembolsos", Err: err}
	}

	sales := dto.SalesByMethod{
		Cash:     sums[model.MethodCash],
		Card:     sums[model.MethodCard],
		Transfer: sums[model.MethodTransfer],
	}
	sales.Total = sales.Cash.Add(sales.Card).Add(sales.Transfer)

	resp := &dto.ShiftResponse{
		ID:             shift.ID.String(),
		OperatorID:     shift.OperatorID.String(),
		Status:         string(shift.Status),
		OpeningAmount:  shift.OpeningAmount,
		Sales:          sales,
		TotalOrders:    int(orderCount),
		CashRefunds:    cashRefunds,
		ClosingAmount:  shift.ClosingAmount,
		ExpectedAmount: shift.ExpectedAmount,
		Difference:     shift.Difference,
		Notes:          shift.Notes,
		OpenedAt:       shift.OpenedAt.Format(time.RFC3339),
	}
	if shift.Operator != nil {
		resp.OperatorName = shift.Operator.Name
	}
	if shift.ClosedAt != nil {
		t := shift.ClosedAt.Format(time.RFC3339)
		resp.ClosedAt = &t
	}
	return resp, nil
}
