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
)

type RefundService interface {
	Create(ctx context.Context, requestedBy uuid.UUID, req dto.CreateRefundRequest) (*dto.RefundResponse, error)
	Approve(ctx context.Context, id, resolvedBy uuid.UUID) (*dto.RefundResponse, error)
	Reject(ctx context.Context, id, resolvedBy uuid.UUID) (*dto.RefundResponse, error)
	List(ctx context.Context, status string) ([]dto.RefundResponse, error)
}

type refundService struct {
	repo      repository.RefundRepository
	orderRepo repository.OrderRepository
	shifts    ShiftService
}

func NewRefundService(repo repository.RefundRepository, orderRepo repository.OrderRepository, shifts ShiftService) RefundService {
	return &refundService{repo: repo, orderRepo: orderRepo, shifts: shifts}
}

func (s *refundService) Create(ctx context.Context, requestedBy uuid.UUID, req dto.CreateRefundRequest) (*dto.RefundResponse, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("order_id inválido: %w", err)
	}
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, storeErr("buscar pedido", err, errors.New("pedido no encontrado"))
	}
	if order.Status != model.OrderPaid {
		return nil, fmt.Errorf("solo se pueden devolver pedidos pagados; el pedido #%d está %s", order.TicketNumber, order.Status)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, errors.New("el monto de la devolución debe ser positivo")
	}
	if req.Amount.GreaterThan(order.Total) {
		return nil, fmt.Errorf("la devolución (%s) excede el total del pedido (%s)", req.Amount.StringFixed(0), order.Total.StringFixed(0))
	}

	// Refunds are stamped with the shift in which they were requested,
	// which may differ from the shift that collected the payment.
	shift, err := s.shifts.FindOpenShift(ctx)
	if err != nil {
		return nil, err
	}

	refund := &model.Refund{
		OrderID:     order.ID,
		ShiftID:     shift.ID,
		Method:      model.PaymentMethod(req.Method),
		Amount:      req.Amount,
		Reason:      req.Reason,
		Status:      model.RefundPending,
		RequestedBy: requestedBy,
	}
	if err := s.repo.Create(ctx, refund); err != nil {
		return nil, &StoreUnavailableError{Op: "crear devolución", Err: err}
	}
	return refundToResponse(refund, order.TicketNumber), nil
}

func (s *refundService) Approve(ctx context.Context, id, resolvedBy uuid.UUID) (*dto.RefundResponse, error) {
	return s.resolve(ctx, id, resolvedBy, model.RefundApproved)
}

func (s *refundService) Reject(ctx context.Context, id, resolvedBy uuid.UUID) (*dto.RefundResponse, error) {
	return s.resolve(ctx, id, resolvedBy, model.RefundRejected)
}

func (s *refundService) resolve(ctx context.Context, id, resolvedBy uuid.UUID, status model.RefundStatus) (*dto.RefundResponse, error) {
	refund, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("buscar devolución", err, errors.New("devolución no encontrada"))
	}
	if refund.Status != model.RefundPending {
		return nil, fmt.Errorf("la devolución ya fue resuelta (%s)", refund.Status)
	}
	now := time.Now()
	refund.Status = status
	refund.ResolvedBy = &resolvedBy
	refund.ResolvedAt = &now
	if err := s.repo.Update(ctx, refund); err != nil {
		return nil, &StoreUnavailableError{Op: "resolver devolución", Err: err}
	}
	return refundToResponse(refund, 0), nil
}

func (s *refundService) List(ctx context.Context, status string) ([]dto.RefundResponse, error) {
	refunds, err := s.repo.List(ctx, model.RefundStatus(status))
	if err != nil {
		return nil, &StoreUnavailableError{Op: "listar devoluciones", Err: err}
	}
	out := make([]dto.RefundResponse, 0, len(refunds))
	for i := range refunds {
		out = append(out, *refundToResponse(&refunds[i], 0))
	}
	return out, nil
}

func refundToResponse(r *model.Refund, ticketNumber int) *dto.RefundResponse {
	resp := &dto.RefundResponse{
		ID:           r.ID.String(),
		OrderID:      r.OrderID.String(),
		TicketNumber: ticketNumber,
		ShiftID:      r.ShiftID.String(),
		Method:       string(r.Method),
		Amount:       r.Amount,
		Reason:       r.Reason,
		Status:       string(r.Status),
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
	if r.ResolvedAt != nil {
		t := r.ResolvedAt.Format(time.RFC3339)
		resp.ResolvedAt = &t
	}
	return resp
}
