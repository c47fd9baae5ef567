package service

import (
	"context"
	"testing"
	"time"

	"restopos/internal/dto"
	"restopos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type refundFixture struct {
	svc     RefundService
	orders  *memOrderRepo
	refunds *memRefundRepo
	shifts  *memShiftRepo
	shiftID uuid.UUID
}

func newRefundFixture(t *testing.T) *refundFixture {
	t.Helper()
	f := &refundFixture{
		orders:  newMemOrderRepo(),
		refunds: newMemRefundRepo(),
		shifts:  newMemShiftRepo(),
	}
	shiftSvc := NewShiftService(f.shifts, f.orders, f.refunds, nil)
	f.svc = NewRefundService(f.refunds, f.orders, shiftSvc)

	shift := &model.Shift{Status: model.ShiftOpen, OpeningAmount: dec(20000), OpenedAt: time.Now()}
	require.NoError(t, f.shifts.Create(context.Background(), shift))
	f.shiftID = shift.ID
	return f
}

func (f *refundFixture) paidOrder(t *testing.T, total int64) *model.Order {
	t.Helper()
	now := time.Now()
	o := &model.Order{
		TicketNumber: 7,
		Type:         model.OrderTakeaway,
		WaiterID:     uuid.New(),
		Status:       model.OrderPaid,
		Subtotal:     dec(total),
		Total:        dec(total),
		PaidAt:       &now,
	}
	require.NoError(t, f.orders.Create(context.Background(), nil, o))
	return o
}

func TestCreateRefund(t *testing.T) {
	f := newRefundFixture(t)
	order := f.paidOrder(t, 35000)

	resp, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateRefundRequest{
		OrderID: order.ID.String(),
		Method:  "CASH",
		Amount:  dec(35000),
		Reason:  "plato devuelto",
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.RefundPending), resp.Status)
	assert.Equal(t, f.shiftID.String(), resp.ShiftID)
	assert.True(t, resp.Amount.Equal(dec(35000)))
	assert.Equal(t, 7, resp.TicketNumber)

	// Pending refunds don't touch the drawer until approved.
	sum, err := f.refunds.SumApprovedCashByShift(context.Background(), f.shiftID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestCreateRefundUnpaidOrder(t *testing.T) {
	f := newRefundFixture(t)
	order := f.paidOrder(t, 35000)
	order.Status = model.OrderServed

	_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateRefundRequest{
		OrderID: order.ID.String(),
		Method:  "CASH",
		Amount:  dec(10000),
		Reason:  "plato devuelto",
	})
	assert.ErrorContains(t, err, "pagados")
}

func TestCreateRefundExceedsOrderTotal(t *testing.T) {
	f := newRefundFixture(t)
	order := f.paidOrder(t, 35000)

	_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateRefundRequest{
		OrderID: order.ID.String(),
		Method:  "CASH",
		Amount:  dec(40000),
		Reason:  "monto equivocado",
	})
	assert.ErrorContains(t, err, "excede")
}

func TestCreateRefundNonPositiveAmount(t *testing.T) {
	f := newRefundFixture(t)
	order := f.paidOrder(t, 35000)

	_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateRefundRequest{
		OrderID: order.ID.String(),
		Method:  "CASH",
		Amount:  dec(0),
		Reason:  "sin monto",
	})
	assert.Error(t, err)
}

func TestCreateRefundNoOpenShift(t *testing.T) {
	f := newRefundFixture(t)
	order := f.paidOrder(t, 35000)

	shift, err := f.shifts.FindByID(context.Background(), f.shiftID)
	require.NoError(t, err)
	shift.Status = model.ShiftClosed

	_, err = f.svc.Create(context.Background(), uuid.New(), dto.CreateRefundRequest{
		OrderID: order.ID.String(),
		Method:  "CASH",
		Amount:  dec(10000),
		Reason:  "plato devuelto",
	})
	assert.ErrorIs(t, err, ErrNoOpenShift)
}

func TestApproveRefundCountsTowardDrawer(t *testing.T) {
	f := newRefundFixture(t)
	order := f.paidOrder(t, 35000)

	created, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateRefundRequest{
		OrderID: order.ID.String(),
		Method:  "CASH",
		Amount:  dec(12000),
		Reason:  "plato devuelto",
	})
	require.NoError(t, err)

	admin := uuid.New()
	resolved, err := f.svc.Approve(context.Background(), uuid.MustParse(created.ID), admin)
	require.NoError(t, err)
	assert.Equal(t, string(model.RefundApproved), resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	sum, err := f.refunds.SumApprovedCashByShift(context.Background(), f.shiftID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(dec(12000)))
}

func TestRejectedRefundDoesNotCount(t *testing.T) {
	f := newRefundFixture(t)
	order := f.paidOrder(t, 35000)

	created, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateRefundRequest{
		OrderID: order.ID.String(),
		Method:  "CASH",
		Amount:  dec(12000),
		Reason:  "plato devuelto",
	})
	require.NoError(t, err)

	resolved, err := f.svc.Reject(context.Background(), uuid.MustParse(created.ID), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, string(model.RefundRejected), resolved.Status)

	sum, err := f.refunds.SumApprovedCashByShift(context.Background(), f.shiftID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestResolveIsTerminal(t *testing.T) {
	f := newRefundFixture(t)
	order := f.paidOrder(t, 35000)

	created, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateRefundRequest{
		OrderID: order.ID.String(),
		Method:  "CASH",
		Amount:  dec(12000),
		Reason:  "plato devuelto",
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	_, err = f.svc.Approve(context.Background(), id, uuid.New())
	require.NoError(t, err)

	_, err = f.svc.Reject(context.Background(), id, uuid.New())
	assert.ErrorContains(t, err, "ya fue resuelta")
}

func TestListRefundsByStatus(t *testing.T) {
	f := newRefundFixture(t)
	order := f.paidOrder(t, 35000)

	for i := 0; i < 2; i++ {
		_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateRefundRequest{
			OrderID: order.ID.String(),
			Method:  "CASH",
			Amount:  dec(5000),
			Reason:  "plato devuelto",
		})
		require.NoError(t, err)
	}

	pending, err := f.svc.List(context.Background(), string(model.RefundPending))
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	approved, err := f.svc.List(context.Background(), string(model.RefundApproved))
	require.NoError(t, err)
	assert.Empty(t, approved)
}
