package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"restopos/internal/dto"
	"restopos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type shiftFixture struct {
	svc     ShiftService
	shifts  *memShiftRepo
	orders  *memOrderRepo
	refunds *memRefundRepo
}

func newShiftFixture() *shiftFixture {
	shifts := newMemShiftRepo()
	orders := newMemOrderRepo()
	refunds := newMemRefundRepo()
	return &shiftFixture{
		svc:     NewShiftService(shifts, orders, refunds, nil),
		shifts:  shifts,
		orders:  orders,
		refunds: refunds,
	}
}

func (f *shiftFixture) open(t *testing.T, opening int64) *dto.ShiftResponse {
	t.Helper()
	resp, err := f.svc.Open(context.Background(), uuid.New(), dto.OpenShiftRequest{OpeningAmount: dec(opening)})
	require.NoError(t, err)
	return resp
}

func TestOpenShift(t *testing.T) {
	f := newShiftFixture()
	resp := f.open(t, 30000)

	assert.Equal(t, string(model.ShiftOpen), resp.Status)
	assert.True(t, resp.OpeningAmount.Equal(dec(30000)))
	assert.True(t, resp.Sales.Total.IsZero())
	assert.Zero(t, resp.TotalOrders)
}

func TestOpenShiftNegativeOpening(t *testing.T) {
	f := newShiftFixture()
	_, err := f.svc.Open(context.Background(), uuid.New(), dto.OpenShiftRequest{OpeningAmount: dec(-100)})
	assert.Error(t, err)
}

func TestOpenShiftRejectsSecondOpen(t *testing.T) {
	f := newShiftFixture()
	first := f.open(t, 10000)

	_, err := f.svc.Open(context.Background(), uuid.New(), dto.OpenShiftRequest{OpeningAmount: dec(20000)})
	var alreadyOpen *ShiftAlreadyOpenError
	require.ErrorAs(t, err, &alreadyOpen)
	assert.Equal(t, first.ID, alreadyOpen.ShiftID.String())
}

func TestCloseShiftBlockedByPendingOrders(t *testing.T) {
	f := newShiftFixture()
	resp := f.open(t, 30000)
	shiftID := uuid.MustParse(resp.ID)

	require.NoError(t, f.orders.Create(context.Background(), nil, &model.Order{
		TicketNumber: 42,
		Type:         model.OrderTakeaway,
		WaiterID:     uuid.New(),
		Status:       model.OrderInKitchen,
		Subtotal:     dec(18000),
		Total:        dec(18000),
	}))

	_, err := f.svc.Close(context.Background(), shiftID, dto.CloseShiftRequest{
		CashCount: []dto.DenominationCount{{Denomination: dec(30000), Quantity: 1}},
	})
	var pending *PendingOrdersError
	require.ErrorAs(t, err, &pending)
	require.Len(t, pending.Orders, 1)
	assert.Equal(t, 42, pending.Orders[0].TicketNumber)
	assert.Equal(t, string(model.OrderInKitchen), pending.Orders[0].Status)

	// Drawer stays open until the order is settled or cancelled.
	stored, findErr := f.shifts.FindByID(context.Background(), shiftID)
	require.NoError(t, findErr)
	assert.Equal(t, model.ShiftOpen, stored.Status)
}

func TestCloseShiftBalanced(t *testing.T) {
	f := newShiftFixture()
	resp := f.open(t, 30000)
	shiftID := uuid.MustParse(resp.ID)

	seedPayment(f.shifts, shiftID, model.MethodCash, 60000)
	seedPayment(f.shifts, shiftID, model.MethodCash, 40000)
	seedPayment(f.shifts, shiftID, model.MethodCard, 50000)
	require.NoError(t, f.refunds.Create(context.Background(), &model.Refund{
		OrderID:     uuid.New(),
		ShiftID:     shiftID,
		Method:      model.MethodCash,
		Amount:      dec(5000),
		Status:      model.RefundApproved,
		RequestedBy: uuid.New(),
	}))

	// Expected drawer: 30000 + 100000 - 5000 = 125000.
	out, err := f.svc.Close(context.Background(), shiftID, dto.CloseShiftRequest{
		CashCount: []dto.DenominationCount{
			{Denomination: dec(50000), Quantity: 2},
			{Denomination: dec(20000), Quantity: 1},
			{Denomination: dec(5000), Quantity: 1},
		},
		CountedCard: dec(50000),
	})
	require.NoError(t, err)

	assert.Equal(t, string(model.ShiftClosed), out.Shift.Status)
	assert.True(t, out.Shift.Sales.Cash.Equal(dec(100000)))
	assert.True(t, out.Shift.Sales.Card.Equal(dec(50000)))
	assert.True(t, out.Shift.Sales.Total.Equal(dec(150000)))
	assert.True(t, out.Shift.CashRefunds.Equal(dec(5000)))
	assert.Equal(t, 3, out.Shift.TotalOrders)

	require.NotNil(t, out.Shift.ExpectedAmount)
	require.NotNil(t, out.Shift.ClosingAmount)
	require.NotNil(t, out.Shift.Difference)
	assert.True(t, out.Shift.ExpectedAmount.Equal(dec(125000)))
	assert.True(t, out.Shift.ClosingAmount.Equal(dec(125000)))
	assert.True(t, out.Shift.Difference.IsZero())

	assert.True(t, out.Arqueo.ExpectedTotal.Equal(dec(175000)))
	assert.True(t, out.Arqueo.CountedTotal.Equal(dec(175000)))
	assert.True(t, out.Arqueo.Difference.IsZero())
}

func TestCloseShiftShortage(t *testing.T) {
	f := newShiftFixture()
	resp := f.open(t, 50000)
	shiftID := uuid.MustParse(resp.ID)

	seedPayment(f.shifts, shiftID, model.MethodCash, 80000)

	out, err := f.svc.Close(context.Background(), shiftID, dto.CloseShiftRequest{
		CashCount: []dto.DenominationCount{
			{Denomination: dec(100000), Quantity: 1},
			{Denomination: dec(20000), Quantity: 1},
			{Denomination: dec(1000), Quantity: 3},
		},
	})
	require.NoError(t, err)

	// 123000 counted against 130000 expected.
	require.NotNil(t, out.Shift.Difference)
	assert.True(t, out.Shift.Difference.Equal(dec(-7000)), "difference %s", out.Shift.Difference)
	assert.True(t, out.Arqueo.Difference.Equal(dec(-7000)))
}

func TestCloseShiftTwice(t *testing.T) {
	f := newShiftFixture()
	resp := f.open(t, 10000)
	shiftID := uuid.MustParse(resp.ID)

	req := dto.CloseShiftRequest{
		CashCount: []dto.DenominationCount{{Denomination: dec(10000), Quantity: 1}},
	}
	_, err := f.svc.Close(context.Background(), shiftID, req)
	require.NoError(t, err)

	_, err = f.svc.Close(context.Background(), shiftID, req)
	var alreadyClosed *ShiftAlreadyClosedError
	require.ErrorAs(t, err, &alreadyClosed)
	assert.Equal(t, shiftID, alreadyClosed.ShiftID)
}

func TestArqueoAfterClosure(t *testing.T) {
	f := newShiftFixture()
	resp := f.open(t, 20000)
	shiftID := uuid.MustParse(resp.ID)
	seedPayment(f.shifts, shiftID, model.MethodCash, 30000)

	counts := []dto.DenominationCount{{Denomination: dec(50000), Quantity: 1}}
	_, err := f.svc.Close(context.Background(), shiftID, dto.CloseShiftRequest{CashCount: counts})
	require.NoError(t, err)

	// Post-closure audit: same counts, same numbers, no state change.
	audit, err := f.svc.Arqueo(context.Background(), shiftID, dto.ArqueoRequest{CashCount: counts})
	require.NoError(t, err)
	assert.Equal(t, shiftID.String(), audit.ShiftID)
	assert.True(t, audit.ExpectedCash.Equal(dec(50000)))
	assert.True(t, audit.Difference.IsZero())

	stored, findErr := f.shifts.FindByID(context.Background(), shiftID)
	require.NoError(t, findErr)
	assert.Equal(t, model.ShiftClosed, stored.Status)
}

func TestActiveNoOpenShift(t *testing.T) {
	f := newShiftFixture()
	_, err := f.svc.Active(context.Background())
	assert.True(t, errors.Is(err, ErrNoOpenShift), "got %v", err)
}

func TestReportUnknownShift(t *testing.T) {
	f := newShiftFixture()
	_, err := f.svc.Report(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestHistoryListsClosedShifts(t *testing.T) {
	f := newShiftFixture()
	resp := f.open(t, 15000)
	shiftID := uuid.MustParse(resp.ID)
	_, err := f.svc.Close(context.Background(), shiftID, dto.CloseShiftRequest{
		CashCount: []dto.DenominationCount{{Denomination: dec(15000), Quantity: 1}},
	})
	require.NoError(t, err)

	history, total, err := f.svc.History(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, history, 1)
	assert.Equal(t, string(model.ShiftClosed), history[0].Status)
	require.NotNil(t, history[0].ClosedAt)
	_, parseErr := time.Parse(time.RFC3339, *history[0].ClosedAt)
	assert.NoError(t, parseErr)
}
