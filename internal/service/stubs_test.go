package service

// In-memory repository stubs shared by the service tests. DB() returns nil so
// runTx executes the transaction body directly.

import (
	"context"
	"time"

	"restopos/internal/dto"
	"restopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── ShiftRepository ──────────────────────────────────────────────────────────

type memShiftRepo struct {
	shifts   map[uuid.UUID]*model.Shift
	payments []model.Payment
}

func newMemShiftRepo() *memShiftRepo {
	return &memShiftRepo{shifts: make(map[uuid.UUID]*model.Shift)}
}

func (r *memShiftRepo) Create(_ context.Context, s *model.Shift) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	for _, existing := range r.shifts {
		if existing.Status == model.ShiftOpen && s.Status == model.ShiftOpen {
			return gorm.ErrDuplicatedKey
		}
	}
	r.shifts[s.ID] = s
	return nil
}

func (r *memShiftRepo) FindOpen(_ context.Context) (*model.Shift, error) {
	for _, s := range r.shifts {
		if s.Status == model.ShiftOpen {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memShiftRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Shift, error) {
	s, ok := r.shifts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (r *memShiftRepo) Update(_ context.Context, s *model.Shift) error {
	r.shifts[s.ID] = s
	return nil
}

func (r *memShiftRepo) List(_ context.Context, _, _ int) ([]model.Shift, int64, error) {
	out := make([]model.Shift, 0, len(r.shifts))
	for _, s := range r.shifts {
		out = append(out, *s)
	}
	return out, int64(len(out)), nil
}

func (r *memShiftRepo) CreatePaymentTx(_ *gorm.DB, p *model.Payment) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	r.payments = append(r.payments, *p)
	return nil
}

func (r *memShiftRepo) FindPaymentsByAttempt(_ context.Context, orderID uuid.UUID, token string) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID && p.AttemptToken == token {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memShiftRepo) ListPaymentsByOrder(_ context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range r.payments {
		if p.OrderID == orderID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memShiftRepo) SumPaymentsByMethod(_ context.Context, shiftID uuid.UUID) (map[model.PaymentMethod]decimal.Decimal, error) {
	sums := map[model.PaymentMethod]decimal.Decimal{
		model.MethodCash:     decimal.Zero,
		model.MethodCard:     decimal.Zero,
		model.MethodTransfer: decimal.Zero,
	}
	for _, p := range r.payments {
		if p.ShiftID == shiftID {
			sums[p.Method] = sums[p.Method].Add(p.Amount)
		}
	}
	return sums, nil
}

func (r *memShiftRepo) CountSettledOrders(_ context.Context, shiftID uuid.UUID) (int64, error) {
	seen := map[uuid.UUID]bool{}
	for _, p := range r.payments {
		if p.ShiftID == shiftID {
			seen[p.OrderID] = true
		}
	}
	return int64(len(seen)), nil
}

func (r *memShiftRepo) IncrementTotalsTx(_ *gorm.DB, shiftID uuid.UUID, byMethod map[model.PaymentMethod]decimal.Decimal) error {
	s, ok := r.shifts[shiftID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	s.CashSales = s.CashSales.Add(byMethod[model.MethodCash])
	s.CardSales = s.CardSales.Add(byMethod[model.MethodCard])
	s.TransferSales = s.TransferSales.Add(byMethod[model.MethodTransfer])
	s.TotalSales = s.CashSales.Add(s.CardSales).Add(s.TransferSales)
	s.TotalOrders++
	return nil
}

// ── OrderRepository ──────────────────────────────────────────────────────────

type memOrderRepo struct {
	orders     map[uuid.UUID]*model.Order
	nextTicket int
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *memOrderRepo) DB() *gorm.DB { return nil }

func (r *memOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		if o.Items[i].ID == uuid.Nil {
			o.Items[i].ID = uuid.New()
		}
		o.Items[i].OrderID = o.ID
	}
	o.CreatedAt = time.Now()
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *memOrderRepo) NextTicketNumber(_ context.Context, _ *gorm.DB) (int, error) {
	r.nextTicket++
	return r.nextTicket, nil
}

func (r *memOrderRepo) List(_ context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var out []model.Order
	for _, o := range r.orders {
		if filter.Status != "" && string(o.Status) != filter.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) ListUnsettledSince(_ context.Context, since time.Time) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if !o.Status.Settled() && !o.CreatedAt.Before(since) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) Update(_ context.Context, o *model.Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.OrderStatus) error {
	o, ok := r.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.Status = status
	return nil
}

func (r *memOrderRepo) MarkPaidTx(_ *gorm.DB, id uuid.UUID, paidAt time.Time) error {
	o, ok := r.orders[id]
	if !ok || o.Status.Settled() {
		return gorm.ErrRecordNotFound
	}
	o.Status = model.OrderPaid
	o.PaidAt = &paidAt
	return nil
}

func (r *memOrderRepo) ReplaceItemsTx(_ *gorm.DB, o *model.Order, items []model.OrderItem) error {
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
		items[i].OrderID = o.ID
	}
	o.Items = items
	r.orders[o.ID] = o
	return nil
}

// ── TableRepository ──────────────────────────────────────────────────────────

type memTableRepo struct {
	tables map[uuid.UUID]*model.Table
}

func newMemTableRepo() *memTableRepo {
	return &memTableRepo{tables: make(map[uuid.UUID]*model.Table)}
}

func (r *memTableRepo) Create(_ context.Context, t *model.Table) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.tables[t.ID] = t
	return nil
}

func (r *memTableRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Table, error) {
	t, ok := r.tables[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *memTableRepo) List(_ context.Context) ([]model.Table, error) {
	out := make([]model.Table, 0, len(r.tables))
	for _, t := range r.tables {
		out = append(out, *t)
	}
	return out, nil
}

func (r *memTableRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.TableStatus) error {
	return r.UpdateStatusTx(nil, id, status)
}

func (r *memTableRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status model.TableStatus) error {
	t, ok := r.tables[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	t.Status = status
	return nil
}

func (r *memTableRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.tables, id)
	return nil
}

// ── ProductRepository ────────────────────────────────────────────────────────

type memProductRepo struct {
	products   map[uuid.UUID]*model.Product
	categories []model.Category
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *memProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.products[p.ID] = p
	return nil
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return p, nil
}

func (r *memProductRepo) List(_ context.Context, includeInactive bool) ([]model.Product, error) {
	var out []model.Product
	for _, p := range r.products {
		if !includeInactive && !p.Active {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProductRepo) Update(_ context.Context, p *model.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memProductRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	p, ok := r.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Active = active
	return nil
}

func (r *memProductRepo) CreateCategory(_ context.Context, c *model.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.categories = append(r.categories, *c)
	return nil
}

func (r *memProductRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	return r.categories, nil
}

// ── RefundRepository ─────────────────────────────────────────────────────────

type memRefundRepo struct {
	refunds map[uuid.UUID]*model.Refund
}

func newMemRefundRepo() *memRefundRepo {
	return &memRefundRepo{refunds: make(map[uuid.UUID]*model.Refund)}
}

func (r *memRefundRepo) Create(_ context.Context, rf *model.Refund) error {
	if rf.ID == uuid.Nil {
		rf.ID = uuid.New()
	}
	rf.CreatedAt = time.Now()
	r.refunds[rf.ID] = rf
	return nil
}

func (r *memRefundRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Refund, error) {
	rf, ok := r.refunds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rf, nil
}

func (r *memRefundRepo) List(_ context.Context, status model.RefundStatus) ([]model.Refund, error) {
	var out []model.Refund
	for _, rf := range r.refunds {
		if status != "" && rf.Status != status {
			continue
		}
		out = append(out, *rf)
	}
	return out, nil
}

func (r *memRefundRepo) Update(_ context.Context, rf *model.Refund) error {
	r.refunds[rf.ID] = rf
	return nil
}

func (r *memRefundRepo) SumApprovedCashByShift(_ context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, rf := range r.refunds {
		if rf.ShiftID == shiftID && rf.Status == model.RefundApproved && rf.Method == model.MethodCash {
			sum = sum.Add(rf.Amount)
		}
	}
	return sum, nil
}

// ── SettingRepository ────────────────────────────────────────────────────────

type memSettingRepo struct {
	setting *model.Setting
}

func newMemSettingRepo() *memSettingRepo {
	return &memSettingRepo{setting: model.DefaultSetting()}
}

func (r *memSettingRepo) Get(_ context.Context) (*model.Setting, error) {
	return r.setting, nil
}

func (r *memSettingRepo) Update(_ context.Context, s *model.Setting) error {
	r.setting = s
	return nil
}

// ── Shared helpers ───────────────────────────────────────────────────────────

func dec(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func seedPayment(r *memShiftRepo, shiftID uuid.UUID, method model.PaymentMethod, amount int64) {
	r.payments = append(r.payments, model.Payment{
		ID:           uuid.New(),
		OrderID:      uuid.New(),
		ShiftID:      shiftID,
		Method:       method,
		Amount:       dec(amount),
		AttemptToken: uuid.NewString(),
		CreatedAt:    time.Now(),
	})
}
