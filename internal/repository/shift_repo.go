package repository

import (
	"context"

	"restopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ShiftRepository interface {
	Create(ctx context.Context, s *model.Shift) error
	FindOpen(ctx context.Context) (*model.Shift, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error)
	Update(ctx context.Context, s *model.Shift) error
	List(ctx context.Context, page, limit int) ([]model.Shift, int64, error)

	CreatePaymentTx(tx *gorm.DB, p *model.Payment) error
	// FindPaymentsByAttempt looks up ledger rows recorded under an idempotency
	// key; a non-empty result means the settlement already committed.
	FindPaymentsByAttempt(ctx context.Context, orderID uuid.UUID, token string) ([]model.Payment, error)
	ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error)
	// SumPaymentsByMethod derives sales totals from the ledger. Shift totals
	// must always be reconstructed from here, never trusted from the cached
	// columns.
	SumPaymentsByMethod(ctx context.Context, shiftID uuid.UUID) (map[model.PaymentMethod]decimal.Decimal, error)
	CountSettledOrders(ctx context.Context, shiftID uuid.UUID) (int64, error)
	IncrementTotalsTx(tx *gorm.DB, shiftID uuid.UUID, byMethod map[model.PaymentMethod]decimal.Decimal) error
}

type shiftRepo struct{ db *gorm.DB }

func NewShiftRepository(db *gorm.DB) ShiftRepository { return &shiftRepo{db: db} }

func (r *shiftRepo) Create(ctx context.Context, s *model.Shift) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *shiftRepo) FindOpen(ctx context.Context) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).Preload("Operator").
		Where("status = ?", model.ShiftOpen).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *shiftRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Shift, error) {
	var s model.Shift
	err := r.db.WithContext(ctx).Preload("Operator").First(&s, id).Error
	return &s, err
}

func (r *shiftRepo) Update(ctx context.Context, s *model.Shift) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *shiftRepo) List(ctx context.Context, page, limit int) ([]model.Shift, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Shift{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var shifts []model.Shift
	err := r.db.WithContext(ctx).Preload("Operator").
		Order("opened_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&shifts).Error
	return shifts, total, err
}

func (r *shiftRepo) CreatePaymentTx(tx *gorm.DB, p *model.Payment) error {
	return tx.Create(p).Error
}

func (r *shiftRepo) FindPaymentsByAttempt(ctx context.Context, orderID uuid.UUID, token string) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND attempt_token = ?", orderID, token).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *shiftRepo) ListPaymentsByOrder(ctx context.Context, orderID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&payments).Error
	return payments, err
}

func (r *shiftRepo) SumPaymentsByMethod(ctx context.Context, shiftID uuid.UUID) (map[model.PaymentMethod]decimal.Decimal, error) {
	type row struct {
		Method model.PaymentMethod
		Sum    decimal.Decimal
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Select("method, COALESCE(SUM(amount), 0) AS sum").
		Where("shift_id = ?", shiftID).
		Group("method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	sums := map[model.PaymentMethod]decimal.Decimal{
		model.MethodCash:     decimal.Zero,
		model.MethodCard:     decimal.Zero,
		model.MethodTransfer: decimal.Zero,
	}
	for _, r := range rows {
		sums[r.Method] = r.Sum
	}
	return sums, nil
}

func (r *shiftRepo) CountSettledOrders(ctx context.Context, shiftID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("shift_id = ?", shiftID).
		Distinct("order_id").
		Count(&count).Error
	return count, err
}

func (r *shiftRepo) IncrementTotalsTx(tx *gorm.DB, shiftID uuid.UUID, byMethod map[model.PaymentMethod]decimal.Decimal) error {
	updates := map[string]interface{}{
		"total_orders": gorm.Expr("total_orders + 1"),
	}
	total := decimal.Zero
	for method, amount := range byMethod {
		total = total.Add(amount)
		switch method {
		case model.MethodCash:
			updates["cash_sales"] = gorm.Expr("cash_sales + ?", amount)
		case model.MethodCard:
			updates["card_sales"] = gorm.Expr("card_sales + ?", amount)
		case model.MethodTransfer:
			updates["transfer_sales"] = gorm.Expr("transfer_sales + ?", amount)
		}
	}
	updates["total_sales"] = gorm.Expr("total_sales + ?", total)
	return tx.Model(&model.Shift{}).Where("id = ?", shiftID).Updates(updates).Error
}
