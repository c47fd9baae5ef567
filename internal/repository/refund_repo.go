package repository

import (
	"context"

	"restopos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RefundRepository interface {
	Create(ctx context.Context, r *model.Refund) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Refund, error)
	List(ctx context.Context, status model.RefundStatus) ([]model.Refund, error)
	Update(ctx context.Context, r *model.Refund) error
	// SumApprovedCashByShift feeds the shift closure math: approved CASH
	// refunds reduce the expected drawer amount.
	SumApprovedCashByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error)
}

type refundRepo struct{ db *gorm.DB }

func NewRefundRepository(db *gorm.DB) RefundRepository { return &refundRepo{db: db} }

func (r *refundRepo) Create(ctx context.Context, rf *model.Refund) error {
	return r.db.WithContext(ctx).Create(rf).Error
}

func (r *refundRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Refund, error) {
	var rf model.Refund
	err := r.db.WithContext(ctx).First(&rf, id).Error
	return &rf, err
}

func (r *refundRepo) List(ctx context.Context, status model.RefundStatus) ([]model.Refund, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var refunds []model.Refund
	err := q.Order("created_at DESC").Find(&refunds).Error
	return refunds, err
}

func (r *refundRepo) Update(ctx context.Context, rf *model.Refund) error {
	return r.db.WithContext(ctx).Save(rf).Error
}

func (r *refundRepo) SumApprovedCashByShift(ctx context.Context, shiftID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Model(&model.Refund{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("shift_id = ? AND status = ? AND method = ?", shiftID, model.RefundApproved, model.MethodCash).
		Scan(&sum).Error
	return sum, err
}
