package repository

import (
	"context"
	"time"

	"restopos/internal/dto"
	"restopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	// DB exposes the underlying handle so services can open transactions
	// spanning orders, payments, shift totals and tables.
	DB() *gorm.DB

	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)
	// ListUnsettledSince returns orders opened at or after the given time that
	// are still in a pre-PAID, pre-CANCELLED state. Used by the shift closure
	// guard.
	ListUnsettledSince(ctx context.Context, since time.Time) ([]model.Order, error)

	Update(ctx context.Context, o *model.Order) error
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error
	MarkPaidTx(tx *gorm.DB, id uuid.UUID, paidAt time.Time) error
	ReplaceItemsTx(tx *gorm.DB, o *model.Order, items []model.OrderItem) error
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	if tx == nil {
		tx = r.db.WithContext(ctx)
	}
	return tx.Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Table").
		Preload("Waiter").
		First(&o, id).Error
	return &o, err
}

func (r *orderRepo) NextTicketNumber(ctx context.Context, tx *gorm.DB) (int, error) {
	if tx == nil {
		tx = r.db.WithContext(ctx)
	}
	var next int
	err := tx.Raw("SELECT nextval('order_ticket_seq')").Scan(&next).Error
	return next, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		day, err := time.Parse("2006-01-02", filter.Date)
		if err == nil {
			q = q.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
		}
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := q.Preload("Items").Preload("Table").Preload("Waiter").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) ListUnsettledSince(ctx context.Context, since time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Preload("Table").
		Where("created_at >= ? AND status IN ?", since, []model.OrderStatus{
			model.OrderPending, model.OrderInKitchen, model.OrderReady, model.OrderServed,
		}).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) Update(ctx context.Context, o *model.Order) error {
	return r.db.WithContext(ctx).Save(o).Error
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

// MarkPaidTx transitions the order to PAID only if it is still settleable.
// The condition re-checks the status under the row lock, so a concurrent
// settlement that committed between the service guard and this transaction
// surfaces as ErrRecordNotFound instead of a second PAID write.
func (r *orderRepo) MarkPaidTx(tx *gorm.DB, id uuid.UUID, paidAt time.Time) error {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND status NOT IN ?", id, []model.OrderStatus{model.OrderPaid, model.OrderCancelled}).
		Updates(map[string]interface{}{"status": model.OrderPaid, "paid_at": paidAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ReplaceItemsTx swaps the full item set and persists the recomputed totals
// carried on o.
func (r *orderRepo) ReplaceItemsTx(tx *gorm.DB, o *model.Order, items []model.OrderItem) error {
	if err := tx.Where("order_id = ?", o.ID).Delete(&model.OrderItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = o.ID
	}
	if len(items) > 0 {
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
	}
	o.Items = items
	return tx.Model(&model.Order{}).Where("id = ?", o.ID).
		Updates(map[string]interface{}{
			"subtotal":        o.Subtotal,
			"discount_amount": o.DiscountAmount,
			"tax":             o.Tax,
			"total":           o.Total,
		}).Error
}
