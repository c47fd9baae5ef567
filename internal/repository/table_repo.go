package repository

import (
	"context"

	"restopos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TableRepository interface {
	Create(ctx context.Context, t *model.Table) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Table, error)
	List(ctx context.Context) ([]model.Table, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.TableStatus) error
	// UpdateStatusTx participates in the settlement / cancellation transaction.
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.TableStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type tableRepo struct{ db *gorm.DB }

func NewTableRepository(db *gorm.DB) TableRepository { return &tableRepo{db: db} }

func (r *tableRepo) Create(ctx context.Context, t *model.Table) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *tableRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Table, error) {
	var t model.Table
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *tableRepo) List(ctx context.Context) ([]model.Table, error) {
	var tables []model.Table
	err := r.db.WithContext(ctx).Order("number ASC").Find(&tables).Error
	return tables, err
}

func (r *tableRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.TableStatus) error {
	return r.db.WithContext(ctx).Model(&model.Table{}).Where("id = ?", id).Update("status", status).Error
}

func (r *tableRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.TableStatus) error {
	return tx.Model(&model.Table{}).Where("id = ?", id).Update("status", status).Error
}

func (r *tableRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Table{}, id).Error
}
