package repository

import (
	"context"
	"errors"

	"restopos/internal/model"

	"gorm.io/gorm"
)

type SettingRepository interface {
	Get(ctx context.Context) (*model.Setting, error)
	Update(ctx context.Context, s *model.Setting) error
}

type settingRepo struct{ db *gorm.DB }

func NewSettingRepository(db *gorm.DB) SettingRepository { return &settingRepo{db: db} }

// Get returns the single configuration row, seeding the defaults on first use.
func (r *settingRepo) Get(ctx context.Context) (*model.Setting, error) {
	var s model.Setting
	err := r.db.WithContext(ctx).First(&s, 1).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seeded := model.DefaultSetting()
		if err := r.db.WithContext(ctx).Create(seeded).Error; err != nil {
			return nil, err
		}
		return seeded, nil
	}
	return &s, err
}

func (r *settingRepo) Update(ctx context.Context, s *model.Setting) error {
	s.ID = 1
	return r.db.WithContext(ctx).Save(s).Error
}
