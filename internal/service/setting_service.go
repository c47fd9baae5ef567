package service

import (
	"context"
	"errors"

	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/repository"

	"github.com/shopspring/decimal"
)

type SettingService interface {
	Get(ctx context.Context) (*dto.SettingResponse, error)
	Update(ctx context.Context, req dto.UpdateSettingRequest) (*dto.SettingResponse, error)
}

type settingService struct {
	repo repository.SettingRepository
}

func NewSettingService(repo repository.SettingRepository) SettingService {
	return &settingService{repo: repo}
}

func (s *settingService) Get(ctx context.Context) (*dto.SettingResponse, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "leer configuración", Err: err}
	}
	return settingToResponse(cfg), nil
}

func (s *settingService) Update(ctx context.Context, req dto.UpdateSettingRequest) (*dto.SettingResponse, error) {
	cfg, err := s.repo.Get(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "leer configuración", Err: err}
	}
	if req.TaxRate != nil {
		if req.TaxRate.LessThan(decimal.Zero) || req.TaxRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, errors.New("la tasa de impuesto debe estar entre 0 y 100")
		}
		cfg.TaxRate = *req.TaxRate
	}
	if req.TaxEnabled != nil {
		cfg.TaxEnabled = *req.TaxEnabled
	}
	if req.TipRate != nil {
		if req.TipRate.LessThan(decimal.Zero) || req.TipRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, errors.New("la tasa de propina debe estar entre 0 y 100")
		}
		cfg.TipRate = *req.TipRate
	}
	if req.TipEnabled != nil {
		cfg.TipEnabled = *req.TipEnabled
	}
	if req.Currency != nil {
		cfg.Currency = *req.Currency
	}
	if req.PaymentMethods != nil {
		cfg.PaymentMethods = req.PaymentMethods
	}
	if req.Printers != nil {
		cfg.Printers = req.Printers
	}
	if req.OperatingHours != nil {
		cfg.OperatingHours = req.OperatingHours
	}
	if err := s.repo.Update(ctx, cfg); err != nil {
		return nil, &StoreUnavailableError{Op: "guardar configuración", Err: err}
	}
	return settingToResponse(cfg), nil
}

func settingToResponse(s *model.Setting) *dto.SettingResponse {
	return &dto.SettingResponse{
		TaxRate:        s.TaxRate,
		TaxEnabled:     s.TaxEnabled,
		TipRate:        s.TipRate,
		TipEnabled:     s.TipEnabled,
		Currency:       s.Currency,
		PaymentMethods: s.PaymentMethods,
		Printers:       s.Printers,
		OperatingHours: s.OperatingHours,
	}
}
