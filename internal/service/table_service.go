package service

import (
	"context"
	"errors"

	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/repository"

	"github.com/google/uuid"
)

type TableService interface {
	Create(ctx context.Context, req dto.CreateTableRequest) (*dto.TableResponse, error)
	List(ctx context.Context) ([]dto.TableResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type tableService struct {
	repo repository.TableRepository
}

func NewTableService(repo repository.TableRepository) TableService {
	return &tableService{repo: repo}
}

func (s *tableService) Create(ctx context.Context, req dto.CreateTableRequest) (*dto.TableResponse, error) {
	t := &model.Table{
		Number: req.Number,
		Name:   req.Name,
		Area:   req.Area,
		Status: model.TableAvailable,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, &StoreUnavailableError{Op: "crear mesa", Err: err}
	}
	return tableToResponse(t), nil
}

func (s *tableService) List(ctx context.Context) ([]dto.TableResponse, error) {
	tables, err := s.repo.List(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "listar mesas", Err: err}
	}
	out := make([]dto.TableResponse, len(tables))
	for i := range tables {
		out[i] = *tableToResponse(&tables[i])
	}
	return out, nil
}

func (s *tableService) Delete(ctx context.Context, id uuid.UUID) error {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeErr("buscar mesa", err, errors.New("mesa no encontrada"))
	}
	if t.Status == model.TableOccupied {
		return errors.New("no se puede eliminar una mesa ocupada")
	}
	return s.repo.Delete(ctx, id)
}

func tableToResponse(t *model.Table) *dto.TableResponse {
	return &dto.TableResponse{
		ID:     t.ID.String(),
		Number: t.Number,
		Name:   t.Name,
		Area:   t.Area,
		Status: string(t.Status),
	}
}
