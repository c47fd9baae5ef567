package service

import (
	"context"
	"errors"
	"fmt"

	"restopos/internal/dto"
	"restopos/internal/model"
	"restopos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CatalogService manages the product and category catalogue.
type CatalogService interface {
	CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error)
	ListProducts(ctx context.Context, includeInactive bool) ([]dto.ProductResponse, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error)
	DeactivateProduct(ctx context.Context, id uuid.UUID) error

	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	ListCategories(ctx context.Context) ([]dto.CategoryResponse, error)
}

type catalogService struct {
	repo repository.ProductRepository
}

func NewCatalogService(repo repository.ProductRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) CreateProduct(ctx context.Context, req dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if req.Price.LessThan(decimal.Zero) {
		return nil, errors.New("el precio no puede ser negativo")
	}
	p := &model.Product{
		Name:   req.Name,
		Price:  req.Price,
		Area:   req.Area,
		Active: true,
	}
	if p.Area == "" {
		p.Area = "cocina"
	}
	if req.CategoryID != nil {
		cid, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("category_id inválido: %w", err)
		}
		p.CategoryID = &cid
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, &StoreUnavailableError{Op: "crear producto", Err: err}
	}
	return productToResponse(p), nil
}

func (s *catalogService) ListProducts(ctx context.Context, includeInactive bool) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx, includeInactive)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "listar productos", Err: err}
	}
	out := make([]dto.ProductResponse, len(products))
	for i := range products {
		out[i] = *productToResponse(&products[i])
	}
	return out, nil
}

func (s *catalogService) UpdateProduct(ctx context.Context, id uuid.UUID, req dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("buscar producto", err, errors.New("producto no encontrado"))
	}
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Price != nil {
		if req.Price.LessThan(decimal.Zero) {
			return nil, errors.New("el precio no puede ser negativo")
		}
		p.Price = *req.Price
	}
	if req.Area != nil {
		p.Area = *req.Area
	}
	if req.CategoryID != nil {
		cid, err := uuid.Parse(*req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("category_id inválido: %w", err)
		}
		p.CategoryID = &cid
		p.Category = nil
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, &StoreUnavailableError{Op: "actualizar producto", Err: err}
	}
	return productToResponse(p), nil
}

func (s *catalogService) DeactivateProduct(ctx context.Context, id uuid.UUID) error {
	return s.repo.SetActive(ctx, id, false)
}

func (s *catalogService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	c := &model.Category{Name: req.Name, Active: true}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, &StoreUnavailableError{Op: "crear categoría", Err: err}
	}
	return &dto.CategoryResponse{ID: c.ID.String(), Name: c.Name, Active: c.Active}, nil
}

func (s *catalogService) ListCategories(ctx context.Context) ([]dto.CategoryResponse, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "listar categorías", Err: err}
	}
	out := make([]dto.CategoryResponse, len(cats))
	for i, c := range cats {
		out[i] = dto.CategoryResponse{ID: c.ID.String(), Name: c.Name, Active: c.Active}
	}
	return out, nil
}

func productToResponse(p *model.Product) *dto.ProductResponse {
	resp := &dto.ProductResponse{
		ID:     p.ID.String(),
		Name:   p.Name,
		Price:  p.Price,
		Area:   p.Area,
		Active: p.Active,
	}
	if p.Category != nil {
		resp.Category = p.Category.Name
	}
	return resp
}
