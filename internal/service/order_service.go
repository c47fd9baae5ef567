package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"restopos/internal/dto"
	"restopos/internal/infra"
	"restopos/internal/model"
	"restopos/internal/repository"
	"restopos/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, waiterID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	// UpdateItems replaces the item set; when the order is already in the
	// kitchen it also queues correction tickets describing the delta.
	UpdateItems(ctx context.Context, id uuid.UUID, req dto.UpdateItemsRequest) (*dto.OrderResponse, error)
	SendToKitchen(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	MarkReady(ctx context.Context, id uuid.UUID) error
	MarkServed(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	repo        repository.OrderRepository
	productRepo repository.ProductRepository
	tableRepo   repository.TableRepository
	settingRepo repository.SettingRepository
	dispatcher  *worker.Dispatcher
}

func NewOrderService(
	repo repository.OrderRepository,
	productRepo repository.ProductRepository,
	tableRepo repository.TableRepository,
	settingRepo repository.SettingRepository,
	dispatcher *worker.Dispatcher,
) OrderService {
	return &orderService{
		repo:        repo,
		productRepo: productRepo,
		tableRepo:   tableRepo,
		settingRepo: settingRepo,
		dispatcher:  dispatcher,
	}
}

// ── Create ────────────────────────────────────────────────────────────────────

func (s *orderService) Create(ctx context.Context, waiterID uuid.UUID, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	items, subtotal, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order := &model.Order{
		Type:     model.OrderType(req.Type),
		WaiterID: waiterID,
		Status:   model.OrderPending,
		Subtotal: subtotal,
	}

	var table *model.Table
	if order.Type == model.OrderDineIn {
		if req.TableID == nil {
			return nil, errors.New("un pedido en mesa requiere mesa")
		}
		tableID, err := uuid.Parse(*req.TableID)
		if err != nil {
			return nil, fmt.Errorf("table_id inválido: %w", err)
		}
		table, err = s.tableRepo.FindByID(ctx, tableID)
		if err != nil {
			return nil, storeErr("buscar mesa", err, errors.New("mesa no encontrada"))
		}
		if table.Status != model.TableAvailable {
			return nil, fmt.Errorf("la mesa %s está ocupada", table.Name)
		}
		order.TableID = &table.ID
	} else {
		order.CustomerName = req.CustomerName
	}

	cfg, err := s.settingRepo.Get(ctx)
	if err != nil {
		cfg = model.DefaultSetting()
	}
	_, tax, total := computeAmountDue(order, cfg)
	order.Tax = tax
	order.Total = total
	order.Items = items

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		ticket, err := s.repo.NextTicketNumber(ctx, tx)
		if err != nil {
			return err
		}
		order.TicketNumber = ticket
		if err := s.repo.Create(ctx, tx, order); err != nil {
			return err
		}
		if table != nil {
			return s.tableRepo.UpdateStatusTx(tx, table.ID, model.TableOccupied)
		}
		return nil
	})
	if txErr != nil {
		return nil, &StoreUnavailableError{Op: "crear pedido", Err: txErr}
	}

	order.Table = table
	return orderToResponse(order), nil
}

// ── Read paths ────────────────────────────────────────────────────────────────

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("buscar pedido", err, errors.New("pedido no encontrado"))
	}
	return orderToResponse(order), nil
}

func (s *orderService) List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	orders, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, &StoreUnavailableError{Op: "listar pedidos", Err: err}
	}
	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *orderToResponse(&orders[i]))
	}
	return &dto.OrderListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

// ── UpdateItems ───────────────────────────────────────────────────────────────

func (s *orderService) UpdateItems(ctx context.Context, id uuid.UUID, req dto.UpdateItemsRequest) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("buscar pedido", err, errors.New("pedido no encontrado"))
	}
	if order.Status != model.OrderPending && order.Status != model.OrderInKitchen {
		return nil, fmt.Errorf("no se pueden modificar los productos de un pedido en estado %s", order.Status)
	}

	newItems, subtotal, err := s.resolveItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	corrections := diffItems(order.Items, newItems)

	previous := order.Items
	order.Subtotal = subtotal
	reapplyDiscount(order)

	cfg, err := s.settingRepo.Get(ctx)
	if err != nil {
		cfg = model.DefaultSetting()
	}
	_, tax, total := computeAmountDue(order, cfg)
	order.Tax = tax
	order.Total = total

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.ReplaceItemsTx(tx, order, newItems)
	})
	if txErr != nil {
		order.Items = previous
		return nil, &StoreUnavailableError{Op: "actualizar productos", Err: txErr}
	}

	resp := orderToResponse(order)
	// Corrections only reach the kitchen once the ticket is already there.
	if order.Status == model.OrderInKitchen && len(corrections) > 0 {
		if warn := s.enqueueCorrections(ctx, order, corrections); warn != nil {
			resp.PrintWarning = warn
		}
	}
	return resp, nil
}

// ── Kitchen flow ──────────────────────────────────────────────────────────────

func (s *orderService) SendToKitchen(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr("buscar pedido", err, errors.New("pedido no encontrado"))
	}
	if order.Status != model.OrderPending {
		return nil, fmt.Errorf("el pedido #%d ya fue enviado a cocina", order.TicketNumber)
	}

	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateStatusTx(tx, order.ID, model.OrderInKitchen)
	})
	if txErr != nil {
		return nil, &StoreUnavailableError{Op: "enviar a cocina", Err: txErr}
	}
	order.Status = model.OrderInKitchen

	resp := orderToResponse(order)
	if warn := s.enqueueKitchenTickets(ctx, order); warn != nil {
		resp.PrintWarning = warn
	}
	return resp, nil
}

func (s *orderService) MarkReady(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, model.OrderInKitchen, model.OrderReady)
}

func (s *orderService) MarkServed(ctx context.Context, id uuid.UUID) error {
	return s.transition(ctx, id, model.OrderReady, model.OrderServed)
}

func (s *orderService) transition(ctx context.Context, id uuid.UUID, from, to model.OrderStatus) error {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return storeErr("buscar pedido", err, errors.New("pedido no encontrado"))
	}
	if order.Status != from {
		return fmt.Errorf("el pedido #%d está en estado %s, no %s", order.TicketNumber, order.Status, from)
	}
	txErr := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		return s.repo.UpdateStatusTx(tx, order.ID, to)
	})
	if txErr != nil {
		return &StoreUnavailableError{Op: "cambiar estado", Err: txErr}
	}
	return nil
}

// ── Printing ──────────────────────────────────────────────────────────────────

// printWarning is the non-blocking degradation path: the operation already
// succeeded, the terminal falls back to its local print dialog.
const printWarning = "no se pudo encolar la impresión; use la impresión local"

// enqueueKitchenTickets queues one ticket per preparation area.
func (s *orderService) enqueueKitchenTickets(ctx context.Context, order *model.Order) *string {
	if s.dispatcher == nil {
		return nil
	}
	waiter := ""
	if order.Waiter != nil {
		waiter = order.Waiter.Name
	}
	hora := time.Now().Format("15:04")

	byArea := map[string][]infra.TicketItem{}
	for _, it := range order.Items {
		byArea[it.Area] = append(byArea[it.Area], infra.TicketItem{
			Nombre:   it.Name,
			Cantidad: it.Quantity,
			Notas:    it.Notes,
		})
	}

	var failed bool
	for area, items := range byArea {
		ticket := infra.KitchenTicket{
			Mesa:   order.DisplayName(),
			Mesero: waiter,
			Area:   area,
			Items:  items,
			Total:  order.Total,
			Hora:   hora,
		}
		if err := s.dispatcher.EnqueueKitchenPrint(ctx, worker.KitchenPrintJobPayload{OrderID: order.ID.String(), Ticket: ticket}); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.String()).Str("area", area).
				Msg("order_service: failed to enqueue kitchen ticket")
			failed = true
		}
	}
	if failed {
		w := printWarning
		return &w
	}
	return nil
}

func (s *orderService) enqueueCorrections(ctx context.Context, order *model.Order, corrections []infra.CorrectionTicket) *string {
	if s.dispatcher == nil {
		return nil
	}
	waiter := ""
	if order.Waiter != nil {
		waiter = order.Waiter.Name
	}
	hora := time.Now().Format("15:04")

	var failed bool
	for i := range corrections {
		c := corrections[i]
		c.Mesa = order.DisplayName()
		c.Mesero = waiter
		c.Hora = hora
		if err := s.dispatcher.EnqueueCorrectionPrint(ctx, worker.CorrectionPrintJobPayload{OrderID: order.ID.String(), Ticket: c}); err != nil {
			log.Warn().Err(err).Str("order_id", order.ID.String()).Str("tipo", c.Tipo).
				Msg("order_service: failed to enqueue correction ticket")
			failed = true
		}
	}
	if failed {
		w := printWarning
		return &w
	}
	return nil
}

// diffItems classifies the item delta into correction tickets, one per
// correction type per area, following the print server contract.
func diffItems(old, new []model.OrderItem) []infra.CorrectionTicket {
	type key struct{ productID uuid.UUID }
	oldByProduct := map[key]model.OrderItem{}
	for _, it := range old {
		oldByProduct[key{it.ProductID}] = it
	}
	newByProduct := map[key]model.OrderItem{}
	for _, it := range new {
		newByProduct[key{it.ProductID}] = it
	}

	grouped := map[string]map[string][]infra.CorrectionItem{} // tipo → area → items
	add := func(tipo, area string, item infra.CorrectionItem) {
		if grouped[tipo] == nil {
			grouped[tipo] = map[string][]infra.CorrectionItem{}
		}
		grouped[tipo][area] = append(grouped[tipo][area], item)
	}

	for k, it := range newByProduct {
		prev, existed := oldByProduct[k]
		switch {
		case !existed:
			add(infra.CorrectionAdd, it.Area, infra.CorrectionItem{Nombre: it.Name, Cantidad: it.Quantity, Notas: notesPtr(it.Notes)})
		case prev.Quantity != it.Quantity:
			before := prev.Quantity
			add(infra.CorrectionQuantity, it.Area, infra.CorrectionItem{
				Nombre: it.Name, Cantidad: it.Quantity, CantidadAnterior: &before, Notas: notesPtr(it.Notes),
			})
		case prev.Notes != it.Notes:
			add(infra.CorrectionModify, it.Area, infra.CorrectionItem{Nombre: it.Name, Cantidad: it.Quantity, Notas: notesPtr(it.Notes)})
		}
	}
	for k, it := range oldByProduct {
		if _, stays := newByProduct[k]; !stays {
			add(infra.CorrectionRemove, it.Area, infra.CorrectionItem{Nombre: it.Name, Cantidad: it.Quantity})
		}
	}

	var out []infra.CorrectionTicket
	for tipo, byArea := range grouped {
		for area, items := range byArea {
			out = append(out, infra.CorrectionTicket{Tipo: tipo, Area: area, Items: items})
		}
	}
	return out
}

func notesPtr(notes string) *string {
	if notes == "" {
		return nil
	}
	return &notes
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func (s *orderService) resolveItems(ctx context.Context, reqs []dto.OrderItemRequest) ([]model.OrderItem, decimal.Decimal, error) {
	items := make([]model.OrderItem, 0, len(reqs))
	subtotal := decimal.Zero
	for _, req := range reqs {
		pid, err := uuid.Parse(req.ProductID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("product_id inválido: %w", err)
		}
		p, err := s.productRepo.FindByID(ctx, pid)
		if err != nil {
			return nil, decimal.Zero, storeErr("buscar producto", err, fmt.Errorf("producto %s no encontrado", req.ProductID))
		}
		if !p.Active {
			return nil, decimal.Zero, fmt.Errorf("el producto %s está inactivo", p.Name)
		}
		lineSubtotal := p.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
		subtotal = subtotal.Add(lineSubtotal)
		items = append(items, model.OrderItem{
			ProductID: p.ID,
			Name:      p.Name,
			Area:      p.Area,
			UnitPrice: p.Price,
			Quantity:  req.Quantity,
			Notes:     req.Notes,
			Subtotal:  lineSubtotal,
		})
	}
	return items, subtotal, nil
}

// reapplyDiscount recomputes the discount amount against a changed subtotal,
// preserving the clamp rules.
func reapplyDiscount(o *model.Order) {
	if o.DiscountType == nil || o.DiscountValue == nil {
		o.DiscountAmount = decimal.Zero
		return
	}
	switch *o.DiscountType {
	case model.DiscountPercentage:
		o.DiscountAmount = o.Subtotal.Mul(*o.DiscountValue).Div(decimal.NewFromInt(100)).Round(0)
	case model.DiscountFixed:
		o.DiscountAmount = *o.DiscountValue
		if o.DiscountAmount.GreaterThan(o.Subtotal) {
			o.DiscountAmount = o.Subtotal
		}
	}
}

func orderToResponse(o *model.Order) *dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ID:        it.ID.String(),
			ProductID: it.ProductID.String(),
			Name:      it.Name,
			UnitPrice: it.UnitPrice,
			Quantity:  it.Quantity,
			Notes:     it.Notes,
			Subtotal:  it.Subtotal,
		})
	}

	resp := &dto.OrderResponse{
		ID:             o.ID.String(),
		TicketNumber:   o.TicketNumber,
		Type:           string(o.Type),
		WaiterID:       o.WaiterID.String(),
		CustomerName:   o.CustomerName,
		Status:         string(o.Status),
		Items:          items,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		DiscountReason: o.DiscountReason,
		Tip:            o.Tip,
		Tax:            o.Tax,
		Total:          o.Total,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339),
	}
	if o.TableID != nil {
		id := o.TableID.String()
		resp.TableID = &id
	}
	if o.Table != nil {
		resp.TableName = o.Table.Name
	}
	if o.Waiter != nil {
		resp.WaiterName = o.Waiter.Name
	}
	if o.DiscountType != nil {
		t := string(*o.DiscountType)
		resp.DiscountType = &t
	}
	if o.PaidAt != nil {
		t := o.PaidAt.Format(time.RFC3339)
		resp.PaidAt = &t
	}
	return resp
}
