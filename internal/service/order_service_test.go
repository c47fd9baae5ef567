package service

import (
	"context"
	"errors"
	"testing"

	"restopos/internal/dto"
	"restopos/internal/infra"
	"restopos/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	svc      OrderService
	orders   *memOrderRepo
	products *memProductRepo
	tables   *memTableRepo
	settings *memSettingRepo
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:   newMemOrderRepo(),
		products: newMemProductRepo(),
		tables:   newMemTableRepo(),
		settings: newMemSettingRepo(),
	}
	f.settings.setting.TaxEnabled = false
	f.svc = NewOrderService(f.orders, f.products, f.tables, f.settings, nil)
	return f
}

func (f *orderFixture) addProduct(t *testing.T, name string, price int64, area string) *model.Product {
	t.Helper()
	p := &model.Product{Name: name, Price: dec(price), Area: area, Active: true}
	require.NoError(t, f.products.Create(context.Background(), p))
	return p
}

func (f *orderFixture) addTable(t *testing.T, name string, status model.TableStatus) *model.Table {
	t.Helper()
	tb := &model.Table{Number: len(f.tables.tables) + 1, Name: name, Status: status}
	require.NoError(t, f.tables.Create(context.Background(), tb))
	return tb
}

func TestCreateDineInOrder(t *testing.T) {
	f := newOrderFixture(t)
	bandeja := f.addProduct(t, "Bandeja paisa", 32000, "cocina")
	limonada := f.addProduct(t, "Limonada", 6000, "bar")
	table := f.addTable(t, "Mesa 1", model.TableAvailable)

	tableID := table.ID.String()
	resp, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:    "DINE_IN",
		TableID: &tableID,
		Items: []dto.OrderItemRequest{
			{ProductID: bandeja.ID.String(), Quantity: 2},
			{ProductID: limonada.ID.String(), Quantity: 1, Notes: "sin azúcar"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.TicketNumber)
	assert.Equal(t, string(model.OrderPending), resp.Status)
	assert.True(t, resp.Subtotal.Equal(dec(70000)), "subtotal %s", resp.Subtotal)
	require.Len(t, resp.Items, 2)

	// Items snapshot the catalog at order time.
	assert.Equal(t, "Bandeja paisa", resp.Items[0].Name)
	assert.True(t, resp.Items[0].UnitPrice.Equal(dec(32000)))
	assert.True(t, resp.Items[0].Subtotal.Equal(dec(64000)))
	assert.Equal(t, "sin azúcar", resp.Items[1].Notes)

	assert.Equal(t, model.TableOccupied, table.Status)
}

func TestCreateDineInOccupiedTable(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Café", 3000, "bar")
	table := f.addTable(t, "Mesa 2", model.TableOccupied)

	tableID := table.ID.String()
	_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:    "DINE_IN",
		TableID: &tableID,
		Items:   []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	assert.ErrorContains(t, err, "ocupada")
}

func TestCreateDineInWithoutTable(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Café", 3000, "bar")

	_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:  "DINE_IN",
		Items: []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	assert.Error(t, err)
}

func TestCreateTakeawayOrder(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Empanada", 2500, "cocina")

	name := "Carlos"
	resp, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:         "TAKEAWAY",
		CustomerName: &name,
		Items:        []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 4}},
	})
	require.NoError(t, err)
	require.NotNil(t, resp.CustomerName)
	assert.Equal(t, "Carlos", *resp.CustomerName)
	assert.Nil(t, resp.TableID)
	assert.True(t, resp.Subtotal.Equal(dec(10000)))
}

func TestCreateOrderInactiveProduct(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Plato retirado", 15000, "cocina")
	p.Active = false

	_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:  "TAKEAWAY",
		Items: []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	assert.ErrorContains(t, err, "inactivo")
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	f := newOrderFixture(t)
	_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:  "TAKEAWAY",
		Items: []dto.OrderItemRequest{{ProductID: uuid.NewString(), Quantity: 1}},
	})
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestTicketNumbersAreSequential(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Café", 3000, "bar")

	for want := 1; want <= 3; want++ {
		resp, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
			Type:  "TAKEAWAY",
			Items: []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
		})
		require.NoError(t, err)
		assert.Equal(t, want, resp.TicketNumber)
	}
}

// ── Kitchen flow ──────────────────────────────────────────────────────────────

func TestSendToKitchen(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Ajiaco", 28000, "cocina")

	created, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:  "TAKEAWAY",
		Items: []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	resp, err := f.svc.SendToKitchen(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, string(model.OrderInKitchen), resp.Status)
	assert.Nil(t, resp.PrintWarning)

	_, err = f.svc.SendToKitchen(context.Background(), id)
	assert.ErrorContains(t, err, "ya fue enviado")
}

func TestStatusProgression(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Ajiaco", 28000, "cocina")

	created, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:  "TAKEAWAY",
		Items: []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	// READY before the kitchen has the ticket is out of order.
	require.Error(t, f.svc.MarkReady(context.Background(), id))

	_, err = f.svc.SendToKitchen(context.Background(), id)
	require.NoError(t, err)
	require.NoError(t, f.svc.MarkReady(context.Background(), id))
	require.NoError(t, f.svc.MarkServed(context.Background(), id))

	stored, err := f.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.OrderServed, stored.Status)
}

// ── Item updates ──────────────────────────────────────────────────────────────

func TestUpdateItemsRecomputesTotals(t *testing.T) {
	f := newOrderFixture(t)
	bandeja := f.addProduct(t, "Bandeja paisa", 32000, "cocina")
	limonada := f.addProduct(t, "Limonada", 6000, "bar")

	created, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:  "TAKEAWAY",
		Items: []dto.OrderItemRequest{{ProductID: bandeja.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	resp, err := f.svc.UpdateItems(context.Background(), id, dto.UpdateItemsRequest{
		Items: []dto.OrderItemRequest{
			{ProductID: bandeja.ID.String(), Quantity: 2},
			{ProductID: limonada.ID.String(), Quantity: 1},
		},
	})
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(dec(70000)))
	assert.True(t, resp.Total.Equal(dec(70000)))
	require.Len(t, resp.Items, 2)
}

func TestUpdateItemsReappliesDiscountClamp(t *testing.T) {
	f := newOrderFixture(t)
	bandeja := f.addProduct(t, "Bandeja paisa", 32000, "cocina")
	cafe := f.addProduct(t, "Café", 3000, "bar")

	created, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:  "TAKEAWAY",
		Items: []dto.OrderItemRequest{{ProductID: bandeja.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	stored, err := f.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	fixed := model.DiscountFixed
	value := dec(10000)
	stored.DiscountType = &fixed
	stored.DiscountValue = &value
	stored.DiscountAmount = dec(10000)

	// Shrinking the order below the fixed discount clamps it to the subtotal.
	resp, err := f.svc.UpdateItems(context.Background(), id, dto.UpdateItemsRequest{
		Items: []dto.OrderItemRequest{{ProductID: cafe.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Subtotal.Equal(dec(3000)))
	assert.True(t, resp.DiscountAmount.Equal(dec(3000)))
	assert.True(t, resp.Total.IsZero())
}

func TestUpdateItemsServedOrderRejected(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Café", 3000, "bar")

	created, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:  "TAKEAWAY",
		Items: []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)
	id := uuid.MustParse(created.ID)

	stored, err := f.orders.FindByID(context.Background(), id)
	require.NoError(t, err)
	stored.Status = model.OrderServed

	_, err = f.svc.UpdateItems(context.Background(), id, dto.UpdateItemsRequest{
		Items: []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 2}},
	})
	assert.Error(t, err)
}

// ── Correction classification ─────────────────────────────────────────────────

func TestDiffItemsClassification(t *testing.T) {
	productA := uuid.New()
	productB := uuid.New()
	productC := uuid.New()
	productD := uuid.New()

	old := []model.OrderItem{
		{ProductID: productA, Name: "Ajiaco", Area: "cocina", Quantity: 2},
		{ProductID: productB, Name: "Limonada", Area: "bar", Quantity: 1, Notes: "con hielo"},
		{ProductID: productD, Name: "Empanada", Area: "cocina", Quantity: 3},
	}
	updated := []model.OrderItem{
		{ProductID: productA, Name: "Ajiaco", Area: "cocina", Quantity: 3},
		{ProductID: productB, Name: "Limonada", Area: "bar", Quantity: 1, Notes: "sin hielo"},
		{ProductID: productC, Name: "Patacones", Area: "cocina", Quantity: 1},
	}

	tickets := diffItems(old, updated)

	byTipo := map[string][]infra.CorrectionTicket{}
	for _, tk := range tickets {
		byTipo[tk.Tipo] = append(byTipo[tk.Tipo], tk)
	}

	require.Len(t, byTipo[infra.CorrectionQuantity], 1)
	qty := byTipo[infra.CorrectionQuantity][0]
	assert.Equal(t, "cocina", qty.Area)
	require.Len(t, qty.Items, 1)
	assert.Equal(t, 3, qty.Items[0].Cantidad)
	require.NotNil(t, qty.Items[0].CantidadAnterior)
	assert.Equal(t, 2, *qty.Items[0].CantidadAnterior)

	require.Len(t, byTipo[infra.CorrectionModify], 1)
	assert.Equal(t, "bar", byTipo[infra.CorrectionModify][0].Area)

	require.Len(t, byTipo[infra.CorrectionAdd], 1)
	assert.Equal(t, "Patacones", byTipo[infra.CorrectionAdd][0].Items[0].Nombre)

	require.Len(t, byTipo[infra.CorrectionRemove], 1)
	assert.Equal(t, "Empanada", byTipo[infra.CorrectionRemove][0].Items[0].Nombre)
}

func TestDiffItemsNoChanges(t *testing.T) {
	id := uuid.New()
	items := []model.OrderItem{{ProductID: id, Name: "Café", Area: "bar", Quantity: 1}}
	assert.Empty(t, diffItems(items, items))
}

func TestListDefaultsPagination(t *testing.T) {
	f := newOrderFixture(t)
	p := f.addProduct(t, "Café", 3000, "bar")
	_, err := f.svc.Create(context.Background(), uuid.New(), dto.CreateOrderRequest{
		Type:  "TAKEAWAY",
		Items: []dto.OrderItemRequest{{ProductID: p.ID.String(), Quantity: 1}},
	})
	require.NoError(t, err)

	out, err := f.svc.List(context.Background(), dto.OrderFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, out.Page)
	assert.Equal(t, 50, out.Limit)
	assert.EqualValues(t, 1, out.Total)
}
