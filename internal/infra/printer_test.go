package infra

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTicket() KitchenTicket {
	return KitchenTicket{
		Mesa:   "Mesa 3",
		Mesero: "Andrea",
		Area:   "cocina",
		Items: []TicketItem{
			{Nombre: "Ajiaco", Cantidad: 2, Notas: "sin crema"},
			{Nombre: "Arepa", Cantidad: 1},
		},
		Total: decimal.NewFromInt(61000),
		Hora:  "13:45",
	}
}

func TestPrintKitchen(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/print-kitchen", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(printResponse{Success: true})
	}))
	defer srv.Close()

	client := NewPrintClient(srv.URL)
	require.NoError(t, client.PrintKitchen(context.Background(), sampleTicket()))

	// The print server contract uses Spanish keys.
	assert.Equal(t, "Mesa 3", got["mesa"])
	assert.Equal(t, "cocina", got["area"])
	items, ok := got["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "Ajiaco", first["nombre"])
	assert.Equal(t, "sin crema", first["notas"])
}

func TestPrintKitchenRejectedJob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		// HTTP-level success, application-level failure.
		json.NewEncoder(w).Encode(printResponse{Success: false, Message: "sin papel"})
	}))
	defer srv.Close()

	err := NewPrintClient(srv.URL).PrintKitchen(context.Background(), sampleTicket())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sin papel")
}

func TestPrintKitchenServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewPrintClient(srv.URL).PrintKitchen(context.Background(), sampleTicket())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestPrintKitchenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	err := NewPrintClient(srv.URL).PrintKitchen(context.Background(), sampleTicket())
	assert.Error(t, err)
}

func TestPrintCorrectionPayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/print-correction", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(printResponse{Success: true})
	}))
	defer srv.Close()

	before := 2
	ticket := CorrectionTicket{
		Tipo:   CorrectionQuantity,
		Mesa:   "Mesa 3",
		Area:   "cocina",
		Mesero: "Andrea",
		Items:  []CorrectionItem{{Nombre: "Ajiaco", Cantidad: 3, CantidadAnterior: &before}},
		Hora:   "13:50",
	}
	require.NoError(t, NewPrintClient(srv.URL).PrintCorrection(context.Background(), ticket))

	assert.Equal(t, "CANTIDAD", got["tipo"])
	items := got["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].(map[string]any)["cantidadAnterior"])
}
