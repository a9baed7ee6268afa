package stock_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/application/stock"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
)

func escenarioEntrada() *memStore {
	s := newMemStore()
	s.addProduct("prod-1", "Paracetamol 500mg")
	s.addWarehouse("bod-lp", "La Paz")
	s.addLocation("ubi-lp", "bod-lp")
	return s
}

func ingresos(s *memStore, events *memEvents) *stock.EntryUseCase {
	return stock.NewEntryUseCase(memTx{s}, events, testLogger())
}

func TestEntry_CreaElBalanceSiNoExiste(t *testing.T) {
	s := escenarioEntrada()
	events := &memEvents{}

	bal, err := ingresos(s, events).Create(context.Background(), testTenant, testUser, dto.StockEntryRequest{
		ProductID:  "prod-1",
		LocationID: "ubi-lp",
		Quantity:   decimal.NewFromInt(50),
	})

	require.NoError(t, err)
	assert.True(t, bal.Quantity.Equal(decimal.NewFromInt(50)))
	assert.True(t, bal.ReservedQuantity.IsZero())
	assert.Nil(t, bal.BatchID)
	assert.Len(t, s.balances, 1)
	assert.Contains(t, events.published, stock.EventBalanceChanged)
}

func TestEntry_AcumulaSobreElBalanceExistente(t *testing.T) {
	s := escenarioEntrada()
	existente := s.addBalance("bal-1", "prod-1", nil, "ubi-lp", 30, 10)

	bal, err := ingresos(s, &memEvents{}).Create(context.Background(), testTenant, testUser, dto.StockEntryRequest{
		ProductID:  "prod-1",
		LocationID: "ubi-lp",
		Quantity:   decimal.NewFromInt(20),
	})

	require.NoError(t, err)
	assert.Equal(t, existente.ID, bal.ID, "mismo (producto, lote, ubicación) suma sobre la misma fila")
	assert.True(t, existente.Quantity.Equal(decimal.NewFromInt(50)))
	assert.True(t, existente.ReservedQuantity.Equal(decimal.NewFromInt(10)), "la reserva no se toca")
	assert.Equal(t, 1, existente.Version)
	assert.Len(t, s.balances, 1)
}

func TestEntry_ElLoteDistingueBalances(t *testing.T) {
	s := escenarioEntrada()
	s.addBatch("lote-1", "prod-1", entity.BatchStatusQuarantine)
	s.addBalance("bal-sin-lote", "prod-1", nil, "ubi-lp", 30, 0)

	bal, err := ingresos(s, &memEvents{}).Create(context.Background(), testTenant, testUser, dto.StockEntryRequest{
		ProductID:  "prod-1",
		BatchID:    ptr("lote-1"),
		LocationID: "ubi-lp",
		Quantity:   decimal.NewFromInt(20),
	})

	require.NoError(t, err)
	assert.NotEqual(t, "bal-sin-lote", bal.ID, "el ingreso con lote crea su propia fila")
	assert.Len(t, s.balances, 2)
}

func TestEntry_RechazaCantidadNoPositiva(t *testing.T) {
	s := escenarioEntrada()

	_, err := ingresos(s, &memEvents{}).Create(context.Background(), testTenant, testUser, dto.StockEntryRequest{
		ProductID:  "prod-1",
		LocationID: "ubi-lp",
		Quantity:   decimal.Zero,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestEntry_RechazaLoteDeOtroProducto(t *testing.T) {
	s := escenarioEntrada()
	s.addProduct("prod-2", "Ibuprofeno 400mg")
	s.addBatch("lote-ajeno", "prod-2", entity.BatchStatusReleased)

	_, err := ingresos(s, &memEvents{}).Create(context.Background(), testTenant, testUser, dto.StockEntryRequest{
		ProductID:  "prod-1",
		BatchID:    ptr("lote-ajeno"),
		LocationID: "ubi-lp",
		Quantity:   decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEntry_UbicacionDeOtroTenantEsNotFound(t *testing.T) {
	s := escenarioEntrada()
	s.addLocation("ubi-ajena", "bod-lp").TenantID = "tenant-ajeno"

	_, err := ingresos(s, &memEvents{}).Create(context.Background(), testTenant, testUser, dto.StockEntryRequest{
		ProductID:  "prod-1",
		LocationID: "ubi-ajena",
		Quantity:   decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "no se puede ingresar stock en ubicaciones de otro tenant")
	assert.Empty(t, s.balances)
}

func TestEntry_RechazaUbicacionInactiva(t *testing.T) {
	s := escenarioEntrada()
	s.locations["ubi-lp"].IsActive = false

	_, err := ingresos(s, &memEvents{}).Create(context.Background(), testTenant, testUser, dto.StockEntryRequest{
		ProductID:  "prod-1",
		LocationID: "ubi-lp",
		Quantity:   decimal.NewFromInt(5),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
