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

func solicitudes(s *memStore, events *memEvents) *stock.RequestUseCase {
	return stock.NewRequestUseCase(memTx{s}, memRequests{s}, events, testLogger())
}

func dec(n int64) *decimal.Decimal {
	d := decimal.NewFromInt(n)
	return &d
}

func TestRequestCreate_NumeraYDejaElRemanenteCompleto(t *testing.T) {
	s := newMemStore()
	s.addProduct("prod-1", "Paracetamol 500mg")
	s.presentations["pres-def"] = &entity.Presentation{
		ID: "pres-def", TenantID: testTenant, ProductID: "prod-1", Name: "Unidad",
		UnitsPerPresentation: decimal.NewFromInt(1), IsDefault: true, IsActive: true,
	}
	events := &memEvents{}

	req, err := solicitudes(s, events).Create(context.Background(), testTenant, testUser, dto.CreateStockRequestRequest{
		City:  "La Paz",
		Notes: "faltante para la cotización de farmacia central",
		Lines: []dto.LineRequest{{ProductID: "prod-1", Quantity: dec(40)}},
	})

	require.NoError(t, err)
	assert.Regexp(t, `^SOL-\d{4}-0001$`, req.Number)
	assert.Equal(t, entity.StockRequestStatusOpen, req.Status)
	require.Len(t, req.Items, 1)
	assert.True(t, req.Items[0].Quantity.Equal(decimal.NewFromInt(40)))
	assert.True(t, req.Items[0].RemainingQuantity.Equal(decimal.NewFromInt(40)),
		"el remanente nace igual a lo pedido")
	assert.Contains(t, events.published, stock.EventRequestCreated)
	assert.Len(t, s.audits, 1)
}

func TestRequestCreate_ResuelvePresentacionesAUnidadesBase(t *testing.T) {
	s := newMemStore()
	s.addProduct("prod-1", "Paracetamol 500mg")
	s.presentations["pres-caja"] = &entity.Presentation{
		ID: "pres-caja", TenantID: testTenant, ProductID: "prod-1", Name: "Caja x12",
		UnitsPerPresentation: decimal.NewFromInt(12), IsActive: true,
	}

	req, err := solicitudes(s, &memEvents{}).Create(context.Background(), testTenant, testUser, dto.CreateStockRequestRequest{
		City: "La Paz",
		Lines: []dto.LineRequest{{
			ProductID:            "prod-1",
			PresentationID:       ptr("pres-caja"),
			PresentationQuantity: dec(3),
		}},
	})

	require.NoError(t, err)
	require.Len(t, req.Items, 1)
	assert.True(t, req.Items[0].Quantity.Equal(decimal.NewFromInt(36)), "3 cajas x12 son 36 unidades base")
}

func TestRequestCancel_SoloSolicitudesAbiertas(t *testing.T) {
	s := newMemStore()
	abierta := s.addRequest("sol-1", "La Paz", entity.StockRequestStatusOpen)
	cumplida := s.addRequest("sol-2", "La Paz", entity.StockRequestStatusFulfilled)
	uc := solicitudes(s, &memEvents{})

	err := uc.Cancel(context.Background(), testTenant, testUser, "sol-1")
	require.NoError(t, err)
	assert.Equal(t, entity.StockRequestStatusCancelled, abierta.Status)

	err = uc.Cancel(context.Background(), testTenant, testUser, "sol-2")
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, entity.StockRequestStatusFulfilled, cumplida.Status)
}

func TestRequestGet_OtroTenantEsNotFound(t *testing.T) {
	s := newMemStore()
	s.addRequest("sol-1", "La Paz", entity.StockRequestStatusOpen)

	_, err := solicitudes(s, &memEvents{}).Get(context.Background(), "tenant-ajeno", "sol-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRequestList_FiltraPorEstado(t *testing.T) {
	s := newMemStore()
	s.addRequest("sol-1", "La Paz", entity.StockRequestStatusOpen)
	s.addRequest("sol-2", "La Paz", entity.StockRequestStatusCancelled)
	uc := solicitudes(s, &memEvents{})

	abiertas, err := uc.List(context.Background(), testTenant, entity.StockRequestStatusOpen)
	require.NoError(t, err)
	assert.Len(t, abiertas, 1)

	todas, err := uc.List(context.Background(), testTenant, "")
	require.NoError(t, err)
	assert.Len(t, todas, 2)
}
