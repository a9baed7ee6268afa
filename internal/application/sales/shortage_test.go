package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/application/sales"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
)

func calculadora(s *memStore) *sales.ShortageCalculator {
	return sales.NewShortageCalculator(memProducts{s}, memPresentations{s}, memBalances{s})
}

func TestShortage_SinFaltantesDevuelveListaVacia(t *testing.T) {
	s := newMemStore()
	s.addProduct("prod-1", "Paracetamol 500mg", 10)
	s.addLocation("ubi-1", "La Paz")
	s.addBatch("lote-1", "prod-1", entity.BatchStatusReleased, nil)
	s.addBalance("bal-1", "prod-1", ptr("lote-1"), "ubi-1", 100, 0, time.Now().UTC())

	items, err := calculadora(s).Compute(context.Background(), testTenant, "La Paz",
		[]dto.LineRequest{{ProductID: "prod-1", Quantity: dec(50)}})

	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestShortage_ReportaFaltantePorLineaConDatosDePresentacion(t *testing.T) {
	s := newMemStore()
	s.addProduct("prod-1", "Paracetamol 500mg", 10)
	s.addPresentation("pres-caja", "prod-1", "Caja x12", 12, false)
	s.addLocation("ubi-1", "La Paz")
	s.addBatch("lote-1", "prod-1", entity.BatchStatusReleased, nil)
	s.addBalance("bal-1", "prod-1", ptr("lote-1"), "ubi-1", 30, 0, time.Now().UTC())

	items, err := calculadora(s).Compute(context.Background(), testTenant, "La Paz",
		[]dto.LineRequest{{
			ProductID:            "prod-1",
			PresentationID:       ptr("pres-caja"),
			PresentationQuantity: dec(5), // 60 unidades base contra 30 disponibles
		}})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Required.Equal(decimal.NewFromInt(60)), "el requerido se expresa en unidades base")
	assert.True(t, items[0].Available.Equal(decimal.NewFromInt(30)))
	require.NotNil(t, items[0].PresentationID)
	assert.Equal(t, "pres-caja", *items[0].PresentationID, "el faltante conserva la vista en presentación")
}

func TestShortage_NoAcumulaEntreLineas(t *testing.T) {
	s := newMemStore()
	s.addProduct("prod-1", "Paracetamol 500mg", 10)
	s.addLocation("ubi-1", "La Paz")
	s.addBatch("lote-1", "prod-1", entity.BatchStatusReleased, nil)
	s.addBalance("bal-1", "prod-1", ptr("lote-1"), "ubi-1", 15, 0, time.Now().UTC())

	// El cálculo es por línea: cada una cabe sola en 15 aunque juntas no.
	items, err := calculadora(s).Compute(context.Background(), testTenant, "La Paz",
		[]dto.LineRequest{
			{ProductID: "prod-1", Quantity: dec(10)},
			{ProductID: "prod-1", Quantity: dec(10)},
		})

	require.NoError(t, err)
	assert.Empty(t, items, "la vista previa evalúa línea por línea; la acumulación la hace el asignador")
}

func TestShortage_NoMutaNada(t *testing.T) {
	s := newMemStore()
	s.addProduct("prod-1", "Paracetamol 500mg", 10)
	s.addLocation("ubi-1", "La Paz")

	items, err := calculadora(s).Compute(context.Background(), testTenant, "La Paz",
		[]dto.LineRequest{{ProductID: "prod-1", Quantity: dec(5)}})

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Empty(t, s.presentations, "a diferencia de la resolución de líneas, nunca crea la Unidad default")
	assert.Empty(t, s.reservations)

	// Repetir el cálculo da el mismo resultado.
	again, err := calculadora(s).Compute(context.Background(), testTenant, "La Paz",
		[]dto.LineRequest{{ProductID: "prod-1", Quantity: dec(5)}})
	require.NoError(t, err)
	assert.Equal(t, items, again)
}

func TestShortage_ProductoDesconocidoDevuelveNotFound(t *testing.T) {
	s := newMemStore()

	_, err := calculadora(s).Compute(context.Background(), testTenant, "La Paz",
		[]dto.LineRequest{{ProductID: "no-existe", Quantity: dec(1)}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
