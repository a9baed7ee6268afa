package sales_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/application/sales"
	"github.com/Gonmore/farmasnt-sub004/internal/domain"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
)

func cotizaciones(s *memStore) *sales.QuoteUseCase {
	return sales.NewQuoteUseCase(memTx{s}, memQuotes{s}, memCustomers{s}, testLogger())
}

func escenarioCotizacion() *memStore {
	s := newMemStore()
	s.addProduct("prod-1", "Paracetamol 500mg", 10)
	s.addPresentation("pres-def", "prod-1", "Unidad", 1, true)
	s.addPresentation("pres-caja", "prod-1", "Caja x12", 12, false)
	s.addCustomer("cli-1", "La Paz")
	return s
}

func TestQuoteCreate_NumeraConLaSecuenciaDelAnio(t *testing.T) {
	s := escenarioCotizacion()
	uc := cotizaciones(s)

	primera, err := uc.Create(context.Background(), testTenant, testUser, dto.CreateQuoteRequest{
		CustomerID: "cli-1",
		Lines:      []dto.LineRequest{{ProductID: "prod-1", Quantity: dec(5)}},
	})
	require.NoError(t, err)

	segunda, err := uc.Create(context.Background(), testTenant, testUser, dto.CreateQuoteRequest{
		CustomerID: "cli-1",
		Lines:      []dto.LineRequest{{ProductID: "prod-1", Quantity: dec(3)}},
	})
	require.NoError(t, err)

	assert.Regexp(t, `^COT-\d{4}-0001$`, primera.Number)
	assert.Regexp(t, `^COT-\d{4}-0002$`, segunda.Number, "la secuencia avanza de a uno")
	assert.Equal(t, entity.QuoteStatusCreated, primera.Status)
	assert.Len(t, s.audits, 2)
}

func TestQuoteCreate_ResuelveLineasAUnidadesBase(t *testing.T) {
	s := escenarioCotizacion()

	resp, err := cotizaciones(s).Create(context.Background(), testTenant, testUser, dto.CreateQuoteRequest{
		CustomerID: "cli-1",
		Lines: []dto.LineRequest{{
			ProductID:            "prod-1",
			PresentationID:       ptr("pres-caja"),
			PresentationQuantity: dec(2),
		}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.True(t, resp.Lines[0].Quantity.Equal(decimal.NewFromInt(24)), "2 cajas x12 son 24 unidades base")
	require.NotNil(t, resp.Lines[0].PresentationQuantity)
	assert.True(t, resp.Lines[0].PresentationQuantity.Equal(decimal.NewFromInt(2)))
}

func TestQuoteCreate_ConservaElLoteFijadoEnLaLinea(t *testing.T) {
	s := escenarioCotizacion()

	resp, err := cotizaciones(s).Create(context.Background(), testTenant, testUser, dto.CreateQuoteRequest{
		CustomerID: "cli-1",
		Lines: []dto.LineRequest{{
			ProductID: "prod-1",
			Quantity:  dec(5),
			BatchID:   ptr("lote-7"),
		}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	require.NotNil(t, resp.Lines[0].BatchID, "el lote fijado no se pierde al persistir la línea")
	assert.Equal(t, "lote-7", *resp.Lines[0].BatchID)

	guardada := s.quotes[resp.ID]
	require.Len(t, guardada.Lines, 1)
	require.NotNil(t, guardada.Lines[0].BatchID)
	assert.Equal(t, "lote-7", *guardada.Lines[0].BatchID)
}

func TestQuoteCreate_ClienteInexistenteDevuelveNotFound(t *testing.T) {
	s := escenarioCotizacion()

	_, err := cotizaciones(s).Create(context.Background(), testTenant, testUser, dto.CreateQuoteRequest{
		CustomerID: "no-existe",
		Lines:      []dto.LineRequest{{ProductID: "prod-1", Quantity: dec(1)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, s.quotes)
}

func TestQuoteUpdate_EditaCabeceraConGuardaDeVersion(t *testing.T) {
	s := escenarioCotizacion()
	uc := cotizaciones(s)
	created, err := uc.Create(context.Background(), testTenant, testUser, dto.CreateQuoteRequest{
		CustomerID: "cli-1",
		Lines:      []dto.LineRequest{{ProductID: "prod-1", Quantity: dec(5)}},
	})
	require.NoError(t, err)

	dias := 7
	resp, err := uc.Update(context.Background(), testTenant, testUser, created.ID, dto.UpdateQuoteRequest{
		DeliveryDays: &dias,
		Version:      created.Version,
	})

	require.NoError(t, err)
	assert.Equal(t, 7, resp.DeliveryDays)
	assert.Equal(t, created.Version+1, resp.Version)
	assert.Len(t, resp.Lines, 1, "sin líneas en el request las existentes se conservan")
}

func TestQuoteUpdate_VersionDesactualizadaDevuelveConflicto(t *testing.T) {
	s := escenarioCotizacion()
	uc := cotizaciones(s)
	created, err := uc.Create(context.Background(), testTenant, testUser, dto.CreateQuoteRequest{
		CustomerID: "cli-1",
		Lines:      []dto.LineRequest{{ProductID: "prod-1", Quantity: dec(5)}},
	})
	require.NoError(t, err)

	dias := 7
	_, err = uc.Update(context.Background(), testTenant, testUser, created.ID, dto.UpdateQuoteRequest{
		DeliveryDays: &dias,
		Version:      created.Version + 5,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestQuoteUpdate_CotizacionProcesadaEsInmutable(t *testing.T) {
	s := escenarioCotizacion()
	uc := cotizaciones(s)
	created, err := uc.Create(context.Background(), testTenant, testUser, dto.CreateQuoteRequest{
		CustomerID: "cli-1",
		Lines:      []dto.LineRequest{{ProductID: "prod-1", Quantity: dec(5)}},
	})
	require.NoError(t, err)
	s.quotes[created.ID].Status = entity.QuoteStatusProcessed

	dias := 7
	_, err = uc.Update(context.Background(), testTenant, testUser, created.ID, dto.UpdateQuoteRequest{
		DeliveryDays: &dias,
		Version:      created.Version,
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestQuoteGet_OtroTenantNoVeLaCotizacion(t *testing.T) {
	s := escenarioCotizacion()
	uc := cotizaciones(s)
	created, err := uc.Create(context.Background(), testTenant, testUser, dto.CreateQuoteRequest{
		CustomerID: "cli-1",
		Lines:      []dto.LineRequest{{ProductID: "prod-1", Quantity: dec(5)}},
	})
	require.NoError(t, err)

	_, err = uc.Get(context.Background(), "tenant-ajeno", created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
