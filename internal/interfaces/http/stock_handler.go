package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/application/sales"
	"github.com/Gonmore/farmasnt-sub004/internal/application/stock"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
)

// StockHandler maneja las peticiones HTTP de stock: faltantes, ingresos,
// solicitudes entre sucursales, despachos masivos y lotes (protegido).
type StockHandler struct {
	shortages *sales.ShortageCalculator
	entries   *stock.EntryUseCase
	requests  *stock.RequestUseCase
	bulk      *stock.BulkUseCase
	batches   *stock.BatchUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(
	shortages *sales.ShortageCalculator,
	entries *stock.EntryUseCase,
	requests *stock.RequestUseCase,
	bulk *stock.BulkUseCase,
	batches *stock.BatchUseCase,
) *StockHandler {
	return &StockHandler{shortages: shortages, entries: entries, requests: requests, bulk: bulk, batches: batches}
}

// Shortages godoc
// @Summary      Pre-chequeo de faltantes por ciudad
// @Description  Calcula cuánto falta por producto para cubrir las líneas con el
//               stock elegible de la ciudad. No reserva ni muta nada.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ShortagesRequest  true  "city y líneas a verificar"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/shortages [post]
func (h *StockHandler) Shortages(c *fiber.Ctx) error {
	var in dto.ShortagesRequest
	if !parseBody(c, &in) {
		return nil
	}
	items, err := h.shortages.Compute(c.Context(), GetTenantID(c), in.City, in.Lines)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"city": in.City, "shortages": items})
}

// CreateEntry godoc
// @Summary      Ingresar stock a una ubicación
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockEntryRequest  true  "product_id, location_id, batch_id opcional, quantity"
// @Success      201   {object}  dto.ChangedBalanceDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/entries [post]
func (h *StockHandler) CreateEntry(c *fiber.Ctx) error {
	var in dto.StockEntryRequest
	if !parseBody(c, &in) {
		return nil
	}
	balance, err := h.entries.Create(c.Context(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(balanceToDTO(balance))
}

// CreateRequest godoc
// @Summary      Crear solicitud de stock a otra sucursal
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateStockRequestRequest  true  "city solicitante y líneas faltantes"
// @Success      201   {object}  dto.StockRequestResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/stock/requests [post]
func (h *StockHandler) CreateRequest(c *fiber.Ctx) error {
	var in dto.CreateStockRequestRequest
	if !parseBody(c, &in) {
		return nil
	}
	req, err := h.requests.Create(c.Context(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(requestToDTO(req))
}

// ListRequests godoc
// @Summary      Listar solicitudes de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Filtrar por estado (OPEN, FULFILLED, CANCELLED)"
// @Success      200  {array}  dto.StockRequestResponse
// @Router       /api/stock/requests [get]
func (h *StockHandler) ListRequests(c *fiber.Ctx) error {
	reqs, err := h.requests.List(c.Context(), GetTenantID(c), c.Query("status"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]*dto.StockRequestResponse, 0, len(reqs))
	for _, r := range reqs {
		out = append(out, requestToDTO(r))
	}
	return c.JSON(out)
}

// GetRequest godoc
// @Summary      Obtener solicitud de stock con renglones
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  dto.StockRequestResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/requests/{id} [get]
func (h *StockHandler) GetRequest(c *fiber.Ctx) error {
	req, err := h.requests.Get(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(requestToDTO(req))
}

// CancelRequest godoc
// @Summary      Cancelar solicitud de stock abierta
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la solicitud"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/requests/{id}/cancel [post]
func (h *StockHandler) CancelRequest(c *fiber.Ctx) error {
	if err := h.requests.Cancel(c.Context(), GetTenantID(c), GetUserID(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "solicitud cancelada"})
}

// BulkFulfill godoc
// @Summary      Despacho manual contra solicitudes abiertas
// @Description  Mueve stock de la ubicación origen a la destino y descuenta los
//               remanentes de las solicitudes indicadas. Cierra las solicitudes
//               que queden sin deuda.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkFulfillRequest  true  "request_ids, ubicaciones y renglones por balance"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/stock/bulk-fulfill [post]
func (h *StockHandler) BulkFulfill(c *fiber.Ctx) error {
	var in dto.BulkFulfillRequest
	if !parseBody(c, &in) {
		return nil
	}
	changed, err := h.bulk.BulkFulfill(c.Context(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"changed_balances": changed})
}

// BulkTransfer godoc
// @Summary      Traslado manual entre ubicaciones
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.BulkTransferRequest  true  "ubicaciones y renglones por balance"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/stock/bulk-transfer [post]
func (h *StockHandler) BulkTransfer(c *fiber.Ctx) error {
	var in dto.BulkTransferRequest
	if !parseBody(c, &in) {
		return nil
	}
	changed, err := h.bulk.BulkTransfer(c.Context(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"changed_balances": changed})
}

// CreateBatch godoc
// @Summary      Crear lote de fabricación
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "product_id; batch_number opcional (se numera con secuencia LOT)"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *StockHandler) CreateBatch(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if !parseBody(c, &in) {
		return nil
	}
	batch, err := h.batches.Create(c.Context(), GetTenantID(c), GetUserID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(batchToDTO(batch))
}

// UpdateBatchStatus godoc
// @Summary      Transicionar estado de lote
// @Description  QUARANTINE puede pasar a RELEASED o REJECTED; RELEASED solo a
//               REJECTED. Version guarda contra ediciones concurrentes.
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                       true  "ID del lote"
// @Param        body  body  dto.UpdateBatchStatusRequest true  "status destino y version"
// @Success      200   {object}  dto.BatchResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/status [put]
func (h *StockHandler) UpdateBatchStatus(c *fiber.Ctx) error {
	var in dto.UpdateBatchStatusRequest
	if !parseBody(c, &in) {
		return nil
	}
	batch, err := h.batches.UpdateStatus(c.Context(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(batchToDTO(batch))
}

func balanceToDTO(b *entity.InventoryBalance) dto.ChangedBalanceDTO {
	return dto.ChangedBalanceDTO{
		BalanceID:        b.ID,
		ProductID:        b.ProductID,
		BatchID:          b.BatchID,
		LocationID:       b.LocationID,
		Quantity:         b.Quantity,
		ReservedQuantity: b.ReservedQuantity,
		Version:          b.Version,
	}
}

func requestToDTO(r *entity.StockMovementRequest) *dto.StockRequestResponse {
	resp := &dto.StockRequestResponse{
		ID:        r.ID,
		Number:    r.Number,
		City:      r.City,
		Status:    r.Status,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
	}
	for _, it := range r.Items {
		resp.Items = append(resp.Items, dto.StockRequestItemResponse{
			ID:                it.ID,
			ProductID:         it.ProductID,
			Quantity:          it.Quantity,
			RemainingQuantity: it.RemainingQuantity,
		})
	}
	return resp
}

func batchToDTO(b *entity.Batch) dto.BatchResponse {
	return dto.BatchResponse{
		ID:                b.ID,
		ProductID:         b.ProductID,
		BatchNumber:       b.BatchNumber,
		Status:            b.Status,
		ExpiresAt:         b.ExpiresAt,
		ManufacturingDate: b.ManufacturingDate,
		Version:           b.Version,
	}
}
