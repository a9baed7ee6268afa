package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Gonmore/farmasnt-sub004/internal/application/catalog"
	"github.com/Gonmore/farmasnt-sub004/internal/application/dto"
	"github.com/Gonmore/farmasnt-sub004/internal/domain/entity"
)

// ProductHandler maneja las peticiones HTTP de productos y presentaciones (protegido).
type ProductHandler struct {
	products      *catalog.ProductUseCase
	presentations *catalog.PresentationUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(products *catalog.ProductUseCase, presentations *catalog.PresentationUseCase) *ProductHandler {
	return &ProductHandler{products: products, presentations: presentations}
}

// Create godoc
// @Summary      Crear producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "sku, name, price (por unidad base)"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if !parseBody(c, &in) {
		return nil
	}
	p, err := h.products.Create(c.Context(), GetTenantID(c), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(productToDTO(p))
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	ps, err := h.products.List(c.Context(), GetTenantID(c))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, productToDTO(p))
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.products.GetByID(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productToDTO(p))
}

// Update godoc
// @Summary      Editar producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.UpdateProductRequest  true  "campos a editar"
// @Success      200   {object}  dto.ProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id} [put]
func (h *ProductHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateProductRequest
	if !parseBody(c, &in) {
		return nil
	}
	p, err := h.products.Update(c.Context(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productToDTO(p))
}

// CreatePresentation godoc
// @Summary      Crear presentación de un producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID del producto"
// @Param        body  body  dto.CreatePresentationRequest  true  "name, units_per_presentation, is_default opcional"
// @Success      201   {object}  dto.PresentationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/presentations [post]
func (h *ProductHandler) CreatePresentation(c *fiber.Ctx) error {
	var in dto.CreatePresentationRequest
	if !parseBody(c, &in) {
		return nil
	}
	p, err := h.presentations.Create(c.Context(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(presentationToDTO(p))
}

// ListPresentations godoc
// @Summary      Listar presentaciones de un producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del producto"
// @Success      200  {array}  dto.PresentationResponse
// @Router       /api/products/{id}/presentations [get]
func (h *ProductHandler) ListPresentations(c *fiber.Ctx) error {
	ps, err := h.presentations.List(c.Context(), GetTenantID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.PresentationResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, presentationToDTO(p))
	}
	return c.JSON(out)
}

// UpdatePresentation godoc
// @Summary      Editar presentación
// @Description  Promover una presentación degrada la default anterior. Para
//               desactivar la default hay que indicar promote_id.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                         true  "ID de la presentación"
// @Param        body  body  dto.UpdatePresentationRequest  true  "campos a editar"
// @Success      200   {object}  dto.PresentationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/presentations/{id} [put]
func (h *ProductHandler) UpdatePresentation(c *fiber.Ctx) error {
	var in dto.UpdatePresentationRequest
	if !parseBody(c, &in) {
		return nil
	}
	p, err := h.presentations.Update(c.Context(), GetTenantID(c), c.Params("id"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(presentationToDTO(p))
}

func productToDTO(p *entity.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:       p.ID,
		SKU:      p.SKU,
		Name:     p.Name,
		Price:    p.Price,
		IsActive: p.IsActive,
	}
}

func presentationToDTO(p *entity.Presentation) dto.PresentationResponse {
	return dto.PresentationResponse{
		ID:                   p.ID,
		ProductID:            p.ProductID,
		Name:                 p.Name,
		UnitsPerPresentation: p.UnitsPerPresentation,
		IsDefault:            p.IsDefault,
		PriceOverride:        p.PriceOverride,
		SortOrder:            p.SortOrder,
		IsActive:             p.IsActive,
	}
}
