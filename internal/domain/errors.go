package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente en la ciudad")
)

// QtyEpsilon tolerancia para comparaciones de cantidades decimales.
// Solo se aplica en decisiones de asignación, nunca al persistir.
var QtyEpsilon = decimal.New(1, -9)

// ShortageItem describe el faltante de un producto en una ciudad.
type ShortageItem struct {
	ProductID            string           `json:"product_id"`
	ProductName          string           `json:"product_name,omitempty"`
	Required             decimal.Decimal  `json:"required"`
	Available            decimal.Decimal  `json:"available"`
	PresentationID       *string          `json:"presentation_id,omitempty"`
	PresentationQuantity *decimal.Decimal `json:"presentation_quantity,omitempty"`
}

// InsufficientStockError indica que una o más líneas no pueden reservarse
// con el stock disponible en la ciudad. La operación completa se revierte:
// nunca se confirma una reserva parcial.
type InsufficientStockError struct {
	City  string         `json:"city"`
	Items []ShortageItem `json:"items"`
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente en %s para %d producto(s)", e.City, len(e.Items))
}

// Unwrap permite errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
