package dto

import "github.com/Gonmore/farmasnt-sub004/internal/domain"

// ErrorResponse cuerpo estándar de error de la API.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InsufficientStockResponse cuerpo 409 para faltantes de stock. El frontend
// usa Items para armar la solicitud de stock a otra sucursal.
type InsufficientStockResponse struct {
	Code    string                `json:"code"`
	Message string                `json:"message"`
	City    string                `json:"city"`
	Items   []domain.ShortageItem `json:"items"`
}
