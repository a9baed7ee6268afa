package sales

import (
	"fmt"
	"strings"
	"time"
)

// Prefijos documentales y claves de secuencia.
const (
	QuotePrefix = "COT"
	OrderPrefix = "OV"

	SequenceKeyQuote = "COT"
)

// FormatNumber arma un número documental: COT-2026-0007. El padding es de
// cuatro dígitos y crece naturalmente pasado 9999.
func FormatNumber(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, n)
}

// OrderNumberFromQuote deriva el número de orden reescribiendo el prefijo de
// la cotización (COT-2026-0007 -> OV-2026-0007). Determinista: procesar la
// misma cotización siempre produciría el mismo número de orden.
func OrderNumberFromQuote(quoteNumber string) string {
	if strings.HasPrefix(quoteNumber, QuotePrefix+"-") {
		return OrderPrefix + strings.TrimPrefix(quoteNumber, QuotePrefix)
	}
	return OrderPrefix + "-" + quoteNumber
}

// StartOfTodayUTC inicio del día UTC de now. Toda la aritmética de fechas
// (vencimiento de lotes, fecha de entrega) se hace sobre fechas UTC sin
// componente de zona horaria.
func StartOfTodayUTC(now time.Time) time.Time {
	y, m, d := now.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
