package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type AbrirCajaRequest struct {
	MontoInicial decimal.Decimal `json:"monto_inicial" validate:"min=0"`
}

type CerrarCajaRequest struct {
	MontoCierre   decimal.Decimal `json:"monto_cierre" validate:"min=0"`
	Observaciones *string         `json:"observaciones"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SesionCajaResponse struct {
	ID            string          `json:"id"`
	UsuarioID     string          `json:"usuario_id"`
	Usuario       string          `json:"usuario,omitempty"`
	FechaApertura string          `json:"fecha_apertura"`
	MontoInicial  decimal.Decimal `json:"monto_inicial"`
	FechaCierre   *string         `json:"fecha_cierre,omitempty"`
	MontoCierre   *decimal.Decimal `json:"monto_cierre,omitempty"`
	VentasTotales decimal.Decimal `json:"ventas_totales"`
	// GananciaDelDia is the drawer delta (cierre - inicial), name kept from
	// the business even though it is not a profit figure.
	GananciaDelDia decimal.Decimal `json:"ganancia_del_dia"`
	Estado         string          `json:"estado"`
	Observaciones  *string         `json:"observaciones,omitempty"`
}

type HistorialCajaResponse struct {
	Data  []SesionCajaResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}
