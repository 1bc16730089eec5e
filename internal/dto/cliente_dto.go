package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearClienteRequest struct {
	Nombre        string           `json:"nombre"         validate:"required,min=2"`
	Telefono      *string          `json:"telefono"`
	Direccion     *string          `json:"direccion"`
	LimiteCredito *decimal.Decimal `json:"limite_credito"`
}

type ActualizarClienteRequest struct {
	Nombre        *string          `json:"nombre"         validate:"omitempty,min=2"`
	Telefono      *string          `json:"telefono"`
	Direccion     *string          `json:"direccion"`
	LimiteCredito *decimal.Decimal `json:"limite_credito"`
}

type AbonoRequest struct {
	Monto decimal.Decimal `json:"monto" validate:"required"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ClienteResponse struct {
	ID            string          `json:"id"`
	Nombre        string          `json:"nombre"`
	Telefono      *string         `json:"telefono,omitempty"`
	Direccion     *string         `json:"direccion,omitempty"`
	DeudaTotal    decimal.Decimal `json:"deuda_total"`
	LimiteCredito decimal.Decimal `json:"limite_credito"`
	Activo        bool            `json:"activo"`
}

type AbonoResponse struct {
	ClienteID     string          `json:"cliente_id"`
	Nombre        string          `json:"nombre"`
	DeudaAnterior decimal.Decimal `json:"deuda_anterior"`
	MontoAbonado  decimal.Decimal `json:"monto_abonado"`
	DeudaActual   decimal.Decimal `json:"deuda_actual"`
	Saldada       bool            `json:"saldada"`
}

// DeudaClienteResponse pairs a customer's balance with its pending credit sales.
type DeudaClienteResponse struct {
	Cliente          ClienteResponse `json:"cliente"`
	VentasPendientes []VentaResponse `json:"ventas_pendientes"`
}
