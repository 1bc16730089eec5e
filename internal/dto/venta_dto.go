package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID string `json:"producto_id" validate:"required,uuid"`
	Cantidad   int    `json:"cantidad"    validate:"required,min=1"`
}

type RegistrarVentaRequest struct {
	Items     []ItemVentaRequest `json:"items"      validate:"required,min=1,dive"`
	TipoVenta string             `json:"tipo_venta" validate:"required,oneof=contado credito"`
	// ClienteID is required iff TipoVenta == credito
	ClienteID *string `json:"cliente_id" validate:"omitempty,uuid"`
	// MontoRecibido applies to contado sales only
	MontoRecibido *decimal.Decimal `json:"monto_recibido"`
	Descuento     decimal.Decimal  `json:"descuento" validate:"min=0"`
}

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	FechaInicio string `form:"fecha_inicio"` // YYYY-MM-DD
	FechaFin    string `form:"fecha_fin"`
	TipoVenta   string `form:"tipo_venta" validate:"omitempty,oneof=contado credito"`
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
}

type VentaResponse struct {
	ID            string              `json:"id"`
	SesionCajaID  string              `json:"sesion_caja_id"`
	UsuarioID     string              `json:"usuario_id"`
	Items         []ItemVentaResponse `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Descuento     decimal.Decimal     `json:"descuento"`
	Total         decimal.Decimal     `json:"total"`
	TipoVenta     string              `json:"tipo_venta"`
	Cliente       *string             `json:"cliente,omitempty"`
	ClienteID     *string             `json:"cliente_id,omitempty"`
	MontoRecibido *decimal.Decimal    `json:"monto_recibido,omitempty"`
	Vuelto        decimal.Decimal     `json:"vuelto"`
	EstadoPago    string              `json:"estado_pago"`
	CreatedAt     string              `json:"created_at"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
