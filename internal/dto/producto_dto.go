package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CrearProductoRequest struct {
	Nombre           string          `json:"nombre"             validate:"required,min=2"`
	ProveedorID      string          `json:"proveedor_id"       validate:"required,uuid"`
	PrecioCosto      decimal.Decimal `json:"precio_costo"       validate:"required"`
	PorcentajeMargen decimal.Decimal `json:"porcentaje_margen"`
	StockSala        int             `json:"stock_sala"         validate:"min=0"`
	StockBodega      int             `json:"stock_bodega"       validate:"min=0"`
	StockMinimo      int             `json:"stock_minimo"       validate:"min=0"`
	EsAltaRotacion   bool            `json:"es_alta_rotacion"`
	EsPerecible      bool            `json:"es_perecible"`
	// FechaVencimiento (YYYY-MM-DD) is required iff EsPerecible
	FechaVencimiento *string `json:"fecha_vencimiento" validate:"omitempty,datetime=2006-01-02"`
}

type ActualizarProductoRequest struct {
	Nombre           *string          `json:"nombre"             validate:"omitempty,min=2"`
	ProveedorID      *string          `json:"proveedor_id"       validate:"omitempty,uuid"`
	PrecioCosto      *decimal.Decimal `json:"precio_costo"`
	PorcentajeMargen *decimal.Decimal `json:"porcentaje_margen"`
	StockMinimo      *int             `json:"stock_minimo"       validate:"omitempty,min=0"`
	EsAltaRotacion   *bool            `json:"es_alta_rotacion"`
	EsPerecible      *bool            `json:"es_perecible"`
	FechaVencimiento *string          `json:"fecha_vencimiento"  validate:"omitempty,datetime=2006-01-02"`
}

type AjustarStockRequest struct {
	StockSala   *int `json:"stock_sala"   validate:"omitempty,min=0"`
	StockBodega *int `json:"stock_bodega" validate:"omitempty,min=0"`
}

type TransferirStockRequest struct {
	Cantidad int    `json:"cantidad" validate:"required,min=1"`
	Origen   string `json:"origen"   validate:"required,oneof=sala bodega"`
	Destino  string `json:"destino"  validate:"required,oneof=sala bodega"`
}

type ProductoFilter struct {
	Nombre      string `form:"nombre"`
	ProveedorID string `form:"proveedor_id" validate:"omitempty,uuid"`
	Activo      string `form:"activo"` // "false" = inactivos, "all" = todos, default activos
	Page        int    `form:"page,default=1"   validate:"min=1"`
	Limit       int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductoResponse struct {
	ID               string          `json:"id"`
	Nombre           string          `json:"nombre"`
	ProveedorID      string          `json:"proveedor_id"`
	Proveedor        string          `json:"proveedor,omitempty"`
	PrecioCosto      decimal.Decimal `json:"precio_costo"`
	PorcentajeMargen decimal.Decimal `json:"porcentaje_margen"`
	PrecioVenta      decimal.Decimal `json:"precio_venta"`
	StockSala        int             `json:"stock_sala"`
	StockBodega      int             `json:"stock_bodega"`
	StockTotal       int             `json:"stock_total"`
	StockMinimo      int             `json:"stock_minimo"`
	EsAltaRotacion   bool            `json:"es_alta_rotacion"`
	EsPerecible      bool            `json:"es_perecible"`
	FechaVencimiento *string         `json:"fecha_vencimiento,omitempty"`
	Activo           bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

type StockResponse struct {
	ProductoID  string `json:"producto_id"`
	Nombre      string `json:"nombre"`
	StockSala   int    `json:"stock_sala"`
	StockBodega int    `json:"stock_bodega"`
	StockTotal  int    `json:"stock_total"`
}

// AlertaStockResponse flags a product needing attention: low total stock
// and/or an expiry date within the warning window.
type AlertaStockResponse struct {
	ProductoID       string  `json:"producto_id"`
	Nombre           string  `json:"nombre"`
	StockTotal       int     `json:"stock_total"`
	StockMinimo      int     `json:"stock_minimo"`
	StockBajo        bool    `json:"stock_bajo"`
	VenceProximo     bool    `json:"vence_proximo"`
	FechaVencimiento *string `json:"fecha_vencimiento,omitempty"`
}

type ConsultaPrecioResponse struct {
	ProductoID  string          `json:"producto_id"`
	Nombre      string          `json:"nombre"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	StockTotal  int             `json:"stock_total"`
}
