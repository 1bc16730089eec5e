package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto splits its inventory across two physical locations: sala (shop
// floor) and bodega (warehouse). PrecioVenta is derived from
// PrecioCosto × (1 + PorcentajeMargen/100) and is recomputed on every write
// path that touches cost or margin — it is never edited directly.
type Producto struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre           string          `gorm:"index;not null"`
	ProveedorID      uuid.UUID       `gorm:"type:uuid;index;not null"`
	PrecioCosto      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PorcentajeMargen decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	PrecioVenta      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	StockSala        int             `gorm:"not null;default:0"`
	StockBodega      int             `gorm:"not null;default:0"`
	StockMinimo      int             `gorm:"not null;default:10"`
	EsAltaRotacion   bool            `gorm:"not null;default:false"`
	EsPerecible      bool            `gorm:"not null;default:false"`
	// FechaVencimiento is required iff EsPerecible
	FechaVencimiento *time.Time
	Activo           bool `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Proveedor *Proveedor `gorm:"foreignKey:ProveedorID"`
}

// StockTotal is the quantity available for sale across both locations.
func (p *Producto) StockTotal() int {
	return p.StockSala + p.StockBodega
}
