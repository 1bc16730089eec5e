package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sale payment types and statuses.
const (
	VentaContado = "contado"
	VentaCredito = "credito"

	PagoPagada    = "pagada"
	PagoPendiente = "pendiente"
)

// Venta is created once by the sale-posting transaction and never deleted.
// Its only later mutation is the pendiente→pagada settlement of a credit sale.
type Venta struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UsuarioID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	SesionCajaID uuid.UUID  `gorm:"type:uuid;not null;index"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// TipoVenta: contado | credito. ClienteID is required iff credito.
	TipoVenta  string     `gorm:"type:varchar(20);not null;default:'contado'"`
	ClienteID  *uuid.UUID `gorm:"type:uuid;index"`
	// MontoRecibido / Vuelto apply to contado sales only.
	MontoRecibido *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Vuelto        decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	EstadoPago    string           `gorm:"type:varchar(20);not null;default:'pagada'"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
}

// VentaItem snapshots the product's live sale price at posting time.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VentaID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
