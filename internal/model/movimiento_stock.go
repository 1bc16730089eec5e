package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	MovimientoVenta         = "venta"
	MovimientoTransferencia = "transferencia"
	MovimientoAjuste        = "ajuste"
)

// MovimientoStock is an immutable audit entry for every stock mutation.
// Movements are NEVER modified or deleted.
type MovimientoStock struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductoID uuid.UUID `gorm:"type:uuid;index;not null"`
	Tipo       string    `gorm:"type:varchar(20);not null"`
	Cantidad   int       `gorm:"not null"`
	// Before/after counters per location, for drawer-style reconciliation.
	SalaAnterior   int `gorm:"not null"`
	SalaNueva      int `gorm:"not null"`
	BodegaAnterior int `gorm:"not null"`
	BodegaNueva    int `gorm:"not null"`
	Motivo         string `gorm:"not null"`
	// ReferenciaID links to the originating Venta when Tipo = "venta"
	ReferenciaID *uuid.UUID `gorm:"type:uuid"`
	CreatedAt    time.Time
}

// GORM would pluralize this as "movimiento_stocks".
func (MovimientoStock) TableName() string { return "movimientos_stock" }
